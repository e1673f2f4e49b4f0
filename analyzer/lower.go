package analyzer

import (
	"fmt"
	"strconv"

	"curv/lexer"
	"curv/source"
	"curv/syntax"
	"curv/value"
)

// binOpByToken maps an infix operator token kind to its BinOp, for
// the arithmetic/relational/logical tier of BinaryPhrase.
var binOpByToken = map[lexer.Kind]BinOp{
	lexer.KPlus: OpAdd, lexer.KMinus: OpSub, lexer.KStar: OpMul, lexer.KSlash: OpDiv,
	lexer.KCaret: OpPow,
	lexer.KEq:    OpEq, lexer.KNe: OpNe, lexer.KLt: OpLt, lexer.KLe: OpLe,
	lexer.KGt: OpGt, lexer.KGe: OpGe,
	lexer.KAnd: OpAnd, lexer.KOr: OpOr,
}

// Analyze lowers a parsed script into a single top-level Operation,
// wrapping its body in the same Module_Phrase classification used for
// brace bodies — the top-level program is treated as a module body the
// same way a `{...}` literal is, since script definitions and elements
// live directly at top level (see DESIGN.md's "top-level program as
// module body" decision).
func Analyze(prog *syntax.ProgramPhrase, builtin Environ) (Operation, error) {
	items := flattenCommas(prog.Body)
	return lowerBody(items, builtin, true)
}

// flattenCommas returns the Items of a CommaPhrase, or a single-element
// slice for any other phrase, or nil for EmptyPhrase.
func flattenCommas(p syntax.Phrase) []syntax.Phrase {
	switch n := p.(type) {
	case *syntax.EmptyPhrase:
		return nil
	case *syntax.CommaPhrase:
		return n.Items
	default:
		return []syntax.Phrase{p}
	}
}

// flattenSemicolons returns the Items of a SemicolonPhrase, or a
// single-element slice for any other phrase, or nil for EmptyPhrase.
func flattenSemicolons(p syntax.Phrase) []syntax.Phrase {
	switch n := p.(type) {
	case *syntax.EmptyPhrase:
		return nil
	case *syntax.SemicolonPhrase:
		return n.Items
	default:
		return []syntax.Phrase{p}
	}
}

// definiendum is a single classified top-level statement: a name bound
// to an RHS phrase (already desugared from `f(params) = expr`), or a
// bare element expression if Name == "".
type definiendum struct {
	Name      value.Atom
	RHS       syntax.Phrase
	Recursive bool // RHS phrase is a LambdaPhrase
	Loc       source.Location
}

// classifyStatements partitions a module/record body into definitions
// and bare element expressions, per the Module_Phrase lowering rule:
// each statement is a DefinitionPhrase (added to the bindings) or
// anything else (an element). Duplicate names error.
func classifyStatements(items []syntax.Phrase) (defs []definiendum, elements []syntax.Phrase, err error) {
	seen := map[value.Atom]bool{}
	for _, item := range items {
		def, ok := item.(*syntax.DefinitionPhrase)
		if !ok {
			elements = append(elements, item)
			continue
		}
		name, rhs, err := desugarDefinition(def)
		if err != nil {
			return nil, nil, err
		}
		if seen[name] {
			return nil, nil, source.NewException(def.Location(), fmt.Sprintf("multiply defined: %s", name))
		}
		seen[name] = true
		_, recursive := rhs.(*syntax.LambdaPhrase)
		defs = append(defs, definiendum{Name: name, RHS: rhs, Recursive: recursive, Loc: def.Location()})
	}
	return defs, elements, nil
}

// desugarDefinition turns `f(params) = expr` into (f, Lambda_Phrase(params,expr))
// and `id = expr` / `id : expr` into (id, expr).
func desugarDefinition(def *syntax.DefinitionPhrase) (value.Atom, syntax.Phrase, error) {
	if def.Sep.Kind == lexer.KWalrus {
		return "", nil, source.NewException(def.Location(), "`:=` is only valid inside a `do` block")
	}
	switch left := def.Left.(type) {
	case *syntax.IdentifierPhrase:
		return value.Atom(left.Name()), def.Right, nil
	case *syntax.CallPhrase:
		if left.Kind != syntax.Juxtaposition {
			break
		}
		callee, ok := left.Callee().(*syntax.IdentifierPhrase)
		if !ok {
			break
		}
		lambda := &syntax.LambdaPhrase{Params: left.Argument(), Body: def.Right}
		return value.Atom(callee.Name()), lambda, nil
	}
	return "", nil, source.NewException(def.Location(), "invalid definiendum")
}

// lowerBody lowers a classified module/record body into either a
// RecordExpr (no elements, no recursive fields: an eagerly-evaluated
// plain record) or a ModuleExpr (otherwise), per the "top-level
// program as module body" / "record vs module brace literal" DESIGN.md
// decisions.
func lowerBody(items []syntax.Phrase, parent Environ, topLevel bool) (Operation, error) {
	defs, elementPhrases, err := classifyStatements(items)
	if err != nil {
		return nil, err
	}

	names := make([]value.Atom, len(defs))
	slots := make(map[string]int, len(defs))
	recursiveSlots := make(map[int]bool, len(defs))
	for i, d := range defs {
		names[i] = d.Name
		slots[string(d.Name)] = i
		if d.Recursive {
			recursiveSlots[i] = true
		}
	}

	isRecord := len(elementPhrases) == 0 && len(recursiveSlots) == 0 && !topLevel

	env := NewModuleEnviron(parent, slots, recursiveSlots)
	fs := &frameState{}
	fs.alloc(len(defs))

	rhs := make([]Operation, len(defs))
	for i, d := range defs {
		op, err := lowerDefRHS(d, env, fs)
		if err != nil {
			return nil, err
		}
		rhs[i] = op
	}

	if isRecord {
		return &RecordExpr{Loc: locOf(items), Names: names, RHS: rhs, NSlots: fs.maxslots}, nil
	}

	elements := make([]Operation, len(elementPhrases))
	for i, el := range elementPhrases {
		op, err := lowerExpr(el, env, fs)
		if err != nil {
			return nil, err
		}
		elements[i] = op
	}

	return &ModuleExpr{
		Loc: locOf(items), Names: names, RHS: rhs,
		RecursiveSlots: recursiveSlots, Elements: elements, NSlots: fs.maxslots,
	}, nil
}

func lowerDefRHS(d definiendum, env *ModuleEnviron, fs *frameState) (Operation, error) {
	if d.Recursive {
		return lowerLambda(d.RHS.(*syntax.LambdaPhrase), env, true)
	}
	return lowerExpr(d.RHS, env, fs)
}

func locOf(items []syntax.Phrase) source.Location {
	if len(items) == 0 {
		return source.NoLocation
	}
	loc := items[0].Location()
	for _, it := range items[1:] {
		loc = source.Range(loc, it.Location())
	}
	return loc
}

// lowerExpr lowers a single Phrase in expression (not definition)
// position, sharing fs (the enclosing lambda/module's frame-slot
// accounting) for any let/for scratch it introduces.
func lowerExpr(p syntax.Phrase, env Environ, fs *frameState) (Operation, error) {
	switch n := p.(type) {
	case *syntax.EmptyPhrase:
		return NewConstant(n.Loc, value.TheNull), nil

	case *syntax.NumeralPhrase:
		f, err := strconv.ParseFloat(n.Tok.Text(), 64)
		if err != nil {
			return nil, source.NewException(n.Location(), "invalid numeral: "+n.Tok.Text())
		}
		return NewConstant(n.Location(), value.Num(f)), nil

	case *syntax.StringPhrase:
		return NewConstant(n.Location(), value.Str(n.Tok.Literal)), nil

	case *syntax.IdentifierPhrase:
		m, err := env.Lookup(n.Name(), n.Location())
		if err != nil {
			return nil, err
		}
		op, ok := m.(Operation)
		if !ok {
			return nil, source.NewException(n.Location(), "not an expression: "+n.Name())
		}
		return op, nil

	case *syntax.UnaryPhrase:
		return lowerUnary(n, env, fs)

	case *syntax.BinaryPhrase:
		return lowerBinary(n, env, fs)

	case *syntax.RangePhrase:
		return lowerRange(n, env, fs)

	case *syntax.SemicolonPhrase:
		items := make([]Operation, len(n.Items))
		for i, it := range n.Items {
			op, err := lowerExpr(it, env, fs)
			if err != nil {
				return nil, err
			}
			items[i] = op
		}
		return &SeqExpr{Loc: n.Loc, Items: items}, nil

	case *syntax.ParenPhrase:
		return lowerParenExpr(n, env, fs)

	case *syntax.BracketPhrase:
		return lowerList(n, env, fs)

	case *syntax.BracePhrase:
		return lowerBody(flattenSemicolons(n.Body), env, false)

	case *syntax.CallPhrase:
		return lowerCall(n, env, fs)

	case *syntax.LambdaPhrase:
		return lowerLambda(n, env, false)

	case *syntax.IfPhrase:
		return lowerIf(n, env, fs)

	case *syntax.LetPhrase:
		return lowerLet(n, env, fs)

	case *syntax.ForPhrase:
		return lowerFor(n, env, fs)

	case *syntax.DoPhrase:
		return lowerDo(n, env, fs)

	case *syntax.DefinitionPhrase:
		return nil, source.NewException(n.Location(), "invalid definiendum: definitions are only allowed inside module/record/let bodies")
	}
	return nil, source.NewException(p.Location(), "not an expression")
}

func lowerUnary(n *syntax.UnaryPhrase, env Environ, fs *frameState) (Operation, error) {
	if n.Op.Kind == lexer.KEllipsis {
		return nil, source.NewException(n.Location(), "`...` is only valid inside a list or call-argument literal")
	}
	arg, err := lowerExpr(n.Arg, env, fs)
	if err != nil {
		return nil, err
	}
	var op UnOp
	switch n.Op.Kind {
	case lexer.KMinus:
		op = OpNeg
	case lexer.KPlus:
		op = OpPos
	case lexer.KNot:
		op = OpNot
	default:
		return nil, source.NewException(n.Location(), "unsupported unary operator")
	}
	return &UnaryExpr{Loc: n.Location(), Op: op, Arg: arg}, nil
}

func lowerBinary(n *syntax.BinaryPhrase, env Environ, fs *frameState) (Operation, error) {
	switch n.Op.Kind {
	case lexer.KDot:
		return lowerDot(n, env, fs)
	case lexer.KQuote:
		base, err := lowerExpr(n.Left, env, fs)
		if err != nil {
			return nil, err
		}
		idx, err := lowerExpr(n.Right, env, fs)
		if err != nil {
			return nil, err
		}
		return &AtExpr{Loc: n.Location(), Base: base, Index: idx}, nil
	}

	op, ok := binOpByToken[n.Op.Kind]
	if !ok {
		return nil, source.NewException(n.Location(), "unsupported binary operator")
	}
	left, err := lowerExpr(n.Left, env, fs)
	if err != nil {
		return nil, err
	}
	right, err := lowerExpr(n.Right, env, fs)
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Loc: n.Location(), Op: op, Left: left, Right: right}, nil
}

// lowerDot handles the `.` operator: `base.name` -> Dot_Expr,
// `base.[index]` -> At_Expr, anything else is an error.
func lowerDot(n *syntax.BinaryPhrase, env Environ, fs *frameState) (Operation, error) {
	base, err := lowerExpr(n.Left, env, fs)
	if err != nil {
		return nil, err
	}
	switch right := n.Right.(type) {
	case *syntax.IdentifierPhrase:
		return &DotExpr{Loc: n.Location(), Base: base, Field: value.Atom(right.Name())}, nil
	case *syntax.BracketPhrase:
		items := flattenCommas(right.Body)
		if len(items) != 1 {
			return nil, source.NewException(n.Location(), "invalid expression after `.`")
		}
		idx, err := lowerExpr(items[0], env, fs)
		if err != nil {
			return nil, err
		}
		return &AtExpr{Loc: n.Location(), Base: base, Index: idx}, nil
	}
	return nil, source.NewException(n.Location(), "invalid expression after `.`")
}

func lowerRange(n *syntax.RangePhrase, env Environ, fs *frameState) (Operation, error) {
	first, err := lowerExpr(n.First, env, fs)
	if err != nil {
		return nil, err
	}
	last, err := lowerExpr(n.Last, env, fs)
	if err != nil {
		return nil, err
	}
	var step Operation
	if n.Step != nil {
		step, err = lowerExpr(n.Step, env, fs)
		if err != nil {
			return nil, err
		}
	}
	return &RangeGen{Loc: n.Location(), First: first, Last: last, Step: step, HalfOpen: n.Op.Kind == lexer.KRangeOpen}, nil
}

// lowerParenExpr lowers `( commas )`: an empty body is the unit value
// null, a single item is a plain grouped expression, and more than one
// item is not a valid standalone expression (it is only meaningful as
// a call-argument list or lambda parameter list, both handled by their
// own call sites before reaching here).
func lowerParenExpr(n *syntax.ParenPhrase, env Environ, fs *frameState) (Operation, error) {
	items := flattenCommas(n.Body)
	switch len(items) {
	case 0:
		return NewConstant(n.Location(), value.TheNull), nil
	case 1:
		return lowerExpr(items[0], env, fs)
	default:
		return nil, source.NewException(n.Location(), "not an expression: comma-separated list used outside a call or parameter list")
	}
}

func lowerList(n *syntax.BracketPhrase, env Environ, fs *frameState) (Operation, error) {
	items := flattenCommas(n.Body)
	out := make([]ListItem, len(items))
	for i, it := range items {
		if u, ok := it.(*syntax.UnaryPhrase); ok && u.Op.Kind == lexer.KEllipsis {
			arg, err := lowerExpr(u.Arg, env, fs)
			if err != nil {
				return nil, err
			}
			out[i] = ListItem{Val: arg, Spread: true}
			continue
		}
		op, err := lowerExpr(it, env, fs)
		if err != nil {
			return nil, err
		}
		out[i] = ListItem{Val: op}
	}
	return &ListExpr{Loc: n.Location(), Items: out}, nil
}

// lowerCallArgs resolves a call's argument phrase into a list of
// operations: a ParenPhrase unpacks its comma items (an empty one
// yields no arguments), anything else is a single
// argument operation — matching "argv is the parenthesized list
// unpacked as operations, or a single operation if the argument phrase
// is not a paren-list."
func lowerCallArgs(p syntax.Phrase, env Environ, fs *frameState) ([]Operation, error) {
	paren, ok := p.(*syntax.ParenPhrase)
	if !ok {
		op, err := lowerExpr(p, env, fs)
		if err != nil {
			return nil, err
		}
		return []Operation{op}, nil
	}
	items := flattenCommas(paren.Body)
	args := make([]Operation, len(items))
	for i, it := range items {
		op, err := lowerExpr(it, env, fs)
		if err != nil {
			return nil, err
		}
		args[i] = op
	}
	return args, nil
}

func lowerCall(n *syntax.CallPhrase, env Environ, fs *frameState) (Operation, error) {
	calleeMeaning, err := lowerMeaning(n.Callee(), env, fs)
	if err != nil {
		return nil, err
	}
	args, err := lowerCallArgs(n.Argument(), env, fs)
	if err != nil {
		return nil, err
	}
	if mf, ok := calleeMeaning.(Metafunction); ok {
		return mf.Call(args, n.Location()), nil
	}
	callee, ok := calleeMeaning.(Operation)
	if !ok {
		return nil, source.NewException(n.Location(), "not callable")
	}
	return &CallExpr{Loc: n.Location(), Callee: callee, Args: args}, nil
}

// lowerMeaning lowers a callee phrase without forcing it to be an
// Operation, so a Metafunction (echo) can be recognized and dispatched
// at analyze time instead of becoming a Call_Expr.
func lowerMeaning(p syntax.Phrase, env Environ, fs *frameState) (Meaning, error) {
	if id, ok := p.(*syntax.IdentifierPhrase); ok {
		return env.Lookup(id.Name(), id.Location())
	}
	return lowerExpr(p, env, fs)
}

func lowerIf(n *syntax.IfPhrase, env Environ, fs *frameState) (Operation, error) {
	cond, err := lowerExpr(n.Cond, env, fs)
	if err != nil {
		return nil, err
	}
	then, err := lowerExpr(n.Then, env, fs)
	if err != nil {
		return nil, err
	}
	if n.Else == nil {
		return &IfExpr{Loc: n.Location(), Cond: cond, Then: then}, nil
	}
	els, err := lowerExpr(n.Else, env, fs)
	if err != nil {
		return nil, err
	}
	return &IfElseExpr{Loc: n.Location(), Cond: cond, Then: then, Else: els}, nil
}

// extractParamNames extracts identifier names from a lambda's
// parameter phrase: a single identifier, or a parenthesized (possibly
// empty) comma list of identifiers.
func extractParamNames(p syntax.Phrase) ([]string, error) {
	if id, ok := p.(*syntax.IdentifierPhrase); ok {
		return []string{id.Name()}, nil
	}
	paren, ok := p.(*syntax.ParenPhrase)
	if !ok {
		return nil, source.NewException(p.Location(), "not a parameter")
	}
	items := flattenCommas(paren.Body)
	names := make([]string, len(items))
	for i, it := range items {
		id, ok := it.(*syntax.IdentifierPhrase)
		if !ok {
			return nil, source.NewException(it.Location(), "not a parameter")
		}
		names[i] = id.Name()
	}
	return names, nil
}

func lowerLambda(n *syntax.LambdaPhrase, parent Environ, recursive bool) (Operation, error) {
	params, err := extractParamNames(n.Params)
	if err != nil {
		return nil, err
	}
	argEnv, fs := NewArgEnviron(parent, params, recursive)
	body, err := lowerExpr(n.Body, argEnv, fs)
	if err != nil {
		return nil, err
	}
	return &Lambda{
		Loc: n.Location(), NArgs: len(params), NSlots: fs.maxslots,
		Body: body, Nonlocals: argEnv.Nonlocals, Recursive: recursive,
	}, nil
}

// lowerLetBindings lowers a let parameter list's definitions,
// assigning slots [fs.nslots..+N) before analyzing any RHS (so mutual
// reference between bindings resolves), then analyzing every RHS under
// the new Let_Environ.
func lowerLetBindings(paren *syntax.ParenPhrase, parent Environ, fs *frameState) (*LetEnviron, int, []value.Atom, []Operation, error) {
	items := flattenCommas(paren.Body)
	names := make([]string, len(items))
	defs := make([]*syntax.DefinitionPhrase, len(items))
	for i, it := range items {
		def, ok := it.(*syntax.DefinitionPhrase)
		if !ok {
			return nil, 0, nil, nil, source.NewException(it.Location(), "malformed argument to `let`")
		}
		if def.Sep.Kind == lexer.KWalrus {
			return nil, 0, nil, nil, source.NewException(def.Location(), "malformed argument to `let`")
		}
		id, ok := def.Left.(*syntax.IdentifierPhrase)
		if !ok {
			return nil, 0, nil, nil, source.NewException(def.Location(), "invalid definiendum")
		}
		names[i] = id.Name()
		defs[i] = def
	}

	letEnv, saved := NewLetEnviron(parent, fs, names)
	rhs := make([]Operation, len(defs))
	atoms := make([]value.Atom, len(defs))
	for i, def := range defs {
		atoms[i] = value.Atom(names[i])
		op, err := lowerExpr(def.Right, letEnv, fs)
		if err != nil {
			return nil, 0, nil, nil, err
		}
		rhs[i] = op
	}
	return letEnv, saved, atoms, rhs, nil
}

func lowerLet(n *syntax.LetPhrase, env Environ, fs *frameState) (Operation, error) {
	paren, ok := n.Params.(*syntax.ParenPhrase)
	if !ok {
		return nil, source.NewException(n.Location(), "malformed argument to `let`")
	}
	letEnv, saved, _, rhs, err := lowerLetBindings(paren, env, fs)
	if err != nil {
		return nil, err
	}
	body, err := lowerExpr(n.Body, letEnv, fs)
	if err != nil {
		return nil, err
	}
	letEnv.Release(saved)
	return &LetExpr{Loc: n.Location(), FirstSlot: letEnv.FirstSlot(), RHS: rhs, Body: body}, nil
}

// lowerDo lowers a `do { ... }` block: each `var name = expr` declares
// a fresh mutable slot visible to the rest of the block, each
// `name := expr` rewrites an already-declared slot, and everything
// else is sequenced as an action except the final item, which becomes
// the block's result.
func lowerDo(n *syntax.DoPhrase, parent Environ, fs *frameState) (Operation, error) {
	items := flattenSemicolons(n.Block.Body)
	doEnv := NewDoEnviron(parent, fs)

	var actions []Operation
	var result Operation = NewConstant(n.Location(), value.TheNull)

	for i, item := range items {
		isLast := i == len(items)-1
		switch it := item.(type) {
		case *syntax.VarDefPhrase:
			init, err := lowerExpr(it.Init, doEnv, fs)
			if err != nil {
				return nil, err
			}
			slot := doEnv.Declare(it.Name.Text())
			actions = append(actions, &VarDef{Loc: it.Location(), Slot: slot, Init: init})
			if isLast {
				result = NewConstant(it.Location(), value.TheNull)
			}
		case *syntax.DefinitionPhrase:
			if it.Sep.Kind != lexer.KWalrus {
				return nil, source.NewException(it.Location(), "invalid definiendum inside `do` block")
			}
			id, ok := it.Left.(*syntax.IdentifierPhrase)
			if !ok {
				return nil, source.NewException(it.Location(), "invalid definiendum")
			}
			slot, ok := doEnv.Slot(id.Name())
			if !ok {
				return nil, source.NewException(it.Location(), "not defined: "+id.Name())
			}
			val, err := lowerExpr(it.Right, doEnv, fs)
			if err != nil {
				return nil, err
			}
			actions = append(actions, &Assign{Loc: it.Location(), Slot: slot, Value: val})
			if isLast {
				result = NewConstant(it.Location(), value.TheNull)
			}
		default:
			op, err := lowerExpr(item, doEnv, fs)
			if err != nil {
				return nil, err
			}
			if isLast {
				result = op
			} else {
				actions = append(actions, op)
			}
		}
	}
	return &DoExpr{Loc: n.Location(), Actions: actions, Result: result}, nil
}

func lowerFor(n *syntax.ForPhrase, env Environ, fs *frameState) (Operation, error) {
	paren, ok := n.IterDef.(*syntax.ParenPhrase)
	if !ok {
		return nil, source.NewException(n.Location(), "malformed argument to `for`")
	}
	items := flattenCommas(paren.Body)
	if len(items) != 1 {
		return nil, source.NewException(n.Location(), "malformed argument to `for`")
	}
	def, ok := items[0].(*syntax.DefinitionPhrase)
	if !ok {
		return nil, source.NewException(items[0].Location(), "malformed argument to `for`")
	}
	id, ok := def.Left.(*syntax.IdentifierPhrase)
	if !ok {
		return nil, source.NewException(def.Location(), "invalid definiendum")
	}
	iter, err := lowerExpr(def.Right, env, fs)
	if err != nil {
		return nil, err
	}
	forEnv, saved := NewForEnviron(env, fs, id.Name())
	body, err := lowerExpr(n.Body, forEnv, fs)
	if err != nil {
		return nil, err
	}
	forEnv.Release(saved)
	return &ForExpr{Loc: n.Location(), Slot: forEnv.Slot(), Iter: iter, Body: body}, nil
}
