package syntax

import (
	"fmt"

	"curv/lexer"
	"curv/source"
)

// Parser is a hand-written recursive-descent parser with one token of
// lookahead, mirroring MOO's current/peek two-token buffer.
// It raises at the first unexpected token (panic/recover, caught at
// Parse's boundary) rather than threading an error return through
// every one of the dozen-plus grammar-tier methods below — the same
// fail-fast, no-recovery parsing policy.
type Parser struct {
	sc      *lexer.Scanner
	current lexer.Token
	peek    lexer.Token
}

func newParser(script *source.Script) *Parser {
	p := &Parser{sc: lexer.NewScanner(script)}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.current = p.peek
	p.peek = p.sc.Next()
}

func (p *Parser) at(k lexer.Kind) bool {
	return p.current.Kind == k
}

// expect consumes the current token if it has kind k, else raises.
func (p *Parser) expect(k lexer.Kind) lexer.Token {
	if p.current.Kind != k {
		p.fail(fmt.Sprintf("expected %s, got %s", k, p.current.Kind))
	}
	tok := p.current
	p.advance()
	return tok
}

func (p *Parser) fail(message string) {
	panic(source.NewException(p.current.Location(), message))
}

// Parse parses a whole script into a ProgramPhrase. A single parse
// produces either a complete tree or an error; there is no partial
// result on failure.
func Parse(script *source.Script) (prog *ProgramPhrase, err error) {
	defer func() {
		if r := recover(); r != nil {
			if exc, ok := r.(*source.Exception); ok {
				err = exc
				return
			}
			panic(r)
		}
	}()
	p := newParser(script)
	body := p.parseCommas()
	eof := p.expect(lexer.KEOF)
	prog = &ProgramPhrase{Body: body, EOF: eof}
	return prog, nil
}

// ParseItem parses a single item-level phrase from a script, without
// requiring the whole input to be consumed. Used by REPL-style callers
// that evaluate one expression at a time.
func ParseItem(script *source.Script) (item Phrase, err error) {
	defer func() {
		if r := recover(); r != nil {
			if exc, ok := r.(*source.Exception); ok {
				err = exc
				return
			}
			panic(r)
		}
	}()
	p := newParser(script)
	item = p.parseItem()
	p.expect(lexer.KEOF)
	return item, nil
}

// terminatesCommas reports whether the current token ends a `commas`
// production (EOF, `)`, `]`, or `}`).
func (p *Parser) terminatesCommas() bool {
	switch p.current.Kind {
	case lexer.KEOF, lexer.KRParen, lexer.KRBracket, lexer.KRBrace:
		return true
	}
	return false
}

// terminatesSemicolons additionally stops at `,`.
func (p *Parser) terminatesSemicolons() bool {
	return p.terminatesCommas() || p.at(lexer.KComma)
}

// parseCommas: ε | item | item (, item)* ,?
func (p *Parser) parseCommas() Phrase {
	if p.terminatesCommas() {
		return &EmptyPhrase{Loc: p.current.Location()}
	}
	first := p.parseItem()
	if !p.at(lexer.KComma) {
		return first
	}
	items := []Phrase{first}
	var commas []lexer.Token
	start := first.Location()
	for p.at(lexer.KComma) {
		commas = append(commas, p.current)
		p.advance()
		if p.terminatesCommas() {
			break
		}
		items = append(items, p.parseItem())
	}
	loc := start
	if n := len(items); n > 0 {
		loc = source.Range(start, items[n-1].Location())
	}
	return &CommaPhrase{Items: items, Commas: commas, Loc: loc}
}

// parseSemicolons: item (; item)* ;?
func (p *Parser) parseSemicolons() Phrase {
	if p.terminatesSemicolons() {
		return &EmptyPhrase{Loc: p.current.Location()}
	}
	first := p.parseItem()
	if !p.at(lexer.KSemicolon) {
		return first
	}
	items := []Phrase{first}
	var semis []lexer.Token
	start := first.Location()
	for p.at(lexer.KSemicolon) {
		semis = append(semis, p.current)
		p.advance()
		if p.terminatesSemicolons() {
			break
		}
		items = append(items, p.parseItem())
	}
	loc := start
	if n := len(items); n > 0 {
		loc = source.Range(start, items[n-1].Location())
	}
	return &SemicolonPhrase{Items: items, Semis: semis, Loc: loc}
}

// startsPrimary reports whether the current token can begin a primary
// phrase; used to recognize juxtaposition (application).
func (p *Parser) startsPrimary() bool {
	switch p.current.Kind {
	case lexer.KNumeral, lexer.KIdent, lexer.KString, lexer.KLet,
		lexer.KLParen, lexer.KLBracket, lexer.KLBrace:
		return true
	}
	return false
}

// item: disjunction | ... item | postfix = item | postfix : item |
//       primary -> item | disjunction << item |
//       if primary item (else item)? | for paren item
func (p *Parser) parseItem() Phrase {
	switch p.current.Kind {
	case lexer.KEllipsis:
		op := p.current
		p.advance()
		return &UnaryPhrase{Op: op, Arg: p.parseItem()}
	case lexer.KIf:
		return p.parseIf()
	case lexer.KFor:
		return p.parseFor()
	case lexer.KDo:
		return p.parseDo()
	case lexer.KVar:
		return p.parseVarDef()
	}

	left := p.parseDisjunction()

	switch p.current.Kind {
	case lexer.KAssign, lexer.KColon, lexer.KWalrus:
		sep := p.current
		p.advance()
		return &DefinitionPhrase{Left: left, Sep: sep, Right: p.parseItem()}
	case lexer.KArrow:
		arrow := p.current
		p.advance()
		return &LambdaPhrase{Params: left, Arrow: arrow, Body: p.parseItem()}
	case lexer.KLShift:
		op := p.current
		p.advance()
		return &CallPhrase{Left: left, Right: p.parseItem(), Op: op, Kind: LeftCallKind}
	}
	return left
}

func (p *Parser) parseIf() Phrase {
	ifTok := p.expect(lexer.KIf)
	cond := p.parsePrimary()
	then := p.parseItem()
	var elseExpr Phrase
	if p.at(lexer.KElse) {
		p.advance()
		elseExpr = p.parseItem()
	}
	return &IfPhrase{If: ifTok, Cond: cond, Then: then, Else: elseExpr}
}

func (p *Parser) parseDo() Phrase {
	doTok := p.expect(lexer.KDo)
	lb := p.expect(lexer.KLBrace)
	body := p.parseSemicolons()
	rb := p.expect(lexer.KRBrace)
	return &DoPhrase{Do: doTok, Block: &BracePhrase{LBrace: lb, Body: body, RBrace: rb}}
}

func (p *Parser) parseVarDef() Phrase {
	varTok := p.expect(lexer.KVar)
	name := p.expect(lexer.KIdent)
	eq := p.expect(lexer.KAssign)
	init := p.parseItem()
	return &VarDefPhrase{Var: varTok, Name: name, Eq: eq, Init: init}
}

func (p *Parser) parseFor() Phrase {
	forTok := p.expect(lexer.KFor)
	iterDef := p.parseParen()
	body := p.parseItem()
	return &ForPhrase{For: forTok, IterDef: iterDef, Body: body}
}

// disjunction: conjunction ((|| | >>) conjunction)*
// `x >> f` is right call: Left/Right stay in textual order (x, f); the
// analyzer resolves application order via CallPhrase.Callee/Argument.
func (p *Parser) parseDisjunction() Phrase {
	left := p.parseConjunction()
	for p.current.Kind == lexer.KOr || p.current.Kind == lexer.KRShift {
		op := p.current
		p.advance()
		right := p.parseConjunction()
		if op.Kind == lexer.KRShift {
			left = &CallPhrase{Left: left, Right: right, Op: op, Kind: RightCallKind}
		} else {
			left = &BinaryPhrase{Left: left, Op: op, Right: right}
		}
	}
	return left
}

// conjunction: relation (&& relation)*
func (p *Parser) parseConjunction() Phrase {
	left := p.parseRelation()
	for p.at(lexer.KAnd) {
		op := p.current
		p.advance()
		left = &BinaryPhrase{Left: left, Op: op, Right: p.parseRelation()}
	}
	return left
}

// relation: range ((==|!=|<|<=|>|>=) range)?
func (p *Parser) parseRelation() Phrase {
	left := p.parseRange()
	switch p.current.Kind {
	case lexer.KEq, lexer.KNe, lexer.KLt, lexer.KLe, lexer.KGt, lexer.KGe:
		op := p.current
		p.advance()
		return &BinaryPhrase{Left: left, Op: op, Right: p.parseRange()}
	}
	return left
}

// range: sum ((.. | ..<) sum (by sum)?)?
func (p *Parser) parseRange() Phrase {
	first := p.parseSum()
	if p.current.Kind != lexer.KRange && p.current.Kind != lexer.KRangeOpen {
		return first
	}
	op := p.current
	p.advance()
	last := p.parseSum()
	var by lexer.Token
	var step Phrase
	if p.at(lexer.KBy) {
		by = p.current
		p.advance()
		step = p.parseSum()
	}
	return &RangePhrase{First: first, Op: op, Last: last, By: by, Step: step}
}

// sum: product ((+|-) product)*
func (p *Parser) parseSum() Phrase {
	left := p.parseProduct()
	for p.current.Kind == lexer.KPlus || p.current.Kind == lexer.KMinus {
		op := p.current
		p.advance()
		left = &BinaryPhrase{Left: left, Op: op, Right: p.parseProduct()}
	}
	return left
}

// product: unary ((*|/) unary)*
func (p *Parser) parseProduct() Phrase {
	left := p.parseUnary()
	for p.current.Kind == lexer.KStar || p.current.Kind == lexer.KSlash {
		op := p.current
		p.advance()
		left = &BinaryPhrase{Left: left, Op: op, Right: p.parseUnary()}
	}
	return left
}

// unary: postfix | (+|-|!) unary
func (p *Parser) parseUnary() Phrase {
	switch p.current.Kind {
	case lexer.KPlus, lexer.KMinus, lexer.KNot:
		op := p.current
		p.advance()
		return &UnaryPhrase{Op: op, Arg: p.parseUnary()}
	}
	return p.parsePostfix()
}

// postfix: primary (primary | . primary | ' primary | ^ unary)*
func (p *Parser) parsePostfix() Phrase {
	acc := p.parsePrimary()
	for {
		switch {
		case p.at(lexer.KDot):
			op := p.current
			p.advance()
			acc = &BinaryPhrase{Left: acc, Op: op, Right: p.parsePrimary()}
		case p.at(lexer.KQuote):
			op := p.current
			p.advance()
			acc = &BinaryPhrase{Left: acc, Op: op, Right: p.parsePrimary()}
		case p.at(lexer.KCaret):
			op := p.current
			p.advance()
			acc = &BinaryPhrase{Left: acc, Op: op, Right: p.parseUnary()}
		case p.startsPrimary():
			acc = &CallPhrase{Left: acc, Right: p.parsePrimary(), Kind: Juxtaposition}
		default:
			return acc
		}
	}
}

// primary: numeral | identifier | string | let paren item |
//          ( commas ) | [ commas ] | { semicolons }
func (p *Parser) parsePrimary() Phrase {
	switch p.current.Kind {
	case lexer.KNumeral:
		tok := p.current
		p.advance()
		return &NumeralPhrase{Tok: tok}
	case lexer.KString:
		tok := p.current
		p.advance()
		return &StringPhrase{Tok: tok}
	case lexer.KIdent:
		tok := p.current
		p.advance()
		return &IdentifierPhrase{Tok: tok}
	case lexer.KLet:
		return p.parseLet()
	case lexer.KLParen:
		return p.parseParen()
	case lexer.KLBracket:
		lb := p.current
		p.advance()
		body := p.parseCommas()
		rb := p.expect(lexer.KRBracket)
		return &BracketPhrase{LBracket: lb, Body: body, RBracket: rb}
	case lexer.KLBrace:
		lb := p.current
		p.advance()
		body := p.parseSemicolons()
		rb := p.expect(lexer.KRBrace)
		return &BracePhrase{LBrace: lb, Body: body, RBrace: rb}
	}
	p.fail(fmt.Sprintf("unexpected token: %s", p.current.Kind))
	panic("unreachable")
}

func (p *Parser) parseParen() Phrase {
	lp := p.expect(lexer.KLParen)
	body := p.parseCommas()
	rp := p.expect(lexer.KRParen)
	return &ParenPhrase{LParen: lp, Body: body, RParen: rp}
}

func (p *Parser) parseLet() Phrase {
	letTok := p.expect(lexer.KLet)
	params := p.parseParen()
	body := p.parseItem()
	return &LetPhrase{Let: letTok, Params: params, Body: body}
}
