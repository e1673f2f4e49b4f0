package runtime

import (
	"fmt"
	"math"
	"strings"

	"curv/analyzer"
	"curv/source"
	"curv/system"
	"curv/value"
)

// Evaluator walks an analyzer.Operation graph against a Frame stack,
// generalizing MOO's Evaluator.Eval(node, ctx) dispatch switch
// (eval/eval.go) from a threaded Result sum type to Go panic/recover
// over *source.Exception, matching the error-propagation style already
// used by lexer/syntax/analyzer. MaxTicks bounds total evaluation steps
// the way MOO's TaskContext bounds ticks, guarding against a
// runaway non-terminating script.
type Evaluator struct {
	MaxTicks int
	ticks    int
}

func NewEvaluator() *Evaluator {
	return &Evaluator{MaxTicks: 50_000_000}
}

// Run evaluates a whole analyzed program (always a Module_Expr, per
// the "top-level program as module body" decision) against a fresh
// root frame backed by sys. A program with no definitions yields the
// value of its last element; a program with definitions yields the
// module they form.
func (e *Evaluator) Run(op analyzer.Operation, sys system.System) value.Value {
	root := NewFrame(0, nil, nil, nil, "", source.NoLocation, sys)
	result := e.Eval(op, root)
	if m, ok := result.(*value.Module); ok && len(m.Names) == 0 && len(m.Elements) > 0 {
		return m.Elements[len(m.Elements)-1]
	}
	return result
}

// RunSafe evaluates a program and recovers any *source.Exception
// panic raised during evaluation into a plain error, for callers
// (cmd/curv, the `file` builtin) that need a normal Go error return
// instead of propagating the panic further.
func (e *Evaluator) RunSafe(op analyzer.Operation, sys system.System) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if exc, ok := r.(*source.Exception); ok {
				err = exc
				return
			}
			panic(r)
		}
	}()
	result = e.Run(op, sys)
	return result, nil
}

func (e *Evaluator) tick(loc source.Location) {
	e.ticks++
	if e.MaxTicks > 0 && e.ticks > e.MaxTicks {
		panic(source.NewException(loc, "evaluation exceeded its tick limit"))
	}
}

// Eval evaluates one Operation node against frame f.
func (e *Evaluator) Eval(op analyzer.Operation, f *Frame) value.Value {
	e.tick(op.Location())
	switch n := op.(type) {
	case *analyzer.ConstantMeaning:
		return n.Value()

	case *analyzer.ArgRef:
		return f.Slots[n.Slot]

	case *analyzer.LetRef:
		return e.forceLetSlot(f, n.Slot, n.Loc)

	case *analyzer.ModuleRef:
		// A module field lives in the module's own slot array: f.Slots in
		// a module or record frame, f.ModuleSlots inside a call of a
		// recursive module function.
		if f.ModuleSlots == nil {
			return e.forceLetSlot(f, n.Slot, n.Loc)
		}
		mf := &Frame{Slots: f.ModuleSlots, ModuleSlots: f.ModuleSlots, Sys: f.Sys, Parent: f, Loc: n.Loc, Call: "<module>"}
		return e.forceThunkValue(f.ModuleSlots, n.Slot, mf, n.Loc)

	case *analyzer.NonlocalRef:
		return f.Nonlocals[n.Slot]

	case *analyzer.NonlocalFunctionRef:
		return materializeFunctionSlot(f.ModuleSlots, n.Slot, n.Loc)

	case *analyzer.BinaryExpr:
		return e.evalBinary(n, f)

	case *analyzer.UnaryExpr:
		return e.evalUnary(n, f)

	case *analyzer.IfExpr:
		if bool(e.asBool(e.Eval(n.Cond, f), n.Loc)) {
			return e.Eval(n.Then, f)
		}
		return value.TheNull

	case *analyzer.IfElseExpr:
		if bool(e.asBool(e.Eval(n.Cond, f), n.Loc)) {
			return e.Eval(n.Then, f)
		}
		return e.Eval(n.Else, f)

	case *analyzer.LetExpr:
		for i, rhs := range n.RHS {
			f.Slots[n.FirstSlot+i] = value.NewThunk(rhs)
		}
		return e.Eval(n.Body, f)

	case *analyzer.ForExpr:
		return e.evalFor(n, f)

	case *analyzer.RangeGen:
		return e.evalRange(n, f)

	case *analyzer.ListExpr:
		return e.evalList(n, f)

	case *analyzer.RecordExpr:
		return e.evalRecord(n, f)

	case *analyzer.ModuleExpr:
		return e.evalModule(n, f)

	case *analyzer.CallExpr:
		return e.evalCall(n, f)

	case *analyzer.DotExpr:
		return e.evalDot(n, f)

	case *analyzer.AtExpr:
		return e.evalAt(n, f)

	case *analyzer.DoExpr:
		for _, action := range n.Actions {
			e.Eval(action, f)
		}
		return e.Eval(n.Result, f)

	case *analyzer.VarDef:
		f.Slots[n.Slot] = e.Eval(n.Init, f)
		return value.TheNull

	case *analyzer.Assign:
		f.Slots[n.Slot] = e.Eval(n.Value, f)
		return value.TheNull

	case *analyzer.SeqExpr:
		var last value.Value = value.TheNull
		for _, it := range n.Items {
			last = e.Eval(it, f)
		}
		return last

	case *analyzer.Lambda:
		return e.evalLambda(n, f)

	case *analyzer.EchoAction:
		return e.evalEcho(n, f)
	}
	panic(source.NewException(op.Location(), fmt.Sprintf("internal error: unhandled operation %T", op)))
}

// Exec evaluates op for effect, discarding its value; used wherever an
// Operation appears in action position (a For_Expr body) so the intent
// at the call site is unambiguous even though Eval already returns a
// usable value.
func (e *Evaluator) Exec(op analyzer.Operation, f *Frame) {
	e.Eval(op, f)
}

// --- variable/slot machinery ---

// forceLetSlot forces f.Slots[slot] in place if it holds a Thunk,
// following the Unforced -> Forcing -> Forced lifecycle; a thunk
// re-entered while already Forcing raises "illegal recursive
// reference" (Let_Ref and Module_Ref share this machinery because,
// from the evaluator's point of view, a module body's own frame is
// just another slot array being read from the inside).
func (e *Evaluator) forceLetSlot(f *Frame, slot int, loc source.Location) value.Value {
	return e.forceThunkValue(f.Slots, slot, f, loc)
}

func (e *Evaluator) forceThunkValue(slots []value.Value, slot int, evalFrame *Frame, loc source.Location) value.Value {
	cur := slots[slot]
	if cur == nil {
		panic(source.NewException(loc, "field used before its own definition"))
	}
	th, ok := cur.(*value.Thunk)
	if !ok {
		return cur
	}
	switch th.State {
	case value.Forcing:
		panic(source.NewException(loc, "illegal recursive reference"))
	case value.Forced:
		return slots[slot]
	}
	th.State = value.Forcing
	val := e.Eval(th.Op.(analyzer.Operation), evalFrame)
	th.State = value.Forced
	slots[slot] = val
	return val
}

// materializeFunctionSlot implements the Module::get projection for a
// recursive module-field function: the slot holds a bare value.Lambda
// (never a Thunk — a function-valued field is produced eagerly at
// module-construction time, only its eventual calls are lazy), and
// every read re-closes it over moduleSlots fresh, so sibling recursive
// fields can call each other without the value graph containing a
// reference cycle.
func materializeFunctionSlot(moduleSlots []value.Value, slot int, loc source.Location) value.Value {
	lam, ok := moduleSlots[slot].(*value.Lambda)
	if !ok {
		panic(source.NewException(loc, "internal error: recursive slot is not a lambda"))
	}
	return &value.Closure{Template: lam.Op, ModuleSlots: moduleSlots, FnArity: lam.FnArity, FnName: lam.FnName}
}

// --- arithmetic / relational / logical ---

func (e *Evaluator) evalBinary(n *analyzer.BinaryExpr, f *Frame) value.Value {
	switch n.Op {
	case analyzer.OpAnd:
		if !bool(e.asBool(e.Eval(n.Left, f), n.Loc)) {
			return value.False
		}
		return e.asBool(e.Eval(n.Right, f), n.Loc)
	case analyzer.OpOr:
		if bool(e.asBool(e.Eval(n.Left, f), n.Loc)) {
			return value.True
		}
		return e.asBool(e.Eval(n.Right, f), n.Loc)
	}

	left := e.Eval(n.Left, f)
	right := e.Eval(n.Right, f)

	switch n.Op {
	case analyzer.OpEq:
		return value.Bool(left.Equal(right))
	case analyzer.OpNe:
		return value.Bool(!left.Equal(right))
	}

	lf := float64(e.asNum(left, n.Loc))
	rf := float64(e.asNum(right, n.Loc))
	switch n.Op {
	case analyzer.OpAdd:
		return value.Num(lf + rf)
	case analyzer.OpSub:
		return value.Num(lf - rf)
	case analyzer.OpMul:
		return value.Num(lf * rf)
	case analyzer.OpDiv:
		return value.Num(lf / rf)
	case analyzer.OpPow:
		return value.Num(math.Pow(lf, rf))
	case analyzer.OpLt:
		return value.Bool(lf < rf)
	case analyzer.OpLe:
		return value.Bool(lf <= rf)
	case analyzer.OpGt:
		return value.Bool(lf > rf)
	case analyzer.OpGe:
		return value.Bool(lf >= rf)
	}
	panic(source.NewException(n.Loc, "internal error: unhandled binary operator"))
}

func (e *Evaluator) evalUnary(n *analyzer.UnaryExpr, f *Frame) value.Value {
	v := e.Eval(n.Arg, f)
	switch n.Op {
	case analyzer.OpNeg:
		return value.Num(-float64(e.asNum(v, n.Loc)))
	case analyzer.OpPos:
		return value.Num(float64(e.asNum(v, n.Loc)))
	case analyzer.OpNot:
		return value.Bool(!e.asBool(v, n.Loc))
	}
	panic(source.NewException(n.Loc, "internal error: unhandled unary operator"))
}

func (e *Evaluator) asNum(v value.Value, loc source.Location) value.Num {
	n, ok := v.(value.Num)
	if !ok {
		panic(source.NewException(loc, "expected a number, got a "+v.Kind().String()))
	}
	return n
}

func (e *Evaluator) asBool(v value.Value, loc source.Location) value.Bool {
	b, ok := v.(value.Bool)
	if !ok {
		panic(source.NewException(loc, "expected a boolean, got a "+v.Kind().String()))
	}
	return b
}

func (e *Evaluator) asList(v value.Value, loc source.Location) value.List {
	l, ok := v.(value.List)
	if !ok {
		panic(source.NewException(loc, "expected a list, got a "+v.Kind().String()))
	}
	return l
}

// --- control flow / aggregates ---

func (e *Evaluator) evalFor(n *analyzer.ForExpr, f *Frame) value.Value {
	list := e.asList(e.Eval(n.Iter, f), n.Loc)
	for _, elem := range list.Elements() {
		f.Slots[n.Slot] = elem
		e.Exec(n.Body, f)
	}
	return value.TheNull
}

func (e *Evaluator) evalRange(n *analyzer.RangeGen, f *Frame) value.Value {
	first := float64(e.asNum(e.Eval(n.First, f), n.Loc))
	last := float64(e.asNum(e.Eval(n.Last, f), n.Loc))
	step := 1.0
	if n.Step != nil {
		step = float64(e.asNum(e.Eval(n.Step, f), n.Loc))
	}
	if step == 0 {
		panic(source.NewException(n.Loc, "range step must not be zero"))
	}
	elems := []value.Value{}
	if step > 0 {
		for x := first; boundHolds(x, last, n.HalfOpen, true); x += step {
			elems = append(elems, value.Num(x))
		}
	} else {
		for x := first; boundHolds(x, last, n.HalfOpen, false); x += step {
			elems = append(elems, value.Num(x))
		}
	}
	return value.NewList(elems)
}

func boundHolds(x, last float64, halfOpen, ascending bool) bool {
	if ascending {
		if halfOpen {
			return x < last
		}
		return x <= last
	}
	if halfOpen {
		return x > last
	}
	return x >= last
}

func (e *Evaluator) evalList(n *analyzer.ListExpr, f *Frame) value.Value {
	elems := make([]value.Value, 0, len(n.Items))
	for _, it := range n.Items {
		v := e.Eval(it.Val, f)
		// A range element splices its numbers into the list, as `...` does.
		if _, isRange := it.Val.(*analyzer.RangeGen); it.Spread || isRange {
			elems = append(elems, e.asList(v, n.Loc).Elements()...)
			continue
		}
		elems = append(elems, v)
	}
	return value.NewList(elems)
}

// evalRecord evaluates field initializers strictly left to right in a
// scratch frame, in contrast to evalModule's lazily-thunked fields; a
// field RHS that reads a sibling slot not yet written (a forward
// reference) is reported rather than silently reading a zero value.
func (e *Evaluator) evalRecord(n *analyzer.RecordExpr, f *Frame) value.Value {
	rf := NewFrame(n.NSlots, nil, nil, f, "<record>", n.Loc, f.Sys)
	rf.ModuleSlots = rf.Slots
	r := value.EmptyRecord()
	for i, op := range n.RHS {
		v := e.Eval(op, rf)
		rf.Slots[i] = v
		r = r.Set(n.Names[i], v)
	}
	return r
}

// evalModule evaluates a module body: named fields are installed as
// lazy Thunks (or bare Lambdas for recursive function fields) into a
// frame that is self-referential in Module_Slots, so a Nonlocal_Function_Ref
// anywhere in this module's own field/element operations resolves the
// same way whether it is evaluated now (module construction) or later
// (a closure call after the module has already been returned).
func (e *Evaluator) evalModule(n *analyzer.ModuleExpr, f *Frame) value.Value {
	mf := NewFrame(n.NSlots, nil, nil, f, "<module>", n.Loc, f.Sys)
	mf.ModuleSlots = mf.Slots

	index := make(map[value.Atom]int, len(n.Names))
	for i, name := range n.Names {
		index[name] = i
		if n.RecursiveSlots[i] {
			lam := n.RHS[i].(*analyzer.Lambda)
			mf.Slots[i] = &value.Lambda{Op: lam, FnArity: lam.NArgs, FnName: string(name)}
		} else {
			mf.Slots[i] = value.NewThunk(n.RHS[i])
		}
	}

	m := value.NewModule(n.Names, index, mf.Slots, nil)
	elements := make([]value.Value, len(n.Elements))
	for i, el := range n.Elements {
		elements[i] = e.Eval(el, mf)
	}
	m.Elements = elements
	return m
}

// --- calls and field/index access ---

func (e *Evaluator) evalLambda(n *analyzer.Lambda, f *Frame) value.Value {
	if n.Recursive {
		return &value.Lambda{Op: n, FnArity: n.NArgs, FnName: n.Name}
	}
	nonlocals := make([]value.Value, len(n.Nonlocals))
	for i, capExpr := range n.Nonlocals {
		nonlocals[i] = e.Eval(capExpr, f)
	}
	return &value.Closure{Template: n, Nonlocals: nonlocals, ModuleSlots: f.ModuleSlots, FnArity: n.NArgs, FnName: n.Name}
}

func (e *Evaluator) evalCall(n *analyzer.CallExpr, f *Frame) value.Value {
	calleeVal := e.Eval(n.Callee, f)
	fn, ok := calleeVal.(value.Fn)
	if !ok {
		panic(source.NewException(n.Loc, "not callable: a "+calleeVal.Kind().String()))
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.Eval(a, f)
	}
	return e.Call(fn, args, n.Loc, f)
}

// Call invokes fn with already-evaluated args, the way MOO's
// BuiltinFunc/verb-call protocol dispatches on the callee's concrete
// kind. Builtins run directly; a Closure gets a fresh frame sized to
// its template's nslots, arguments copied into the low slots, and its
// captured Nonlocals/Module_Slots carried over for the body to read.
func (e *Evaluator) Call(fn value.Fn, args []value.Value, loc source.Location, caller *Frame) value.Value {
	if fn.Arity() >= 0 && len(args) != fn.Arity() {
		panic(source.NewException(loc, fmt.Sprintf("%s: expected %d argument(s), got %d", fn.Name(), fn.Arity(), len(args))))
	}
	switch callee := fn.(type) {
	case *value.Builtin:
		return callee.Call(args, loc)
	case *value.Closure:
		lam := callee.Template.(*analyzer.Lambda)
		nf := NewFrame(lam.NSlots, callee.Nonlocals, callee.ModuleSlots, caller, fn.Name(), loc, caller.Sys)
		copy(nf.Slots, args)
		return e.evalInFrame(lam.Body, nf)
	default:
		panic(source.NewException(loc, "not callable"))
	}
}

// evalInFrame evaluates a closure body in its freshly pushed call
// frame. The first recover to see a given *source.Exception (the
// innermost active Call, since recovers run from the inside out) is
// also the one whose Frame.Backtrace reaches every frame above it, so
// it attaches the full active call chain once; outer evalInFrame
// calls further up see Trace already set and leave it alone before
// re-panicking to keep unwinding.
func (e *Evaluator) evalInFrame(body analyzer.Operation, nf *Frame) value.Value {
	defer func() {
		if r := recover(); r != nil {
			if exc, ok := r.(*source.Exception); ok && exc.Trace == nil {
				exc.Trace = nf.Backtrace()
			}
			panic(r)
		}
	}()
	return e.Eval(body, nf)
}

func (e *Evaluator) evalDot(n *analyzer.DotExpr, f *Frame) value.Value {
	base := e.Eval(n.Base, f)
	switch b := base.(type) {
	case *value.Module:
		return e.getModuleField(b, n.Field, n.Loc, f)
	case value.Record:
		v, ok := b.Get(n.Field)
		if !ok {
			panic(source.NewException(n.Loc, "no such field: "+string(n.Field)))
		}
		return v
	case value.Shape:
		v, ok := b.Get(n.Field)
		if !ok {
			panic(source.NewException(n.Loc, "no such field: "+string(n.Field)))
		}
		return v
	}
	panic(source.NewException(n.Loc, "cannot access field ."+string(n.Field)+" of a "+base.Kind().String()))
}

// getModuleField implements Module::get for a module obtained as a
// plain first-class value (not the live frame currently evaluating
// it): it forces a lazy field through a synthetic frame whose Slots
// and Module_Slots both alias the module's own slot array, matching
// the self-referential convention evalModule establishes at
// construction time.
func (e *Evaluator) getModuleField(m *value.Module, name value.Atom, loc source.Location, f *Frame) value.Value {
	slot, ok := m.Index[name]
	if !ok {
		panic(source.NewException(loc, "no such field: "+string(name)))
	}
	if lam, ok := m.Slots[slot].(*value.Lambda); ok {
		return &value.Closure{Template: lam.Op, ModuleSlots: m.Slots, FnArity: lam.FnArity, FnName: lam.FnName}
	}
	tf := &Frame{Slots: m.Slots, ModuleSlots: m.Slots, Sys: f.Sys, Parent: f, Loc: loc, Call: f.Call}
	return e.forceThunkValue(m.Slots, slot, tf, loc)
}

func (e *Evaluator) evalAt(n *analyzer.AtExpr, f *Frame) value.Value {
	base := e.Eval(n.Base, f)
	idx := e.Eval(n.Index, f)

	if s, ok := idx.(value.Str); ok {
		switch b := base.(type) {
		case *value.Module:
			return e.getModuleField(b, value.Atom(s.Text()), n.Loc, f)
		case value.Record:
			v, ok := b.Get(value.Atom(s.Text()))
			if !ok {
				panic(source.NewException(n.Loc, "no such field: "+s.Text()))
			}
			return v
		}
	}

	list := e.asList(base, n.Loc)
	i := int(e.asNum(idx, n.Loc))
	if i < 0 || i >= list.Len() {
		panic(source.NewException(n.Loc, fmt.Sprintf("list index %d out of range [0,%d)", i, list.Len())))
	}
	return list.Get(i)
}

func (e *Evaluator) evalEcho(n *analyzer.EchoAction, f *Frame) value.Value {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = e.Eval(a, f).String()
	}
	fmt.Fprintf(f.Sys.Console(), "ECHO: %s\n", strings.Join(parts, ","))
	return value.TheNull
}
