package value

import "curv/source"

// Fn is the common interface for anything callable: a Builtin or a
// Closure. The evaluator dispatches on this interface rather than
// switching on concrete types, generalizing MOO's
// BuiltinFunc-by-name dispatch (builtins/registry.go) to cover
// user-defined closures as well.
type Fn interface {
	Value
	Arity() int // -1 means variadic/any
	Name() string
}

// BuiltinFunc is a native Go implementation of a Curv function. Args
// are already-evaluated Values (Curv builtins are strict in their
// arguments, unlike user lambdas whose let/module bindings may be
// lazy); loc is the call site, carried through so a domain/arity
// error can point at the offending call rather than nowhere. Call
// returns a Value or panics with a *source.Exception, mirroring the
// MOO's BuiltinFunc(ctx, args) Result convention but using Go's
// panic/recover instead of a threaded Result sum type, consistent
// with the rest of this package's error-propagation style (see
// source/error.go).
type BuiltinFunc func(args []Value, loc source.Location) Value

// Builtin wraps a BuiltinFunc as a callable Value, generalizing the
// MOO's Registry entries (registered by name in builtins/registry.go)
// into first-class function values that can be passed around, stored
// in lists, and compared.
type Builtin struct {
	FnName  string
	NArity  int // -1 for variadic
	Impl    BuiltinFunc
}

func NewBuiltin(name string, arity int, impl BuiltinFunc) *Builtin {
	return &Builtin{FnName: name, NArity: arity, Impl: impl}
}

func (b *Builtin) Kind() Kind   { return KindFunction }
func (b *Builtin) String() string { return "<function " + b.FnName + ">" }
func (b *Builtin) Arity() int   { return b.NArity }
func (b *Builtin) Name() string { return b.FnName }

func (b *Builtin) Equal(v Value) bool {
	o, ok := v.(*Builtin)
	return ok && b == o
}

func (b *Builtin) Call(args []Value, loc source.Location) Value { return b.Impl(args, loc) }

// Closure is a user-defined function: a Lambda template closed over
// its captured non-locals. Template and the evaluator's operation
// graph that it wraps are typed interface{} here rather than a
// concrete analyzer type, because analyzer imports value (to build
// Constant nodes) and value cannot import analyzer back without a
// cycle. This directly follows its own
// types/result.go ForkInfo.Body interface{} // []parser.Stmt pattern
// for the same reason: a value-family struct that must reference a
// type owned by a package one layer up the dependency graph.
//
// ModuleSlots is the slot array of the module or record frame the
// closure was created under (nil outside any). For a recursive
// module-level function it is the owning module's slot array, so
// Nonlocal_Function_Ref reads resolve sibling recursive calls through
// the same frame rather than through a captured copy (the Module::get
// recursive-field projection).
type Closure struct {
	Template    interface{} // *analyzer.Lambda
	Nonlocals   []Value     // captured free-variable values, in capture order
	ModuleSlots []Value     // enclosing module's slot array, if any
	FnArity     int
	FnName      string
}

func (c *Closure) Kind() Kind     { return KindFunction }
func (c *Closure) String() string { return "<function " + c.FnName + ">" }
func (c *Closure) Arity() int     { return c.FnArity }
func (c *Closure) Name() string   { return c.FnName }

func (c *Closure) Equal(v Value) bool {
	o, ok := v.(*Closure)
	return ok && c == o
}
