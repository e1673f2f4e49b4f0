package value

// ThunkState tracks a Thunk's place in its Unforced -> Forcing ->
// Forced lifecycle. A Thunk is never observed in the
// Forced state in practice: once forced, the slot that held it is
// overwritten with the resulting Value directly. The
// illegal-recursive-reference check ("a thunk already in Forcing is
// read again") keys on the Forcing state, without a separate side
// table.
type ThunkState int

const (
	Unforced ThunkState = iota
	Forcing
	Forced
)

// Thunk is an unevaluated operation pointer used for lazy module-field
// and let-binding initialization. Op is typed interface{} for the same
// cross-package reason as Closure.Template and Lambda.Op: it is an
// analyzer operation-graph node (an analyzer.Operation), and value
// cannot import analyzer.
type Thunk struct {
	Op    interface{} // analyzer.Operation
	State ThunkState
}

func NewThunk(op interface{}) *Thunk {
	return &Thunk{Op: op, State: Unforced}
}

func (t *Thunk) Kind() Kind     { return KindThunk }
func (t *Thunk) String() string { return "<thunk>" }

func (t *Thunk) Equal(v Value) bool {
	o, ok := v.(*Thunk)
	return ok && t == o
}
