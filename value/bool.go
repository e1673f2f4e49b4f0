package value

// Bool is a Curv boolean.
type Bool bool

var (
	True  = Bool(true)
	False = Bool(false)
)

func (b Bool) Kind() Kind { return KindBool }

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b Bool) Equal(v Value) bool {
	o, ok := v.(Bool)
	return ok && b == o
}
