package value

import "strconv"

// Str is a Curv string: an immutable sequence of Unicode characters
// stored as a Go string.
type Str string

func (s Str) Kind() Kind { return KindStr }

// String returns the literal form, quoted, mirroring how MOO's
// types.Str renders for diagnostics; unquoted access is via Text.
func (s Str) String() string { return strconv.Quote(string(s)) }

// Text returns the raw character content, with no quoting.
func (s Str) Text() string { return string(s) }

func (s Str) Equal(v Value) bool {
	o, ok := v.(Str)
	return ok && s == o
}
