package value

import (
	"math"
	"strconv"
)

// Num is a Curv number: an IEEE-754 double. NaN is a valid Num value
// (e.g. 0/0 yields one); it is not itself an error, it only becomes
// one if something downstream rejects it (the sqrt and abs builtins
// report any NaN result as a domain error).
type Num float64

func (n Num) Kind() Kind { return KindNum }

func (n Num) String() string {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Equal follows IEEE-754: NaN is never equal to anything, including
// itself.
func (n Num) Equal(v Value) bool {
	o, ok := v.(Num)
	return ok && float64(n) == float64(o)
}
