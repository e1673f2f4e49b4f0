package builtins

import (
	"math"

	"curv/source"
	"curv/value"
)

func asNum(v value.Value, loc source.Location, who string) float64 {
	n, ok := v.(value.Num)
	if !ok {
		panic(source.NewException(loc, who+": expected a number, got a "+v.Kind().String()))
	}
	return float64(n)
}

func asList(v value.Value, loc source.Location, who string) value.List {
	l, ok := v.(value.List)
	if !ok {
		panic(source.NewException(loc, who+": expected a list, got a "+v.Kind().String()))
	}
	return l
}

// broadcastUnary applies f to a scalar Num, or to every element of a
// List in turn: sqrt/abs are unary numeric functions that broadcast
// over lists.
func broadcastUnary(who string, f func(float64) float64) value.BuiltinFunc {
	return func(args []value.Value, loc source.Location) value.Value {
		switch v := args[0].(type) {
		case value.Num:
			return numOrDomainError(who, f(float64(v)), loc)
		case value.List:
			elems := v.Elements()
			out := make([]value.Value, len(elems))
			for i, el := range elems {
				out[i] = numOrDomainError(who, f(asNum(el, loc, who)), loc)
			}
			return value.NewList(out)
		default:
			panic(source.NewException(loc, who+": expected a number or a list, got a "+v.Kind().String()))
		}
	}
}

// numOrDomainError rejects a NaN result as a domain error rather than
// propagating it silently, the documented choice for sqrt of a
// negative number at both the scalar and list-broadcast call sites
// (see DESIGN.md's "sqrt(-1)" Open Question decision).
func numOrDomainError(who string, f float64, loc source.Location) value.Value {
	if math.IsNaN(f) {
		panic(source.NewException(loc, who+": domain error"))
	}
	return value.Num(f)
}

func sqrtBuiltin(args []value.Value, loc source.Location) value.Value {
	return broadcastUnary("sqrt", math.Sqrt)(args, loc)
}

func absBuiltin(args []value.Value, loc source.Location) value.Value {
	return broadcastUnary("abs", math.Abs)(args, loc)
}

// maxBuiltin / minBuiltin reduce a single list argument, with the
// documented identity element for the empty list.
func maxBuiltin(args []value.Value, loc source.Location) value.Value {
	elems := asList(args[0], loc, "max").Elements()
	best := math.Inf(-1)
	for _, e := range elems {
		if n := asNum(e, loc, "max"); n > best {
			best = n
		}
	}
	return value.Num(best)
}

func minBuiltin(args []value.Value, loc source.Location) value.Value {
	elems := asList(args[0], loc, "min").Elements()
	best := math.Inf(1)
	for _, e := range elems {
		if n := asNum(e, loc, "min"); n < best {
			best = n
		}
	}
	return value.Num(best)
}

// normBuiltin computes the Euclidean norm of a list of numbers,
// erroring (not silently coercing) on a non-numeric element.
func normBuiltin(args []value.Value, loc source.Location) value.Value {
	elems := asList(args[0], loc, "norm").Elements()
	sum := 0.0
	for _, e := range elems {
		n := asNum(e, loc, "norm")
		sum += n * n
	}
	return value.Num(math.Sqrt(sum))
}

func lenBuiltin(args []value.Value, loc source.Location) value.Value {
	return value.Num(float64(asList(args[0], loc, "len").Len()))
}
