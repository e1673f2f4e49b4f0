package builtins

import (
	"curv/geom"
	"curv/source"
	"curv/value"
)

// shape2dBuiltin wraps a record as an opaque 2D shape value.
func shape2dBuiltin(args []value.Value, loc source.Location) value.Value {
	rec, ok := args[0].(value.Record)
	if !ok {
		panic(source.NewException(loc, "shape2d: expected a record, got a "+args[0].Kind().String()))
	}
	return geom.WrapShape2D(rec)
}
