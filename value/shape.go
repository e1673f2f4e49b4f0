package value

// Shape is an opaque wrapper around a Record, distinguishing a
// constructed geometric shape (produced by e.g. shape2d) from a
// plain record with the same fields, so builtins and diagnostics can
// tell "this is a shape" from "this happens to have an is_2d field"
// without relying on field-name convention alone.
type Shape struct {
	Fields Record
}

func NewShape(fields Record) Shape { return Shape{Fields: fields} }

func (s Shape) Kind() Kind { return KindShape }

func (s Shape) String() string { return "<shape " + s.Fields.String() + ">" }

func (s Shape) Equal(v Value) bool {
	o, ok := v.(Shape)
	return ok && s.Fields.Equal(o.Fields)
}

// Get looks up a field on the underlying record, the way `.`-access
// into a shape works the same as `.`-access into any record.
func (s Shape) Get(name Atom) (Value, bool) { return s.Fields.Get(name) }
