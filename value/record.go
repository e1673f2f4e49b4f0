package value

import (
	"fmt"
	"strings"
)

// recordEntry stores one field in insertion order; generalizes the
// MOO's mapEntry, fixing the key type to Atom (a record field name
// can never be a computed Value the way a MOO map key can) and
// dropping the hash-by-String() trick since Atom is already
// comparable.
type recordEntry struct {
	name Atom
	val  Value
}

// recordData abstracts record storage, generalizing MOO's
// MooMap/goMap to preserve field insertion order; Curv records print
// and iterate fields in the order they were defined, which a Go map
// cannot guarantee on its own.
type recordData struct {
	order []Atom
	index map[Atom]int
	vals  []Value
}

func newRecordData() *recordData {
	return &recordData{index: make(map[Atom]int)}
}

func (d *recordData) clone() *recordData {
	n := &recordData{
		order: append([]Atom(nil), d.order...),
		vals:  append([]Value(nil), d.vals...),
		index: make(map[Atom]int, len(d.index)),
	}
	for k, v := range d.index {
		n.index[k] = v
	}
	return n
}

func (d *recordData) get(name Atom) (Value, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.vals[i], true
}

func (d *recordData) set(name Atom, v Value) *recordData {
	n := d.clone()
	if i, ok := n.index[name]; ok {
		n.vals[i] = v
		return n
	}
	n.index[name] = len(n.order)
	n.order = append(n.order, name)
	n.vals = append(n.vals, v)
	return n
}

// Record is a Curv record: an immutable, insertion-ordered set of
// name/value fields, generalizing MOO's MapValue with a fixed
// Atom key and ordered iteration.
type Record struct {
	data *recordData
}

func EmptyRecord() Record {
	return Record{data: newRecordData()}
}

// NewRecord builds a Record from name/value pairs in the given order;
// a repeated name overwrites the earlier value but keeps its original
// position, matching `{a:1,b:2,a:3}` == `{a:3,b:2}` in field order.
func NewRecord(fields []recordEntry) Record {
	d := newRecordData()
	for _, f := range fields {
		d = d.set(f.name, f.val)
	}
	return Record{data: d}
}

func (r Record) Kind() Kind { return KindRecord }

func (r Record) String() string {
	if len(r.data.order) == 0 {
		return "{}"
	}
	parts := make([]string, len(r.data.order))
	for i, name := range r.data.order {
		val, _ := r.data.get(name)
		parts[i] = fmt.Sprintf("%s: %s", name, val.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (r Record) Equal(other Value) bool {
	o, ok := other.(Record)
	if !ok || len(r.data.order) != len(o.data.order) {
		return false
	}
	for _, name := range r.data.order {
		a, _ := r.data.get(name)
		b, ok := o.data.get(name)
		if !ok || !a.Equal(b) {
			return false
		}
	}
	return true
}

func (r Record) Len() int { return len(r.data.order) }

func (r Record) Get(name Atom) (Value, bool) { return r.data.get(name) }

func (r Record) Set(name Atom, v Value) Record { return Record{data: r.data.set(name, v)} }

func (r Record) Fields() []Atom { return r.data.order }
