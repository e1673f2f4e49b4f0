package value

import "strings"

// listData abstracts list storage, generalizing MOO's MooList
// interface; this is the seam that would let a future dense-numeric
// representation (e.g. a packed []float64 for point clouds) slot in
// without touching List's copy-on-write API.
type listData interface {
	Len() int
	Get(index int) Value // 0-based
	Set(index int, v Value) listData
	Append(v Value) listData
	Slice(start, end int) listData // 0-based, [start,end)
	Elements() []Value
}

type sliceListData struct {
	elements []Value
}

func (s *sliceListData) Len() int { return len(s.elements) }

func (s *sliceListData) Get(i int) Value {
	if i < 0 || i >= len(s.elements) {
		return nil
	}
	return s.elements[i]
}

func (s *sliceListData) Set(i int, v Value) listData {
	if i < 0 || i >= len(s.elements) {
		return s
	}
	newElems := make([]Value, len(s.elements))
	copy(newElems, s.elements)
	newElems[i] = v
	return &sliceListData{elements: newElems}
}

func (s *sliceListData) Append(v Value) listData {
	newElems := make([]Value, len(s.elements)+1)
	copy(newElems, s.elements)
	newElems[len(s.elements)] = v
	return &sliceListData{elements: newElems}
}

func (s *sliceListData) Slice(start, end int) listData {
	if start < 0 {
		start = 0
	}
	if end > len(s.elements) {
		end = len(s.elements)
	}
	if start >= end {
		return &sliceListData{elements: []Value{}}
	}
	newElems := make([]Value, end-start)
	copy(newElems, s.elements[start:end])
	return &sliceListData{elements: newElems}
}

func (s *sliceListData) Elements() []Value { return s.elements }

// List is a Curv list: a 0-based, copy-on-write, finite sequence of
// values. Indexing is 0-based throughout, unlike MOO's
// 1-based MooList, because Curv lists are vectors and matrices as much
// as they are sequences, and 0-based indexing is what every geometric
// formula (dot products, cross products, matrix rows) assumes.
type List struct {
	data listData
}

func NewList(elements []Value) List {
	return List{data: &sliceListData{elements: elements}}
}

func EmptyList() List {
	return List{data: &sliceListData{elements: []Value{}}}
}

func (l List) Kind() Kind { return KindList }

func (l List) String() string {
	elements := l.data.Elements()
	if len(elements) == 0 {
		return "[]"
	}
	parts := make([]string, len(elements))
	for i, e := range elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (l List) Equal(other Value) bool {
	o, ok := other.(List)
	if !ok || l.Len() != o.Len() {
		return false
	}
	a, b := l.Elements(), o.Elements()
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (l List) Len() int { return l.data.Len() }

// Get returns the element at a 0-based index, or nil if out of range;
// At_Expr evaluation checks the index against Len before calling Get,
// so it can report the offending index and list length itself.
func (l List) Get(index int) Value { return l.data.Get(index) }

func (l List) Set(index int, v Value) List { return List{data: l.data.Set(index, v)} }

func (l List) Append(v Value) List { return List{data: l.data.Append(v)} }

func (l List) Slice(start, end int) List { return List{data: l.data.Slice(start, end)} }

func (l List) Elements() []Value { return l.data.Elements() }
