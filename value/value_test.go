package value

import (
	"math"
	"testing"

	"curv/source"
)

func TestNumString(t *testing.T) {
	cases := []struct {
		n    Num
		want string
	}{
		{Num(3), "3"},
		{Num(3.5), "3.5"},
		{Num(math.Inf(1)), "inf"},
		{Num(math.Inf(-1)), "-inf"},
		{Num(math.NaN()), "nan"},
	}
	for _, c := range cases {
		if got := c.n.String(); got != c.want {
			t.Errorf("Num(%v).String() = %q, want %q", float64(c.n), got, c.want)
		}
	}
}

func TestNumEqualNaNNeverEqual(t *testing.T) {
	nan := Num(math.NaN())
	if nan.Equal(nan) {
		t.Error("NaN must not equal itself")
	}
	if !Num(1).Equal(Num(1)) {
		t.Error("equal numbers must compare equal")
	}
}

func TestStrQuotingAndText(t *testing.T) {
	s := Str("hi\nthere")
	if s.Text() != "hi\nthere" {
		t.Errorf("Text() = %q", s.Text())
	}
	if s.String() != `"hi\nthere"` {
		t.Errorf("String() = %q", s.String())
	}
}

func TestBoolString(t *testing.T) {
	if True.String() != "true" || False.String() != "false" {
		t.Error("unexpected Bool.String()")
	}
	if !True.Equal(Bool(true)) || True.Equal(False) {
		t.Error("Bool.Equal is wrong")
	}
}

func TestNullSingleton(t *testing.T) {
	if TheNull.Kind() != KindNull || TheNull.String() != "null" {
		t.Error("unexpected Null behavior")
	}
	if !TheNull.Equal(Null{}) {
		t.Error("Null must equal Null")
	}
	if TheNull.Equal(Bool(false)) {
		t.Error("Null must not equal false")
	}
}

func TestListBasics(t *testing.T) {
	l := NewList([]Value{Num(1), Num(2), Num(3)})
	if l.Len() != 3 {
		t.Fatalf("Len() = %d", l.Len())
	}
	if !l.Get(1).Equal(Num(2)) {
		t.Fatalf("Get(1) = %v", l.Get(1))
	}
	if l.Get(10) != nil {
		t.Fatalf("Get out of range should be nil, got %v", l.Get(10))
	}
	if l.String() != "[1,2,3]" {
		t.Fatalf("String() = %q", l.String())
	}
}

func TestListCopyOnWrite(t *testing.T) {
	l1 := NewList([]Value{Num(1), Num(2)})
	l2 := l1.Set(0, Num(99))
	if !l1.Get(0).Equal(Num(1)) {
		t.Fatal("original list mutated by Set")
	}
	if !l2.Get(0).Equal(Num(99)) {
		t.Fatal("new list did not get the update")
	}
}

func TestListAppendAndSlice(t *testing.T) {
	l := NewList([]Value{Num(1), Num(2)})
	l2 := l.Append(Num(3))
	if l.Len() != 2 {
		t.Fatal("Append mutated the receiver")
	}
	if l2.Len() != 3 || !l2.Get(2).Equal(Num(3)) {
		t.Fatal("Append result is wrong")
	}
	s := NewList([]Value{Num(1), Num(2), Num(3), Num(4)}).Slice(1, 3)
	if s.Len() != 2 || !s.Get(0).Equal(Num(2)) || !s.Get(1).Equal(Num(3)) {
		t.Fatalf("Slice result is wrong: %s", s.String())
	}
}

func TestListEqual(t *testing.T) {
	a := NewList([]Value{Num(1), Str("x")})
	b := NewList([]Value{Num(1), Str("x")})
	c := NewList([]Value{Num(1), Str("y")})
	if !a.Equal(b) {
		t.Fatal("equal-content lists must compare equal")
	}
	if a.Equal(c) {
		t.Fatal("different-content lists must not compare equal")
	}
}

func TestEmptyList(t *testing.T) {
	if EmptyList().String() != "[]" {
		t.Fatal("EmptyList().String() should be []")
	}
}

func TestRecordFieldOrderAndOverwrite(t *testing.T) {
	r := NewRecord([]recordEntry{
		{name: Atom("a"), val: Num(1)},
		{name: Atom("b"), val: Num(2)},
		{name: Atom("a"), val: Num(3)},
	})
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (repeated key overwrites)", r.Len())
	}
	fields := r.Fields()
	if len(fields) != 2 || fields[0] != Atom("a") || fields[1] != Atom("b") {
		t.Fatalf("Fields() = %v, want [a b] (original position kept)", fields)
	}
	v, ok := r.Get(Atom("a"))
	if !ok || !v.Equal(Num(3)) {
		t.Fatalf("Get(a) = %v, want 3 (later value wins)", v)
	}
}

func TestRecordSetIsImmutable(t *testing.T) {
	r1 := EmptyRecord().Set(Atom("x"), Num(1))
	r2 := r1.Set(Atom("x"), Num(2))
	v1, _ := r1.Get(Atom("x"))
	v2, _ := r2.Get(Atom("x"))
	if !v1.Equal(Num(1)) {
		t.Fatal("Set must not mutate the receiver")
	}
	if !v2.Equal(Num(2)) {
		t.Fatal("Set result should reflect the new value")
	}
}

func TestRecordEqual(t *testing.T) {
	a := EmptyRecord().Set(Atom("x"), Num(1)).Set(Atom("y"), Num(2))
	b := EmptyRecord().Set(Atom("y"), Num(2)).Set(Atom("x"), Num(1))
	if !a.Equal(b) {
		t.Fatal("records with the same fields (different insertion order) must still be equal")
	}
}

func TestShapeWrapsRecordAndForwardsGet(t *testing.T) {
	rec := EmptyRecord().Set(Atom("dist"), Num(1))
	s := NewShape(rec)
	if s.Kind() != KindShape {
		t.Fatal("Shape.Kind() should be KindShape")
	}
	v, ok := s.Get(Atom("dist"))
	if !ok || !v.Equal(Num(1)) {
		t.Fatal("Shape.Get should forward to the underlying record")
	}
	if _, ok := s.Get(Atom("missing")); ok {
		t.Fatal("Shape.Get should report absence for an unknown field")
	}
}

func TestModuleGetAndRawSlot(t *testing.T) {
	names := []Atom{"a", "b"}
	index := map[Atom]int{"a": 0, "b": 1}
	slots := []Value{Num(1), Num(2)}
	m := NewModule(names, index, slots, nil)
	v, ok := m.RawSlot("a")
	if !ok || !v.Equal(Num(1)) {
		t.Fatal("RawSlot(a) should return 1")
	}
	if _, ok := m.RawSlot("missing"); ok {
		t.Fatal("RawSlot should report absence for an unknown field")
	}
}

func TestModuleEqualityIsByReference(t *testing.T) {
	m1 := NewModule([]Atom{"a"}, map[Atom]int{"a": 0}, []Value{Num(1)}, nil)
	m2 := NewModule([]Atom{"a"}, map[Atom]int{"a": 0}, []Value{Num(1)}, nil)
	if m1.Equal(m2) {
		t.Fatal("distinct Module instances with identical contents must not compare equal")
	}
	if !m1.Equal(m1) {
		t.Fatal("a Module must equal itself")
	}
}

func TestThunkStringDoesNotForce(t *testing.T) {
	th := NewThunk(nil)
	if th.State != Unforced {
		t.Fatal("new Thunk should start Unforced")
	}
	if th.String() != "<thunk>" {
		t.Fatal("Thunk.String() should not panic or try to force")
	}
}

func TestLambdaString(t *testing.T) {
	l := &Lambda{FnName: "f", FnArity: 1}
	if l.String() != "<lambda f>" {
		t.Fatalf("got %q", l.String())
	}
}

func TestBuiltinCallAndArity(t *testing.T) {
	b := NewBuiltin("double", 1, func(args []Value, loc source.Location) Value {
		return Num(float64(args[0].(Num)) * 2)
	})
	if b.Arity() != 1 || b.Name() != "double" {
		t.Fatal("Arity/Name should reflect constructor args")
	}
	got := b.Call([]Value{Num(21)}, source.NoLocation)
	if !got.Equal(Num(42)) {
		t.Fatalf("Call() = %v, want 42", got)
	}
}
