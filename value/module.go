package value

import "strings"

// Module is the value produced by evaluating a script or a module
// expression: a named field dictionary backed by a mutable slot array
// (until all slots are forced, since recursive module fields share
// their module's slot array instead of a captured copy), plus the
// list of element values the script's bare statements accumulated.
// Unlike Record, a Module's Slots can themselves be
// Thunk or Lambda values; the evaluator forces a Thunk slot, or closes
// a Lambda slot over the module's slots, when the field is read.
type Module struct {
	Names    []Atom       // field names, definition order
	Index    map[Atom]int // name -> slot
	Slots    []Value      // mutable until every slot has been forced
	Elements []Value      // script's top-level element expressions, in order
}

func NewModule(names []Atom, index map[Atom]int, slots []Value, elements []Value) *Module {
	return &Module{Names: names, Index: index, Slots: slots, Elements: elements}
}

func (m *Module) Kind() Kind { return KindModule }

func (m *Module) String() string {
	if len(m.Names) == 0 {
		return "{}"
	}
	var parts []string
	for _, name := range m.Names {
		parts = append(parts, string(name)+": "+m.Slots[m.Index[name]].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Equal is reference equality: two Modules are only equal if they are
// literally the same module instance, since Modules are mutable slot
// arrays that may still have unforced thunks, and forcing one copy
// must not be observable as forcing "the same value" through another.
func (m *Module) Equal(other Value) bool {
	o, ok := other.(*Module)
	return ok && m == o
}

// RawSlot returns the slot's current contents without forcing it, so
// an unforced Thunk or a bare Lambda comes back as is.
func (m *Module) RawSlot(name Atom) (Value, bool) {
	i, ok := m.Index[name]
	if !ok {
		return nil, false
	}
	return m.Slots[i], true
}
