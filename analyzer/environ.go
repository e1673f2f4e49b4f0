package analyzer

import (
	"fmt"

	"curv/source"
)

// Environ is the analyzer's lexical-scope chain, generalizing the
// MOO's runtime name->Value Environment (eval/environment.go) into
// a static, analyze-time resolver: lookups here produce a Meaning
// (most often a slot-indexed reference) instead of a Value, and the
// resolution happens once per name occurrence rather than on every
// evaluation.
type Environ interface {
	// SingleLookup resolves a name this Environ owns directly, without
	// consulting its parent.
	SingleLookup(name string) (Meaning, bool)
	// Lookup resolves a name in this Environ or, failing that, walks
	// up to ancestors; it returns an error carrying loc for "not
	// defined" diagnostics.
	Lookup(name string, loc source.Location) (Meaning, error)
}

func notDefined(name string, loc source.Location) error {
	return source.NewException(loc, fmt.Sprintf("not defined: %s", name))
}

// frameState is the shared, mutable slot-accounting record threaded
// through one lambda or module body: nslots is the current depth (how
// many slots are live right now), maxslots is the high-water mark
// that becomes the lambda/module's required frame size.
type frameState struct {
	nslots    int
	maxslots  int
}

func (fs *frameState) alloc(n int) int {
	start := fs.nslots
	fs.nslots += n
	if fs.nslots > fs.maxslots {
		fs.maxslots = fs.nslots
	}
	return start
}

// release pops slots back to a saved depth once a Let_Environ/
// For_Environ's body has been fully analyzed, so a sibling scope can
// reuse the same slot range — only the watermark persists.
func (fs *frameState) release(to int) {
	fs.nslots = to
}

// BuiltinEnviron is the top-level scope, backed by the immutable
// top-level builtin namespace (pi, sqrt, echo, ...).
type BuiltinEnviron struct {
	names map[string]Meaning
}

func NewBuiltinEnviron(names map[string]Meaning) *BuiltinEnviron {
	return &BuiltinEnviron{names: names}
}

func (e *BuiltinEnviron) SingleLookup(name string) (Meaning, bool) {
	m, ok := e.names[name]
	return m, ok
}

func (e *BuiltinEnviron) Lookup(name string, loc source.Location) (Meaning, error) {
	if m, ok := e.SingleLookup(name); ok {
		return m, nil
	}
	return nil, notDefined(name, loc)
}

// ModuleEnviron resolves module/record field names: a field whose
// definition is a recursive lambda answers with
// NonlocalFunctionRef, every other field answers with ModuleRef.
type ModuleEnviron struct {
	parent         Environ
	slots          map[string]int
	recursiveSlots map[int]bool
}

func NewModuleEnviron(parent Environ, slots map[string]int, recursiveSlots map[int]bool) *ModuleEnviron {
	return &ModuleEnviron{parent: parent, slots: slots, recursiveSlots: recursiveSlots}
}

func (e *ModuleEnviron) SingleLookup(name string) (Meaning, bool) {
	slot, ok := e.slots[name]
	if !ok {
		return nil, false
	}
	if e.recursiveSlots[slot] {
		return &NonlocalFunctionRef{Slot: slot, Name: name}, true
	}
	return &ModuleRef{Slot: slot, Name: name}, true
}

func (e *ModuleEnviron) Lookup(name string, loc source.Location) (Meaning, error) {
	if m, ok := e.SingleLookup(name); ok {
		return m, nil
	}
	if e.parent == nil {
		return nil, notDefined(name, loc)
	}
	return e.parent.Lookup(name, loc)
}

// ArgEnviron is a lambda's parameter scope. Looking up a free
// variable either inlines a Constant from the parent, or records a
// non-local capture and returns a slot into the closure's capture
// array — unless this lambda is itself a module-field's recursive
// definition, in which case lookups of anything but its own
// parameters delegate straight to the parent (the ModuleEnviron, which
// answers with NonlocalFunctionRef or ModuleRef, both read through the
// module's slot array at call time, instead of a capture).
type ArgEnviron struct {
	parent    Environ
	params    map[string]int
	fs        *frameState
	recursive bool

	capturedNames map[string]int
	Nonlocals     []Operation
}

// NewArgEnviron allocates the parameter slots [0..len(params)) in a
// fresh frame and returns the Environ plus that frame's frameState so
// nested Let_Environ/For_Environ scopes can keep extending it.
func NewArgEnviron(parent Environ, params []string, recursive bool) (*ArgEnviron, *frameState) {
	fs := &frameState{}
	slots := make(map[string]int, len(params))
	fs.alloc(len(params))
	for i, p := range params {
		slots[p] = i
	}
	return &ArgEnviron{
		parent:        parent,
		params:        slots,
		fs:            fs,
		recursive:     recursive,
		capturedNames: make(map[string]int),
	}, fs
}

func (e *ArgEnviron) SingleLookup(name string) (Meaning, bool) {
	slot, ok := e.params[name]
	if !ok {
		return nil, false
	}
	return &ArgRef{Slot: slot, Name: name}, true
}

func (e *ArgEnviron) Lookup(name string, loc source.Location) (Meaning, error) {
	if m, ok := e.SingleLookup(name); ok {
		return m, nil
	}
	if e.recursive {
		return e.parent.Lookup(name, loc)
	}
	if slot, ok := e.capturedNames[name]; ok {
		return &NonlocalRef{Slot: slot, Name: name}, nil
	}
	parentMeaning, err := e.parent.Lookup(name, loc)
	if err != nil {
		return nil, err
	}
	switch pm := parentMeaning.(type) {
	case Constant:
		return pm, nil
	case Metafunction:
		return pm, nil
	case Operation:
		slot := len(e.Nonlocals)
		e.Nonlocals = append(e.Nonlocals, pm)
		e.capturedNames[name] = slot
		return &NonlocalRef{Slot: slot, Name: name}, nil
	default:
		return nil, source.NewException(loc, fmt.Sprintf("invalid expression after `.`: %s", name))
	}
}

// LetEnviron owns one let-form's bindings by name -> slot, all
// allocated in the enclosing lambda/module's shared frameState.
type LetEnviron struct {
	parent Environ
	fs     *frameState
	slots  map[string]int
}

// NewLetEnviron allocates len(names) fresh slots and returns both the
// Environ and the depth to release back to once the let body has been
// fully analyzed.
func NewLetEnviron(parent Environ, fs *frameState, names []string) (*LetEnviron, int) {
	saved := fs.nslots
	base := fs.alloc(len(names))
	slots := make(map[string]int, len(names))
	for i, n := range names {
		slots[n] = base + i
	}
	return &LetEnviron{parent: parent, fs: fs, slots: slots}, saved
}

func (e *LetEnviron) Release(to int) { e.fs.release(to) }

func (e *LetEnviron) FirstSlot() int {
	min := -1
	for _, s := range e.slots {
		if min == -1 || s < min {
			min = s
		}
	}
	return min
}

func (e *LetEnviron) SingleLookup(name string) (Meaning, bool) {
	slot, ok := e.slots[name]
	if !ok {
		return nil, false
	}
	return &LetRef{Slot: slot, Name: name}, true
}

func (e *LetEnviron) Lookup(name string, loc source.Location) (Meaning, error) {
	if m, ok := e.SingleLookup(name); ok {
		return m, nil
	}
	return e.parent.Lookup(name, loc)
}

// ForEnviron owns a single loop variable, the way LetEnviron owns a
// set of let bindings.
type ForEnviron struct {
	parent Environ
	fs     *frameState
	name   string
	slot   int
}

func NewForEnviron(parent Environ, fs *frameState, name string) (*ForEnviron, int) {
	saved := fs.nslots
	slot := fs.alloc(1)
	return &ForEnviron{parent: parent, fs: fs, name: name, slot: slot}, saved
}

func (e *ForEnviron) Release(to int) { e.fs.release(to) }

func (e *ForEnviron) Slot() int { return e.slot }

func (e *ForEnviron) SingleLookup(name string) (Meaning, bool) {
	if name != e.name {
		return nil, false
	}
	return &LetRef{Slot: e.slot, Name: name}, true
}

func (e *ForEnviron) Lookup(name string, loc source.Location) (Meaning, error) {
	if m, ok := e.SingleLookup(name); ok {
		return m, nil
	}
	return e.parent.Lookup(name, loc)
}

// DoEnviron owns the growing set of `var` slots introduced by a
// do-block, one at a time as each `var name = expr` is processed —
// unlike LetEnviron, whose bindings are all visible to every RHS at
// once, a later statement in a do-block sees only the vars declared
// before it, an SSA-locals model for this sub-language.
type DoEnviron struct {
	parent Environ
	fs     *frameState
	vars   map[string]int
}

func NewDoEnviron(parent Environ, fs *frameState) *DoEnviron {
	return &DoEnviron{parent: parent, fs: fs, vars: make(map[string]int)}
}

// Declare allocates a fresh slot for name, visible to subsequent
// lookups in this DoEnviron (but not to ones already resolved).
func (e *DoEnviron) Declare(name string) int {
	slot := e.fs.alloc(1)
	e.vars[name] = slot
	return slot
}

func (e *DoEnviron) SingleLookup(name string) (Meaning, bool) {
	slot, ok := e.vars[name]
	if !ok {
		return nil, false
	}
	return &LetRef{Slot: slot, Name: name}, true
}

func (e *DoEnviron) Lookup(name string, loc source.Location) (Meaning, error) {
	if m, ok := e.SingleLookup(name); ok {
		return m, nil
	}
	return e.parent.Lookup(name, loc)
}

// Slot returns the slot for an already-declared var, for `:=` lowering.
func (e *DoEnviron) Slot(name string) (int, bool) {
	slot, ok := e.vars[name]
	return slot, ok
}
