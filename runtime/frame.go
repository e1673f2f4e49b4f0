// Package runtime implements the tree-walking evaluator that
// interprets an analyzer.Operation graph against a Frame stack,
// generalizing MOO's eval.Evaluator/eval.Environment pair
// (eval/eval.go, eval/environment.go) from name-keyed runtime lookup
// to slot-indexed lookup resolved ahead of time by the analyzer.
package runtime

import (
	"curv/source"
	"curv/system"
	"curv/value"
)

// Frame is one activation: a slot array sized to the enclosing
// Lambda/Module's NSlots, the closure's captured non-local array (nil
// for a module-level frame), the owning module's own slot array (a
// module or record frame aliases it to its own Slots, and every closure
// call frame carries the one its closure was created under, so
// Nonlocal_Function_Ref and Module_Ref can reach sibling fields through
// it), a parent pointer for the diagnostic backtrace, and the System
// collaborator (console, file loader).
type Frame struct {
	Slots       []value.Value
	Nonlocals   []value.Value
	ModuleSlots []value.Value

	Parent *Frame
	Call   string // callee name, for backtrace rendering
	Loc    source.Location
	Sys    system.System
}

// NewFrame allocates a frame of nslots slots for a fresh call or
// module evaluation.
func NewFrame(nslots int, nonlocals, moduleSlots []value.Value, parent *Frame, call string, loc source.Location, sys system.System) *Frame {
	return &Frame{
		Slots:       make([]value.Value, nslots),
		Nonlocals:   nonlocals,
		ModuleSlots: moduleSlots,
		Parent:      parent,
		Call:        call,
		Loc:         loc,
		Sys:         sys,
	}
}

// frameLine renders this one frame's backtrace entry, the way one
// MOO task.ActivationFrame renders one line of a traceback.
func (f *Frame) frameLine() string {
	name := f.Call
	if name == "" {
		name = "<script>"
	}
	line := "  in " + name
	if f.Loc.IsValid() {
		line += " at " + f.Loc.String()
	}
	return line
}

// Backtrace renders the active call chain as one line per frame,
// deepest call first, walking Parent from f up to (but not including)
// the unnamed root frame Run starts from — the way MOO's
// task.ActivationFrame/CallStack renders a MOO traceback. Because f's
// Parent chain already reaches back to the root by construction (each
// Call pushes a new Frame whose Parent is its caller's), calling this
// once on the innermost active frame yields the whole chain. Module
// and record evaluation frames are not calls and are skipped.
func (f *Frame) Backtrace() []string {
	var out []string
	for fr := f; fr != nil && fr.Parent != nil; fr = fr.Parent {
		if fr.Call == "<module>" || fr.Call == "<record>" {
			continue
		}
		out = append(out, fr.frameLine())
	}
	return out
}
