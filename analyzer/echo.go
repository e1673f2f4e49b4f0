package analyzer

import "curv/source"

// EchoMetafunction is the analyzer-level implementation of the builtin
// `echo`: a plain function value can't work here, because echo needs
// its *un-evaluated* argument operations (already analyzed, but not
// yet run) to build an Echo_Action at the call site.
type EchoMetafunction struct{}

func (*EchoMetafunction) Location() source.Location { return source.NoLocation }
func (*EchoMetafunction) metafunctionNode()         {}

func (*EchoMetafunction) Call(args []Operation, loc source.Location) Operation {
	return &EchoAction{Loc: loc, Args: args}
}
