package builtins

import (
	"math"

	"curv/analyzer"
	"curv/runtime"
	"curv/source"
	"curv/system"
	"curv/value"
)

// NewEnviron builds the top-level BuiltinEnviron used to analyze every
// script in this run, generalizing MOO's Registry.Register table
// (builtins/registry.go) from a name->func map consulted at call time
// into a name->Meaning map consulted at analyze time, per the
// slot-resolving Environ design in analyzer/environ.go.
//
// One BuiltinEnviron is shared across every script sys ever loads:
// `file` no longer closes over the including script (it reads the
// call site's own Location instead, see fileBuiltin), so nothing here
// is specific to any one script's identity. That is what lets
// system.Loader cache an Analyze result by content digest and reuse it
// for any later script with byte-identical text.
func NewEnviron(sys system.System, ev *runtime.Evaluator) *analyzer.BuiltinEnviron {
	names := map[string]analyzer.Meaning{
		"pi":    analyzer.NewConstant(source.NoLocation, value.Num(math.Pi)),
		"tau":   analyzer.NewConstant(source.NoLocation, value.Num(2*math.Pi)),
		"inf":   analyzer.NewConstant(source.NoLocation, value.Num(math.Inf(1))),
		"null":  analyzer.NewConstant(source.NoLocation, value.TheNull),
		"true":  analyzer.NewConstant(source.NoLocation, value.True),
		"false": analyzer.NewConstant(source.NoLocation, value.False),

		"sqrt": analyzer.NewConstant(source.NoLocation, value.NewBuiltin("sqrt", 1, sqrtBuiltin)),
		"abs":  analyzer.NewConstant(source.NoLocation, value.NewBuiltin("abs", 1, absBuiltin)),
		"max":  analyzer.NewConstant(source.NoLocation, value.NewBuiltin("max", 1, maxBuiltin)),
		"min":  analyzer.NewConstant(source.NoLocation, value.NewBuiltin("min", 1, minBuiltin)),
		"norm": analyzer.NewConstant(source.NoLocation, value.NewBuiltin("norm", 1, normBuiltin)),
		"len":  analyzer.NewConstant(source.NoLocation, value.NewBuiltin("len", 1, lenBuiltin)),

		"shape2d": analyzer.NewConstant(source.NoLocation, value.NewBuiltin("shape2d", 1, shape2dBuiltin)),

		"echo": &analyzer.EchoMetafunction{},
	}
	environ := analyzer.NewBuiltinEnviron(names)
	// file's closure needs the environ it will itself be looked up
	// through (to analyze whatever it loads), so it is added after
	// BuiltinEnviron is constructed; NewBuiltinEnviron keeps this same
	// names map rather than copying it, so the mutation is visible.
	names["file"] = analyzer.NewConstant(source.NoLocation, value.NewBuiltin("file", 1, fileBuiltin(sys, environ, ev)))
	return environ
}
