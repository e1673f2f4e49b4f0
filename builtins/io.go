package builtins

import (
	"curv/analyzer"
	"curv/runtime"
	"curv/source"
	"curv/syntax"
	"curv/system"
	"curv/value"
)

// fileBuiltin implements the `file` builtin: load, parse, analyze and
// evaluate another script by path, relative to the including script,
// and return its value as runtime.Evaluator.Run gives it for a
// top-level program. Runs the same
// load-parse-analyze-evaluate pipeline as the top-level driver, but
// invoked recursively through runtime.Evaluator rather than once at
// process startup.
//
// The including script is read from loc.Script (the call site's own
// location) rather than a captured variable, so this closure — and
// the analyzer.Operation tree that embeds it — carries no per-script
// identity. That is what lets a system.Loader cache an analysis by
// content digest and safely share it across every script whose text
// happens to match: a cached `file("x")` call site still resolves "x"
// relative to whichever script's text it was parsed from, via that
// call's own Location, not whichever script first triggered the
// analysis.
func fileBuiltin(sys system.System, environ *analyzer.BuiltinEnviron, ev *runtime.Evaluator) value.BuiltinFunc {
	return func(args []value.Value, loc source.Location) value.Value {
		pathVal, ok := args[0].(value.Str)
		if !ok {
			panic(source.NewException(loc, "file: expected a string path, got a "+args[0].Kind().String()))
		}

		script, err := sys.LoadScript(pathVal.Text(), loc.Script)
		if err != nil {
			panic(source.NewException(loc, "file: "+err.Error()))
		}

		analyze := func() (analyzer.Operation, error) {
			prog, err := syntax.Parse(script)
			if err != nil {
				return nil, err
			}
			return analyzer.Analyze(prog, environ)
		}

		var op analyzer.Operation
		if loader, ok := sys.(*system.Loader); ok {
			op, err = loader.Analyzed(script, analyze)
		} else {
			op, err = analyze()
		}
		if err != nil {
			panic(source.NewException(loc, "file: "+err.Error()))
		}

		result, err := ev.RunSafe(op, sys)
		if err != nil {
			panic(source.NewException(loc, "file: "+err.Error()))
		}
		return result
	}
}
