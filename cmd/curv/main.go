package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"curv/analyzer"
	"curv/builtins"
	"curv/runtime"
	"curv/source"
	"curv/syntax"
	"curv/system"
)

func main() {
	evalExpr := flag.String("eval", "", "evaluate an expression instead of a script file")
	flag.Parse()

	loader := system.NewLoader(os.Stdout)

	var script *source.Script
	switch {
	case *evalExpr != "":
		script = source.NewScript("<eval>", *evalExpr)
	case flag.NArg() == 1:
		s, err := loader.LoadScript(flag.Arg(0), nil)
		if err != nil {
			log.Fatalf("curv: %v", err)
		}
		script = s
	default:
		fmt.Fprintln(os.Stderr, "usage: curv [-eval EXPR] SCRIPT")
		os.Exit(1)
	}

	if err := run(script, loader); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(script *source.Script, loader *system.Loader) error {
	prog, err := syntax.Parse(script)
	if err != nil {
		return err
	}

	ev := runtime.NewEvaluator()
	environ := builtins.NewEnviron(loader, ev)

	op, err := analyzer.Analyze(prog, environ)
	if err != nil {
		return err
	}

	result, err := ev.RunSafe(op, loader)
	if err != nil {
		return err
	}

	fmt.Println(result.String())
	return nil
}
