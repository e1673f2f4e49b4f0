package runtime_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"curv/analyzer"
	"curv/builtins"
	"curv/runtime"
	"curv/source"
	"curv/syntax"
	"curv/value"
)

// bufferSystem is a minimal System for tests: echo output lands in a
// buffer instead of a real console, and `file` always fails since no
// test here loads a second script from disk.
type bufferSystem struct {
	out bytes.Buffer
}

func (s *bufferSystem) Console() io.Writer { return &s.out }

func (s *bufferSystem) LoadScript(path string, relativeTo *source.Script) (*source.Script, error) {
	return nil, &source.Exception{}
}

func run(t *testing.T, text string) (value.Value, *bufferSystem) {
	t.Helper()
	script := source.NewScript("<test>", text)
	sys := &bufferSystem{}
	ev := runtime.NewEvaluator()
	environ := builtins.NewEnviron(sys, ev)

	prog, err := syntax.Parse(script)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	op, err := analyzer.Analyze(prog, environ)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	result, err := ev.RunSafe(op, sys)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return result, sys
}

func runErr(t *testing.T, text string) error {
	t.Helper()
	script := source.NewScript("<test>", text)
	sys := &bufferSystem{}
	ev := runtime.NewEvaluator()
	environ := builtins.NewEnviron(sys, ev)

	prog, err := syntax.Parse(script)
	if err != nil {
		return err
	}
	op, err := analyzer.Analyze(prog, environ)
	if err != nil {
		return err
	}
	_, err = ev.RunSafe(op, sys)
	return err
}

func wantValue(t *testing.T, text string, want value.Value) {
	t.Helper()
	got, _ := run(t, text)
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", text, got.String(), want.String())
	}
}

func TestArithmetic(t *testing.T) {
	wantValue(t, "1 + 2 * 3", value.Num(7))
	wantValue(t, "(1 + 2) * 3", value.Num(9))
	wantValue(t, "2 ^ 10", value.Num(1024))
	wantValue(t, "-3 + 5", value.Num(2))
	wantValue(t, "7 / 2", value.Num(3.5))
}

func TestComparisonAndLogic(t *testing.T) {
	wantValue(t, "1 < 2", value.True)
	wantValue(t, "1 == 1.0", value.True)
	wantValue(t, "1 != 2", value.True)
	wantValue(t, "true && false", value.False)
	wantValue(t, "false || true", value.True)
	wantValue(t, "!true", value.False)
}

func TestIfElse(t *testing.T) {
	wantValue(t, "if true 1 else 2", value.Num(1))
	wantValue(t, "if false 1 else 2", value.Num(2))
	wantValue(t, "if false 1", value.TheNull)
}

func TestLetMutualOrdering(t *testing.T) {
	// y is forced while evaluating x's thunk; this is fine because y
	// does not itself refer back to x.
	wantValue(t, "let (x = y, y = 1) x", value.Num(1))
}

func TestLetIllegalSelfReference(t *testing.T) {
	err := runErr(t, "let (x = y, y = x) x")
	if err == nil || !strings.Contains(err.Error(), "illegal recursive reference") {
		t.Fatalf("got %v, want illegal recursive reference", err)
	}
}

func TestRecordForwardReferenceErrors(t *testing.T) {
	err := runErr(t, "{a = b; b = 1}.a")
	if err == nil || !strings.Contains(err.Error(), "field used before its own definition") {
		t.Fatalf("got %v, want forward-reference error", err)
	}
}

func TestModuleRecursiveFunction(t *testing.T) {
	wantValue(t, "{fact(n) = if (n <= 1) 1 else n * fact(n-1)}.fact(5)", value.Num(120))
}

func TestModuleSiblingRecursion(t *testing.T) {
	wantValue(t, `{
		isEven(n) = if (n == 0) true else isOdd(n-1);
		isOdd(n) = if (n == 0) false else isEven(n-1)
	}.isEven(10)`, value.True)
}

func TestClosureCapturesLetBinding(t *testing.T) {
	wantValue(t, "let (k = 10) (x -> x + k)(5)", value.Num(15))
}

func TestCurrying(t *testing.T) {
	wantValue(t, "(x -> y -> x + y)(3)(4)", value.Num(7))
}

func TestRangeAscendingDescendingAndStep(t *testing.T) {
	wantValue(t, "[1 .. 5]", value.NewList([]value.Value{value.Num(1), value.Num(2), value.Num(3), value.Num(4), value.Num(5)}))
	wantValue(t, "[1 ..< 4]", value.NewList([]value.Value{value.Num(1), value.Num(2), value.Num(3)}))
	wantValue(t, "[1 .. 10 by 3]", value.NewList([]value.Value{value.Num(1), value.Num(4), value.Num(7), value.Num(10)}))
	wantValue(t, "[5 .. 1 by -1]", value.NewList([]value.Value{value.Num(5), value.Num(4), value.Num(3), value.Num(2), value.Num(1)}))
}

func TestRangeZeroStepErrors(t *testing.T) {
	err := runErr(t, "[1 .. 5 by 0]")
	if err == nil || !strings.Contains(err.Error(), "step must not be zero") {
		t.Fatalf("got %v", err)
	}
}

func TestForActionValueIsAlwaysNull(t *testing.T) {
	wantValue(t, "for (x = 1 .. 3) x", value.TheNull)
}

func TestListSpreadConcatenates(t *testing.T) {
	wantValue(t, "[1, ...[2,3], 4]", value.NewList([]value.Value{value.Num(1), value.Num(2), value.Num(3), value.Num(4)}))
}

func TestDoVarAssignSequencing(t *testing.T) {
	wantValue(t, "do {var x = 1; x := x + 1; x := x * 10; x}", value.Num(20))
}

func TestDotAndAtIndexAccess(t *testing.T) {
	wantValue(t, "{a = 1; b = 2}.a", value.Num(1))
	wantValue(t, "[10, 20, 30].[1]", value.Num(20))
	wantValue(t, `{a = 1}.["a"]`, value.Num(1))
}

func TestListIndexOutOfRangeErrors(t *testing.T) {
	err := runErr(t, "[1,2,3].[5]")
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("got %v", err)
	}
}

func TestCallArityMismatchErrors(t *testing.T) {
	err := runErr(t, "(x -> x)(1, 2)")
	if err == nil || !strings.Contains(err.Error(), "expected 1 argument") {
		t.Fatalf("got %v", err)
	}
}

func TestCallNonFunctionErrors(t *testing.T) {
	err := runErr(t, "1(2)")
	if err == nil || !strings.Contains(err.Error(), "not callable") {
		t.Fatalf("got %v", err)
	}
}

func TestEchoWritesToConsole(t *testing.T) {
	_, sys := run(t, `echo("hi", 1+1)`)
	if sys.out.String() != "ECHO: \"hi\",2\n" {
		t.Fatalf("got %q", sys.out.String())
	}
}

func TestTypeMismatchErrors(t *testing.T) {
	err := runErr(t, `1 + "a"`)
	if err == nil || !strings.Contains(err.Error(), "expected a number") {
		t.Fatalf("got %v", err)
	}
}

func TestErrorThroughNestedCallsPropagates(t *testing.T) {
	err := runErr(t, "{f(x) = g(x); g(x) = x.[0]}.f(1)")
	if err == nil || !strings.Contains(err.Error(), "expected a list") {
		t.Fatalf("got %v, want a propagated type-mismatch error", err)
	}
	exc, ok := err.(*source.Exception)
	if !ok {
		t.Fatalf("got %T, want *source.Exception", err)
	}
	if len(exc.Trace) != 2 {
		t.Fatalf("Trace = %v, want two frames (g, then f)", exc.Trace)
	}
	if !strings.Contains(exc.Trace[0], "in g") {
		t.Fatalf("Trace[0] = %q, want the innermost frame g", exc.Trace[0])
	}
	if !strings.Contains(exc.Trace[1], "in f") {
		t.Fatalf("Trace[1] = %q, want the outer frame f", exc.Trace[1])
	}
	if !strings.Contains(err.Error(), "in g") || !strings.Contains(err.Error(), "in f") {
		t.Fatalf("Error() = %q, want it to render the backtrace", err.Error())
	}
}

func TestMaxTicksBoundsRunaway(t *testing.T) {
	script := source.NewScript("<test>", "{loop(n) = loop(n+1)}.loop(0)")
	sys := &bufferSystem{}
	ev := runtime.NewEvaluator()
	ev.MaxTicks = 1000
	environ := builtins.NewEnviron(sys, ev)
	prog, err := syntax.Parse(script)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	op, err := analyzer.Analyze(prog, environ)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	_, err = ev.RunSafe(op, sys)
	if err == nil || !strings.Contains(err.Error(), "tick limit") {
		t.Fatalf("got %v, want a tick-limit error", err)
	}
}
