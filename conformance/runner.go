package conformance

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"curv/analyzer"
	"curv/builtins"
	"curv/runtime"
	"curv/source"
	"curv/syntax"
	"curv/value"
)

// bufferSystem is a system.System that captures echo output in memory
// instead of writing to a real console, and refuses `file` (no fixture
// needs to load a sibling script).
type bufferSystem struct {
	out bytes.Buffer
}

func (s *bufferSystem) Console() io.Writer { return &s.out }

func (s *bufferSystem) LoadScript(path string, relativeTo *source.Script) (*source.Script, error) {
	return nil, fmt.Errorf("file: not available in conformance fixtures")
}

// TestResult is the outcome of running one TestCase.
type TestResult struct {
	Test   LoadedTest
	Passed bool
	Err    error
}

// Runner evaluates TestCases against the real parse/analyze/evaluate
// pipeline — no mocking of any stage.
type Runner struct{}

func NewRunner() *Runner { return &Runner{} }

func (r *Runner) Run(t LoadedTest) TestResult {
	tc := t.Test
	script := source.NewScript(tc.Name, tc.Program)

	sys := &bufferSystem{}
	ev := runtime.NewEvaluator()
	environ := builtins.NewEnviron(sys, ev)

	prog, err := syntax.Parse(script)
	if err != nil {
		return r.checkError(t, err)
	}

	op, err := analyzer.Analyze(prog, environ)
	if err != nil {
		return r.checkError(t, err)
	}

	result, err := ev.RunSafe(op, sys)
	if err != nil {
		return r.checkError(t, err)
	}

	if tc.ExpectError != "" {
		return TestResult{Test: t, Passed: false, Err: fmt.Errorf("expected error containing %q, got value %s", tc.ExpectError, result.String())}
	}

	if tc.ExpectOutput != "" {
		got := sys.out.String()
		if got != tc.ExpectOutput {
			return TestResult{Test: t, Passed: false, Err: fmt.Errorf("expected output %q, got %q", tc.ExpectOutput, got)}
		}
	}

	if tc.ExpectValue != nil {
		want, err := convertYAMLValue(tc.ExpectValue)
		if err != nil {
			return TestResult{Test: t, Passed: false, Err: err}
		}
		if !result.Equal(want) {
			return TestResult{Test: t, Passed: false, Err: fmt.Errorf("expected %s, got %s", want.String(), result.String())}
		}
	}

	return TestResult{Test: t, Passed: true}
}

func (r *Runner) checkError(t LoadedTest, err error) TestResult {
	if t.Test.ExpectError == "" {
		return TestResult{Test: t, Passed: false, Err: fmt.Errorf("unexpected error: %v", err)}
	}
	if !strings.Contains(err.Error(), t.Test.ExpectError) {
		return TestResult{Test: t, Passed: false, Err: fmt.Errorf("expected error containing %q, got %q", t.Test.ExpectError, err.Error())}
	}
	return TestResult{Test: t, Passed: true}
}

func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, len(tests))
	for i, t := range tests {
		results[i] = r.Run(t)
	}
	return results
}

// SummaryStats mirrors a conformance run's pass/fail counts.
type SummaryStats struct {
	Total, Passed, Failed int
}

func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}
	return stats
}

func FormatStats(s SummaryStats) string {
	return fmt.Sprintf("%d passed, %d failed (%d total)", s.Passed, s.Failed, s.Total)
}

// convertYAMLValue converts a decoded YAML scalar/sequence into a
// Curv value.Value for comparison against an evaluation result.
func convertYAMLValue(v interface{}) (value.Value, error) {
	switch val := v.(type) {
	case int:
		return value.Num(float64(val)), nil
	case float64:
		return value.Num(val), nil
	case string:
		return value.Str(val), nil
	case bool:
		if val {
			return value.True, nil
		}
		return value.False, nil
	case nil:
		return value.TheNull, nil
	case []interface{}:
		elems := make([]value.Value, len(val))
		for i, e := range val {
			cv, err := convertYAMLValue(e)
			if err != nil {
				return nil, err
			}
			elems[i] = cv
		}
		return value.NewList(elems), nil
	default:
		return nil, fmt.Errorf("unsupported fixture value type: %T", v)
	}
}
