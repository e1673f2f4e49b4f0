package conformance

import "testing"

func TestConformance(t *testing.T) {
	tests, err := LoadAllTests("testdata")
	if err != nil {
		t.Fatalf("failed to load fixtures: %v", err)
	}
	if len(tests) == 0 {
		t.Fatal("no fixtures loaded")
	}

	runner := NewRunner()
	results := runner.RunAll(tests)

	fileGroups := make(map[string][]TestResult)
	for _, r := range results {
		fileGroups[r.Test.File] = append(fileGroups[r.Test.File], r)
	}

	for file, group := range fileGroups {
		t.Run(file, func(t *testing.T) {
			for _, r := range group {
				t.Run(r.Test.Test.Name, func(t *testing.T) {
					if !r.Passed {
						t.Error(r.Err)
					}
				})
			}
		})
	}

	t.Logf("%s", FormatStats(ComputeStats(results)))
}
