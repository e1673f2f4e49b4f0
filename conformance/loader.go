package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadedTest pairs a TestCase with the file it came from, for
// grouped subtest reporting.
type LoadedTest struct {
	File string
	Test TestCase
}

// LoadAllTests walks testdata/ and loads every fixture file's cases.
func LoadAllTests(dir string) ([]LoadedTest, error) {
	var loaded []LoadedTest

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		tests, err := loadTestFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		relPath, _ := filepath.Rel(dir, path)
		for _, t := range tests {
			loaded = append(loaded, LoadedTest{File: relPath, Test: t})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

func loadTestFile(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}
	return suite.Tests, nil
}
