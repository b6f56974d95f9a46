package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/linkgraph/internal/report"
)

// Scenario is one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Snapshot is the graph snapshot to load. Relative paths are resolved
	// against the scenario file's directory by LoadScenario.
	Snapshot string `yaml:"snapshot"`

	// Assertions validate the resolution results.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one fact about the resolved graph.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Target is "project-path:name". Required by every type except lint.
	Target string `yaml:"target,omitempty"`

	// Section is a report section name (contains, excludes, equals, count).
	Section string `yaml:"section,omitempty"`

	// Values are expected section entries, lint codes, or the targets that
	// must be built after Target (build_order).
	Values []string `yaml:"values,omitempty"`

	// Count is the expected number of section entries (count).
	Count int `yaml:"count,omitempty"`

	// Code must appear in the resolution error (fails). Optional.
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertContains   = "contains"
	AssertExcludes   = "excludes"
	AssertEquals     = "equals"
	AssertCount      = "count"
	AssertFails      = "fails"
	AssertIdempotent = "idempotent"
	AssertBuildOrder = "build_order"
	AssertLint       = "lint"
)

// needsSection reports whether the assertion type reads a report section.
func needsSection(typ string) bool {
	switch typ {
	case AssertContains, AssertExcludes, AssertEquals, AssertCount:
		return true
	default:
		return false
	}
}

// LoadScenario reads and parses a scenario YAML file and resolves its
// snapshot path against the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Snapshot != "" && !filepath.IsAbs(scenario.Snapshot) {
		scenario.Snapshot = filepath.Join(filepath.Dir(path), scenario.Snapshot)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, ordered by file
// name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Snapshot == "" {
		return fmt.Errorf("snapshot is required")
	}
	if _, err := os.Stat(s.Snapshot); os.IsNotExist(err) {
		return fmt.Errorf("snapshot not found: %s", s.Snapshot)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertContains, AssertExcludes, AssertEquals, AssertCount,
		AssertFails, AssertIdempotent, AssertBuildOrder:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for %s", index, a.Type)
		}
	case AssertLint:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if needsSection(a.Type) && !slices.Contains(report.SectionNames, a.Section) {
		return fmt.Errorf("assertions[%d]: unknown section %q for %s", index, a.Section, a.Type)
	}

	switch a.Type {
	case AssertContains, AssertExcludes, AssertBuildOrder:
		if len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: values list is required for %s", index, a.Type)
		}
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	}
	return nil
}
