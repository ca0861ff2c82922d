package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/termql/internal/store"
	"github.com/roach88/termql/internal/validate"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is a path to a YAML terminology fixture.
	// Relative paths are resolved against the scenario file location.
	Fixture string `yaml:"fixture,omitempty"`

	// Terminology is an inline fixture, loaded after Fixture.
	Terminology *store.Fixture `yaml:"terminology,omitempty"`

	// Validation overrides the default validator options.
	Validation *ValidationOptions `yaml:"validation,omitempty"`

	// RequestID is the fixed request ID stamped on every trace event.
	// If empty, defaults to "test-request-default".
	RequestID string `yaml:"request_id,omitempty"`

	// Queries are executed in order.
	Queries []QueryStep `yaml:"queries"`

	// Assertions relate the results of named queries.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ValidationOptions overrides individual validator options. Unset fields
// keep their defaults.
type ValidationOptions struct {
	MinTermLength *int  `yaml:"min_term_length,omitempty"`
	MinIDLength   *int  `yaml:"min_id_length,omitempty"`
	MaxIDLength   *int  `yaml:"max_id_length,omitempty"`
	CheckDigits   *bool `yaml:"check_digits,omitempty"`
}

// Options returns validate.DefaultOptions with the overrides applied.
func (v *ValidationOptions) Options() validate.Options {
	opts := validate.DefaultOptions()
	if v == nil {
		return opts
	}
	if v.MinTermLength != nil {
		opts.MinTermLength = *v.MinTermLength
	}
	if v.MinIDLength != nil {
		opts.MinIDLength = *v.MinIDLength
	}
	if v.MaxIDLength != nil {
		opts.MaxIDLength = *v.MaxIDLength
	}
	if v.CheckDigits != nil {
		opts.CheckDigits = *v.CheckDigits
	}
	return opts
}

// QueryStep is one query with its expected outcome.
type QueryStep struct {
	// Name labels the query for assertions. Optional, unique when set.
	Name string `yaml:"name,omitempty"`

	// Query is the query text.
	Query string `yaml:"query"`

	// Expect specifies the expected outcome.
	// If nil, the query only has to compile and evaluate.
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Expectation specifies the expected outcome of a query.
type Expectation struct {
	// IDs is the exact expected result. An empty list expects no match.
	IDs []string `yaml:"ids,omitempty"`

	// Contains lists ids that must be in the result.
	Contains []string `yaml:"contains,omitempty"`

	// Excludes lists ids that must not be in the result.
	Excludes []string `yaml:"excludes,omitempty"`

	// Count is the expected number of results.
	Count *int `yaml:"count,omitempty"`

	// Errors lists the expected failure codes, in order.
	Errors []string `yaml:"errors,omitempty"`

	// exactIDs records whether ids was present in the YAML, so that
	// "ids: []" expects an empty result.
	exactIDs bool
}

// UnmarshalYAML records whether ids was given.
func (e *Expectation) UnmarshalYAML(node *yaml.Node) error {
	type plain Expectation
	var p plain
	if err := decodeStrict(node, &p); err != nil {
		return err
	}
	*e = Expectation(p)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "ids" {
			e.exactIDs = true
			if e.IDs == nil {
				e.IDs = []string{}
			}
		}
	}
	return nil
}

// decodeStrict decodes node rejecting unknown fields. yaml.Node.Decode
// does not inherit KnownFields from the outer decoder.
func decodeStrict(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// Assertion relates the results of named queries.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Queries names the queries the assertion covers, in order.
	Queries []string `yaml:"queries"`
}

// Assertion type constants.
const (
	AssertSameFingerprint = "same_fingerprint"
	AssertEqualResults    = "equal_results"
	AssertSubset          = "subset"
	AssertDisjoint        = "disjoint"
)

// Failure codes for errors other than validation errors.
const (
	ErrorLex        = "lex"
	ErrorParse      = "parse"
	ErrorEvaluation = "evaluation"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve the fixture path relative to the scenario BEFORE validation
	if scenario.Fixture != "" && !filepath.IsAbs(scenario.Fixture) {
		scenario.Fixture = filepath.Join(filepath.Dir(path), scenario.Fixture)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without validating it. Fixture paths
// are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir in lexical
// order. A non-empty filter is a glob matched against the file name
// without its extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	slices.Sort(files)
	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Fixture == "" && s.Terminology == nil {
		return fmt.Errorf("fixture or terminology is required")
	}

	if s.Fixture != "" {
		if _, err := os.Stat(s.Fixture); os.IsNotExist(err) {
			return fmt.Errorf("fixture file not found: %s", s.Fixture)
		}
	}

	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	names := make(map[string]bool)
	for i, q := range s.Queries {
		if q.Name == "" {
			continue
		}
		if names[q.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, q.Name)
		}
		names[q.Name] = true
	}

	for i, q := range s.Queries {
		if q.Expect == nil {
			continue
		}
		if len(q.Expect.Errors) > 0 && (q.Expect.exactIDs || len(q.Expect.Contains) > 0 || len(q.Expect.Excludes) > 0 || q.Expect.Count != nil) {
			return fmt.Errorf("queries[%d].expect: errors cannot be combined with result expectations", i)
		}
		if q.Expect.Count != nil && *q.Expect.Count < 0 {
			return fmt.Errorf("queries[%d].expect: count must be non-negative", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, names); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion, names map[string]bool) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertSameFingerprint, AssertEqualResults, AssertSubset, AssertDisjoint:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if len(a.Queries) < 2 {
		return fmt.Errorf("assertions[%d]: %s needs at least two queries", index, a.Type)
	}
	for _, name := range a.Queries {
		if !names[name] {
			return fmt.Errorf("assertions[%d]: unknown query %q", index, name)
		}
	}
	return nil
}
