package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a filter test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the CUE specs directory. Relative paths are resolved against
	// the scenario file location.
	Specs string `yaml:"specs"`

	// Entity is the default entity for cases that name none.
	Entity string `yaml:"entity,omitempty"`

	// Seed maps table names to rows inserted before the cases run. Each
	// table must belong to an entity with declared columns; values are
	// coerced to the column types.
	Seed map[string][]map[string]any `yaml:"seed,omitempty"`

	// Cases are the filter calls to run, in order.
	Cases []Case `yaml:"cases"`
}

// Case is one filter call.
type Case struct {
	// Name identifies the case in results and snapshots.
	Name string `yaml:"name"`

	// Entity overrides the scenario's default entity.
	Entity string `yaml:"entity,omitempty"`

	// Params is the parameter mapping. Values are converted with
	// ir.ParamsFromMap.
	Params map[string]any `yaml:"params"`

	// Expect specifies the expected outcome.
	// If nil, the case is only recorded (useful for golden snapshots).
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a case. Omitted fields are not
// checked.
type Expect struct {
	SQL      string   `yaml:"sql,omitempty"`
	Args     []any    `yaml:"args,omitempty"`
	IDs      []int64  `yaml:"ids,omitempty"`
	Count    *int     `yaml:"count,omitempty"`
	Error    string   `yaml:"error,omitempty"`
	Key      string   `yaml:"key,omitempty"`
	Warnings []string `yaml:"warnings,omitempty"`
}

// EntityFor returns the entity a case runs against.
func (s *Scenario) EntityFor(c Case) string {
	if c.Entity != "" {
		return c.Entity
	}
	return s.Entity
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the specs path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) && basePath != "" {
		scenario.Specs = filepath.Join(basePath, scenario.Specs)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if _, err := os.Stat(scenario.Specs); os.IsNotExist(err) {
		return nil, fmt.Errorf("invalid scenario: specs directory not found: %s", scenario.Specs)
	}

	return scenario, nil
}

// ParseScenario decodes scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Specs == "" {
		return fmt.Errorf("specs directory is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true

		if s.EntityFor(c) == "" {
			return fmt.Errorf("cases[%d]: entity is required (set it on the case or the scenario)", i)
		}
		if c.Expect != nil && c.Expect.Key != "" && c.Expect.Error == "" {
			return fmt.Errorf("cases[%d].expect: key requires error", i)
		}
		if c.Expect != nil && c.Expect.Error != "" && (c.Expect.SQL != "" || c.Expect.IDs != nil) {
			return fmt.Errorf("cases[%d].expect: error cannot be combined with sql or ids", i)
		}
	}

	return nil
}
