package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/syto/internal/ir"
)

// Snapshot renders a result as stable text for golden comparison:
//
//	scenario: <name>
//
//	case: <name>
//	entity: <entity>
//	sql: <statement>
//	args: <canonical JSON>
//	ids: <canonical JSON>
//
// Failed calls print "error: <message>" instead of sql, args and ids.
// Warnings print as "warnings: <canonical JSON>" when present.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\n", scenarioName)

	for _, c := range result.Cases {
		fmt.Fprintf(&buf, "\ncase: %s\n", c.Name)
		fmt.Fprintf(&buf, "entity: %s\n", c.Entity)

		if c.Error != "" {
			fmt.Fprintf(&buf, "error: %s\n", c.Error)
		} else {
			fmt.Fprintf(&buf, "sql: %s\n", c.SQL)

			args, err := ir.MarshalCanonical(c.Args)
			if err != nil {
				return nil, fmt.Errorf("case %s: args: %w", c.Name, err)
			}
			fmt.Fprintf(&buf, "args: %s\n", args)

			if c.Executed() {
				ids := make([]any, len(c.IDs))
				for i, id := range c.IDs {
					ids[i] = id
				}
				data, err := ir.MarshalCanonical(ids)
				if err != nil {
					return nil, fmt.Errorf("case %s: ids: %w", c.Name, err)
				}
				fmt.Fprintf(&buf, "ids: %s\n", data)
			}
		}

		if len(c.Warnings) > 0 {
			data, err := ir.MarshalCanonical(c.Warnings)
			if err != nil {
				return nil, fmt.Errorf("case %s: warnings: %w", c.Name, err)
			}
			fmt.Fprintf(&buf, "warnings: %s\n", data)
		}
	}

	return []byte(buf.String()), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also assert on Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
