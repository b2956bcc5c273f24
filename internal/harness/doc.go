// Package harness runs filter scenarios end to end.
//
// A scenario compiles a directory of CUE entity specs, seeds an in-memory
// SQLite database, and runs a list of filter cases. Each case builds a
// parameter mapping, calls FilterBy, compiles the resulting query to SQL and
// executes it, then checks the outcome against the case's expect clause.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	specs: ../specs            # directory, relative to the scenario file
//	entity: Entity             # default entity for cases
//	seed:
//	  entities:
//	    - { name: Alpha, weight: 100, created_at: "2021-01-01" }
//	cases:
//	  - name: weight_between
//	    params: { wgt_from: 100, wgt_to: 200 }
//	    expect:
//	      sql: SELECT ...
//	      args: [100, 200]
//	      ids: [1, 2]
//	  - name: bad_weight
//	    params: { wgt_from: heavy }
//	    expect:
//	      error: INVALID_PARAMETER
//	      key: wgt_from
//
// # Expect Clause
//
//   - sql: exact compiled statement
//   - args: bound values, compared in canonical JSON form
//   - ids: matching row ids in query order
//   - count: number of matching rows
//   - error: expected error code; key: offending parameter
//   - warnings: expected warning codes, in order
//
// Omitted fields are not checked.
//
// # Deterministic Testing
//
// Every scenario runs in a fresh in-memory database with fixed query IDs,
// and every compiled query carries an ORDER BY, so snapshots are stable and
// can be compared against golden files with RunWithGolden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/entities.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
