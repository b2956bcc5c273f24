package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/syto/internal/compiler"
	"github.com/roach88/syto/internal/engine"
	"github.com/roach88/syto/internal/ir"
	"github.com/roach88/syto/internal/querysql"
	"github.com/roach88/syto/internal/relation"
	"github.com/roach88/syto/internal/store"
	"github.com/roach88/syto/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenario cases against one compiled spec set and one database.
type Harness struct {
	store    *store.Store
	engine   *engine.Engine
	entities *compiler.LoadResult
	warnings *testutil.WarningRecorder
	compiler *querysql.SQLCompiler
	seeded   map[string]bool
	logger   *slog.Logger
}

// Option configures a Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes harness and engine logs to logger. By default logs are
// discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Load and compile the CUE entity specs
// 3. Create and seed the tables named in the scenario
// 4. Run each case and check its expect clause
// 5. Return result with pass/fail, case outcomes and errors
//
// A returned error means the scenario could not run at all; failing
// expectations are reported through Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	loaded, errs := compiler.LoadSpecs(scenario.Specs, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load specs: %w", errors.Join(errs...))
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	warnings := testutil.NewWarningRecorder()
	h := &Harness{
		store:    st,
		entities: loaded,
		warnings: warnings,
		compiler: querysql.NewSQLCompiler(),
		seeded:   make(map[string]bool),
		logger:   cfg.logger,
		engine: engine.New(
			engine.WithLogger(cfg.logger),
			engine.WithIDGenerator(engine.NewFixedGenerator("harness-query")),
			engine.WithWarningHandler(warnings.Handle),
		),
	}

	ctx := context.Background()
	if err := h.seed(ctx, scenario.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed: %w", err)
	}

	result := NewResult()
	for i, c := range scenario.Cases {
		cr, err := h.runCase(ctx, scenario.EntityFor(c), c)
		if err != nil {
			return nil, fmt.Errorf("case %d (%s): %w", i, c.Name, err)
		}
		result.AddCase(cr)

		for _, failure := range CheckExpect(c.Expect, cr) {
			result.AddError(failure.Error())
		}
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"cases", len(result.Cases),
		"pass", result.Pass,
	)
	return result, nil
}

// seed creates each table from its entity's columns and inserts the rows.
// Tables are seeded in sorted order so row ids are deterministic.
func (h *Harness) seed(ctx context.Context, seed map[string][]map[string]any) error {
	tables := make([]string, 0, len(seed))
	for table := range seed {
		tables = append(tables, table)
	}
	slices.Sort(tables)

	for _, table := range tables {
		ent := h.entityForTable(table)
		if ent == nil || len(ent.Columns) == 0 {
			return fmt.Errorf("table %s: no entity with declared columns", table)
		}
		if err := h.store.EnsureTable(ctx, table, ent.Columns); err != nil {
			return err
		}

		rows := make([]map[string]any, 0, len(seed[table]))
		for i, raw := range seed[table] {
			row, err := coerceRow(ent, raw)
			if err != nil {
				return fmt.Errorf("table %s: row %d: %w", table, i, err)
			}
			rows = append(rows, row)
		}
		if _, err := h.store.InsertAll(ctx, table, rows); err != nil {
			return err
		}

		h.seeded[table] = true
		h.logger.Debug("table seeded", "table", table, "rows", len(rows))
	}
	return nil
}

func (h *Harness) entityForTable(table string) *engine.Entity {
	for _, ent := range h.entities.Entities {
		if ent.Table == table {
			return ent
		}
	}
	return nil
}

// coerceRow converts YAML values to the entity's column types.
func coerceRow(ent *engine.Entity, raw map[string]any) (map[string]any, error) {
	row := make(map[string]any, len(raw))
	for col, v := range raw {
		val, err := ir.FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		coerced, err := ent.Columns.Coerce(col, val)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		row[col] = ir.Native(coerced)
	}
	return row, nil
}

// runCase runs one filter call. Filter errors are part of the outcome;
// only harness failures are returned as errors.
func (h *Harness) runCase(ctx context.Context, entityName string, c Case) (CaseResult, error) {
	cr := CaseResult{Name: c.Name, Entity: entityName}

	ent := h.entities.Entity(entityName)
	if ent == nil {
		return cr, fmt.Errorf("unknown entity %q", entityName)
	}

	params, err := ir.ParamsFromMap(c.Params)
	if err != nil {
		return cr, fmt.Errorf("params: %w", err)
	}

	h.warnings.Reset()
	q, filterErr := h.engine.FilterBy(ent, params)
	for _, w := range h.warnings.Warnings() {
		cr.Warnings = append(cr.Warnings, string(engine.Code(w)))
	}

	if filterErr != nil {
		cr.Error = filterErr.Error()
		cr.ErrorCode = string(engine.Code(filterErr))
		var ipe *engine.InvalidParameterError
		if errors.As(filterErr, &ipe) {
			cr.ErrorKey = ipe.Key
		}
		return cr, nil
	}

	rel, ok := relation.AsRelation(q)
	if !ok {
		return cr, fmt.Errorf("entity %s: query factory returned %T, not a relation", entityName, q)
	}
	sel := rel.Select()

	cr.SQL, cr.Args, err = h.compiler.Compile(sel)
	if err != nil {
		return cr, fmt.Errorf("compile: %w", err)
	}
	if cr.Args == nil {
		cr.Args = []any{}
	}

	if h.seeded[sel.From] {
		cr.IDs, err = h.store.SelectIDs(ctx, sel)
		if err != nil {
			return cr, fmt.Errorf("execute: %w", err)
		}
	}

	return cr, nil
}
