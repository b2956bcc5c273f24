package cli

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/syto/internal/compiler"
	"github.com/roach88/syto/internal/engine"
	"github.com/roach88/syto/internal/ir"
	"github.com/roach88/syto/internal/queryir"
	"github.com/roach88/syto/internal/querysql"
	"github.com/roach88/syto/internal/relation"
	"github.com/roach88/syto/internal/store"
)

// Query command error codes.
const (
	ErrCodeUnknownEntity = "E_UNKNOWN_ENTITY"
	ErrCodeBadParam      = "E_BAD_PARAM"
	ErrCodeDatabase      = "E_DATABASE"
	ErrCodeBadQuery      = "E_BAD_QUERY"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Database string

	// IDGenerator allows overriding the query id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.QueryIDGenerator
}

// QueryResult is the outcome of one filter call.
type QueryResult struct {
	Entity      string           `json:"entity"`
	SQL         string           `json:"sql"`
	Args        []any            `json:"args"`
	Fingerprint string           `json:"fingerprint"`
	Rows        []map[string]any `json:"rows,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <specs-dir> <entity> [key=value...]",
		Short: "Filter an entity with request parameters",
		Long: `Run one filter call and print the compiled SQL and its arguments.

Parameters are given as key=value pairs and arrive as strings, exactly as
they would from a query string; an empty value leaves a range bound open.
With --db the query is executed against the SQLite database and the
matching rows are printed.

Example:
  syto query ./specs Entity color=green wgt_from=100
  syto query ./specs Comment author=1 start_date=2022-02-01 --db ./app.db`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], args[1], args[2:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to execute against")

	return cmd
}

func runQuery(opts *QueryOptions, specsDir, entityName string, pairs []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	params, err := parseParams(pairs)
	if err != nil {
		_ = formatter.Error(ErrCodeBadParam, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid parameters", err)
	}

	loadResult, loadErrors := compiler.LoadSpecs(specsDir, compiler.LoadModeFailFast)
	if len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return outputCompileError(formatter, code, message, nil)
	}

	ent := loadResult.Entity(entityName)
	if ent == nil {
		message := fmt.Sprintf("unknown entity %q", entityName)
		_ = formatter.Error(ErrCodeUnknownEntity, message, nil)
		return NewExitError(ExitCommandError, message)
	}

	gen := opts.IDGenerator
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	queryID := gen.Generate()
	formatter.TraceID = queryID

	eng := engine.New(
		engine.WithLogger(newLogger(opts.RootOptions, formatter.GetErrWriter())),
		engine.WithIDGenerator(engine.NewFixedGenerator(queryID)),
	)

	q, err := eng.FilterBy(ent, params)
	if err != nil {
		code := string(engine.Code(err))
		if code == "" {
			code = compiler.ErrCodeGeneric
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "filter failed", err)
	}

	rel, ok := relation.AsRelation(q)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("entity %s: query is not a relation", entityName))
	}
	sel := rel.Select()

	if check := queryir.Validate(sel); !check.Valid {
		message := fmt.Sprintf("entity %s: malformed query: %s", ent.Name, strings.Join(check.Problems, "; "))
		_ = formatter.Error(ErrCodeBadQuery, message, map[string]any{"problems": check.Problems})
		return NewExitError(ExitCommandError, message)
	}

	sqlText, args, err := querysql.NewSQLCompiler().Compile(sel)
	if err != nil {
		_ = formatter.Error(compiler.ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "compile failed", err)
	}
	if args == nil {
		args = []any{}
	}

	fingerprint, err := ir.QueryFingerprint(sqlText, args)
	if err != nil {
		_ = formatter.Error(compiler.ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "fingerprint failed", err)
	}

	result := QueryResult{Entity: ent.Name, SQL: sqlText, Args: args, Fingerprint: fingerprint}

	if opts.Database != "" {
		rows, err := executeQuery(cmd.Context(), opts.Database, sel)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "query failed", err)
		}
		result.Rows = rows
	}

	formatter.VerboseLog("query %s: %d parameter(s), fingerprint %s", queryID, params.Len(), fingerprint[:16])

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputQueryText(formatter, result, opts.Database != "")
}

// parseParams turns key=value pairs into parameters. Repeated keys keep
// the first value.
func parseParams(pairs []string) (ir.Params, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(key) == "" {
			return ir.Params{}, fmt.Errorf("parameter %q is not of the form key=value", pair)
		}
		values.Add(key, value)
	}
	return ir.ParamsFromValues(values), nil
}

// executeQuery runs sel against the database at path.
func executeQuery(ctx context.Context, path string, sel queryir.Select) ([]map[string]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	rows, err := st.Select(ctx, sel)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = map[string]any(row)
	}
	return out, nil
}

// outputQueryText prints the statement, its canonical args and any rows.
func outputQueryText(formatter *OutputFormatter, result QueryResult, executed bool) error {
	w := formatter.Writer

	args, err := ir.MarshalCanonical(result.Args)
	if err != nil {
		return fmt.Errorf("encoding args: %w", err)
	}
	fmt.Fprintln(w, result.SQL)
	fmt.Fprintf(w, "args: %s\n", args)

	if !executed {
		return nil
	}

	fmt.Fprintln(w)
	for _, row := range result.Rows {
		data, err := ir.MarshalCanonical(row)
		if err != nil {
			return fmt.Errorf("encoding row: %w", err)
		}
		fmt.Fprintln(w, string(data))
	}
	fmt.Fprintf(w, "(%d row(s))\n", len(result.Rows))
	return nil
}
