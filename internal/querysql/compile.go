package querysql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/syto/internal/ir"
	"github.com/roach88/syto/internal/queryir"
)

// DefaultOrderKey is the column used when a Select sets no OrderBy.
const DefaultOrderKey = "id"

// SQLCompiler compiles the query IR to parameterized SQL for SQLite.
//
// CRITICAL: ALL queries include ORDER BY for deterministic results.
// CRITICAL: All values are parameterized (never interpolated).
// Identifiers are validated and double-quoted; bare field names are
// qualified with the Select's table.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileSelect compiles a queryir.Select to SQL.
func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	table, err := QuoteIdent(q.From)
	if err != nil {
		return "", nil, fmt.Errorf("compile table: %w", err)
	}

	selectClause, err := c.compileColumns(q.From, q.Columns)
	if err != nil {
		return "", nil, err
	}

	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.From, q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	orderKey := q.OrderBy
	if orderKey == "" {
		orderKey = DefaultOrderKey
	}
	order, err := qualify(q.From, orderKey)
	if err != nil {
		return "", nil, fmt.Errorf("compile order: %w", err)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s ASC",
		selectClause,
		table,
		whereClause,
		order)

	return sql, params, nil
}

// compileColumns renders the projection. No columns means "<table>.*".
func (c *SQLCompiler) compileColumns(table string, cols []string) (string, error) {
	if len(cols) == 0 {
		t, err := QuoteIdent(table)
		if err != nil {
			return "", err
		}
		return t + ".*", nil
	}

	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		q, err := qualify(table, col)
		if err != nil {
			return "", fmt.Errorf("compile columns: %w", err)
		}
		parts = append(parts, q)
	}
	return strings.Join(parts, ", "), nil
}

// compilePredicate compiles a predicate to a WHERE clause fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(table string, p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil // Always true
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(table, pred)
	case *queryir.Equals:
		return c.compileEquals(table, *pred)
	case queryir.FoldIn:
		return c.compileFoldIn(table, pred)
	case *queryir.FoldIn:
		return c.compileFoldIn(table, *pred)
	case queryir.Range:
		return c.compileRange(table, pred)
	case *queryir.Range:
		return c.compileRange(table, *pred)
	case queryir.Compare:
		return c.compileCompare(table, pred)
	case *queryir.Compare:
		return c.compileCompare(table, *pred)
	case queryir.And:
		return c.compileAnd(table, pred)
	case *queryir.And:
		return c.compileAnd(table, *pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles an Equals predicate to "field = ?".
func (c *SQLCompiler) compileEquals(table string, eq queryir.Equals) (string, []any, error) {
	field, err := qualify(table, eq.Field)
	if err != nil {
		return "", nil, err
	}
	if ir.IsNull(eq.Value) {
		return "", nil, fmt.Errorf("field %s: equality against NULL is not allowed", eq.Field)
	}
	return field + " = ?", []any{ir.Native(eq.Value)}, nil
}

// compileFoldIn compiles a FoldIn predicate to "LOWER(field) IN (?, ...)".
func (c *SQLCompiler) compileFoldIn(table string, in queryir.FoldIn) (string, []any, error) {
	field, err := qualify(table, in.Field)
	if err != nil {
		return "", nil, err
	}
	if len(in.Values) == 0 {
		return "", nil, fmt.Errorf("field %s: empty membership set", in.Field)
	}

	placeholders := make([]string, len(in.Values))
	params := make([]any, len(in.Values))
	for i, v := range in.Values {
		placeholders[i] = "?"
		params[i] = v
	}
	sql := fmt.Sprintf("LOWER(%s) IN (%s)", field, strings.Join(placeholders, ", "))
	return sql, params, nil
}

// compileRange compiles a Range predicate. Both ends give BETWEEN; a single
// end gives >= or <=.
func (c *SQLCompiler) compileRange(table string, r queryir.Range) (string, []any, error) {
	field, err := qualify(table, r.Field)
	if err != nil {
		return "", nil, err
	}

	switch {
	case r.HasLo() && r.HasHi():
		return field + " BETWEEN ? AND ?", []any{ir.Native(r.Lo), ir.Native(r.Hi)}, nil
	case r.HasLo():
		return field + " >= ?", []any{ir.Native(r.Lo)}, nil
	case r.HasHi():
		return field + " <= ?", []any{ir.Native(r.Hi)}, nil
	default:
		return "", nil, fmt.Errorf("field %s: range has no bounds", r.Field)
	}
}

// compileCompare compiles a Compare predicate to "field <op> ?".
func (c *SQLCompiler) compileCompare(table string, cmp queryir.Compare) (string, []any, error) {
	field, err := qualify(table, cmp.Field)
	if err != nil {
		return "", nil, err
	}
	op, err := queryir.ParseOp(string(cmp.Op))
	if err != nil {
		return "", nil, err
	}
	if ir.IsNull(cmp.Value) {
		return "", nil, fmt.Errorf("field %s: comparison against NULL is not allowed", cmp.Field)
	}
	return fmt.Sprintf("%s %s ?", field, op), []any{ir.Native(cmp.Value)}, nil
}

// compileAnd compiles an And predicate to a conjunction.
func (c *SQLCompiler) compileAnd(table string, and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // Always true (vacuous truth)
	}

	var sqlParts []string
	var allParams []any

	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(table, pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QuoteIdent validates and double-quotes a single identifier.
func QuoteIdent(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return `"` + name + `"`, nil
}

// qualify quotes a field, prefixing bare names with table:
// "weight" → "entities"."weight", "entities.size_x" → "entities"."size_x".
func qualify(table, field string) (string, error) {
	qualifier, name := table, field
	if i := strings.IndexByte(field, '.'); i >= 0 {
		qualifier, name = field[:i], field[i+1:]
	}

	q, err := QuoteIdent(qualifier)
	if err != nil {
		return "", fmt.Errorf("field %q: %w", field, err)
	}
	n, err := QuoteIdent(name)
	if err != nil {
		return "", fmt.Errorf("field %q: %w", field, err)
	}
	return q + "." + n, nil
}
