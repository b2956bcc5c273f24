package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/syto/internal/queryir"
	"github.com/roach88/syto/internal/querysql"
	"github.com/roach88/syto/internal/schema"
)

// ErrUnknownTable is returned by Columns for tables not in the catalog.
var ErrUnknownTable = errors.New("unknown table")

// Row is one result row keyed by column name. Values are int64, float64,
// string, bool, time.Time (UTC) or nil.
type Row map[string]any

// ID returns the row's "id" column, or 0 when absent.
func (r Row) ID() int64 {
	id, _ := r["id"].(int64)
	return id
}

// Select compiles q and returns the matching rows in query order.
//
// Returns an empty slice (not nil) if no rows match.
func (s *Store) Select(ctx context.Context, q queryir.Select) ([]Row, error) {
	stmt, args, err := querysql.NewSQLCompiler().Compile(q)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", q.From, err)
	}
	return s.Find(ctx, stmt, args...)
}

// Find runs a compiled statement and returns every row.
func (s *Store) Find(ctx context.Context, stmt string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := []Row{}
	for rows.Next() {
		dest := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(names))
		for i, name := range names {
			row[name] = scanValue(dest[i])
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// SelectIDs is Select projected to row ids.
func (s *Store) SelectIDs(ctx context.Context, q queryir.Select) ([]int64, error) {
	rows, err := s.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID()
	}
	return ids, nil
}

// Columns returns the column types recorded for table.
func (s *Store) Columns(ctx context.Context, table string) (schema.Columns, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT columns FROM syto_tables WHERE name = ?`, table).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return unmarshalColumns(data)
}

// Tables returns the catalogued table names in sorted order.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM syto_tables ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan catalog: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}
