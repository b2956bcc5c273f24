package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/syto/internal/querysql"
	"github.com/roach88/syto/internal/schema"
)

// EnsureTable creates table with an "id" INTEGER PRIMARY KEY and the given
// columns, and records it in the catalog. Existing tables are left as they
// are; the catalog entry is refreshed.
func (s *Store) EnsureTable(ctx context.Context, table string, cols schema.Columns) error {
	ddl, err := createTableSQL(table, cols)
	if err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}

	colsJSON, err := marshalColumns(cols)
	if err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure table %s: %w", table, err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO syto_tables (name, columns) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET columns = excluded.columns
		`, table, colsJSON)
		if err != nil {
			return fmt.Errorf("record table %s: %w", table, err)
		}
		return nil
	})
}

// Insert adds one row and returns its id. Keys must be declared columns
// (or "id"); values are bound as parameters.
func (s *Store) Insert(ctx context.Context, table string, row map[string]any) (int64, error) {
	stmt, args, err := insertSQL(table, row)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	return res.LastInsertId()
}

// InsertAll adds rows in one transaction and returns their ids in order.
// Either every row is written or none is.
func (s *Store) InsertAll(ctx context.Context, table string, rows []map[string]any) ([]int64, error) {
	ids := make([]int64, 0, len(rows))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i, row := range rows {
			stmt, args, err := insertSQL(table, row)
			if err != nil {
				return fmt.Errorf("insert into %s: row %d: %w", table, i, err)
			}
			res, err := tx.ExecContext(ctx, stmt, args...)
			if err != nil {
				return fmt.Errorf("insert into %s: row %d: %w", table, i, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func createTableSQL(table string, cols schema.Columns) (string, error) {
	quotedTable, err := querysql.QuoteIdent(table)
	if err != nil {
		return "", err
	}

	defs := []string{`"id" INTEGER PRIMARY KEY`}
	for _, name := range sortedColumns(cols) {
		if name == "id" {
			continue
		}
		quoted, err := querysql.QuoteIdent(name)
		if err != nil {
			return "", err
		}
		defs = append(defs, quoted+" "+cols[name].SQLType())
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quotedTable, strings.Join(defs, ", ")), nil
}

func insertSQL(table string, row map[string]any) (string, []any, error) {
	if len(row) == 0 {
		return "", nil, fmt.Errorf("empty row")
	}
	quotedTable, err := querysql.QuoteIdent(table)
	if err != nil {
		return "", nil, err
	}

	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	slices.Sort(names)

	quoted := make([]string, len(names))
	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		q, err := querysql.QuoteIdent(name)
		if err != nil {
			return "", nil, err
		}
		quoted[i] = q
		placeholders[i] = "?"
		args[i] = bindValue(row[name])
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quotedTable, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	return stmt, args, nil
}

func sortedColumns(cols schema.Columns) []string {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
