// Package store provides SQLite-backed storage for entity tables and runs
// compiled filter queries against them.
//
// # Tables
//
// EnsureTable creates an entity table from schema.Columns: an
// "id" INTEGER PRIMARY KEY followed by the declared columns in sorted order.
// Every created table is recorded in the syto_tables catalog with the
// canonical JSON of its columns, so a later process can recover the column
// types with Columns.
//
// # Queries
//
// Select compiles a queryir.Select through querysql and executes it. Values
// are always bound as parameters, never interpolated, and every query
// carries an ORDER BY so results are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Timestamps are bound as time.Time. go-sqlite3 stores them in one fixed
// text layout, so range comparisons on DATE and DATETIME columns order
// correctly as long as values are UTC.
package store
