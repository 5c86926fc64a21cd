// Package store provides PostgreSQL-backed persistence: ad hoc read-only
// query execution against the business tables, the query audit log, and
// user feedback.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/apexionhq/cx-copilot/internal/config"
	"github.com/apexionhq/cx-copilot/internal/errors"
)

// Store wraps the shared database handle
type Store struct {
	db *sql.DB
}

// New opens a connection pool to PostgreSQL and verifies connectivity
func New(cfg config.DatabaseConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return nil, errors.NewDatabaseConnectionError(err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewDatabaseConnectionError(err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle, used in tests
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and health checks
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// Query runs an already-validated SELECT statement and materializes the
// result set as ordered column names plus one map per row. Callers are
// expected to pass statements that have cleared safety validation; no
// further checks happen here.
func (s *Store) Query(ctx context.Context, query string) ([]string, []map[string]interface{}, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, errors.NewQueryExecutionError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, errors.NewDatabaseQueryError(err, "read result columns")
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, nil, errors.NewDatabaseQueryError(err, "scan result row")
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, errors.NewDatabaseQueryError(err, "iterate result rows")
	}

	return columns, results, nil
}

// normalizeValue converts driver values into JSON-friendly types. Byte
// slices become strings and timestamps are rendered in a fixed layout so
// summaries and API responses are stable.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return v
	}
}

// Stats reports connection pool statistics for the health endpoint
func (s *Store) Stats() map[string]interface{} {
	stats := s.db.Stats()
	return map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration":    fmt.Sprintf("%v", stats.WaitDuration),
	}
}
