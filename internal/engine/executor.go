package engine

import (
	"context"
	"time"

	"github.com/apexionhq/cx-copilot/internal/observability"
)

// QueryRunner executes an already-validated SELECT statement
type QueryRunner interface {
	Query(ctx context.Context, query string) ([]string, []map[string]interface{}, error)
}

// ResultSet is the materialized outcome of one execution
type ResultSet struct {
	Columns   []string                 `json:"columns"`
	Rows      []map[string]interface{} `json:"rows"`
	RowCount  int                      `json:"row_count"`
	Truncated bool                     `json:"truncated"`
	Duration  time.Duration            `json:"-"`
}

// Executor runs validated statements against the business database and
// caps the result set at a fixed row limit. The cap is unconditional;
// callers cannot request more rows than the configured maximum.
type Executor struct {
	runner     QueryRunner
	maxResults int
	logger     *observability.Logger
}

// NewExecutor creates an executor with the given row cap
func NewExecutor(runner QueryRunner, maxResults int) *Executor {
	if maxResults <= 0 {
		maxResults = 100
	}
	return &Executor{
		runner:     runner,
		maxResults: maxResults,
		logger:     observability.NewLogger("executor"),
	}
}

// Execute runs the statement and returns at most maxResults rows. The
// statement must already have cleared safety validation.
func (e *Executor) Execute(ctx context.Context, sqlText string) (*ResultSet, error) {
	start := time.Now()

	columns, rows, err := e.runner.Query(ctx, sqlText)
	if err != nil {
		return nil, err
	}

	truncated := false
	if len(rows) > e.maxResults {
		rows = rows[:e.maxResults]
		truncated = true
	}

	result := &ResultSet{
		Columns:   columns,
		Rows:      rows,
		RowCount:  len(rows),
		Truncated: truncated,
		Duration:  time.Since(start),
	}

	e.logger.Debug(ctx, "Query executed", map[string]interface{}{
		"row_count":   result.RowCount,
		"truncated":   result.Truncated,
		"duration_ms": result.Duration.Milliseconds(),
	})

	return result, nil
}
