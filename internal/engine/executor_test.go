package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRunner implements QueryRunner for tests
type stubRunner struct {
	columns []string
	rows    []map[string]interface{}
	err     error
	lastSQL string
}

func (s *stubRunner) Query(ctx context.Context, query string) ([]string, []map[string]interface{}, error) {
	s.lastSQL = query
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.columns, s.rows, nil
}

func makeRows(n int) []map[string]interface{} {
	rows := make([]map[string]interface{}, n)
	for i := range rows {
		rows[i] = map[string]interface{}{"id": int64(i + 1)}
	}
	return rows
}

func TestExecute(t *testing.T) {
	runner := &stubRunner{
		columns: []string{"id", "name"},
		rows: []map[string]interface{}{
			{"id": int64(1), "name": "Sarah Johnson"},
			{"id": int64(2), "name": "Michael Chen"},
		},
	}
	ex := NewExecutor(runner, 100)

	result, err := ex.Execute(context.Background(), "SELECT id, name FROM customers")

	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM customers", runner.lastSQL)
	assert.Equal(t, []string{"id", "name"}, result.Columns)
	assert.Equal(t, 2, result.RowCount)
	assert.False(t, result.Truncated)
	assert.Len(t, result.Rows, 2)
}

func TestExecuteRowCap(t *testing.T) {
	tests := []struct {
		name          string
		maxResults    int
		rowsReturned  int
		wantCount     int
		wantTruncated bool
	}{
		{"under the cap", 100, 10, 10, false},
		{"exactly at the cap", 100, 100, 100, false},
		{"over the cap", 100, 250, 100, true},
		{"custom cap", 5, 6, 5, true},
		{"zero cap falls back to default", 0, 150, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{columns: []string{"id"}, rows: makeRows(tt.rowsReturned)}
			ex := NewExecutor(runner, tt.maxResults)

			result, err := ex.Execute(context.Background(), "SELECT id FROM customers")

			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, result.RowCount)
			assert.Len(t, result.Rows, tt.wantCount)
			assert.Equal(t, tt.wantTruncated, result.Truncated)
		})
	}
}

func TestExecuteEmptyResult(t *testing.T) {
	runner := &stubRunner{columns: []string{"id"}, rows: []map[string]interface{}{}}
	ex := NewExecutor(runner, 100)

	result, err := ex.Execute(context.Background(), "SELECT id FROM customers WHERE 1=0")

	require.NoError(t, err)
	assert.Equal(t, 0, result.RowCount)
	assert.False(t, result.Truncated)
}

func TestExecuteError(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf(`column "nme" does not exist`)}
	ex := NewExecutor(runner, 100)

	result, err := ex.Execute(context.Background(), "SELECT nme FROM customers")

	require.Error(t, err)
	assert.Nil(t, result)
}
