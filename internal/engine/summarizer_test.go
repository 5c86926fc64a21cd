package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexionhq/cx-copilot/internal/llm"
)

func resultSetWith(columns []string, n int) *ResultSet {
	rows := make([]map[string]interface{}, n)
	for i := range rows {
		row := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			row[col] = fmt.Sprintf("%s-%d", col, i)
		}
		rows[i] = row
	}
	return &ResultSet{Columns: columns, Rows: rows, RowCount: n}
}

func TestSummarize(t *testing.T) {
	client := &stubLLM{completeFn: completionWith("There are 3 open tickets, all for TechCorp Industries.")}
	s := NewSummarizer(client, 5)

	summary, fallback := s.Summarize(context.Background(), "how many open tickets?",
		"SELECT count(*) FROM support_tickets WHERE status = 'open'", resultSetWith([]string{"count"}, 1))

	assert.False(t, fallback)
	assert.Equal(t, "There are 3 open tickets, all for TechCorp Industries.", summary)
	assert.Equal(t, summaryTemperature, client.lastReq.Temperature)
	assert.False(t, client.lastReq.ForceJSON)

	// The executed statement goes to the model alongside the question
	assert.Contains(t, client.lastReq.Prompt, "SELECT count(*) FROM support_tickets WHERE status = 'open'")
}

func TestSummarizeSampleLimit(t *testing.T) {
	client := &stubLLM{completeFn: completionWith("summary")}
	s := NewSummarizer(client, 5)

	result := resultSetWith([]string{"id"}, 40)
	_, fallback := s.Summarize(context.Background(), "list all tickets", "SELECT id FROM support_tickets", result)

	require.False(t, fallback)
	// The prompt states the real count but carries only the sample
	assert.Contains(t, client.lastReq.Prompt, "returned 40 rows")
	assert.Contains(t, client.lastReq.Prompt, "First 5 rows")
	assert.Contains(t, client.lastReq.Prompt, "id-4")
	assert.NotContains(t, client.lastReq.Prompt, "id-5")
}

func TestSummarizeFallbackOnError(t *testing.T) {
	client := &stubLLM{completeFn: func(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
		return nil, fmt.Errorf("rate limit exceeded")
	}}
	s := NewSummarizer(client, 5)

	summary, fallback := s.Summarize(context.Background(), "how many customers?",
		"SELECT id, name FROM customers", resultSetWith([]string{"id", "name"}, 7))

	assert.True(t, fallback)
	assert.Equal(t, "Found 7 results. The data includes columns: id, name.", summary)
}

func TestSummarizeFallbackOnEmptyCompletion(t *testing.T) {
	client := &stubLLM{completeFn: completionWith("   ")}
	s := NewSummarizer(client, 5)

	summary, fallback := s.Summarize(context.Background(), "question", "SELECT id FROM customers", resultSetWith([]string{"id"}, 2))

	assert.True(t, fallback)
	assert.Equal(t, "Found 2 results. The data includes columns: id.", summary)
}

func TestFallbackSummary(t *testing.T) {
	tests := []struct {
		name   string
		result *ResultSet
		want   string
	}{
		{
			name:   "nil result",
			result: nil,
			want:   "No results found for your query.",
		},
		{
			name:   "empty result",
			result: &ResultSet{Columns: []string{"id"}, Rows: nil, RowCount: 0},
			want:   "No results found for your query.",
		},
		{
			name:   "single column",
			result: resultSetWith([]string{"count"}, 1),
			want:   "Found 1 results. The data includes columns: count.",
		},
		{
			name:   "multiple columns",
			result: resultSetWith([]string{"name", "email", "tier"}, 12),
			want:   "Found 12 results. The data includes columns: name, email, tier.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackSummary(tt.result))
		})
	}
}
