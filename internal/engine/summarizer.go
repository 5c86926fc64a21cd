package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apexionhq/cx-copilot/internal/errors"
	"github.com/apexionhq/cx-copilot/internal/llm"
	"github.com/apexionhq/cx-copilot/internal/observability"
)

const (
	summaryTemperature = 0.3
	summaryMaxTokens   = 512
)

const summarizerSystemPrompt = `You are a customer support data analyst.
Given a question and a sample of the query results, write a short plain-English answer.
Mention concrete numbers and names from the data. Two or three sentences at most.
When citing a specific data point, refer to it by its row number in the sample.
Do not mention SQL, databases, or that you are looking at a sample.`

// Summarizer turns a result set into a short natural language answer.
// A summarization failure never fails the pipeline; the deterministic
// fallback answer is returned instead.
type Summarizer struct {
	client    llm.Client
	sampleMax int
	logger    *observability.Logger
	metrics   *observability.MetricsCollector
}

// NewSummarizer creates a summarizer that sends at most sampleMax rows to
// the model.
func NewSummarizer(client llm.Client, sampleMax int) *Summarizer {
	if sampleMax <= 0 {
		sampleMax = 5
	}
	return &Summarizer{
		client:    client,
		sampleMax: sampleMax,
		logger:    observability.NewLogger("summarizer"),
		metrics:   observability.GetGlobalMetrics(),
	}
}

// Summarize answers the question from the executed query and its result
// set. The second return value reports whether the deterministic fallback
// was used.
func (s *Summarizer) Summarize(ctx context.Context, question, sqlText string, result *ResultSet) (string, bool) {
	prompt, err := s.buildPrompt(question, sqlText, result)
	if err != nil {
		s.logger.Warn(ctx, "Failed to build summary prompt, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		s.metrics.Inc(observability.MetricSummarizerFallbacks, nil)
		return FallbackSummary(result), true
	}

	completion, err := s.client.Complete(ctx, llm.CompletionRequest{
		System:      summarizerSystemPrompt,
		Prompt:      prompt,
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		s.logger.Warn(ctx, "Summarization failed, using fallback", map[string]interface{}{
			"error": errors.NewSummarizationError(err).Error(),
		})
		s.metrics.Inc(observability.MetricSummarizerFallbacks, nil)
		return FallbackSummary(result), true
	}

	summary := strings.TrimSpace(completion.Text)
	if summary == "" {
		s.metrics.Inc(observability.MetricSummarizerFallbacks, nil)
		return FallbackSummary(result), true
	}

	return summary, false
}

// buildPrompt renders the question with a row sample. Only the first
// sampleMax rows go to the model; the true row count is stated so the
// model does not confuse the sample size with the result size.
func (s *Summarizer) buildPrompt(question, sqlText string, result *ResultSet) (string, error) {
	sample := result.Rows
	if len(sample) > s.sampleMax {
		sample = sample[:s.sampleMax]
	}

	sampleJSON, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result sample: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Question: %s\n", question))
	sb.WriteString(fmt.Sprintf("SQL executed: %s\n\n", sqlText))
	sb.WriteString(fmt.Sprintf("The query returned %d rows", result.RowCount))
	if result.Truncated {
		sb.WriteString(" (capped at the result limit)")
	}
	sb.WriteString(fmt.Sprintf(".\nColumns: %s\n", strings.Join(result.Columns, ", ")))
	sb.WriteString(fmt.Sprintf("First %d rows:\n%s\n", len(sample), string(sampleJSON)))

	return sb.String(), nil
}

// FallbackSummary is the deterministic answer used when the model cannot
// summarize. Its wording is fixed and covered by tests.
func FallbackSummary(result *ResultSet) string {
	if result == nil || result.RowCount == 0 {
		return "No results found for your query."
	}
	return fmt.Sprintf("Found %d results. The data includes columns: %s.",
		result.RowCount, strings.Join(result.Columns, ", "))
}
