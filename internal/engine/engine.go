// Package engine implements the query pipeline: natural language question
// to SQL translation, safety validation, execution against the support
// database, and result summarization, with an audit entry recorded for
// every invocation.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/apexionhq/cx-copilot/internal/errors"
	"github.com/apexionhq/cx-copilot/internal/observability"
	"github.com/apexionhq/cx-copilot/internal/store"
)

// QueryRequest is an incoming natural language question
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
}

// QueryResponse is the answered question returned to the client
type QueryResponse struct {
	Question        string                   `json:"question"`
	SQL             string                   `json:"sql"`
	Confidence      float64                  `json:"confidence"`
	Reasoning       string                   `json:"reasoning,omitempty"`
	TablesUsed      []string                 `json:"tables_used,omitempty"`
	Summary         string                   `json:"summary"`
	SummaryFallback bool                     `json:"summary_fallback,omitempty"`
	Columns         []string                 `json:"columns"`
	Results         []map[string]interface{} `json:"results"`
	RowCount        int                      `json:"row_count"`
	Truncated       bool                     `json:"truncated,omitempty"`
	QueryLogID      string                   `json:"query_log_id"`
	DurationMS      int64                    `json:"duration_ms"`
}

// AuditRecorder persists the audit trail of pipeline invocations
type AuditRecorder interface {
	RecordAttempt(ctx context.Context, entry *store.QueryLog) (string, error)
	RecordFailure(ctx context.Context, entry *store.QueryLog, stage, message string, duration time.Duration) (string, error)
	MarkCompleted(ctx context.Context, id string, resultCount int, duration time.Duration) error
	MarkFailed(ctx context.Context, id, stage, message string, duration time.Duration) error
}

// ExampleWriter saves successfully answered questions for future few-shot
// retrieval
type ExampleWriter interface {
	StoreExample(ctx context.Context, question, sqlText string) error
}

// Engine orchestrates one pipeline invocation end to end
type Engine struct {
	translator *Translator
	safety     *SafetyChecker
	executor   *Executor
	summarizer *Summarizer
	audit      AuditRecorder
	examples   ExampleWriter
	logger     *observability.Logger
	metrics    *observability.MetricsCollector
}

// New assembles an engine from its stages. The example writer may be nil.
func New(translator *Translator, executor *Executor, summarizer *Summarizer, audit AuditRecorder, examples ExampleWriter) *Engine {
	return &Engine{
		translator: translator,
		safety:     NewSafetyChecker(),
		executor:   executor,
		summarizer: summarizer,
		audit:      audit,
		examples:   examples,
		logger:     observability.NewLogger("engine"),
		metrics:    observability.GetGlobalMetrics(),
	}
}

// Process answers one natural language question. Every invocation leaves
// exactly one audit entry: translation failures are recorded as settled
// failures, and anything after translation settles the pending entry
// written before execution. No stage is retried.
func (e *Engine) Process(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	start := time.Now()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, errors.NewInvalidInputError("question", "must not be empty")
	}

	sessionID := observability.GetSessionID(ctx)

	e.logger.Info(ctx, "Processing question", map[string]interface{}{
		"question": question,
	})

	translation, err := e.translator.Translate(ctx, question)
	if err != nil {
		entry := &store.QueryLog{SessionID: sessionID, Question: question}
		failureID, auditErr := e.audit.RecordFailure(context.WithoutCancel(ctx), entry, store.StageTranslation, err.Error(), time.Since(start))
		if auditErr != nil {
			e.logger.Error(ctx, "Failed to record translation failure", auditErr, nil)
		} else {
			attachLogID(err, failureID)
		}
		observability.RecordQueryMetrics(time.Since(start), false, "translation")
		return nil, err
	}

	// Once translation succeeds the invocation runs to completion even if
	// the caller abandons the request; the pending entry must settle.
	ctx = context.WithoutCancel(ctx)

	// The generated statement goes on record before anything touches
	// the database. If the audit write fails, execution does not happen.
	entry := &store.QueryLog{
		SessionID:    sessionID,
		Question:     question,
		GeneratedSQL: translation.SQL,
		Confidence:   translation.Confidence,
	}
	logID, err := e.audit.RecordAttempt(ctx, entry)
	if err != nil {
		e.logger.Error(ctx, "Failed to record query attempt", err, nil)
		observability.RecordQueryMetrics(time.Since(start), false, "audit")
		return nil, err
	}

	if err := e.safety.Validate(translation.SQL); err != nil {
		attachLogID(err, logID)
		e.settleFailed(ctx, logID, store.StageSafety, err, start)
		e.metrics.Inc(observability.MetricSafetyRejections, nil)
		observability.RecordQueryMetrics(time.Since(start), false, "safety")
		e.logger.Warn(ctx, "Generated SQL rejected by safety gate", map[string]interface{}{
			"sql": translation.SQL,
		})
		return nil, err
	}

	result, err := e.executor.Execute(ctx, translation.SQL)
	if err != nil {
		attachLogID(err, logID)
		if enhancedErr, ok := err.(*errors.EnhancedError); ok {
			enhancedErr.WithMetadata("sql", translation.SQL)
		}
		e.settleFailed(ctx, logID, store.StageExecution, err, start)
		observability.RecordQueryMetrics(time.Since(start), false, "execution")
		return nil, err
	}

	summary, fallback := e.summarizer.Summarize(ctx, question, translation.SQL, result)

	if err := e.audit.MarkCompleted(ctx, logID, result.RowCount, time.Since(start)); err != nil {
		// The answer is already computed; log and return it anyway.
		e.logger.Error(ctx, "Failed to settle audit entry", err, map[string]interface{}{
			"query_log_id": logID,
		})
	}

	if e.examples != nil {
		if err := e.examples.StoreExample(ctx, question, translation.SQL); err != nil {
			e.logger.Warn(ctx, "Failed to store query example", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	duration := time.Since(start)
	observability.RecordQueryMetrics(duration, true, "")

	e.logger.Info(ctx, "Question answered", map[string]interface{}{
		"query_log_id": logID,
		"row_count":    result.RowCount,
		"duration_ms":  duration.Milliseconds(),
	})

	return &QueryResponse{
		Question:        question,
		SQL:             translation.SQL,
		Confidence:      translation.Confidence,
		Reasoning:       translation.Reasoning,
		TablesUsed:      translation.TablesUsed,
		Summary:         summary,
		SummaryFallback: fallback,
		Columns:         result.Columns,
		Results:         result.Rows,
		RowCount:        result.RowCount,
		Truncated:       result.Truncated,
		QueryLogID:      logID,
		DurationMS:      duration.Milliseconds(),
	}, nil
}

// settleFailed flips the pending entry to failed
func (e *Engine) settleFailed(ctx context.Context, logID, stage string, cause error, start time.Time) {
	if err := e.audit.MarkFailed(ctx, logID, stage, cause.Error(), time.Since(start)); err != nil {
		e.logger.Error(ctx, "Failed to settle audit entry", err, map[string]interface{}{
			"query_log_id": logID,
			"stage":        stage,
		})
	}
}

// attachLogID exposes the audit entry id on failure responses so feedback
// can still reference the attempt
func attachLogID(err error, logID string) {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		enhancedErr.WithMetadata("query_log_id", logID)
	}
}
