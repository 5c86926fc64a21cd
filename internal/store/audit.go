package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/apexionhq/cx-copilot/internal/errors"
)

// Audit entry lifecycle states. An entry is created as pending once
// translation has produced an outcome, then settled exactly once.
const (
	AuditStatusPending   = "pending"
	AuditStatusCompleted = "completed"
	AuditStatusFailed    = "failed"
)

// Pipeline stages recorded against failed entries
const (
	StageTranslation   = "translation"
	StageSafety        = "safety"
	StageExecution     = "execution"
	StageSummarization = "summarization"
)

// QueryLog is one audit entry for a single pipeline invocation
type QueryLog struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id,omitempty"`
	Question     string    `json:"question"`
	GeneratedSQL string    `json:"generated_sql,omitempty"`
	Confidence   float64   `json:"confidence"`
	Status       string    `json:"status"`
	FailedStage  string    `json:"failed_stage,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ResultCount  int       `json:"result_count"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditStats aggregates the audit log for the /logs endpoint
type AuditStats struct {
	Total         int     `json:"total"`
	Completed     int     `json:"completed"`
	Failed        int     `json:"failed"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// AuditStore persists query audit entries
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore creates an audit store on the shared handle
func NewAuditStore(s *Store) *AuditStore {
	return &AuditStore{db: s.db}
}

// RecordAttempt writes a pending audit entry and returns its identifier.
// It is called after translation, before any SQL touches the database, so
// the generated statement is on record even if execution never happens.
func (a *AuditStore) RecordAttempt(ctx context.Context, entry *QueryLog) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO query_logs (id, session_id, question, generated_sql, confidence, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := a.db.ExecContext(ctx, query,
		id,
		nullString(entry.SessionID),
		entry.Question,
		nullString(entry.GeneratedSQL),
		entry.Confidence,
		AuditStatusPending,
		time.Now().UTC(),
	)
	if err != nil {
		return "", errors.NewAuditWriteError(err)
	}

	return id, nil
}

// MarkCompleted settles a pending entry as completed with its result count
// and total pipeline duration.
func (a *AuditStore) MarkCompleted(ctx context.Context, id string, resultCount int, duration time.Duration) error {
	query := `
		UPDATE query_logs
		SET status = $2, result_count = $3, duration_ms = $4
		WHERE id = $1`

	_, err := a.db.ExecContext(ctx, query, id, AuditStatusCompleted, resultCount, duration.Milliseconds())
	if err != nil {
		return errors.NewAuditWriteError(err)
	}
	return nil
}

// MarkFailed settles a pending entry as failed, recording which stage
// rejected or errored and why. Failed entries carry a zero confidence.
func (a *AuditStore) MarkFailed(ctx context.Context, id, stage, message string, duration time.Duration) error {
	query := `
		UPDATE query_logs
		SET status = $2, failed_stage = $3, error_message = $4, duration_ms = $5, confidence = 0
		WHERE id = $1`

	_, err := a.db.ExecContext(ctx, query, id, AuditStatusFailed, stage, message, duration.Milliseconds())
	if err != nil {
		return errors.NewAuditWriteError(err)
	}
	return nil
}

// RecordFailure writes a settled failed entry in one statement, used when
// the pipeline fails before a pending entry exists (translation errors).
func (a *AuditStore) RecordFailure(ctx context.Context, entry *QueryLog, stage, message string, duration time.Duration) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO query_logs (id, session_id, question, generated_sql, confidence, status, failed_stage, error_message, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := a.db.ExecContext(ctx, query,
		id,
		nullString(entry.SessionID),
		entry.Question,
		nullString(entry.GeneratedSQL),
		entry.Confidence,
		AuditStatusFailed,
		stage,
		message,
		duration.Milliseconds(),
		time.Now().UTC(),
	)
	if err != nil {
		return "", errors.NewAuditWriteError(err)
	}

	return id, nil
}

// Recent returns the most recent audit entries, newest first
func (a *AuditStore) Recent(ctx context.Context, limit int) ([]QueryLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := `
		SELECT id, COALESCE(session_id, ''), question, COALESCE(generated_sql, ''),
		       confidence, status, COALESCE(failed_stage, ''), COALESCE(error_message, ''),
		       result_count, duration_ms, created_at
		FROM query_logs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := a.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.NewDatabaseQueryError(err, "list audit entries")
	}
	defer rows.Close()

	entries := make([]QueryLog, 0, limit)
	for rows.Next() {
		var e QueryLog
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Question, &e.GeneratedSQL,
			&e.Confidence, &e.Status, &e.FailedStage, &e.ErrorMessage,
			&e.ResultCount, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, errors.NewDatabaseQueryError(err, "scan audit entry")
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// BySession returns the audit entries recorded against one session,
// newest first.
func (a *AuditStore) BySession(ctx context.Context, sessionID string, limit int) ([]QueryLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := `
		SELECT id, COALESCE(session_id, ''), question, COALESCE(generated_sql, ''),
		       confidence, status, COALESCE(failed_stage, ''), COALESCE(error_message, ''),
		       result_count, duration_ms, created_at
		FROM query_logs
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := a.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, errors.NewDatabaseQueryError(err, "list session history")
	}
	defer rows.Close()

	entries := make([]QueryLog, 0, limit)
	for rows.Next() {
		var e QueryLog
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Question, &e.GeneratedSQL,
			&e.Confidence, &e.Status, &e.FailedStage, &e.ErrorMessage,
			&e.ResultCount, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, errors.NewDatabaseQueryError(err, "scan audit entry")
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Stats aggregates audit log counts and averages
func (a *AuditStore) Stats(ctx context.Context) (*AuditStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'completed'),
		       COUNT(*) FILTER (WHERE status = 'failed'),
		       COALESCE(AVG(duration_ms), 0),
		       COALESCE(AVG(confidence), 0)
		FROM query_logs`

	var stats AuditStats
	err := a.db.QueryRowContext(ctx, query).Scan(
		&stats.Total, &stats.Completed, &stats.Failed,
		&stats.AvgDurationMS, &stats.AvgConfidence,
	)
	if err != nil {
		return nil, errors.NewDatabaseQueryError(err, "aggregate audit stats")
	}

	return &stats, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
