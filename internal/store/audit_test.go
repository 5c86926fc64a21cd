package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAttempt(t *testing.T) {
	s, mock := newMockStore(t)
	audit := NewAuditStore(s)

	mock.ExpectExec("INSERT INTO query_logs").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "how many open tickets?",
			sqlmock.AnyArg(), 0.9, AuditStatusPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := audit.RecordAttempt(context.Background(), &QueryLog{
		Question:     "how many open tickets?",
		GeneratedSQL: "SELECT count(*) FROM support_tickets WHERE status = 'open'",
		Confidence:   0.9,
	})

	require.NoError(t, err)
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAttemptWriteFailure(t *testing.T) {
	s, mock := newMockStore(t)
	audit := NewAuditStore(s)

	mock.ExpectExec("INSERT INTO query_logs").
		WillReturnError(assert.AnError)

	_, err := audit.RecordAttempt(context.Background(), &QueryLog{Question: "q"})
	assert.Error(t, err)
}

func TestMarkCompleted(t *testing.T) {
	s, mock := newMockStore(t)
	audit := NewAuditStore(s)

	id := uuid.New().String()
	mock.ExpectExec("UPDATE query_logs").
		WithArgs(id, AuditStatusCompleted, 7, int64(120)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := audit.MarkCompleted(context.Background(), id, 7, 120*time.Millisecond)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailed(t *testing.T) {
	s, mock := newMockStore(t)
	audit := NewAuditStore(s)

	id := uuid.New().String()
	// Settling as failed also zeroes the recorded confidence
	mock.ExpectExec("confidence = 0").
		WithArgs(id, AuditStatusFailed, StageSafety, "statement contains forbidden keyword: drop", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := audit.MarkFailed(context.Background(), id, StageSafety,
		"statement contains forbidden keyword: drop", 3*time.Millisecond)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFailure(t *testing.T) {
	s, mock := newMockStore(t)
	audit := NewAuditStore(s)

	mock.ExpectExec("INSERT INTO query_logs").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "gibberish question", sqlmock.AnyArg(),
			0.0, AuditStatusFailed, StageTranslation, "response is not valid JSON", int64(250), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := audit.RecordFailure(context.Background(),
		&QueryLog{Question: "gibberish question"},
		StageTranslation, "response is not valid JSON", 250*time.Millisecond)

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecent(t *testing.T) {
	s, mock := newMockStore(t)
	audit := NewAuditStore(s)

	now := time.Now()
	mock.ExpectQuery("FROM query_logs").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "session_id", "question", "generated_sql", "confidence",
			"status", "failed_stage", "error_message", "result_count", "duration_ms", "created_at",
		}).
			AddRow("a", "s1", "q1", "SELECT 1", 0.9, AuditStatusCompleted, "", "", 1, 40, now).
			AddRow("b", "", "q2", "DELETE FROM x", 0.7, AuditStatusFailed, StageSafety, "forbidden", 0, 2, now))

	entries, err := audit.Recent(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, AuditStatusCompleted, entries[0].Status)
	assert.Equal(t, StageSafety, entries[1].FailedStage)
}

func TestBySession(t *testing.T) {
	s, mock := newMockStore(t)
	audit := NewAuditStore(s)

	now := time.Now()
	mock.ExpectQuery("FROM query_logs").
		WithArgs("session-1", 50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "session_id", "question", "generated_sql", "confidence",
			"status", "failed_stage", "error_message", "result_count", "duration_ms", "created_at",
		}).AddRow("a", "session-1", "q1", "SELECT 1", 0.9, AuditStatusCompleted, "", "", 1, 40, now))

	entries, err := audit.BySession(context.Background(), "session-1", 0)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "session-1", entries[0].SessionID)
}

func TestAuditStats(t *testing.T) {
	s, mock := newMockStore(t)
	audit := NewAuditStore(s)

	mock.ExpectQuery("FROM query_logs").
		WillReturnRows(sqlmock.NewRows([]string{"total", "completed", "failed", "avg_duration", "avg_confidence"}).
			AddRow(10, 8, 2, 150.5, 0.82))

	stats, err := audit.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 8, stats.Completed)
	assert.Equal(t, 2, stats.Failed)
	assert.InDelta(t, 150.5, stats.AvgDurationMS, 0.001)
	assert.InDelta(t, 0.82, stats.AvgConfidence, 0.001)
}
