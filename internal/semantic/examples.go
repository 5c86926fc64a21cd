// Package semantic maintains a library of successfully answered questions
// and retrieves the closest past examples for a new question, which the
// translator embeds as few-shot guidance.
package semantic

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/apexionhq/cx-copilot/internal/errors"
	"github.com/apexionhq/cx-copilot/internal/llm"
)

// Example is one past question with the SQL that answered it
type Example struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	SQL        string    `json:"sql"`
	Similarity float64   `json:"similarity"`
	CreatedAt  time.Time `json:"created_at"`
}

// ExampleStore persists and retrieves question/SQL pairs by embedding
// similarity using pgvector.
type ExampleStore struct {
	db     *sql.DB
	client llm.Client
}

// NewExampleStore creates an example store on the shared handle
func NewExampleStore(db *sql.DB, client llm.Client) *ExampleStore {
	return &ExampleStore{db: db, client: client}
}

// StoreExample saves a question and the SQL that successfully answered it.
// Called after a completed pipeline run so future translations of similar
// questions can lean on it.
func (s *ExampleStore) StoreExample(ctx context.Context, question, sqlText string) error {
	embedding, err := s.client.Embed(ctx, question)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseQuery, "failed to embed question")
	}

	query := `
		INSERT INTO query_examples (id, question, sql_text, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (question) DO UPDATE SET sql_text = EXCLUDED.sql_text, embedding = EXCLUDED.embedding`

	_, err = s.db.ExecContext(ctx, query,
		uuid.New().String(),
		question,
		sqlText,
		pgvector.NewVector(embedding),
		time.Now().UTC(),
	)
	if err != nil {
		return errors.NewDatabaseQueryError(err, "store query example")
	}

	return nil
}

// FindSimilar returns up to limit past examples ordered by cosine
// similarity to the question.
func (s *ExampleStore) FindSimilar(ctx context.Context, question string, limit int) ([]Example, error) {
	if limit <= 0 {
		limit = 3
	}

	embedding, err := s.client.Embed(ctx, question)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseQuery, "failed to embed question")
	}

	query := `
		SELECT id, question, sql_text, 1 - (embedding <=> $1) AS similarity, created_at
		FROM query_examples
		ORDER BY embedding <=> $1
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, errors.NewDatabaseQueryError(err, "search query examples")
	}
	defer rows.Close()

	examples := make([]Example, 0, limit)
	for rows.Next() {
		var e Example
		if err := rows.Scan(&e.ID, &e.Question, &e.SQL, &e.Similarity, &e.CreatedAt); err != nil {
			return nil, errors.NewDatabaseQueryError(err, "scan query example")
		}
		examples = append(examples, e)
	}

	return examples, rows.Err()
}

// Count returns the number of stored examples
func (s *ExampleStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM query_examples`).Scan(&count)
	if err != nil {
		return 0, errors.NewDatabaseQueryError(err, "count query examples")
	}
	return count, nil
}
