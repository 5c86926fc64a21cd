package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/apexionhq/cx-copilot/internal/errors"
)

// Feedback ratings
const (
	RatingHelpful   = "helpful"
	RatingUnhelpful = "unhelpful"
	RatingIncorrect = "incorrect"
)

// Feedback is a user judgement on one answered query
type Feedback struct {
	ID         string    `json:"id"`
	QueryLogID string    `json:"query_log_id"`
	Rating     string    `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedbackCounts summarizes feedback by rating
type FeedbackCounts struct {
	Helpful   int `json:"helpful"`
	Unhelpful int `json:"unhelpful"`
	Incorrect int `json:"incorrect"`
}

// FeedbackStore persists user feedback on query results
type FeedbackStore struct {
	db *sql.DB
}

// NewFeedbackStore creates a feedback store on the shared handle
func NewFeedbackStore(s *Store) *FeedbackStore {
	return &FeedbackStore{db: s.db}
}

// ValidRating reports whether the rating is one of the accepted values
func ValidRating(rating string) bool {
	switch rating {
	case RatingHelpful, RatingUnhelpful, RatingIncorrect:
		return true
	}
	return false
}

// Create records feedback against an audit entry. The foreign key rejects
// feedback for query log IDs that do not exist.
func (f *FeedbackStore) Create(ctx context.Context, queryLogID, rating, comment string) (*Feedback, error) {
	if !ValidRating(rating) {
		return nil, errors.NewInvalidInputError("rating", "must be helpful, unhelpful, or incorrect")
	}

	fb := &Feedback{
		ID:         uuid.New().String(),
		QueryLogID: queryLogID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}

	query := `
		INSERT INTO feedback (id, query_log_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := f.db.ExecContext(ctx, query, fb.ID, fb.QueryLogID, fb.Rating, nullString(fb.Comment), fb.CreatedAt)
	if err != nil {
		return nil, errors.NewDatabaseQueryError(err, "record feedback")
	}

	return fb, nil
}

// Counts aggregates feedback by rating
func (f *FeedbackStore) Counts(ctx context.Context) (*FeedbackCounts, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE rating = 'helpful'),
		       COUNT(*) FILTER (WHERE rating = 'unhelpful'),
		       COUNT(*) FILTER (WHERE rating = 'incorrect')
		FROM feedback`

	var counts FeedbackCounts
	err := f.db.QueryRowContext(ctx, query).Scan(&counts.Helpful, &counts.Unhelpful, &counts.Incorrect)
	if err != nil {
		return nil, errors.NewDatabaseQueryError(err, "aggregate feedback")
	}

	return &counts, nil
}
