package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexionhq/cx-copilot/internal/errors"
)

func TestValidRating(t *testing.T) {
	assert.True(t, ValidRating(RatingHelpful))
	assert.True(t, ValidRating(RatingUnhelpful))
	assert.True(t, ValidRating(RatingIncorrect))
	assert.False(t, ValidRating("amazing"))
	assert.False(t, ValidRating(""))
	assert.False(t, ValidRating("Helpful"))
}

func TestFeedbackCreate(t *testing.T) {
	s, mock := newMockStore(t)
	fs := NewFeedbackStore(s)

	mock.ExpectExec("INSERT INTO feedback").
		WithArgs(sqlmock.AnyArg(), "log-1", RatingHelpful, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	fb, err := fs.Create(context.Background(), "log-1", RatingHelpful, "nailed it")

	require.NoError(t, err)
	assert.Equal(t, "log-1", fb.QueryLogID)
	assert.Equal(t, RatingHelpful, fb.Rating)
	assert.Equal(t, "nailed it", fb.Comment)
	assert.NotEmpty(t, fb.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackCreateInvalidRating(t *testing.T) {
	s, _ := newMockStore(t)
	fs := NewFeedbackStore(s)

	_, err := fs.Create(context.Background(), "log-1", "brilliant", "")

	require.Error(t, err)
	var enhancedErr *errors.EnhancedError
	require.ErrorAs(t, err, &enhancedErr)
	assert.Equal(t, errors.ErrCodeInvalidInput, enhancedErr.Code)
}

func TestFeedbackCreateUnknownQueryLog(t *testing.T) {
	s, mock := newMockStore(t)
	fs := NewFeedbackStore(s)

	mock.ExpectExec("INSERT INTO feedback").
		WillReturnError(assert.AnError)

	_, err := fs.Create(context.Background(), "no-such-log", RatingUnhelpful, "")
	assert.Error(t, err)
}

func TestFeedbackCounts(t *testing.T) {
	s, mock := newMockStore(t)
	fs := NewFeedbackStore(s)

	mock.ExpectQuery("FROM feedback").
		WillReturnRows(sqlmock.NewRows([]string{"helpful", "unhelpful", "incorrect"}).AddRow(5, 2, 1))

	counts, err := fs.Counts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, counts.Helpful)
	assert.Equal(t, 2, counts.Unhelpful)
	assert.Equal(t, 1, counts.Incorrect)
}
