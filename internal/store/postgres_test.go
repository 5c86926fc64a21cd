package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewWithDB(db), mock
}

func TestQuery(t *testing.T) {
	s, mock := newMockStore(t)

	signup := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	mock.ExpectQuery("SELECT name, tier, signup_date FROM customers").
		WillReturnRows(sqlmock.NewRows([]string{"name", "tier", "signup_date"}).
			AddRow("Sarah Johnson", []byte("enterprise"), signup).
			AddRow("David Kim", []byte("free"), signup))

	columns, rows, err := s.Query(context.Background(), "SELECT name, tier, signup_date FROM customers")

	require.NoError(t, err)
	assert.Equal(t, []string{"name", "tier", "signup_date"}, columns)
	require.Len(t, rows, 2)

	// Byte slices come back as strings, timestamps in a fixed layout
	assert.Equal(t, "Sarah Johnson", rows[0]["name"])
	assert.Equal(t, "enterprise", rows[0]["tier"])
	assert.Equal(t, "2025-03-14 09:26:53", rows[0]["signup_date"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryEmptyResult(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id FROM customers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	columns, rows, err := s.Query(context.Background(), "SELECT id FROM customers WHERE 1=0")

	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, columns)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestQueryDatabaseError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT nme FROM customers").
		WillReturnError(assert.AnError)

	_, _, err := s.Query(context.Background(), "SELECT nme FROM customers")
	assert.Error(t, err)
}

func TestNormalizeValue(t *testing.T) {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"bytes to string", []byte("hello"), "hello"},
		{"timestamp layout", ts, "2026-01-02 15:04:05"},
		{"int passthrough", int64(42), int64(42)},
		{"nil passthrough", nil, nil},
		{"float passthrough", 3.14, 3.14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeValue(tt.in))
		})
	}
}
