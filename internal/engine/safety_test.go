package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexionhq/cx-copilot/internal/errors"
)

func TestNewSafetyChecker(t *testing.T) {
	sc := NewSafetyChecker()

	require.NotNil(t, sc)
	assert.Contains(t, sc.forbidden, "drop")
	assert.Contains(t, sc.forbidden, "delete")
	assert.Contains(t, sc.forbidden, "insert")
	assert.Contains(t, sc.forbidden, "update")
	assert.Contains(t, sc.forbidden, "alter")
	assert.Contains(t, sc.forbidden, "create")
	assert.Contains(t, sc.forbidden, "truncate")
	assert.Contains(t, sc.forbidden, "exec")
	assert.Contains(t, sc.forbidden, "execute")
	assert.Contains(t, sc.forbidden, "pragma")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		sql         string
		wantErr     bool
		errContains string
	}{
		{
			name:    "plain select",
			sql:     "SELECT id, name FROM customers",
			wantErr: false,
		},
		{
			name:    "lowercase select",
			sql:     "select count(*) from support_tickets where status = 'open'",
			wantErr: false,
		},
		{
			name:    "select with leading whitespace",
			sql:     "   \n\tSELECT * FROM customers",
			wantErr: false,
		},
		{
			name:    "select with single trailing semicolon",
			sql:     "SELECT id FROM customers;",
			wantErr: false,
		},
		{
			name:    "join across tables",
			sql:     "SELECT c.name, t.subject FROM customers c JOIN support_tickets t ON t.customer_id = c.id",
			wantErr: false,
		},
		{
			name:        "empty statement",
			sql:         "",
			wantErr:     true,
			errContains: "empty",
		},
		{
			name:        "whitespace only",
			sql:         "   \n\t  ",
			wantErr:     true,
			errContains: "empty",
		},
		{
			name:        "insert statement",
			sql:         "INSERT INTO customers (name) VALUES ('x')",
			wantErr:     true,
			errContains: "SELECT",
		},
		{
			name:        "delete statement",
			sql:         "DELETE FROM customers",
			wantErr:     true,
			errContains: "SELECT",
		},
		{
			name:        "with clause is rejected",
			sql:         "WITH t AS (SELECT 1) SELECT * FROM t",
			wantErr:     true,
			errContains: "SELECT",
		},
		{
			name:        "select hiding a drop",
			sql:         "SELECT 1; DROP TABLE customers",
			wantErr:     true,
			errContains: "drop",
		},
		{
			name:        "mixed case keyword",
			sql:         "SELECT * FROM customers WHERE name = 'x'; DeLeTe FROM customers",
			wantErr:     true,
			errContains: "delete",
		},
		{
			name:        "forbidden keyword inside string literal",
			sql:         "SELECT * FROM support_tickets WHERE subject ILIKE '%update%'",
			wantErr:     true,
			errContains: "update",
		},
		{
			name:        "forbidden keyword as substring of identifier",
			sql:         "SELECT created_at FROM support_tickets",
			wantErr:     true,
			errContains: "create",
		},
		{
			name:        "truncate",
			sql:         "SELECT 1 UNION SELECT 1 FROM x WHERE TRUNCATE",
			wantErr:     true,
			errContains: "truncate",
		},
		{
			name:        "pragma",
			sql:         "SELECT pragma_table_info('customers')",
			wantErr:     true,
			errContains: "pragma",
		},
		{
			name:        "embedded semicolon",
			sql:         "SELECT 1; SELECT 2",
			wantErr:     true,
			errContains: "multiple statements",
		},
		{
			name:        "double trailing semicolon",
			sql:         "SELECT 1;;",
			wantErr:     true,
			errContains: "multiple statements",
		},
	}

	sc := NewSafetyChecker()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sc.Validate(tt.sql)

			if tt.wantErr {
				require.Error(t, err)
				var enhancedErr *errors.EnhancedError
				require.ErrorAs(t, err, &enhancedErr)
				assert.Equal(t, errors.ErrCodeSafetyValidation, enhancedErr.Code)
				if tt.errContains != "" {
					assert.Contains(t, enhancedErr.Details, tt.errContains)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// Validation must be deterministic: running the same statement through the
// gate twice gives the same verdict, and the statement is never rewritten.
func TestValidateIsIdempotent(t *testing.T) {
	sc := NewSafetyChecker()

	statements := []string{
		"SELECT id FROM customers",
		"SELECT 1; DROP TABLE customers",
		"",
	}

	for _, sqlText := range statements {
		first := sc.Validate(sqlText)
		second := sc.Validate(sqlText)

		if first == nil {
			assert.NoError(t, second)
		} else {
			require.Error(t, second)
			assert.Equal(t, first.Error(), second.Error())
		}
	}
}
