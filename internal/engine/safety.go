package engine

import (
	"fmt"
	"strings"

	"github.com/apexionhq/cx-copilot/internal/errors"
)

// forbiddenKeywords vetoes any statement containing a write or DDL verb
// anywhere in its text. Matching is deliberately substring-based: a SELECT
// that merely mentions one of these words in a string literal is rejected
// too, trading false positives for a simpler gate that cannot be bypassed
// by nesting.
var forbiddenKeywords = []string{
	"drop",
	"delete",
	"insert",
	"update",
	"alter",
	"create",
	"truncate",
	"exec",
	"execute",
	"pragma",
}

// SafetyChecker validates generated SQL before it is allowed anywhere near
// the database. It is purely lexical and assumes nothing about what the
// model produced.
type SafetyChecker struct {
	forbidden []string
}

// NewSafetyChecker creates a safety checker with the default deny list
func NewSafetyChecker() *SafetyChecker {
	return &SafetyChecker{
		forbidden: forbiddenKeywords,
	}
}

// Validate returns nil only if the statement passes every rule:
// it is non-empty, starts with SELECT, contains no forbidden keyword,
// and has no semicolon except a single trailing one. Validation is
// deterministic and idempotent; the statement is never modified.
func (sc *SafetyChecker) Validate(sqlText string) error {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return errors.NewSafetyRejectionError("statement is empty")
	}

	lowered := strings.ToLower(trimmed)

	if !strings.HasPrefix(lowered, "select") {
		return errors.NewSafetyRejectionError("only SELECT statements are allowed")
	}

	for _, keyword := range sc.forbidden {
		if strings.Contains(lowered, keyword) {
			return errors.NewSafetyRejectionError(fmt.Sprintf("statement contains forbidden keyword: %s", keyword))
		}
	}

	// A single trailing semicolon is tolerated; anywhere else it could
	// smuggle a second statement.
	body := strings.TrimSuffix(trimmed, ";")
	if strings.Contains(body, ";") {
		return errors.NewSafetyRejectionError("multiple statements are not allowed")
	}

	return nil
}
