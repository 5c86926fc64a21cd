// Package errors provides enhanced error types with helpful context and suggestions
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Pipeline stage errors
	ErrCodeTranslation      ErrorCode = "TRANSLATION_FAILED"
	ErrCodeSafetyValidation ErrorCode = "SAFETY_VALIDATION_FAILED"
	ErrCodeQueryExecution   ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSummarization    ErrorCode = "SUMMARIZATION_FAILED"

	// Database errors
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseQuery      ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeAuditWrite         ErrorCode = "AUDIT_WRITE_FAILED"

	// Session errors
	ErrCodeSessionCreation ErrorCode = "SESSION_CREATION_FAILED"

	// Input validation errors
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED_FIELD"
)

// EnhancedError represents an error with additional context and helpful information
type EnhancedError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.Details != "" {
		sb.WriteString(fmt.Sprintf(": %s", e.Details))
	}
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(" (cause: %v)", e.Cause))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error chain unwrapping
func (e *EnhancedError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly error message with suggestions
func (e *EnhancedError) UserMessage() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString(fmt.Sprintf("\n\nDetails: %s", e.Details))
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n\nSuggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// New creates a new EnhancedError
func New(code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Metadata: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with enhanced context
func Wrap(err error, code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Cause:    err,
		Metadata: make(map[string]interface{}),
	}
}

// WithDetails adds detailed information about the error
func (e *EnhancedError) WithDetails(details string) *EnhancedError {
	e.Details = details
	return e
}

// WithSuggestion adds a suggestion on how to fix the error
func (e *EnhancedError) WithSuggestion(suggestion string) *EnhancedError {
	e.Suggestion = suggestion
	return e
}

// WithMetadata adds additional metadata to the error
func (e *EnhancedError) WithMetadata(key string, value interface{}) *EnhancedError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Common error constructors with pre-configured messages

// NewTranslationError creates an error for question-to-SQL translation failures
func NewTranslationError(err error) *EnhancedError {
	return Wrap(err, ErrCodeTranslation, "Failed to translate question to SQL").
		WithDetails("The AI was unable to convert your natural language question into a database query").
		WithSuggestion("Try rephrasing your question or being more specific. For example: 'How many open tickets does Acme Corp have?'")
}

// NewSafetyRejectionError creates an error for queries vetoed by the safety gate
func NewSafetyRejectionError(reason string) *EnhancedError {
	return New(ErrCodeSafetyValidation, "Generated SQL failed safety validation").
		WithDetails(reason).
		WithSuggestion("Only read-only SELECT queries are allowed. Rephrase your question so it asks about data rather than changing it.")
}

// NewQueryExecutionError creates an error for store-level execution failures
func NewQueryExecutionError(err error) *EnhancedError {
	return Wrap(err, ErrCodeQueryExecution, "Failed to execute query").
		WithDetails("The database rejected the generated query").
		WithSuggestion("The generated SQL may reference columns or tables incorrectly. Try asking the question differently.")
}

// NewSummarizationError creates an error for result summarization failures.
// Callers are expected to recover with the deterministic fallback summary.
func NewSummarizationError(err error) *EnhancedError {
	return Wrap(err, ErrCodeSummarization, "Failed to summarize query results").
		WithMetadata("recoverable", true)
}

// NewInvalidInputError creates an error for invalid input
func NewInvalidInputError(field string, reason string) *EnhancedError {
	return New(ErrCodeInvalidInput, "Invalid input").
		WithDetails(fmt.Sprintf("Field '%s' is invalid: %s", field, reason)).
		WithSuggestion("Please check the API documentation for the expected format and try again.")
}

// NewDatabaseConnectionError creates an error for database connection failures
func NewDatabaseConnectionError(err error) *EnhancedError {
	return Wrap(err, ErrCodeDatabaseConnection, "Database connection failed").
		WithDetails("Unable to connect to the database").
		WithSuggestion("This is an internal server error. The service may be experiencing issues. Please try again in a moment.").
		WithMetadata("retryable", true)
}

// NewDatabaseQueryError creates an error for database query failures
func NewDatabaseQueryError(err error, operation string) *EnhancedError {
	return Wrap(err, ErrCodeDatabaseQuery, "Database query failed").
		WithDetails(fmt.Sprintf("Failed to execute database operation: %s", operation)).
		WithSuggestion("This is an internal server error. If the problem persists, contact support.").
		WithMetadata("retryable", true)
}

// NewAuditWriteError creates an error for audit log persistence failures
func NewAuditWriteError(err error) *EnhancedError {
	return Wrap(err, ErrCodeAuditWrite, "Failed to persist audit entry").
		WithDetails("The query outcome could not be recorded").
		WithMetadata("retryable", true)
}

// NewSessionCreationError creates an error for session creation failures
func NewSessionCreationError(err error) *EnhancedError {
	return Wrap(err, ErrCodeSessionCreation, "Failed to create session").
		WithDetails("The system was unable to create a session").
		WithSuggestion("This is an internal server error. Please retry your request.").
		WithMetadata("retryable", true)
}
