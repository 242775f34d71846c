// Package errors defines the stable error taxonomy for codemap.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ScanFailed indicates a path could not be read during scanning.
	// Recoverable: the offending path is skipped and recorded in the build report.
	ScanFailed ErrorCode = "SCAN_FAILED"
	// ParseFailed indicates a file (or a subtree of it) could not be parsed.
	// Recoverable: never propagates past the AST builder.
	ParseFailed ErrorCode = "PARSE_FAILED"
	// GraphDefect indicates a tree or graph invariant was violated.
	// Fatal: this is an internal bug and must not be swallowed.
	GraphDefect ErrorCode = "GRAPH_DEFECT"
	// BudgetExceeded indicates a build or compression resource ceiling was hit.
	// Recoverable by narrowing scope or raising the budget.
	BudgetExceeded ErrorCode = "BUDGET_EXCEEDED"
	// NotFound indicates a query referenced an unknown or stale node id.
	// Recoverable: the caller should re-query the current snapshot.
	NotFound ErrorCode = "NOT_FOUND"
	// SnapshotStale indicates a cached snapshot no longer matches repository content.
	SnapshotStale ErrorCode = "SNAPSHOT_STALE"
	// InternalError indicates an unexpected error.
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// CodemapError represents a codemap error with a stable code and an optional cause.
type CodemapError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a new CodemapError.
func New(code ErrorCode, message string, cause error) *CodemapError {
	return &CodemapError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a new CodemapError with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...interface{}) *CodemapError {
	return &CodemapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface
func (e *CodemapError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CodemapError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CodemapError) WithDetails(details interface{}) *CodemapError {
	e.Details = details
	return e
}

// IsFatal reports whether the error must abort the whole build.
// Only graph defects are fatal; everything else degrades the result.
func (e *CodemapError) IsFatal() bool {
	return e.Code == GraphDefect
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Returns InternalError for non-codemap errors and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var ce *CodemapError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalError
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
