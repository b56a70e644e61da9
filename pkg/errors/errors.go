// Package errors defines the error taxonomy used across the statement
// import pipeline. Errors carry a category, a specific code, an optional
// suggestion for the operator, and a context map for structured logging.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryStore         ErrorCategory = "store"
	CategoryNetwork       ErrorCategory = "network"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound      ErrorCode = "file_not_found"
	CodeFilePermission    ErrorCode = "file_permission"
	CodeFileCorrupted     ErrorCode = "file_corrupted"
	CodeUnsupportedFormat ErrorCode = "unsupported_format"

	// Parse errors
	CodeHeaderNotFound ErrorCode = "header_not_found"
	CodeNoDateColumn   ErrorCode = "no_date_column"
	CodeInvalidFormat  ErrorCode = "invalid_format"
	CodeEncodingError  ErrorCode = "encoding_error"

	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeMissingField  ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Store errors
	CodeStoreUnavailable ErrorCode = "store_unavailable"
	CodeQueryFailed      ErrorCode = "query_failed"
	CodeInsertFailed     ErrorCode = "insert_failed"
	CodeAutoMatchFailed  ErrorCode = "automatch_failed"

	// Network errors
	CodeConnectionFailed   ErrorCode = "connection_failed"
	CodeTimeout            ErrorCode = "timeout"
	CodeServiceUnavailable ErrorCode = "service_unavailable"
	CodeNeedsOCR           ErrorCode = "needs_ocr"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ImportError is the base error type for all application errors
type ImportError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ImportError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ImportError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ImportError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryStore, CategoryInternal:
		return 5
	case CategoryNetwork:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ImportError) WithContext(key string, value interface{}) *ImportError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ImportError) WithSuggestion(suggestion string) *ImportError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ImportError
func New(category ErrorCategory, code ErrorCode, message string) *ImportError {
	return &ImportError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ImportError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ImportError {
	if err == nil {
		return nil
	}

	return &ImportError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ImportError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "verify the file integrity and try re-exporting the statement"
	case CodeUnsupportedFormat:
		message = fmt.Sprintf("unsupported statement file format: %s", path)
		suggestion = "supported formats are .csv, .xlsx and .xls; PDF statements go through the remote parsing service"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	result := wrapOrNew(err, CategoryFile, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error. Per-row data problems are
// skipped by the parser and never reach this constructor; only structural
// failures (no header, no date column) do.
func ParseError(code ErrorCode, file string, detail string, err error) *ImportError {
	var message string
	var suggestion string

	switch code {
	case CodeHeaderNotFound:
		message = fmt.Sprintf("no header row found in %s", file)
		suggestion = "ensure the statement has a header row with date and description or amount columns within the first 20 rows"
	case CodeNoDateColumn:
		message = fmt.Sprintf("no date column found in header of %s", file)
		suggestion = "the header row must contain a Tanggal/Tgl/Date column"
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in %s: %s", file, detail)
		suggestion = "check the statement format and ensure it was exported correctly"
	case CodeEncodingError:
		message = fmt.Sprintf("encoding error in %s", file)
		suggestion = "ensure the file is saved in UTF-8 encoding"
	default:
		message = fmt.Sprintf("parse error in %s", file)
		suggestion = "check the file format and data integrity"
	}

	result := wrapOrNew(err, CategoryParse, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("detail", detail)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *ImportError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "ensure amounts are valid decimal numbers"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use DD/MM with a statement year, or a spreadsheet date serial"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	result := wrapOrNew(err, CategoryValidation, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ImportError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting via flag, env or config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	result := wrapOrNew(err, CategoryConfiguration, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// StoreError creates a persistence-related error. Store failures are fatal
// for the upload attempt; no rollback of previously inserted batches is done.
func StoreError(code ErrorCode, operation string, err error) *ImportError {
	var message string
	var suggestion string

	switch code {
	case CodeStoreUnavailable:
		message = fmt.Sprintf("database unavailable during %s", operation)
		suggestion = "check the DSN and that PostgreSQL is reachable"
	case CodeQueryFailed:
		message = fmt.Sprintf("database query failed during %s", operation)
		suggestion = "check database connectivity and schema"
	case CodeInsertFailed:
		message = fmt.Sprintf("insert failed during %s", operation)
		suggestion = "check database connectivity; already inserted batches are kept"
	case CodeAutoMatchFailed:
		message = fmt.Sprintf("auto-match procedure failed during %s", operation)
		suggestion = "statement lines are stored; re-run auto-match later"
	default:
		message = fmt.Sprintf("store error during %s", operation)
		suggestion = "check the database and try again"
	}

	result := wrapOrNew(err, CategoryStore, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// NetworkError creates a network-related error
func NetworkError(code ErrorCode, endpoint string, err error) *ImportError {
	var message string
	var suggestion string

	switch code {
	case CodeConnectionFailed:
		message = fmt.Sprintf("connection failed to %s", endpoint)
		suggestion = "check network connectivity and endpoint availability"
	case CodeTimeout:
		message = fmt.Sprintf("timeout connecting to %s", endpoint)
		suggestion = "increase timeout setting or check network speed"
	case CodeServiceUnavailable:
		message = fmt.Sprintf("service unavailable: %s", endpoint)
		suggestion = "try again later or contact service administrator"
	case CodeNeedsOCR:
		message = fmt.Sprintf("document requires OCR processing: %s", endpoint)
		suggestion = "confirm the OCR preview before importing"
	default:
		message = fmt.Sprintf("network error: %s", endpoint)
		suggestion = "check network connection and try again"
	}

	result := wrapOrNew(err, CategoryNetwork, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("endpoint", endpoint)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *ImportError {
	message := fmt.Sprintf("unexpected error during %s", operation)
	result := wrapOrNew(err, CategoryInternal, code, message)
	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

func wrapOrNew(err error, category ErrorCategory, code ErrorCode, message string) *ImportError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// IsImportError checks if an error is an ImportError
func IsImportError(err error) bool {
	_, ok := err.(*ImportError)
	return ok
}

// AsImportError extracts an ImportError from an error chain
func AsImportError(err error) (*ImportError, bool) {
	var importErr *ImportError
	if errors.As(err, &importErr) {
		return importErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given error code anywhere in its chain
func HasCode(err error, code ErrorCode) bool {
	if importErr, ok := AsImportError(err); ok {
		return importErr.Code == code
	}
	return false
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total      int                   `json:"total"`
	ByCategory map[ErrorCategory]int `json:"by_category"`
	Errors     []*ImportError        `json:"errors"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*ImportError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		Errors:     errs,
	}
	for _, err := range errs {
		summary.ByCategory[err.Category]++
	}
	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}
	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}
	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}
	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}
	return maxCode
}
