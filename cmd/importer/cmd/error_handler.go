package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a user-friendly message and returns the exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if importErr, ok := errors.AsImportError(err); ok {
		return h.handleImportError(importErr)
	}

	return h.handleGenericError(err)
}

// handleImportError handles ImportError with detailed context
func (h *CLIErrorHandler) handleImportError(err *errors.ImportError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-ImportError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if !h.verbose {
		fmt.Fprintf(os.Stderr, "\nFor more details, run with --verbose flag\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Supported statement formats are .csv, .xlsx and .xls
• PDF statements need the document parsing service (--parse-service-url)`

	case errors.CategoryParse:
		return `Parse error help:
• Verify the statement has a header row with date and amount columns
• Headers may be Bahasa Indonesia (Tanggal, Keterangan, Mutasi, Saldo) or English
• Ensure the file uses UTF-8 encoding
• Re-export the statement from the bank portal if it looks truncated`

	case errors.CategoryValidation:
		return `Validation error help:
• Check that all required fields have values
• Dates use DD/MM with a statement year, or a spreadsheet date serial
• Ensure amounts are numbers without stray characters`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'importer import --help' to see all available options`

	case errors.CategoryStore:
		return `Store error help:
• Verify the DSN and that PostgreSQL is reachable
• Already inserted batches are kept; duplicates are filtered on retry
• Re-run auto-match with 'POST /statements/automatch' or the serve job`

	case errors.CategoryNetwork:
		return `Network error help:
• Check connectivity to the document parsing service
• Image-based PDFs need OCR confirmation before import
• Try again later if the service is temporarily unavailable`

	default:
		return `For more help:
• Use 'importer --help' for general help
• Use 'importer import --help' for command-specific help`
	}
}

// Error detection helpers

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}
