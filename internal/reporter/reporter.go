// Package reporter renders the outcome of one statement import in several
// output formats.
//
// Supported output formats:
//   - Console: human-readable summary for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: the imported transactions for spreadsheet applications
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"statement-import-service/internal/models"
	"statement-import-service/internal/store"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ImportReport is everything one import run produced: counters, the
// statement metadata, the auto-match outcome and the inserted transactions.
type ImportReport struct {
	File        string                    `json:"file"`
	AccountID   string                    `json:"account_id"`
	BatchID     string                    `json:"batch_id,omitempty"`
	Parsed      int                       `json:"parsed"`
	Inserted    int                       `json:"inserted"`
	Duplicates  int                       `json:"duplicates"`
	Skipped     int                       `json:"skipped"`
	BothLegRows int                       `json:"both_leg_rows,omitempty"`
	DryRun      bool                      `json:"dry_run,omitempty"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Metadata    *models.StatementMetadata `json:"metadata,omitempty"`
	AutoMatch   *store.MatchOutcome       `json:"automatch,omitempty"`

	Transactions []*models.Transaction `json:"transactions,omitempty"`
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeTransactions adds the inserted transactions to JSON output;
	// CSV output always lists them
	IncludeTransactions bool `json:"include_transactions"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:              FormatConsole,
		IncludeTransactions: false,
		CSVDelimiter:        ',',
		CSVHeaders:          true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// ReportGenerator renders import reports in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport renders the report and writes it to the provided writer
func (rg *ReportGenerator) GenerateReport(report *ImportReport, writer io.Writer) error {
	if report == nil {
		return fmt.Errorf("import report cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(report, writer)
	case FormatJSON:
		return rg.generateJSONReport(report, writer)
	case FormatCSV:
		return rg.generateCSVReport(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// generateConsoleReport renders a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(report *ImportReport, writer io.Writer) error {
	fmt.Fprintf(writer, "STATEMENT IMPORT REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "File:      %s\n", report.File)
	fmt.Fprintf(writer, "Account:   %s\n", report.AccountID)
	if report.BatchID != "" {
		fmt.Fprintf(writer, "Batch:     %s\n", report.BatchID)
	}
	if report.DryRun {
		fmt.Fprintf(writer, "Mode:      dry run (nothing stored)\n")
	}
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== ROWS ===\n")
	fmt.Fprintf(writer, "Parsed:     %d\n", report.Parsed)
	fmt.Fprintf(writer, "Inserted:   %d\n", report.Inserted)
	fmt.Fprintf(writer, "Duplicates: %d\n", report.Duplicates)
	fmt.Fprintf(writer, "Skipped:    %d\n", report.Skipped)
	if report.BothLegRows > 0 {
		fmt.Fprintf(writer, "Rows with both debit and credit: %d\n", report.BothLegRows)
	}
	fmt.Fprintf(writer, "\n")

	if md := report.Metadata; md != nil && (md.HasPeriod() || !md.ClosingBalance.IsZero()) {
		fmt.Fprintf(writer, "=== STATEMENT ===\n")
		if md.PeriodLabel != "" {
			fmt.Fprintf(writer, "Period:          %s\n", md.PeriodLabel)
		}
		if md.HasPeriod() {
			fmt.Fprintf(writer, "Range:           %s - %s\n",
				md.StartDate.Format(models.DateLayout), md.EndDate.Format(models.DateLayout))
		}
		fmt.Fprintf(writer, "Opening Balance: %s\n", md.OpeningBalance.StringFixed(2))
		fmt.Fprintf(writer, "Closing Balance: %s\n", md.ClosingBalance.StringFixed(2))
		fmt.Fprintf(writer, "Total Debits:    %s\n", md.TotalDebits.StringFixed(2))
		fmt.Fprintf(writer, "Total Credits:   %s\n", md.TotalCredits.StringFixed(2))
		fmt.Fprintf(writer, "\n")
	}

	if report.AutoMatch != nil {
		fmt.Fprintf(writer, "=== AUTO MATCH ===\n")
		fmt.Fprintf(writer, "Matched:   %d\n", report.AutoMatch.Matched)
		fmt.Fprintf(writer, "Suggested: %d\n", report.AutoMatch.Suggested)
		fmt.Fprintf(writer, "Skipped:   %d\n", report.AutoMatch.Skipped)
	}

	return nil
}

// generateJSONReport renders a structured JSON report
func (rg *ReportGenerator) generateJSONReport(report *ImportReport, writer io.Writer) error {
	out := *report
	if !rg.config.IncludeTransactions {
		out.Transactions = nil
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(&out)
}

// generateCSVReport renders the imported transactions as CSV
func (rg *ReportGenerator) generateCSVReport(report *ImportReport, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{"Date", "Description", "Reference", "Debit", "Credit", "Balance", "Currency"}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, txn := range report.Transactions {
		record := []string{
			txn.Date.Format(models.DateLayout),
			txn.Description,
			txn.Reference,
			txn.Debit.String(),
			txn.Credit.String(),
			txn.Balance.String(),
			txn.Currency,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write transaction record: %w", err)
		}
	}

	return csvWriter.Error()
}

// UpdateConfiguration updates the report generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}
