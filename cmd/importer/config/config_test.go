package config

import (
	"testing"

	"statement-import-service/internal/reporter"
)

func TestCreateParserConfig(t *testing.T) {
	config := CreateParserConfig("/exports/statement_maret.csv", 2024, "IDR")

	if config.SourceName != "statement_maret.csv" {
		t.Errorf("expected SourceName 'statement_maret.csv', got '%s'", config.SourceName)
	}
	if config.StatementYear != 2024 {
		t.Errorf("expected StatementYear 2024, got %d", config.StatementYear)
	}
	if config.Currency != "IDR" {
		t.Errorf("expected Currency 'IDR', got '%s'", config.Currency)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("parser config should be valid: %v", err)
	}
}

func TestCreateParserConfig_EmptyCurrencyKeepsDefault(t *testing.T) {
	config := CreateParserConfig("statement.csv", 0, "")
	if config.Currency != "IDR" {
		t.Errorf("expected default currency 'IDR', got '%s'", config.Currency)
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		format string
		want   reporter.OutputFormat
	}{
		{"console", reporter.FormatConsole},
		{"json", reporter.FormatJSON},
		{"csv", reporter.FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			config := CreateReportConfig(tt.format)
			if config.Format != tt.want {
				t.Errorf("expected format %s, got %s", tt.want, config.Format)
			}
			if err := config.Validate(); err != nil {
				t.Errorf("report config should be valid: %v", err)
			}
		})
	}
}
