// Package config builds the component configurations used by the CLI from
// flag values.
package config

import (
	"path/filepath"

	"statement-import-service/internal/parsers"
	"statement-import-service/internal/reporter"
)

// CreateParserConfig builds a parser configuration for one statement file
func CreateParserConfig(file string, year int, currency string) *parsers.Config {
	cfg := parsers.DefaultConfig()
	cfg.SourceName = filepath.Base(file)
	cfg.StatementYear = year
	if currency != "" {
		cfg.Currency = currency
	}
	return cfg
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	}

	return config
}
