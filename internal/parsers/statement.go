package parsers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"statement-import-service/internal/models"
	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"
)

// Result is the outcome of one statement parse: the normalized transactions,
// the statement-level metadata, and counters describing what was skipped.
type Result struct {
	Transactions []*models.Transaction
	Metadata     *models.StatementMetadata
	Stats        *ParseStats
}

// ParseStats holds counters about a parsing operation
type ParseStats struct {
	TotalRows     int
	DataRows      int
	SkippedRows   int
	BothLegRows   int
	FooterReached bool
}

// String returns a human-readable summary of parsing statistics
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Parsed %d rows, %d transactions, %d skipped",
		ps.TotalRows, ps.DataRows, ps.SkippedRows)
}

// StatementParser runs the full parse pipeline: delimiter detection, row
// splitting, header location, column mapping, row normalization and
// metadata extraction. It is synchronous and parses one file at a time.
type StatementParser struct {
	config *Config
	logger logger.Logger
}

// NewStatementParser creates a parser with the given configuration
func NewStatementParser(config *Config) (*StatementParser, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "parser", config, err)
	}

	return &StatementParser{
		config: config,
		logger: logger.WithComponent("statement_parser"),
	}, nil
}

// ParseReader parses a statement from a reader, dispatching on the file
// extension: CSV text goes through delimiter detection and the quoted-field
// row splitter, .xlsx/.xls workbooks are rendered to cell rows first.
func (p *StatementParser) ParseReader(r io.Reader, filename string) (*Result, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".txt", "":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.FileError(errors.CodeFileCorrupted, filename, err)
		}
		return p.ParseText(string(data))
	case ".xlsx", ".xls":
		rows, err := ReadWorkbookRows(r, ext)
		if err != nil {
			return nil, errors.FileError(errors.CodeFileCorrupted, filename, err)
		}
		return p.ParseRows(rows)
	default:
		return nil, errors.FileError(errors.CodeUnsupportedFormat, filename, nil)
	}
}

// ParseText parses raw CSV statement text
func (p *StatementParser) ParseText(text string) (*Result, error) {
	delimiter := DetectDelimiter(text)
	p.logger.WithFields(logger.Fields{
		"source":    p.config.SourceName,
		"delimiter": string(delimiter),
	}).Debug("Detected field delimiter")

	return p.ParseRows(SplitRows(text, delimiter))
}

// ParseRows parses pre-tokenized cell rows (from CSV splitting or a
// spreadsheet). On a structurally unrecoverable file (no header row, no date
// column) it returns a result with an empty transaction list alongside the
// terminal error, so callers can report "no transactions found" without
// special-casing.
func (p *StatementParser) ParseRows(rows [][]string) (*Result, error) {
	result := &Result{
		Metadata: ExtractMetadata(rows),
		Stats:    &ParseStats{TotalRows: len(rows)},
	}

	headerIdx := LocateHeader(rows)
	if headerIdx == HeaderNotFound {
		p.logger.WithField("source", p.config.SourceName).Warn("No header row found")
		return result, errors.ParseError(errors.CodeHeaderNotFound, p.config.SourceName, "", nil)
	}

	columns := MapColumns(rows[headerIdx])
	if columns.Date < 0 {
		p.logger.WithField("source", p.config.SourceName).Warn("No date column in header row")
		return result, errors.ParseError(errors.CodeNoDateColumn, p.config.SourceName, "", nil)
	}

	rctx := &RowContext{
		StatementYear: p.statementYear(result.Metadata),
		Currency:      p.config.Currency,
	}

	for _, row := range rows[headerIdx+1:] {
		txn, outcome := NormalizeRow(row, columns, rctx)
		switch outcome {
		case RowTerminated:
			result.Stats.FooterReached = true
		case RowSkipped:
			result.Stats.SkippedRows++
			continue
		case RowOK:
			if txn.HasBothLegs() {
				// The source format does not promise debit XOR credit.
				result.Stats.BothLegRows++
				p.logger.WithField("description", txn.Description).
					Warn("Row has both debit and credit legs")
			}
			result.Transactions = append(result.Transactions, txn)
			result.Stats.DataRows++
			continue
		}
		break
	}

	p.logger.WithFields(logger.Fields{
		"source":       p.config.SourceName,
		"transactions": result.Stats.DataRows,
		"skipped":      result.Stats.SkippedRows,
	}).Info("Statement parsed")

	return result, nil
}

// statementYear resolves the year used for two-field dates: an explicitly
// configured year wins, then the period banner, then the current year.
func (p *StatementParser) statementYear(md *models.StatementMetadata) int {
	if p.config.StatementYear > 0 {
		return p.config.StatementYear
	}
	if year := md.StatementYear(); year > 0 {
		return year
	}
	return time.Now().Year()
}
