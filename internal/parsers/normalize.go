package parsers

import (
	"strconv"
	"strings"
	"time"

	"statement-import-service/internal/models"

	"github.com/shopspring/decimal"
)

// RowOutcome describes what the normalizer decided about one data row.
type RowOutcome int

const (
	// RowOK means a transaction was produced
	RowOK RowOutcome = iota
	// RowSkipped means the row was excluded (empty, bad date) but
	// processing continues with the next row
	RowSkipped
	// RowTerminated means a footer marker was reached; the transaction
	// section is over and no further rows may be processed
	RowTerminated
)

// RowContext is the explicit parser state threaded through each row
// normalization call: the statement year used to complete two-field DD/MM
// dates, and the account currency stamped on each transaction.
type RowContext struct {
	StatementYear int
	Currency      string
}

// footerMarkers are the banner texts that signal the end of the transaction
// table. Several spelling variants occur across bank exports.
var footerMarkers = []string{
	"saldo awal",
	"saldo akhir",
	"mutasi debet",
	"mutasi kredit",
	"mutasi cr",
	"mutasi db",
}

// IsFooterRow reports whether the row is a footer banner. Encountering one
// terminates row processing for the remainder of the file.
func IsFooterRow(row []string) bool {
	joined := strings.ToLower(strings.Join(row, " "))
	return containsAny(joined, footerMarkers)
}

// NormalizeRow converts one data row into a transaction using the column
// map. It returns RowSkipped for empty rows and rows whose date cell is
// empty or unparseable, and RowTerminated when the row is a footer banner.
func NormalizeRow(row []string, cm *ColumnMap, rctx *RowContext) (*models.Transaction, RowOutcome) {
	if isEmptyRow(row) {
		return nil, RowSkipped
	}
	if IsFooterRow(row) {
		return nil, RowTerminated
	}

	date, ok := parseRowDate(cellAt(row, cm.Date), rctx.StatementYear)
	if !ok {
		return nil, RowSkipped
	}

	txn := &models.Transaction{
		Date:     date,
		Debit:    decimal.Zero,
		Credit:   decimal.Zero,
		Balance:  decimal.Zero,
		Currency: rctx.Currency,
	}

	txn.Description = buildDescription(row, cm)
	if cm.Branch >= 0 {
		txn.Reference = cellAt(row, cm.Branch)
	}

	if cm.HasSplitAmounts() {
		txn.Debit = ParseLocaleAmount(cellAt(row, cm.Debit))
		txn.Credit = ParseLocaleAmount(cellAt(row, cm.Credit))
	} else if cm.Amount >= 0 {
		txn.Debit, txn.Credit = classifyCombinedAmount(row, cm.Amount)
	}

	if cm.Balance >= 0 {
		txn.Balance = ParseLocaleAmount(cellAt(row, cm.Balance))
	}

	return txn, RowOK
}

// parseRowDate handles the two date shapes found in statement exports:
// a numeric spreadsheet date serial, or a two-field "DD/MM" text date that
// borrows the statement year from the parse context.
func parseRowDate(cell string, statementYear int) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}

	if !strings.Contains(cell, "/") {
		if serial, err := strconv.ParseFloat(cell, 64); err == nil && serial > 0 {
			return dateFromSerial(serial), true
		}
		return time.Time{}, false
	}

	parts := strings.Split(cell, "/")
	if len(parts) != 2 {
		return time.Time{}, false
	}

	day, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return time.Time{}, false
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, false
	}

	year := statementYear
	if year == 0 {
		year = time.Now().Year()
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// dateFromSerial converts a spreadsheet date serial to a calendar date using
// the epoch-minus-2 convention: serial 1 maps to 1899-12-31, preserving the
// historical 1900 leap-year bug baked into common spreadsheet software.
func dateFromSerial(serial float64) time.Time {
	base := time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(serial)-2)
}

// buildDescription concatenates the description cell with the cell to its
// right (the detail cell), joined by "; " when the detail is non-empty. The
// neighbor is only treated as detail when it is not itself a mapped column,
// so amount or branch cells never leak into the description.
func buildDescription(row []string, cm *ColumnMap) string {
	if cm.Description < 0 {
		return ""
	}

	description := cellAt(row, cm.Description)
	detail := ""
	if !cm.isMapped(cm.Description + 1) {
		detail = cellAt(row, cm.Description+1)
	}
	if detail != "" {
		if description != "" {
			return description + "; " + detail
		}
		return detail
	}
	return description
}

// classifyCombinedAmount parses a single combined-amount column followed by
// a CR/DB indicator cell. Credit when the indicator is exactly "CR" or the
// amount text contains " CR"; debit when the indicator is "DB" or the text
// contains " DB"; with no indicator at all, a positive magnitude falls back
// to debit.
func classifyCombinedAmount(row []string, amountCol int) (debit, credit decimal.Decimal) {
	amountText := strings.ToUpper(cellAt(row, amountCol))
	indicator := strings.ToUpper(cellAt(row, amountCol+1))
	magnitude := ParseLocaleAmount(amountText)

	switch {
	case indicator == "CR" || strings.Contains(amountText, " CR"):
		return decimal.Zero, magnitude
	case indicator == "DB" || strings.Contains(amountText, " DB"):
		return magnitude, decimal.Zero
	case magnitude.IsPositive():
		return magnitude, decimal.Zero
	}
	return decimal.Zero, decimal.Zero
}

func cellAt(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
