package parsers

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"statement-import-service/pkg/errors"
)

// buildWorkbook writes the given cells into a fresh xlsx workbook and returns
// its serialized bytes as a reader.
func buildWorkbook(t *testing.T, cells map[string]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for axis, value := range cells {
		if err := f.SetCellValue(sheet, axis, value); err != nil {
			t.Fatalf("failed to set cell %s: %v", axis, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestParseReader_XLSXWorkbook(t *testing.T) {
	wb := buildWorkbook(t, map[string]interface{}{
		"A1": "Tanggal", "B1": "Keterangan", "C1": "Debet", "D1": "Kredit", "E1": "Saldo",
		// date stored as a spreadsheet serial, rendered as numeric text
		"A2": 45292, "B2": "Transfer Masuk", "D2": "500000", "E2": "1500000",
		"A3": "01/03", "B3": "Tarikan Tunai", "C3": "250000", "E3": "1250000",
	})

	parser, err := NewStatementParser(&Config{
		SourceName:    "statement.xlsx",
		StatementYear: 2024,
		Currency:      "IDR",
	})
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	result, err := parser.ParseReader(wb, "statement.xlsx")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(result.Transactions))
	}

	first := result.Transactions[0]
	wantSerialDate := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !first.Date.Equal(wantSerialDate) {
		t.Errorf("serial date cell: got %s, want %s",
			first.Date.Format("2006-01-02"), wantSerialDate.Format("2006-01-02"))
	}
	if first.Credit.String() != "500000" {
		t.Errorf("expected credit 500000, got %s", first.Credit)
	}
	if first.Balance.String() != "1500000" {
		t.Errorf("expected balance 1500000, got %s", first.Balance)
	}

	second := result.Transactions[1]
	wantTextDate := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !second.Date.Equal(wantTextDate) {
		t.Errorf("DD/MM date cell: got %s, want %s",
			second.Date.Format("2006-01-02"), wantTextDate.Format("2006-01-02"))
	}
	if second.Debit.String() != "250000" {
		t.Errorf("expected debit 250000, got %s", second.Debit)
	}
}

func TestParseReader_XLSXWithoutHeader(t *testing.T) {
	wb := buildWorkbook(t, map[string]interface{}{
		"A1": "Laporan Rekening",
		"A2": "bukan header",
	})

	parser, err := NewStatementParser(nil)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	result, err := parser.ParseReader(wb, "statement.xlsx")
	if err == nil {
		t.Fatal("expected header-not-found error")
	}
	if !errors.HasCode(err, errors.CodeHeaderNotFound) {
		t.Errorf("expected code %s, got %v", errors.CodeHeaderNotFound, err)
	}
	if len(result.Transactions) != 0 {
		t.Errorf("expected empty transaction list, got %d", len(result.Transactions))
	}
}

func TestParseReader_XLSCorruptFile(t *testing.T) {
	parser, err := NewStatementParser(nil)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	_, err = parser.ParseReader(bytes.NewReader([]byte("not a spreadsheet")), "statement.xls")
	if err == nil {
		t.Fatal("expected error for corrupt xls data")
	}
	if !errors.HasCode(err, errors.CodeFileCorrupted) {
		t.Errorf("expected code %s, got %v", errors.CodeFileCorrupted, err)
	}
}

func TestReadWorkbookRows_UnsupportedExtension(t *testing.T) {
	_, err := ReadWorkbookRows(bytes.NewReader(nil), ".ods")
	if err == nil {
		t.Fatal("expected error for unsupported workbook extension")
	}
}
