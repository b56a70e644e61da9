package parsers

import (
	"bytes"
	"fmt"
	"io"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ReadWorkbookRows renders the first sheet of an .xlsx or legacy .xls
// workbook into cell rows for the row pipeline. Cells are returned as their
// display text; date cells stored as serials surface as numeric text and are
// handled by the row normalizer's serial conversion.
func ReadWorkbookRows(r io.Reader, ext string) ([][]string, error) {
	switch ext {
	case ".xlsx":
		return readXLSXRows(r)
	case ".xls":
		return readXLSRows(r)
	default:
		return nil, fmt.Errorf("unsupported workbook extension %q", ext)
	}
}

func readXLSXRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}
	return rows, nil
}

func readXLSRows(r io.Reader) ([][]string, error) {
	// extrame/xls needs a ReadSeeker; statements are small enough to buffer
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read xls data: %w", err)
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}

	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("xls workbook has no sheets")
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}

		// index from zero so column positions line up with the header row
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
