// Package parsers implements the statement-import parser: delimiter and
// layout detection for heterogeneous CSV/Excel bank statements, bilingual
// (Bahasa Indonesia / English) header and column recognition, locale-aware
// numeric parsing, spreadsheet date-serial handling, and statement metadata
// extraction from banner and footer rows.
//
// The parser is deliberately forgiving with data: malformed cells resolve to
// zero and malformed rows are skipped. Only structurally unrecoverable files
// (no recognizable header row, no date column) fail the parse as a whole.
package parsers

import "strings"

// delimiterSampleLines is how many leading lines the detector inspects.
const delimiterSampleLines = 5

// DetectDelimiter chooses between comma and semicolon by counting both
// characters within the first 5 lines of the raw text. Comma wins only when
// its count strictly exceeds the semicolon count. It always returns a
// delimiter; there are no error cases.
func DetectDelimiter(text string) rune {
	lines := strings.SplitN(text, "\n", delimiterSampleLines+1)
	if len(lines) > delimiterSampleLines {
		lines = lines[:delimiterSampleLines]
	}

	commas, semicolons := 0, 0
	for _, line := range lines {
		commas += strings.Count(line, ",")
		semicolons += strings.Count(line, ";")
	}

	if commas > semicolons {
		return ','
	}
	return ';'
}
