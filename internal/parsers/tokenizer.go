package parsers

import "strings"

// SplitLine tokenizes one line into trimmed fields, honoring quoted fields:
// the delimiter separates fields only while outside double quotes. The
// trailing field after the last delimiter is always emitted, including when
// it is empty.
func SplitLine(line string, delimiter rune) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == delimiter && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	return fields
}

// SplitRows splits raw file text into tokenized rows. A newline terminates a
// row only while outside a quoted field; carriage returns are discarded.
// Lines that are blank after trimming are skipped.
func SplitRows(text string, delimiter rune) [][]string {
	var rows [][]string
	var line strings.Builder
	inQuotes := false

	flush := func() {
		raw := line.String()
		line.Reset()
		if strings.TrimSpace(raw) == "" {
			return
		}
		rows = append(rows, SplitLine(raw, delimiter))
	}

	for _, r := range text {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			line.WriteRune(r)
		case r == '\r':
			// discarded
		case r == '\n' && !inQuotes:
			flush()
		default:
			line.WriteRune(r)
		}
	}
	flush()

	return rows
}
