package parsers

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLocaleAmount parses a numeric string that may use either comma or dot
// as the decimal or thousands separator (Indonesian/European vs. US
// convention). All characters except digits, commas and dots are stripped
// first. When both separators are present, the one appearing LAST is treated
// as the decimal point; every other separator, including earlier occurrences
// of the decimal one, is removed as a thousands separator.
// When only a comma is present it is the decimal point. Empty or unparseable
// input resolves to zero; this function never returns an error, so one bad
// cell cannot abort an otherwise-valid import.
//
// The last-separator-wins rule is heuristic and can misread ambiguous values
// such as "1.234". It is kept as-is: downstream duplicate detection and
// balance checks depend on the parser being deterministic, not on locale
// correctness.
func ParseLocaleAmount(s string) decimal.Decimal {
	cleaned := stripNonNumeric(s)
	if cleaned == "" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// comma is the decimal point; dots and any earlier commas
			// are thousands separators
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			idx := strings.LastIndex(cleaned, ",")
			cleaned = strings.ReplaceAll(cleaned[:idx], ",", "") + "." + cleaned[idx+1:]
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
			idx := strings.LastIndex(cleaned, ".")
			cleaned = strings.ReplaceAll(cleaned[:idx], ".", "") + cleaned[idx:]
		}
	case lastComma >= 0:
		// comma only: the last comma is the decimal point
		cleaned = strings.ReplaceAll(cleaned[:lastComma], ",", "") + "." + cleaned[lastComma+1:]
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
