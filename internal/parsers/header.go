package parsers

import "strings"

// headerScanWindow is how many leading rows are scanned for a header row.
const headerScanWindow = 20

// HeaderNotFound is the sentinel returned by LocateHeader when no row within
// the scan window qualifies as a header. Callers must treat it as a terminal
// parse failure for the whole file.
const HeaderNotFound = -1

// Keyword sets for header recognition, covering Bahasa Indonesia and English
// statement exports.
var (
	headerDateKeywords = []string{"tanggal", "date", "tgl"}

	headerContentKeywords = []string{
		"keterangan", "description", "desc",
		"mutasi", "amount", "saldo", "balance",
	}
)

// LocateHeader scans up to the first 20 rows and returns the index of the
// first row whose lower-cased, pipe-joined cell text contains at least one
// date keyword AND at least one content-or-amount keyword. Returns
// HeaderNotFound when no such row exists within the window.
func LocateHeader(rows [][]string) int {
	limit := len(rows)
	if limit > headerScanWindow {
		limit = headerScanWindow
	}

	for i := 0; i < limit; i++ {
		joined := strings.ToLower(strings.Join(rows[i], "|"))
		if containsAny(joined, headerDateKeywords) && containsAny(joined, headerContentKeywords) {
			return i
		}
	}
	return HeaderNotFound
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
