package parsers

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"statement-import-service/internal/models"

	"github.com/shopspring/decimal"
)

// metadataScanWindow is how many leading rows are scanned for the period banner.
const metadataScanWindow = 10

// periodBannerPattern matches the "Periode DD/MM/YYYY - DD/MM/YYYY" banner.
var periodBannerPattern = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s*-\s*(\d{2}/\d{2}/\d{4})`)

// amountCellPattern finds the numeric portion of a footer banner cell.
var amountCellPattern = regexp.MustCompile(`\d[\d.,]*`)

// indonesianMonths holds the month names used in the period label.
var indonesianMonths = []string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// ExtractMetadata scans the rows for statement-level figures. The period
// banner is looked for within the first 10 rows and yields start date, end
// date, the Bahasa Indonesia period label, and the statement year used for
// two-field dates. Footer banners (Saldo Awal, Mutasi Debet, Mutasi Kredit,
// Saldo Akhir) are looked for in ALL rows and yield opening balance, total
// debits, total credits and closing balance. Missing pieces default to
// zero/empty values.
func ExtractMetadata(rows [][]string) *models.StatementMetadata {
	md := &models.StatementMetadata{}

	limit := len(rows)
	if limit > metadataScanWindow {
		limit = metadataScanWindow
	}
	for i := 0; i < limit; i++ {
		joined := strings.Join(rows[i], " ")
		if !strings.Contains(strings.ToLower(joined), "periode") {
			continue
		}
		m := periodBannerPattern.FindStringSubmatch(joined)
		if m == nil {
			continue
		}
		start, err1 := time.Parse("02/01/2006", m[1])
		end, err2 := time.Parse("02/01/2006", m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		md.StartDate = start
		md.EndDate = end
		md.PeriodLabel = fmt.Sprintf("%s %d", indonesianMonths[start.Month()-1], start.Year())
		break
	}

	for _, row := range rows {
		joined := strings.ToLower(strings.Join(row, " "))
		switch {
		case strings.Contains(joined, "saldo awal"):
			md.OpeningBalance = footerAmount(row)
		case strings.Contains(joined, "mutasi debet"), strings.Contains(joined, "mutasi db"):
			md.TotalDebits = footerAmount(row)
		case strings.Contains(joined, "mutasi kredit"), strings.Contains(joined, "mutasi cr"):
			md.TotalCredits = footerAmount(row)
		case strings.Contains(joined, "saldo akhir"):
			md.ClosingBalance = footerAmount(row)
		}
	}

	return md
}

// footerAmount takes the first cell in a banner row containing a digit
// pattern and parses it with the locale-aware numeric parser.
func footerAmount(row []string) decimal.Decimal {
	for _, cell := range row {
		if m := amountCellPattern.FindString(cell); m != "" {
			return ParseLocaleAmount(m)
		}
	}
	return decimal.Zero
}
