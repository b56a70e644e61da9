package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementMetadata holds the statement-level figures extracted from banner
// and footer rows. Fields default to zero/empty when the source file carries
// no recognizable banner.
type StatementMetadata struct {
	PeriodLabel    string          `json:"period_label,omitempty"`
	StartDate      time.Time       `json:"start_date,omitempty"`
	EndDate        time.Time       `json:"end_date,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	TotalDebits    decimal.Decimal `json:"total_debits"`
	TotalCredits   decimal.Decimal `json:"total_credits"`
}

// HasPeriod reports whether a statement period banner was found
func (m *StatementMetadata) HasPeriod() bool {
	return !m.StartDate.IsZero() && !m.EndDate.IsZero()
}

// StatementYear returns the year to use for two-field DD/MM dates, or 0 when
// no period banner was found and the caller must supply one.
func (m *StatementMetadata) StatementYear() int {
	if m.StartDate.IsZero() {
		return 0
	}
	return m.StartDate.Year()
}
