// Package models defines the normalized statement data produced by the
// parser and consumed by the dedupe filter and the persistence layer.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar-date layout used across the importer.
const DateLayout = "2006-01-02"

// Transaction is one normalized statement line. Amounts follow the bank's
// statement convention: Debit is money leaving the account, Credit is money
// entering it, Balance is the running balance printed by the bank.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency,omitempty"`
}

// NewTransaction creates a new Transaction instance
func NewTransaction(date time.Time, description string, debit, credit, balance decimal.Decimal) *Transaction {
	return &Transaction{
		Date:        date,
		Description: description,
		Debit:       debit,
		Credit:      credit,
		Balance:     balance,
	}
}

// Fingerprint returns the equality key used for duplicate detection against
// previously persisted lines: (date, description, debit, credit, balance).
// Decimal values are rendered in canonical form so 500000 and 500000.00
// produce the same key.
func (t *Transaction) Fingerprint() string {
	return strings.Join([]string{
		t.Date.Format(DateLayout),
		t.Description,
		t.Debit.String(),
		t.Credit.String(),
		t.Balance.String(),
	}, "|")
}

// Equals compares two Transaction instances on the fingerprint fields
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}
	return t.Date.Format(DateLayout) == other.Date.Format(DateLayout) &&
		t.Description == other.Description &&
		t.Debit.Equal(other.Debit) &&
		t.Credit.Equal(other.Credit) &&
		t.Balance.Equal(other.Balance)
}

// IsDebit returns true if the line moves money out of the account
func (t *Transaction) IsDebit() bool {
	return t.Debit.IsPositive()
}

// IsCredit returns true if the line moves money into the account
func (t *Transaction) IsCredit() bool {
	return t.Credit.IsPositive()
}

// HasBothLegs reports whether both debit and credit are non-zero. The source
// format does not promise debit XOR credit, and the parser deliberately does
// not reject such rows; callers may surface this as a warning.
func (t *Transaction) HasBothLegs() bool {
	return t.Debit.IsPositive() && t.Credit.IsPositive()
}

// Validate performs basic sanity checks on the Transaction
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}
	if t.Debit.IsNegative() {
		return fmt.Errorf("debit amount cannot be negative")
	}
	if t.Credit.IsNegative() {
		return fmt.Errorf("credit amount cannot be negative")
	}
	return nil
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Date: %s, Description: %s, Debit: %s, Credit: %s, Balance: %s}",
		t.Date.Format(DateLayout), t.Description, t.Debit.String(), t.Credit.String(), t.Balance.String())
}

// MarshalJSON renders amounts as strings and the date as YYYY-MM-DD
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Date    string `json:"date"`
		Debit   string `json:"debit"`
		Credit  string `json:"credit"`
		Balance string `json:"balance"`
		*Alias
	}{
		Date:    t.Date.Format(DateLayout),
		Debit:   t.Debit.String(),
		Credit:  t.Credit.String(),
		Balance: t.Balance.String(),
		Alias:   (*Alias)(t),
	})
}

// UnmarshalJSON parses amounts from strings and the date from YYYY-MM-DD
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		Date    string `json:"date"`
		Debit   string `json:"debit"`
		Credit  string `json:"credit"`
		Balance string `json:"balance"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if t.Date, err = time.Parse(DateLayout, aux.Date); err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	if t.Debit, err = parseAmountField(aux.Debit); err != nil {
		return fmt.Errorf("invalid debit amount: %w", err)
	}
	if t.Credit, err = parseAmountField(aux.Credit); err != nil {
		return fmt.Errorf("invalid credit amount: %w", err)
	}
	if t.Balance, err = parseAmountField(aux.Balance); err != nil {
		return fmt.Errorf("invalid balance amount: %w", err)
	}
	return nil
}

func parseAmountField(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
