package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("Failed to parse decimal %q: %v", s, err)
	}
	return d
}

func TestTransaction_Fingerprint(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	a := NewTransaction(date, "Transfer Masuk",
		decimal.Zero, mustDecimal(t, "500000"), mustDecimal(t, "1500000"))
	b := NewTransaction(date, "Transfer Masuk",
		decimal.Zero, mustDecimal(t, "500000.00"), mustDecimal(t, "1500000.00"))

	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("Expected equal fingerprints for equal amounts, got %q vs %q",
			a.Fingerprint(), b.Fingerprint())
	}

	c := NewTransaction(date, "Transfer Keluar",
		decimal.Zero, mustDecimal(t, "500000"), mustDecimal(t, "1500000"))
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("Expected different fingerprints for different descriptions")
	}
}

func TestTransaction_Equals(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := NewTransaction(date, "Transfer Masuk",
		decimal.Zero, mustDecimal(t, "500000"), mustDecimal(t, "1500000"))

	// Same calendar day at a different hour still compares equal
	later := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	b := NewTransaction(later, "Transfer Masuk",
		decimal.Zero, mustDecimal(t, "500000"), mustDecimal(t, "1500000"))

	if !a.Equals(b) {
		t.Error("Expected transactions on the same calendar day to be equal")
	}
	if a.Equals(nil) {
		t.Error("Expected Equals(nil) to be false")
	}
}

func TestTransaction_HasBothLegs(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	both := NewTransaction(date, "misfire",
		mustDecimal(t, "100"), mustDecimal(t, "100"), decimal.Zero)
	if !both.HasBothLegs() {
		t.Error("Expected HasBothLegs for non-zero debit and credit")
	}

	debitOnly := NewTransaction(date, "ok",
		mustDecimal(t, "100"), decimal.Zero, decimal.Zero)
	if debitOnly.HasBothLegs() {
		t.Error("Did not expect HasBothLegs for debit-only transaction")
	}
	if !debitOnly.IsDebit() || debitOnly.IsCredit() {
		t.Error("Expected debit-only transaction to report IsDebit only")
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name      string
		txn       *Transaction
		wantError bool
	}{
		{
			name: "valid credit",
			txn: NewTransaction(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				"Transfer Masuk", decimal.Zero, decimal.NewFromInt(500000), decimal.NewFromInt(1500000)),
			wantError: false,
		},
		{
			name:      "zero date",
			txn:       NewTransaction(time.Time{}, "x", decimal.Zero, decimal.Zero, decimal.Zero),
			wantError: true,
		},
		{
			name: "negative debit",
			txn: NewTransaction(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				"x", decimal.NewFromInt(-1), decimal.Zero, decimal.Zero),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestTransaction_JSONRoundTrip(t *testing.T) {
	orig := NewTransaction(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		"Withdrawal", mustDecimal(t, "250000"), decimal.Zero, mustDecimal(t, "1250000"))
	orig.Currency = "IDR"

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got Transaction
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !got.Equals(orig) {
		t.Errorf("Round trip mismatch: got %s, want %s", got.String(), orig.String())
	}
	if got.Currency != "IDR" {
		t.Errorf("Expected currency IDR, got %q", got.Currency)
	}
}

func TestStatementMetadata_StatementYear(t *testing.T) {
	md := &StatementMetadata{}
	if md.StatementYear() != 0 {
		t.Errorf("Expected 0 for missing period, got %d", md.StatementYear())
	}
	if md.HasPeriod() {
		t.Error("Did not expect HasPeriod without dates")
	}

	md.StartDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	md.EndDate = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	if md.StatementYear() != 2024 {
		t.Errorf("Expected 2024, got %d", md.StatementYear())
	}
	if !md.HasPeriod() {
		t.Error("Expected HasPeriod with both dates set")
	}
}
