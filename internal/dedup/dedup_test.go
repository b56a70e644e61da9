package dedup

import (
	"testing"
	"time"

	"statement-import-service/internal/models"

	"github.com/shopspring/decimal"
)

func txn(date string, description string, debit, credit, balance int64) *models.Transaction {
	d, _ := time.Parse(models.DateLayout, date)
	return &models.Transaction{
		Date:        d,
		Description: description,
		Debit:       decimal.NewFromInt(debit),
		Credit:      decimal.NewFromInt(credit),
		Balance:     decimal.NewFromInt(balance),
		Currency:    "IDR",
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"skip", StrategySkip, false},
		{"include", StrategyInclude, false},
		{"ask", StrategyAsk, false},
		{"", StrategySkip, false},
		{"merge", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStrategy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPartition(t *testing.T) {
	existing := []*models.Transaction{
		txn("2024-03-01", "Transfer Masuk", 0, 500000, 1500000),
	}
	parsed := []*models.Transaction{
		txn("2024-03-01", "Transfer Masuk", 0, 500000, 1500000),
		txn("2024-03-02", "Tarik Tunai", 250000, 0, 1250000),
	}

	result := Partition(parsed, existing)

	if len(result.Fresh) != 1 || result.Fresh[0].Description != "Tarik Tunai" {
		t.Errorf("Unexpected fresh set: %v", result.Fresh)
	}
	if len(result.Duplicates) != 1 || result.Duplicates[0].Description != "Transfer Masuk" {
		t.Errorf("Unexpected duplicate set: %v", result.Duplicates)
	}
}

func TestPartition_AmountScaleDoesNotSplitFingerprints(t *testing.T) {
	existing := []*models.Transaction{
		{
			Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Description: "Transfer Masuk",
			Credit:      decimal.RequireFromString("500000.00"),
			Debit:       decimal.Zero,
			Balance:     decimal.RequireFromString("1500000.00"),
		},
	}
	parsed := []*models.Transaction{
		txn("2024-03-01", "Transfer Masuk", 0, 500000, 1500000),
	}

	result := Partition(parsed, existing)
	if len(result.Duplicates) != 1 {
		t.Errorf("Expected scale-differing amounts to match, fresh=%d duplicates=%d",
			len(result.Fresh), len(result.Duplicates))
	}
}

func TestPartition_AnyFieldDifferenceIsFresh(t *testing.T) {
	base := txn("2024-03-01", "Transfer Masuk", 0, 500000, 1500000)
	variants := []*models.Transaction{
		txn("2024-03-02", "Transfer Masuk", 0, 500000, 1500000),
		txn("2024-03-01", "Transfer Keluar", 0, 500000, 1500000),
		txn("2024-03-01", "Transfer Masuk", 1, 500000, 1500000),
		txn("2024-03-01", "Transfer Masuk", 0, 500001, 1500000),
		txn("2024-03-01", "Transfer Masuk", 0, 500000, 1500001),
	}

	result := Partition(variants, []*models.Transaction{base})
	if len(result.Fresh) != len(variants) {
		t.Errorf("Expected all variants fresh, got %d fresh %d duplicates",
			len(result.Fresh), len(result.Duplicates))
	}
}

func TestFilterApply_Skip(t *testing.T) {
	existing := []*models.Transaction{txn("2024-03-01", "A", 0, 100, 100)}
	parsed := []*models.Transaction{
		txn("2024-03-01", "A", 0, 100, 100),
		txn("2024-03-02", "B", 0, 200, 300),
	}

	kept, result := NewFilter(StrategySkip, nil).Apply(parsed, existing)
	if len(kept) != 1 || kept[0].Description != "B" {
		t.Errorf("Expected only B kept, got %v", kept)
	}
	if len(result.Duplicates) != 1 {
		t.Errorf("Expected 1 duplicate reported, got %d", len(result.Duplicates))
	}
}

func TestFilterApply_Include(t *testing.T) {
	existing := []*models.Transaction{txn("2024-03-01", "A", 0, 100, 100)}
	parsed := []*models.Transaction{
		txn("2024-03-01", "A", 0, 100, 100),
		txn("2024-03-02", "B", 0, 200, 300),
	}

	kept, result := NewFilter(StrategyInclude, nil).Apply(parsed, existing)
	if len(kept) != 2 {
		t.Errorf("Expected both rows kept, got %d", len(kept))
	}
	if len(result.Duplicates) != 1 {
		t.Errorf("Include must still report duplicates, got %d", len(result.Duplicates))
	}
}

func TestFilterApply_Ask(t *testing.T) {
	existing := []*models.Transaction{
		txn("2024-03-01", "A", 0, 100, 100),
		txn("2024-03-02", "B", 0, 200, 300),
	}
	parsed := []*models.Transaction{
		txn("2024-03-01", "A", 0, 100, 100),
		txn("2024-03-02", "B", 0, 200, 300),
		txn("2024-03-03", "C", 0, 300, 600),
	}

	var asked []string
	decide := func(txn *models.Transaction) bool {
		asked = append(asked, txn.Description)
		return txn.Description == "A"
	}

	kept, _ := NewFilter(StrategyAsk, decide).Apply(parsed, existing)

	if len(asked) != 2 {
		t.Fatalf("Expected callback for each duplicate, got %v", asked)
	}
	if len(kept) != 2 {
		t.Fatalf("Expected C plus accepted A, got %d kept", len(kept))
	}
	names := map[string]bool{}
	for _, txn := range kept {
		names[txn.Description] = true
	}
	if !names["A"] || !names["C"] || names["B"] {
		t.Errorf("Unexpected kept set: %v", names)
	}
}

func TestFilterApply_AskWithNilCallbackDrops(t *testing.T) {
	existing := []*models.Transaction{txn("2024-03-01", "A", 0, 100, 100)}
	parsed := []*models.Transaction{txn("2024-03-01", "A", 0, 100, 100)}

	kept, _ := NewFilter(StrategyAsk, nil).Apply(parsed, existing)
	if len(kept) != 0 {
		t.Errorf("Expected nil callback to drop duplicates, got %d kept", len(kept))
	}
}
