// Package dedup filters parsed transactions against ones already stored for
// the same account, so re-uploading an overlapping statement does not insert
// the shared rows twice. Sameness is exact equality of date, description,
// debit, credit and balance.
package dedup

import (
	"fmt"

	"statement-import-service/internal/models"
	"statement-import-service/pkg/logger"
)

// Strategy selects what happens to transactions that already exist.
type Strategy string

const (
	// StrategySkip drops duplicates silently; only new rows survive
	StrategySkip Strategy = "skip"
	// StrategyInclude keeps duplicates; every parsed row survives
	StrategyInclude Strategy = "include"
	// StrategyAsk defers each duplicate to the caller's DecisionFunc
	StrategyAsk Strategy = "ask"
)

// ParseStrategy validates a strategy name from a flag or request field.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategySkip, StrategyInclude, StrategyAsk:
		return Strategy(s), nil
	case "":
		return StrategySkip, nil
	default:
		return "", fmt.Errorf("unknown duplicate strategy %q (want skip, include or ask)", s)
	}
}

// DecisionFunc is consulted once per duplicate under StrategyAsk. Returning
// true keeps the transaction, false drops it.
type DecisionFunc func(txn *models.Transaction) bool

// Result separates one filter pass into the rows to insert and the rows
// identified as already present.
type Result struct {
	Fresh      []*models.Transaction
	Duplicates []*models.Transaction
}

// Filter applies a duplicate strategy to parsed transactions given the
// transactions already stored for the account.
type Filter struct {
	strategy Strategy
	decide   DecisionFunc
	logger   logger.Logger
}

// NewFilter builds a filter. decide may be nil unless strategy is
// StrategyAsk; with StrategyAsk and a nil decide, duplicates are dropped.
func NewFilter(strategy Strategy, decide DecisionFunc) *Filter {
	return &Filter{
		strategy: strategy,
		decide:   decide,
		logger:   logger.WithComponent("dedup"),
	}
}

// Partition splits parsed into fresh and duplicate transactions by comparing
// fingerprints against existing. It never mutates its inputs and preserves
// parsed order in both output slices.
func Partition(parsed, existing []*models.Transaction) *Result {
	seen := make(map[string]struct{}, len(existing))
	for _, txn := range existing {
		seen[txn.Fingerprint()] = struct{}{}
	}

	result := &Result{}
	for _, txn := range parsed {
		if _, dup := seen[txn.Fingerprint()]; dup {
			result.Duplicates = append(result.Duplicates, txn)
		} else {
			result.Fresh = append(result.Fresh, txn)
		}
	}
	return result
}

// Apply partitions parsed against existing and resolves the duplicates per
// the filter's strategy. The returned slice holds the transactions to insert;
// the Result reports what was classified as duplicate regardless of strategy.
func (f *Filter) Apply(parsed, existing []*models.Transaction) ([]*models.Transaction, *Result) {
	result := Partition(parsed, existing)

	kept := result.Fresh
	switch f.strategy {
	case StrategyInclude:
		kept = parsed
	case StrategyAsk:
		for _, txn := range result.Duplicates {
			if f.decide != nil && f.decide(txn) {
				kept = append(kept, txn)
			}
		}
	}

	f.logger.WithFields(logger.Fields{
		"strategy":   string(f.strategy),
		"parsed":     len(parsed),
		"duplicates": len(result.Duplicates),
		"kept":       len(kept),
	}).Debug("Duplicate filter applied")

	return kept, result
}
