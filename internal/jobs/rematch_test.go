package jobs

import (
	"context"
	"fmt"
	"testing"

	"statement-import-service/internal/store"
)

type fakeMatchStore struct {
	accounts    []string
	accountsErr error
	matchErr    map[string]error
	matchedFor  []string
}

func (f *fakeMatchStore) AccountsWithUnmatched(ctx context.Context) ([]string, error) {
	return f.accounts, f.accountsErr
}

func (f *fakeMatchStore) AutoMatch(ctx context.Context, accountID, batchID string) (*store.MatchOutcome, error) {
	if err := f.matchErr[accountID]; err != nil {
		return nil, err
	}
	f.matchedFor = append(f.matchedFor, accountID)
	return &store.MatchOutcome{Matched: 1}, nil
}

func TestRunOnce_MatchesEveryAccount(t *testing.T) {
	st := &fakeMatchStore{accounts: []string{"ACC-1", "ACC-2", "ACC-3"}}
	r := NewRematcher(st, "@hourly")

	r.RunOnce(context.Background())

	if len(st.matchedFor) != 3 {
		t.Errorf("Expected 3 accounts matched, got %v", st.matchedFor)
	}
}

func TestRunOnce_AccountFailureDoesNotStopSweep(t *testing.T) {
	st := &fakeMatchStore{
		accounts: []string{"ACC-1", "ACC-2", "ACC-3"},
		matchErr: map[string]error{"ACC-2": fmt.Errorf("boom")},
	}
	r := NewRematcher(st, "@hourly")

	r.RunOnce(context.Background())

	if len(st.matchedFor) != 2 {
		t.Errorf("Expected the other 2 accounts matched, got %v", st.matchedFor)
	}
}

func TestRunOnce_ListFailure(t *testing.T) {
	st := &fakeMatchStore{accountsErr: fmt.Errorf("db down")}
	r := NewRematcher(st, "@hourly")

	r.RunOnce(context.Background())

	if len(st.matchedFor) != 0 {
		t.Errorf("Expected no matches after list failure, got %v", st.matchedFor)
	}
}

func TestStart_InvalidSchedule(t *testing.T) {
	r := NewRematcher(&fakeMatchStore{}, "not a schedule")
	if err := r.Start(); err == nil {
		t.Error("Expected an error for an invalid cron expression")
	}
}
