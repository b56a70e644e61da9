// Package jobs schedules background maintenance work, currently the periodic
// re-match of accounts that still have unmatched statement lines.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"statement-import-service/internal/store"
	"statement-import-service/pkg/logger"
)

// rematchTimeout bounds one full re-match sweep.
const rematchTimeout = 10 * time.Minute

// MatchStore is the persistence surface the re-match job needs.
type MatchStore interface {
	AccountsWithUnmatched(ctx context.Context) ([]string, error)
	AutoMatch(ctx context.Context, accountID, batchID string) (*store.MatchOutcome, error)
}

// Rematcher periodically re-runs auto matching for accounts with unmatched
// transactions, picking up journal entries posted after the statement upload.
type Rematcher struct {
	store    MatchStore
	schedule string
	cron     *cron.Cron
	logger   logger.Logger
}

// NewRematcher builds a re-matcher with a cron schedule expression, e.g.
// "@hourly" or "0 */4 * * *".
func NewRematcher(st MatchStore, schedule string) *Rematcher {
	return &Rematcher{
		store:    st,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.WithComponent("rematch_job"),
	}
}

// Start registers the job and starts the scheduler.
func (r *Rematcher) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), rematchTimeout)
		defer cancel()
		r.RunOnce(ctx)
	}); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.WithField("schedule", r.schedule).Info("Re-match job scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (r *Rematcher) Stop() {
	<-r.cron.Stop().Done()
}

// RunOnce performs one re-match sweep over all accounts with unmatched
// lines. Per-account failures are logged and do not stop the sweep.
func (r *Rematcher) RunOnce(ctx context.Context) {
	accounts, err := r.store.AccountsWithUnmatched(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list accounts with unmatched lines")
		return
	}
	if len(accounts) == 0 {
		r.logger.Debug("No accounts need re-matching")
		return
	}

	matched, suggested := 0, 0
	for _, accountID := range accounts {
		outcome, err := r.store.AutoMatch(ctx, accountID, "")
		if err != nil {
			r.logger.WithError(err).WithField("account_id", accountID).
				Warn("Re-match failed for account")
			continue
		}
		matched += outcome.Matched
		suggested += outcome.Suggested
	}

	r.logger.WithFields(logger.Fields{
		"accounts":  len(accounts),
		"matched":   matched,
		"suggested": suggested,
	}).Info("Re-match sweep completed")
}
