// Package store persists imported statements in PostgreSQL. Transactions are
// bulk-inserted with COPY under an upload batch id, statement metadata is
// upserted per account and period, and automatic matching against ERP journal
// entries is delegated to a database function.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"statement-import-service/internal/models"
	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"
)

// MatchOutcome is what the database-side auto matcher reports for one run.
type MatchOutcome struct {
	Matched   int `json:"matched"`
	Suggested int `json:"suggested"`
	Skipped   int `json:"skipped"`
}

// StatementSummary is one row of the per-account statement listing.
type StatementSummary struct {
	AccountID    string    `json:"account_id"`
	PeriodLabel  string    `json:"period_label"`
	BatchID      string    `json:"batch_id"`
	Transactions int       `json:"transactions"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Store wraps a pgx connection pool with the statement-import queries.
type Store struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// Open connects a pool to the given DSN and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.StoreError(errors.CodeStoreUnavailable, "connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.StoreError(errors.CodeStoreUnavailable, "ping", err)
	}
	return NewStore(pool), nil
}

// NewStore wraps an existing pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		logger: logger.WithComponent("store"),
	}
}

// Close releases the underlying pool
func (s *Store) Close() {
	s.pool.Close()
}

// FetchExisting loads the stored transactions for one account, the
// comparison set for duplicate filtering.
func (s *Store) FetchExisting(ctx context.Context, accountID string) ([]*models.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT txn_date, description, reference, debit, credit, balance, currency
		FROM statement_transactions
		WHERE account_id = $1
		ORDER BY txn_date, id`, accountID)
	if err != nil {
		return nil, errors.StoreError(errors.CodeQueryFailed, "fetch existing transactions", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(&txn.Date, &txn.Description, &txn.Reference,
			&txn.Debit, &txn.Credit, &txn.Balance, &txn.Currency); err != nil {
			return nil, errors.StoreError(errors.CodeQueryFailed, "scan transaction row", err)
		}
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError(errors.CodeQueryFailed, "read transaction rows", err)
	}
	return txns, nil
}

// InsertTransactions bulk-inserts transactions for an account under one
// upload batch id using COPY. Amounts are passed as strings so the numeric
// columns receive exact decimal values. Returns the number of rows written.
func (s *Store) InsertTransactions(ctx context.Context, accountID, batchID, createdBy string, txns []*models.Transaction) (int64, error) {
	if len(txns) == 0 {
		return 0, nil
	}

	copyRows := make([][]interface{}, 0, len(txns))
	for _, txn := range txns {
		copyRows = append(copyRows, []interface{}{
			accountID,
			batchID,
			txn.Date,
			txn.Description,
			txn.Reference,
			txn.Debit.String(),
			txn.Credit.String(),
			txn.Balance.String(),
			txn.Currency,
			createdBy,
		})
	}

	columns := []string{
		"account_id", "upload_batch_id", "txn_date", "description",
		"reference", "debit", "credit", "balance", "currency", "created_by",
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, errors.StoreError(errors.CodeQueryFailed, "begin insert transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback(ctx)
		}
	}()

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"statement_transactions"}, columns, pgx.CopyFromRows(copyRows))
	if err != nil {
		return 0, errors.StoreError(errors.CodeQueryFailed, "copy transactions", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, errors.StoreError(errors.CodeQueryFailed, "commit insert transaction", err)
	}
	committed = true

	s.logger.WithFields(logger.Fields{
		"account_id": accountID,
		"batch_id":   batchID,
		"rows":       n,
	}).Info("Transactions inserted")
	return n, nil
}

// UpsertMetadata stores the statement-level figures for an account and
// period, replacing any previous upload of the same period.
func (s *Store) UpsertMetadata(ctx context.Context, accountID, batchID string, md *models.StatementMetadata) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO statement_metadata
			(account_id, upload_batch_id, period_label, start_date, end_date,
			 opening_balance, closing_balance, total_debits, total_credits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (account_id, period_label) DO UPDATE SET
			upload_batch_id = EXCLUDED.upload_batch_id,
			start_date      = EXCLUDED.start_date,
			end_date        = EXCLUDED.end_date,
			opening_balance = EXCLUDED.opening_balance,
			closing_balance = EXCLUDED.closing_balance,
			total_debits    = EXCLUDED.total_debits,
			total_credits   = EXCLUDED.total_credits`,
		accountID, batchID, md.PeriodLabel, md.StartDate, md.EndDate,
		md.OpeningBalance.String(), md.ClosingBalance.String(),
		md.TotalDebits.String(), md.TotalCredits.String())
	if err != nil {
		return errors.StoreError(errors.CodeQueryFailed, "upsert statement metadata", err)
	}
	return nil
}

// AutoMatch runs the database-side matcher for one account and batch. The
// matching rules live in the auto_match_statement SQL function; this side
// only reports the outcome.
func (s *Store) AutoMatch(ctx context.Context, accountID, batchID string) (*MatchOutcome, error) {
	var outcome MatchOutcome
	err := s.pool.QueryRow(ctx,
		`SELECT matched, suggested, skipped FROM auto_match_statement($1, $2)`,
		accountID, batchID).Scan(&outcome.Matched, &outcome.Suggested, &outcome.Skipped)
	if err != nil {
		return nil, errors.StoreError(errors.CodeAutoMatchFailed, "auto match statement", err)
	}

	s.logger.WithFields(logger.Fields{
		"account_id": accountID,
		"batch_id":   batchID,
		"matched":    outcome.Matched,
		"suggested":  outcome.Suggested,
		"skipped":    outcome.Skipped,
	}).Info("Auto match completed")
	return &outcome, nil
}

// AccountsWithUnmatched returns the accounts that still have unmatched
// transactions, the work list for the scheduled re-match job.
func (s *Store) AccountsWithUnmatched(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT account_id
		FROM statement_transactions
		WHERE match_status = 'unmatched'
		ORDER BY account_id`)
	if err != nil {
		return nil, errors.StoreError(errors.CodeQueryFailed, "list unmatched accounts", err)
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.StoreError(errors.CodeQueryFailed, "scan account id", err)
		}
		accounts = append(accounts, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError(errors.CodeQueryFailed, "read account rows", err)
	}
	return accounts, nil
}

// ListStatements returns the uploaded statements for an account, newest
// first.
func (s *Store) ListStatements(ctx context.Context, accountID string) ([]*StatementSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.account_id, m.period_label, m.upload_batch_id,
		       COUNT(t.id), MAX(t.created_at)
		FROM statement_metadata m
		LEFT JOIN statement_transactions t ON t.upload_batch_id = m.upload_batch_id
		WHERE m.account_id = $1
		GROUP BY m.account_id, m.period_label, m.upload_batch_id
		ORDER BY MAX(t.created_at) DESC NULLS LAST`, accountID)
	if err != nil {
		return nil, errors.StoreError(errors.CodeQueryFailed, "list statements", err)
	}
	defer rows.Close()

	var summaries []*StatementSummary
	for rows.Next() {
		var s StatementSummary
		var uploadedAt *time.Time
		if err := rows.Scan(&s.AccountID, &s.PeriodLabel, &s.BatchID,
			&s.Transactions, &uploadedAt); err != nil {
			return nil, errors.StoreError(errors.CodeQueryFailed, "scan statement summary", err)
		}
		if uploadedAt != nil {
			s.UploadedAt = *uploadedAt
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError(errors.CodeQueryFailed, "read statement summaries", err)
	}
	return summaries, nil
}
