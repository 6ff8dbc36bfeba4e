package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logoslabs/logos/internal/domain"
)

type WalletStore struct {
	db *pgxpool.Pool
}

func NewWalletStore(db *pgxpool.Pool) *WalletStore {
	return &WalletStore{db: db}
}

const walletColumns = `id, user_id, balance_cents, balance_credits,
	daily_limit_cents, monthly_limit_cents, daily_spent_cents, monthly_spent_cents,
	total_earned_cents, total_spent_cents, created_at, updated_at`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.ID, &w.UserID, &w.BalanceCents, &w.BalanceCredits,
		&w.DailyLimitCents, &w.MonthlyLimitCents, &w.DailySpentCents, &w.MonthlySpentCents,
		&w.TotalEarnedCents, &w.TotalSpentCents, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

func (s *WalletStore) Create(ctx context.Context, w *domain.Wallet) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO wallets (user_id, daily_limit_cents, monthly_limit_cents)
		 VALUES ($1, COALESCE(NULLIF($2, 0), 100000), COALESCE(NULLIF($3, 0), 1000000))
		 RETURNING `+walletColumns,
		w.UserID, w.DailyLimitCents, w.MonthlyLimitCents,
	).Scan(&w.ID, &w.UserID, &w.BalanceCents, &w.BalanceCredits,
		&w.DailyLimitCents, &w.MonthlyLimitCents, &w.DailySpentCents, &w.MonthlySpentCents,
		&w.TotalEarnedCents, &w.TotalSpentCents, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *WalletStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	return scanWallet(s.db.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID))
}

func (s *WalletStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	return scanWallet(s.db.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id))
}

// Credit increases the balance and records a completed transaction in
// one database transaction.
func (s *WalletStore) Credit(ctx context.Context, walletID uuid.UUID, amountCents int64, txType domain.TransactionType, provider, providerTxID, description string) (*domain.WalletTransaction, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	earned := int64(0)
	if txType == domain.TxEarning {
		earned = amountCents
	}

	ct, err := tx.Exec(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1,
		        total_earned_cents = total_earned_cents + $2,
		        updated_at = NOW()
		 WHERE id = $3`,
		amountCents, earned, walletID)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	wt := &domain.WalletTransaction{
		WalletID:     walletID,
		Type:         txType,
		Status:       domain.TxCompleted,
		AmountCents:  amountCents,
		NetCents:     amountCents,
		Currency:     "USD",
		Provider:     provider,
		ProviderTxID: providerTxID,
		Description:  description,
	}
	if err := insertTransaction(ctx, tx, wt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return wt, nil
}

// Charge debits the balance with balance and spending-limit checks
// folded into the UPDATE predicate, so concurrent charges cannot
// overdraw.
func (s *WalletStore) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.WalletTransaction, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx,
		`UPDATE wallets SET balance_cents = balance_cents - $1,
		        daily_spent_cents = daily_spent_cents + $1,
		        monthly_spent_cents = monthly_spent_cents + $1,
		        total_spent_cents = total_spent_cents + $1,
		        updated_at = NOW()
		 WHERE id = $2
		   AND balance_cents >= $1
		   AND daily_spent_cents + $1 <= daily_limit_cents
		   AND monthly_spent_cents + $1 <= monthly_limit_cents`,
		req.AmountCents, req.WalletID)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, s.diagnoseCharge(ctx, req.WalletID, req.AmountCents)
	}

	wt := &domain.WalletTransaction{
		WalletID:      req.WalletID,
		Type:          req.Type,
		Status:        domain.TxCompleted,
		AmountCents:   req.AmountCents,
		NetCents:      req.AmountCents,
		Currency:      "USD",
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
	}
	if err := insertTransaction(ctx, tx, wt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return wt, nil
}

// diagnoseCharge distinguishes why a conditional debit matched no rows.
func (s *WalletStore) diagnoseCharge(ctx context.Context, walletID uuid.UUID, amountCents int64) error {
	w, err := s.GetByID(ctx, walletID)
	if err != nil {
		return err
	}
	if w.BalanceCents < amountCents {
		return ErrInsufficientFunds
	}
	return ErrLimitExceeded
}

// Refund credits the amount of a completed debit back and records a
// compensating refund row referencing the original transaction.
func (s *WalletStore) Refund(ctx context.Context, txID uuid.UUID, description string) (*domain.WalletTransaction, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var walletID uuid.UUID
	var amountCents int64
	err = tx.QueryRow(ctx,
		`SELECT wallet_id, amount_cents FROM wallet_transactions
		 WHERE id = $1 AND status = $2 AND type IN ($3, $4, $5)`,
		txID, domain.TxCompleted, domain.TxUsageCharge, domain.TxPurchase, domain.TxWithdrawal,
	).Scan(&walletID, &amountCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1,
		        total_spent_cents = total_spent_cents - $1,
		        updated_at = NOW()
		 WHERE id = $2`,
		amountCents, walletID)
	if err != nil {
		return nil, err
	}

	refID := txID
	wt := &domain.WalletTransaction{
		WalletID:      walletID,
		Type:          domain.TxRefund,
		Status:        domain.TxCompleted,
		AmountCents:   amountCents,
		NetCents:      amountCents,
		Currency:      "USD",
		ReferenceType: "wallet_transaction",
		ReferenceID:   &refID,
		Description:   description,
	}
	if err := insertTransaction(ctx, tx, wt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return wt, nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, wt *domain.WalletTransaction) error {
	return tx.QueryRow(ctx,
		`INSERT INTO wallet_transactions
		   (wallet_id, type, status, amount_cents, fee_cents, net_cents, currency,
		    reference_type, reference_id, provider, provider_tx_id, description, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''),
		         CASE WHEN $3 = 'completed' THEN NOW() ELSE NULL END)
		 RETURNING id, created_at, completed_at`,
		wt.WalletID, wt.Type, wt.Status, wt.AmountCents, wt.FeeCents, wt.NetCents, wt.Currency,
		wt.ReferenceType, wt.ReferenceID, wt.Provider, wt.ProviderTxID, wt.Description,
	).Scan(&wt.ID, &wt.CreatedAt, &wt.CompletedAt)
}

func (s *WalletStore) ListTransactions(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]domain.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, wallet_id, type, status, amount_cents, fee_cents, net_cents, currency,
		        COALESCE(reference_type, ''), reference_id, COALESCE(provider, ''),
		        COALESCE(provider_tx_id, ''), COALESCE(description, ''), created_at, completed_at
		 FROM wallet_transactions
		 WHERE wallet_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WalletTransaction
	for rows.Next() {
		var wt domain.WalletTransaction
		if err := rows.Scan(&wt.ID, &wt.WalletID, &wt.Type, &wt.Status, &wt.AmountCents,
			&wt.FeeCents, &wt.NetCents, &wt.Currency, &wt.ReferenceType, &wt.ReferenceID,
			&wt.Provider, &wt.ProviderTxID, &wt.Description, &wt.CreatedAt, &wt.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, wt)
	}
	return out, rows.Err()
}

func (s *WalletStore) ExpirePendingTransactions(ctx context.Context, olderThan time.Time) (int64, error) {
	ct, err := s.db.Exec(ctx,
		`UPDATE wallet_transactions SET status = $1
		 WHERE status = $2 AND created_at < $3`,
		domain.TxCancelled, domain.TxPending, olderThan)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (s *WalletStore) ResetDailySpent(ctx context.Context) (int64, error) {
	ct, err := s.db.Exec(ctx,
		`UPDATE wallets SET daily_spent_cents = 0, updated_at = NOW()
		 WHERE daily_spent_cents <> 0`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (s *WalletStore) ResetMonthlySpent(ctx context.Context) (int64, error) {
	ct, err := s.db.Exec(ctx,
		`UPDATE wallets SET monthly_spent_cents = 0, updated_at = NOW()
		 WHERE monthly_spent_cents <> 0`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
