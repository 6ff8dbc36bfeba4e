package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/logoslabs/logos/internal/domain"
	"github.com/logoslabs/logos/internal/store"
	"go.uber.org/zap"
)

var (
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrSpendingLimitHit   = errors.New("spending limit exceeded")
	ErrTransactionUnknown = errors.New("transaction not found")
)

type WalletService struct {
	wallets domain.WalletStore
	users   domain.UserStore
	logger  *zap.Logger
}

func NewWalletService(ws domain.WalletStore, us domain.UserStore, logger *zap.Logger) *WalletService {
	return &WalletService{wallets: ws, users: us, logger: logger}
}

// EnsureWallet returns the user's wallet, creating it on first access.
func (s *WalletService) EnsureWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	w, err := s.wallets.GetByUserID(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	w = &domain.Wallet{UserID: userID}
	if err := s.wallets.Create(ctx, w); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Lost the race to a concurrent first request.
			return s.wallets.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	s.logger.Info("wallet created", zap.String("user_id", userID.String()))
	return w, nil
}

func (s *WalletService) Get(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	w, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

// Deposit credits the wallet. Provider fields are recorded when the
// deposit came in through a payment webhook.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, amountCents int64, provider, providerTxID, description string) (*domain.WalletTransaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	w, err := s.EnsureWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.wallets.Credit(ctx, w.ID, amountCents, domain.TxDeposit, provider, providerTxID, description)
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit completed",
		zap.String("wallet_id", w.ID.String()),
		zap.Int64("amount_cents", amountCents),
		zap.String("provider", provider))
	return tx, nil
}

// Withdraw debits the wallet, subject to balance and spending limits.
func (s *WalletService) Withdraw(ctx context.Context, userID uuid.UUID, amountCents int64, description string) (*domain.WalletTransaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	w, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.wallets.Charge(ctx, domain.ChargeRequest{
		WalletID:    w.ID,
		AmountCents: amountCents,
		Type:        domain.TxWithdrawal,
		Description: description,
	})
	if err != nil {
		return nil, s.mapChargeErr(err)
	}
	return tx, nil
}

// ChargeUsage debits the wallet for one agent invocation.
func (s *WalletService) ChargeUsage(ctx context.Context, userID uuid.UUID, amountCents int64, agentSlug string, sessionID uuid.UUID) (*domain.WalletTransaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	w, err := s.EnsureWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	ref := sessionID
	tx, err := s.wallets.Charge(ctx, domain.ChargeRequest{
		WalletID:      w.ID,
		AmountCents:   amountCents,
		Type:          domain.TxUsageCharge,
		ReferenceType: "agent_session",
		ReferenceID:   &ref,
		Description:   "usage: " + agentSlug,
	})
	if err != nil {
		return nil, s.mapChargeErr(err)
	}
	return tx, nil
}

// Refund reverses a completed charge.
func (s *WalletService) Refund(ctx context.Context, txID uuid.UUID, reason string) (*domain.WalletTransaction, error) {
	tx, err := s.wallets.Refund(ctx, txID, reason)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTransactionUnknown
		}
		return nil, err
	}
	s.logger.Info("charge refunded",
		zap.String("original_tx_id", txID.String()),
		zap.Int64("amount_cents", tx.AmountCents))
	return tx, nil
}

func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.WalletTransaction, error) {
	w, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.wallets.ListTransactions(ctx, w.ID, limit, offset)
}

func (s *WalletService) mapChargeErr(err error) error {
	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, store.ErrLimitExceeded):
		return ErrSpendingLimitHit
	case errors.Is(err, store.ErrNotFound):
		return ErrWalletNotFound
	}
	return err
}
