package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/logoslabs/logos/internal/domain"
	"github.com/logoslabs/logos/internal/store"
	"go.uber.org/zap"
)

type mockWalletStore struct {
	wallets map[uuid.UUID]*domain.Wallet
	byUser  map[uuid.UUID]uuid.UUID
	txs     map[uuid.UUID]*domain.WalletTransaction
	order   []uuid.UUID

	creditErr error // returned by the next Credit call, then cleared
}

func newMockWalletStore() *mockWalletStore {
	return &mockWalletStore{
		wallets: make(map[uuid.UUID]*domain.Wallet),
		byUser:  make(map[uuid.UUID]uuid.UUID),
		txs:     make(map[uuid.UUID]*domain.WalletTransaction),
	}
}

func (m *mockWalletStore) Create(ctx context.Context, w *domain.Wallet) error {
	if _, exists := m.byUser[w.UserID]; exists {
		return store.ErrConflict
	}
	w.ID = uuid.New()
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	m.wallets[w.ID] = w
	m.byUser[w.UserID] = w.ID
	return nil
}

func (m *mockWalletStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	id, ok := m.byUser[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.wallets[id], nil
}

func (m *mockWalletStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	w, ok := m.wallets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return w, nil
}

func (m *mockWalletStore) record(tx *domain.WalletTransaction) *domain.WalletTransaction {
	tx.ID = uuid.New()
	tx.CreatedAt = time.Now()
	if tx.Status == domain.TxCompleted {
		now := tx.CreatedAt
		tx.CompletedAt = &now
	}
	m.txs[tx.ID] = tx
	m.order = append(m.order, tx.ID)
	return tx
}

func (m *mockWalletStore) Credit(ctx context.Context, walletID uuid.UUID, amountCents int64, txType domain.TransactionType, provider, providerTxID, description string) (*domain.WalletTransaction, error) {
	if m.creditErr != nil {
		err := m.creditErr
		m.creditErr = nil
		return nil, err
	}
	w, ok := m.wallets[walletID]
	if !ok {
		return nil, store.ErrNotFound
	}
	w.BalanceCents += amountCents
	if txType == domain.TxEarning {
		w.TotalEarnedCents += amountCents
	}
	return m.record(&domain.WalletTransaction{
		WalletID:     walletID,
		Type:         txType,
		Status:       domain.TxCompleted,
		AmountCents:  amountCents,
		NetCents:     amountCents,
		Currency:     "USD",
		Provider:     provider,
		ProviderTxID: providerTxID,
		Description:  description,
	}), nil
}

func (m *mockWalletStore) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.WalletTransaction, error) {
	w, ok := m.wallets[req.WalletID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if w.BalanceCents < req.AmountCents {
		return nil, store.ErrInsufficientFunds
	}
	if w.DailyLimitCents > 0 && w.DailySpentCents+req.AmountCents > w.DailyLimitCents {
		return nil, store.ErrLimitExceeded
	}
	if w.MonthlyLimitCents > 0 && w.MonthlySpentCents+req.AmountCents > w.MonthlyLimitCents {
		return nil, store.ErrLimitExceeded
	}
	w.BalanceCents -= req.AmountCents
	w.DailySpentCents += req.AmountCents
	w.MonthlySpentCents += req.AmountCents
	w.TotalSpentCents += req.AmountCents
	return m.record(&domain.WalletTransaction{
		WalletID:      req.WalletID,
		Type:          req.Type,
		Status:        domain.TxCompleted,
		AmountCents:   req.AmountCents,
		NetCents:      -req.AmountCents,
		Currency:      "USD",
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
	}), nil
}

func (m *mockWalletStore) Refund(ctx context.Context, txID uuid.UUID, description string) (*domain.WalletTransaction, error) {
	orig, ok := m.txs[txID]
	if !ok || orig.Status != domain.TxCompleted {
		return nil, store.ErrNotFound
	}
	switch orig.Type {
	case domain.TxUsageCharge, domain.TxPurchase, domain.TxWithdrawal:
	default:
		return nil, store.ErrNotFound
	}
	w := m.wallets[orig.WalletID]
	w.BalanceCents += orig.AmountCents
	ref := orig.ID
	return m.record(&domain.WalletTransaction{
		WalletID:      orig.WalletID,
		Type:          domain.TxRefund,
		Status:        domain.TxCompleted,
		AmountCents:   orig.AmountCents,
		NetCents:      orig.AmountCents,
		Currency:      "USD",
		ReferenceType: "transaction",
		ReferenceID:   &ref,
		Description:   description,
	}), nil
}

func (m *mockWalletStore) ListTransactions(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]domain.WalletTransaction, error) {
	var out []domain.WalletTransaction
	for i := len(m.order) - 1; i >= 0; i-- {
		tx := m.txs[m.order[i]]
		if tx.WalletID == walletID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (m *mockWalletStore) ExpirePendingTransactions(ctx context.Context, olderThan time.Time) (int64, error) {
	var n int64
	for _, tx := range m.txs {
		if tx.Status == domain.TxPending && tx.CreatedAt.Before(olderThan) {
			tx.Status = domain.TxCancelled
			n++
		}
	}
	return n, nil
}

func (m *mockWalletStore) ResetDailySpent(ctx context.Context) (int64, error) {
	var n int64
	for _, w := range m.wallets {
		if w.DailySpentCents != 0 {
			w.DailySpentCents = 0
			n++
		}
	}
	return n, nil
}

func (m *mockWalletStore) ResetMonthlySpent(ctx context.Context) (int64, error) {
	var n int64
	for _, w := range m.wallets {
		if w.MonthlySpentCents != 0 {
			w.MonthlySpentCents = 0
			n++
		}
	}
	return n, nil
}

type mockUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email && existing.TenantID == u.TenantID {
			return store.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string, tenantID uuid.UUID) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email && u.TenantID == tenantID {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func setupWalletTest() (*WalletService, *mockWalletStore) {
	ws := newMockWalletStore()
	return NewWalletService(ws, newMockUserStore(), zap.NewNop()), ws
}

func TestWalletService_EnsureWallet_CreatesOnce(t *testing.T) {
	svc, ws := setupWalletTest()
	ctx := context.Background()
	userID := uuid.New()

	w1, err := svc.EnsureWallet(ctx, userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	w2, err := svc.EnsureWallet(ctx, userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if w1.ID != w2.ID {
		t.Fatalf("expected same wallet, got %s and %s", w1.ID, w2.ID)
	}
	if len(ws.wallets) != 1 {
		t.Fatalf("expected 1 wallet, got %d", len(ws.wallets))
	}
}

func TestWalletService_Deposit(t *testing.T) {
	svc, _ := setupWalletTest()
	ctx := context.Background()
	userID := uuid.New()

	tx, err := svc.Deposit(ctx, userID, 5000, "stripe", "pi_123", "card deposit")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.AmountCents != 5000 {
		t.Fatalf("expected amount 5000, got %d", tx.AmountCents)
	}

	w, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if w.BalanceCents != 5000 {
		t.Fatalf("expected balance 5000, got %d", w.BalanceCents)
	}
}

func TestWalletService_Deposit_InvalidAmount(t *testing.T) {
	svc, _ := setupWalletTest()

	if _, err := svc.Deposit(context.Background(), uuid.New(), 0, "", "", ""); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Deposit(context.Background(), uuid.New(), -100, "", "", ""); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestWalletService_Withdraw_RoundTrip(t *testing.T) {
	svc, _ := setupWalletTest()
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.Deposit(ctx, userID, 10000, "", "", ""); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, err := svc.Withdraw(ctx, userID, 4000, "payout"); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	w, _ := svc.Get(ctx, userID)
	if w.BalanceCents != 6000 {
		t.Fatalf("expected balance 6000, got %d", w.BalanceCents)
	}
}

func TestWalletService_Withdraw_InsufficientFunds(t *testing.T) {
	svc, _ := setupWalletTest()
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.Deposit(ctx, userID, 100, "", "", ""); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	_, err := svc.Withdraw(ctx, userID, 5000, "payout")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	w, _ := svc.Get(ctx, userID)
	if w.BalanceCents != 100 {
		t.Fatalf("failed withdraw must not touch balance, got %d", w.BalanceCents)
	}
}

func TestWalletService_ChargeUsage_LimitExceeded(t *testing.T) {
	svc, ws := setupWalletTest()
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.Deposit(ctx, userID, 10000, "", "", ""); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	w, _ := svc.Get(ctx, userID)
	ws.wallets[w.ID].DailyLimitCents = 500

	if _, err := svc.ChargeUsage(ctx, userID, 300, "market-analysis", uuid.New()); err != nil {
		t.Fatalf("first charge should pass: %v", err)
	}
	_, err := svc.ChargeUsage(ctx, userID, 300, "market-analysis", uuid.New())
	if !errors.Is(err, ErrSpendingLimitHit) {
		t.Fatalf("expected ErrSpendingLimitHit, got %v", err)
	}
}

func TestWalletService_Refund(t *testing.T) {
	svc, _ := setupWalletTest()
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.Deposit(ctx, userID, 1000, "", "", ""); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	charge, err := svc.ChargeUsage(ctx, userID, 400, "tax-planning", uuid.New())
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	refund, err := svc.Refund(ctx, charge.ID, "execution failed")
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if refund.Type != domain.TxRefund {
		t.Fatalf("expected refund transaction, got %s", refund.Type)
	}

	w, _ := svc.Get(ctx, userID)
	if w.BalanceCents != 1000 {
		t.Fatalf("expected balance restored to 1000, got %d", w.BalanceCents)
	}
}

func TestWalletService_Refund_UnknownTransaction(t *testing.T) {
	svc, _ := setupWalletTest()

	_, err := svc.Refund(context.Background(), uuid.New(), "no such charge")
	if err != ErrTransactionUnknown {
		t.Fatalf("expected ErrTransactionUnknown, got %v", err)
	}
}
