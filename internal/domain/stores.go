package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TenantStore interface {
	Create(ctx context.Context, t *Tenant) error
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*Tenant, error)
}

type UserStore interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string, tenantID uuid.UUID) (*User, error)
}

// ChargeRequest describes a balance debit tied to a reference entity.
type ChargeRequest struct {
	WalletID      uuid.UUID
	AmountCents   int64
	Type          TransactionType
	ReferenceType string
	ReferenceID   *uuid.UUID
	Description   string
}

type WalletStore interface {
	Create(ctx context.Context, w *Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error)
	// Credit increases the balance and records a completed transaction.
	Credit(ctx context.Context, walletID uuid.UUID, amountCents int64, txType TransactionType, provider, providerTxID, description string) (*WalletTransaction, error)
	// Charge atomically debits the balance, enforcing balance and
	// spending-limit checks in a single statement. Returns
	// ErrInsufficientFunds or ErrLimitExceeded equivalents via the store's
	// sentinel errors.
	Charge(ctx context.Context, req ChargeRequest) (*WalletTransaction, error)
	// Refund reverses a completed charge: credits the balance back and
	// marks the original transaction refunded via a compensating row.
	Refund(ctx context.Context, txID uuid.UUID, description string) (*WalletTransaction, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]WalletTransaction, error)
	ExpirePendingTransactions(ctx context.Context, olderThan time.Time) (int64, error)
	ResetDailySpent(ctx context.Context) (int64, error)
	ResetMonthlySpent(ctx context.Context) (int64, error)
}

type PaymentEventStore interface {
	// Create fails with ErrConflict when the provider event ID was seen before.
	Create(ctx context.Context, e *PaymentEvent) error
	GetByProviderEventID(ctx context.Context, provider, providerEventID string) (*PaymentEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

type ItemStore interface {
	Create(ctx context.Context, it *MarketplaceItem) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*MarketplaceItem, error)
	List(ctx context.Context, tenantID uuid.UUID, f ItemFilter) ([]MarketplaceItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, status ItemStatus) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	RecordPurchase(ctx context.Context, id uuid.UUID) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating float32, reviewCount int) error
}

type CategoryStore interface {
	Create(ctx context.Context, c *Category) error
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
}

type PurchaseStore interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*Purchase, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status PurchaseStatus, completedAt *time.Time) error
	ExpirePending(ctx context.Context, olderThan time.Time) (int64, error)
}

type ReviewStore interface {
	Create(ctx context.Context, r *Review) error
	ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]Review, error)
	AggregateForItem(ctx context.Context, itemID uuid.UUID) (avg float32, count int, err error)
}

type UsageStore interface {
	Record(ctx context.Context, u *AgentUsage) error
	ListBySession(ctx context.Context, sessionID uuid.UUID, tenantID uuid.UUID) ([]AgentUsage, error)
	CountByAgent(ctx context.Context, agentSlug string, tenantID uuid.UUID) (int, error)
}

type CatalogEmbeddingStore interface {
	Upsert(ctx context.Context, slug string, embedding []float32) error
	Search(ctx context.Context, embedding []float32, topK int) ([]CatalogMatch, error)
}

type WhitelabelStore interface {
	Upsert(ctx context.Context, cfg *WhitelabelConfig) error
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*WhitelabelConfig, error)
}

// CompletionClient is the external text-completion provider. It is a
// black box: one call per agent invocation, no retries around it.
type CompletionClient interface {
	Complete(ctx context.Context, prompt, systemPrompt string, temperature float64, maxTokens int) (string, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
