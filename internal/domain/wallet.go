package domain

import (
	"time"

	"github.com/google/uuid"
)

// All monetary amounts are integer cents. The platform never stores
// floating-point money.
type Wallet struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	BalanceCents      int64     `json:"balance_cents"`
	BalanceCredits    int64     `json:"balance_credits"`
	DailyLimitCents   int64     `json:"daily_limit_cents"`
	MonthlyLimitCents int64     `json:"monthly_limit_cents"`
	DailySpentCents   int64     `json:"daily_spent_cents"`
	MonthlySpentCents int64     `json:"monthly_spent_cents"`
	TotalEarnedCents  int64     `json:"total_earned_cents"`
	TotalSpentCents   int64     `json:"total_spent_cents"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type TransactionType string

const (
	TxDeposit     TransactionType = "deposit"
	TxWithdrawal  TransactionType = "withdrawal"
	TxPurchase    TransactionType = "purchase"
	TxEarning     TransactionType = "earning"
	TxRefund      TransactionType = "refund"
	TxUsageCharge TransactionType = "usage_charge"
)

func ValidTransactionType(t string) bool {
	switch TransactionType(t) {
	case TxDeposit, TxWithdrawal, TxPurchase, TxEarning, TxRefund, TxUsageCharge:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
	TxCancelled TransactionStatus = "cancelled"
)

type WalletTransaction struct {
	ID            uuid.UUID         `json:"id"`
	WalletID      uuid.UUID         `json:"wallet_id"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	AmountCents   int64             `json:"amount_cents"`
	FeeCents      int64             `json:"fee_cents"`
	NetCents      int64             `json:"net_cents"`
	Currency      string            `json:"currency"`
	ReferenceType string            `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID        `json:"reference_id,omitempty"`
	Provider      string            `json:"provider,omitempty"`
	ProviderTxID  string            `json:"provider_tx_id,omitempty"`
	Description   string            `json:"description,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// PaymentEvent records a webhook event from the payment provider.
// ProviderEventID is unique so replayed webhooks are dropped at insert.
type PaymentEvent struct {
	ID              uuid.UUID `json:"id"`
	Provider        string    `json:"provider"`
	ProviderEventID string    `json:"provider_event_id"`
	EventType       string    `json:"event_type"`
	Payload         []byte    `json:"-"`
	Processed       bool      `json:"processed"`
	CreatedAt       time.Time `json:"created_at"`
}
