package domain

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ItemStatus string

const (
	ItemActive  ItemStatus = "active"
	ItemPending ItemStatus = "pending"
	ItemSold    ItemStatus = "sold"
	ItemRemoved ItemStatus = "removed"
)

type ItemType string

const (
	ItemTypeAgent   ItemType = "agent"
	ItemTypePrompt  ItemType = "prompt"
	ItemTypeDataset ItemType = "dataset"
	ItemTypeService ItemType = "service"
)

func ValidItemType(t string) bool {
	switch ItemType(t) {
	case ItemTypeAgent, ItemTypePrompt, ItemTypeDataset, ItemTypeService:
		return true
	}
	return false
}

type MarketplaceItem struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id,omitempty"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	ItemType      ItemType   `json:"item_type"`
	PriceCents    int64      `json:"price_cents"`
	Currency      string     `json:"currency"`
	Tags          []string   `json:"tags,omitempty"`
	Status        ItemStatus `json:"status"`
	ViewCount     int        `json:"view_count"`
	PurchaseCount int        `json:"purchase_count"`
	Rating        float32    `json:"rating"`
	ReviewCount   int        `json:"review_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseFailed    PurchaseStatus = "failed"
	PurchaseRefunded  PurchaseStatus = "refunded"
)

type Purchase struct {
	ID          uuid.UUID      `json:"id"`
	ItemID      uuid.UUID      `json:"item_id"`
	BuyerID     uuid.UUID      `json:"buyer_id"`
	SellerID    uuid.UUID      `json:"seller_id"`
	AmountCents int64          `json:"amount_cents"`
	FeeCents    int64          `json:"fee_cents"`
	Status      PurchaseStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

type Review struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ItemFilter narrows marketplace listings.
type ItemFilter struct {
	CategoryID *uuid.UUID
	ItemType   *ItemType
	Status     *ItemStatus
	Limit      int
	Offset     int
}
