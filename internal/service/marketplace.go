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
	ErrItemNotFound     = errors.New("item not found")
	ErrItemTitleEmpty   = errors.New("title is required")
	ErrInvalidItemType  = errors.New("invalid item type")
	ErrItemNotActive    = errors.New("item is not active")
	ErrSelfPurchase     = errors.New("cannot purchase your own item")
	ErrAlreadyReviewed  = errors.New("item already reviewed by this user")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrPurchaseNotFound = errors.New("purchase not found")
)

type MarketplaceService struct {
	items      domain.ItemStore
	categories domain.CategoryStore
	purchases  domain.PurchaseStore
	reviews    domain.ReviewStore
	wallets    *WalletService
	feeBP      int
	logger     *zap.Logger
}

func NewMarketplaceService(is domain.ItemStore, cs domain.CategoryStore, ps domain.PurchaseStore, rs domain.ReviewStore, ws *WalletService, feeBasisPoints int, logger *zap.Logger) *MarketplaceService {
	return &MarketplaceService{
		items:      is,
		categories: cs,
		purchases:  ps,
		reviews:    rs,
		wallets:    ws,
		feeBP:      feeBasisPoints,
		logger:     logger,
	}
}

func (s *MarketplaceService) CreateItem(ctx context.Context, it *domain.MarketplaceItem) error {
	if it.Title == "" {
		return ErrItemTitleEmpty
	}
	if !domain.ValidItemType(string(it.ItemType)) {
		return ErrInvalidItemType
	}
	if it.PriceCents < 0 {
		return ErrInvalidAmount
	}
	if it.Status == "" {
		it.Status = domain.ItemPending
	}
	return s.items.Create(ctx, it)
}

func (s *MarketplaceService) GetItem(ctx context.Context, id, tenantID uuid.UUID) (*domain.MarketplaceItem, error) {
	it, err := s.items.GetByID(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	// View counting is best effort.
	if err := s.items.IncrementViews(ctx, id); err != nil {
		s.logger.Debug("view count update failed", zap.String("item_id", id.String()), zap.Error(err))
	}
	return it, nil
}

func (s *MarketplaceService) ListItems(ctx context.Context, tenantID uuid.UUID, f domain.ItemFilter) ([]domain.MarketplaceItem, error) {
	return s.items.List(ctx, tenantID, f)
}

func (s *MarketplaceService) UpdateItemStatus(ctx context.Context, id, tenantID uuid.UUID, status domain.ItemStatus) error {
	err := s.items.UpdateStatus(ctx, id, tenantID, status)
	if errors.Is(err, store.ErrNotFound) {
		return ErrItemNotFound
	}
	return err
}

func (s *MarketplaceService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// Purchase moves funds from buyer to seller. The buyer pays the item
// price; the seller receives the price minus the platform fee. The buyer
// charge and seller credit are separate wallet operations, so a failed
// seller credit refunds the buyer.
func (s *MarketplaceService) Purchase(ctx context.Context, itemID, tenantID, buyerID uuid.UUID) (*domain.Purchase, error) {
	it, err := s.items.GetByID(ctx, itemID, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if it.Status != domain.ItemActive {
		return nil, ErrItemNotActive
	}
	if it.OwnerID == buyerID {
		return nil, ErrSelfPurchase
	}

	fee := it.PriceCents * int64(s.feeBP) / 10000

	p := &domain.Purchase{
		ItemID:      itemID,
		BuyerID:     buyerID,
		SellerID:    it.OwnerID,
		AmountCents: it.PriceCents,
		FeeCents:    fee,
		Status:      domain.PurchasePending,
	}
	if err := s.purchases.Create(ctx, p); err != nil {
		return nil, err
	}

	buyerWallet, err := s.wallets.EnsureWallet(ctx, buyerID)
	if err != nil {
		return nil, s.failPurchase(ctx, p, err)
	}

	ref := p.ID
	chargeTx, err := s.wallets.wallets.Charge(ctx, domain.ChargeRequest{
		WalletID:      buyerWallet.ID,
		AmountCents:   it.PriceCents,
		Type:          domain.TxPurchase,
		ReferenceType: "purchase",
		ReferenceID:   &ref,
		Description:   "purchase: " + it.Title,
	})
	if err != nil {
		return nil, s.failPurchase(ctx, p, s.wallets.mapChargeErr(err))
	}

	sellerWallet, err := s.wallets.EnsureWallet(ctx, it.OwnerID)
	if err == nil {
		_, err = s.wallets.wallets.Credit(ctx, sellerWallet.ID,
			it.PriceCents-fee, domain.TxEarning, "", "", "sale: "+it.Title)
	}
	if err != nil {
		if _, rerr := s.wallets.Refund(ctx, chargeTx.ID, "purchase failed"); rerr != nil {
			s.logger.Error("buyer refund failed after seller credit error",
				zap.String("purchase_id", p.ID.String()),
				zap.Error(rerr))
		}
		return nil, s.failPurchase(ctx, p, err)
	}

	now := timeNow()
	if err := s.purchases.UpdateStatus(ctx, p.ID, domain.PurchaseCompleted, &now); err != nil {
		s.logger.Error("purchase status update failed",
			zap.String("purchase_id", p.ID.String()), zap.Error(err))
	}
	p.Status = domain.PurchaseCompleted
	p.CompletedAt = &now

	if err := s.items.RecordPurchase(ctx, itemID); err != nil {
		s.logger.Debug("purchase count update failed", zap.Error(err))
	}

	s.logger.Info("purchase completed",
		zap.String("purchase_id", p.ID.String()),
		zap.String("item_id", itemID.String()),
		zap.Int64("amount_cents", it.PriceCents),
		zap.Int64("fee_cents", fee))
	return p, nil
}

func (s *MarketplaceService) failPurchase(ctx context.Context, p *domain.Purchase, cause error) error {
	if err := s.purchases.UpdateStatus(ctx, p.ID, domain.PurchaseFailed, nil); err != nil {
		s.logger.Warn("failed to mark purchase failed",
			zap.String("purchase_id", p.ID.String()), zap.Error(err))
	}
	return cause
}

// AddReview records a review and rolls the new average up onto the item.
func (s *MarketplaceService) AddReview(ctx context.Context, r *domain.Review) error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}

	if err := s.reviews.Create(ctx, r); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrAlreadyReviewed
		}
		return err
	}

	avg, count, err := s.reviews.AggregateForItem(ctx, r.ItemID)
	if err != nil {
		s.logger.Warn("rating aggregate failed", zap.String("item_id", r.ItemID.String()), zap.Error(err))
		return nil
	}
	if err := s.items.UpdateRating(ctx, r.ItemID, avg, count); err != nil {
		s.logger.Warn("rating rollup failed", zap.String("item_id", r.ItemID.String()), zap.Error(err))
	}
	return nil
}

func (s *MarketplaceService) ListReviews(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]domain.Review, error) {
	return s.reviews.ListByItem(ctx, itemID, limit, offset)
}
