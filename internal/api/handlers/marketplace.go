package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/logoslabs/logos/internal/api/middleware"
	"github.com/logoslabs/logos/internal/domain"
	"github.com/logoslabs/logos/internal/service"
)

type MarketplaceHandler struct {
	svc *service.MarketplaceService
}

func NewMarketplaceHandler(svc *service.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{svc: svc}
}

type createItemRequest struct {
	OwnerID     string   `json:"owner_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	CategoryID  string   `json:"category_id,omitempty"`
	ItemType    string   `json:"item_type"`
	PriceCents  int64    `json:"price_cents"`
	Currency    string   `json:"currency,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (h *MarketplaceHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid owner_id")
		return
	}

	it := &domain.MarketplaceItem{
		TenantID:    tenant.ID,
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		ItemType:    domain.ItemType(req.ItemType),
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Tags:        req.Tags,
	}
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		it.CategoryID = &categoryID
	}

	if err := h.svc.CreateItem(r.Context(), it); err != nil {
		switch {
		case errors.Is(err, service.ErrItemTitleEmpty),
			errors.Is(err, service.ErrInvalidItemType),
			errors.Is(err, service.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create item")
		}
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *MarketplaceHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	it, err := h.svc.GetItem(r.Context(), id, tenant.ID)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *MarketplaceHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	f := domain.ItemFilter{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		f.CategoryID = &categoryID
	}
	if raw := r.URL.Query().Get("item_type"); raw != "" {
		if !domain.ValidItemType(raw) {
			writeError(w, http.StatusBadRequest, "invalid item_type")
			return
		}
		t := domain.ItemType(raw)
		f.ItemType = &t
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.ItemStatus(raw)
		f.Status = &s
	}

	items, err := h.svc.ListItems(r.Context(), tenant.ID, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

type updateItemStatusRequest struct {
	Status string `json:"status"`
}

func (h *MarketplaceHandler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch domain.ItemStatus(req.Status) {
	case domain.ItemActive, domain.ItemPending, domain.ItemSold, domain.ItemRemoved:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := h.svc.UpdateItemStatus(r.Context(), id, tenant.ID, domain.ItemStatus(req.Status)); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

type purchaseRequest struct {
	BuyerID string `json:"buyer_id"`
}

func (h *MarketplaceHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	buyerID, err := uuid.Parse(req.BuyerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid buyer_id")
		return
	}

	p, err := h.svc.Purchase(r.Context(), itemID, tenant.ID, buyerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			writeError(w, http.StatusNotFound, "item not found")
		case errors.Is(err, service.ErrItemNotActive),
			errors.Is(err, service.ErrSelfPurchase):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInsufficientFunds):
			writeError(w, http.StatusPaymentRequired, err.Error())
		case errors.Is(err, service.ErrSpendingLimitHit):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "purchase failed")
		}
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type createReviewRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
}

func (h *MarketplaceHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reviewerID, err := uuid.Parse(req.ReviewerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reviewer_id")
		return
	}

	review := &domain.Review{
		ItemID:     itemID,
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := h.svc.AddReview(r.Context(), review); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAlreadyReviewed):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create review")
		}
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *MarketplaceHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	reviews, err := h.svc.ListReviews(r.Context(), itemID, queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews, "count": len(reviews)})
}

func (h *MarketplaceHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories, "count": len(categories)})
}
