package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logoslabs/logos/internal/domain"
)

type ItemStore struct {
	db *pgxpool.Pool
}

func NewItemStore(db *pgxpool.Pool) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = `id, tenant_id, owner_id, title, description, category_id, item_type,
	price_cents, currency, tags, status, view_count, purchase_count, rating, review_count,
	created_at, updated_at`

func scanItem(row pgx.Row) (*domain.MarketplaceItem, error) {
	it := &domain.MarketplaceItem{}
	err := row.Scan(&it.ID, &it.TenantID, &it.OwnerID, &it.Title, &it.Description,
		&it.CategoryID, &it.ItemType, &it.PriceCents, &it.Currency, &it.Tags, &it.Status,
		&it.ViewCount, &it.PurchaseCount, &it.Rating, &it.ReviewCount, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

func (s *ItemStore) Create(ctx context.Context, it *domain.MarketplaceItem) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO marketplace_items
		   (tenant_id, owner_id, title, description, category_id, item_type, price_cents, currency, tags, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE(NULLIF($8, ''), 'USD'), $9, $10)
		 RETURNING id, currency, view_count, purchase_count, rating, review_count, created_at, updated_at`,
		it.TenantID, it.OwnerID, it.Title, it.Description, it.CategoryID, it.ItemType,
		it.PriceCents, it.Currency, it.Tags, it.Status,
	).Scan(&it.ID, &it.Currency, &it.ViewCount, &it.PurchaseCount, &it.Rating, &it.ReviewCount,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *ItemStore) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.MarketplaceItem, error) {
	return scanItem(s.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM marketplace_items WHERE id = $1 AND tenant_id = $2`,
		id, tenantID))
}

func (s *ItemStore) List(ctx context.Context, tenantID uuid.UUID, f domain.ItemFilter) ([]domain.MarketplaceItem, error) {
	query := `SELECT ` + itemColumns + ` FROM marketplace_items WHERE tenant_id = $1`
	args := []any{tenantID}

	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if f.ItemType != nil {
		args = append(args, *f.ItemType)
		query += fmt.Sprintf(" AND item_type = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MarketplaceItem
	for rows.Next() {
		var it domain.MarketplaceItem
		if err := rows.Scan(&it.ID, &it.TenantID, &it.OwnerID, &it.Title, &it.Description,
			&it.CategoryID, &it.ItemType, &it.PriceCents, &it.Currency, &it.Tags, &it.Status,
			&it.ViewCount, &it.PurchaseCount, &it.Rating, &it.ReviewCount, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *ItemStore) UpdateStatus(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, status domain.ItemStatus) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE marketplace_items SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND tenant_id = $3`,
		status, id, tenantID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ItemStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE marketplace_items SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

func (s *ItemStore) RecordPurchase(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE marketplace_items SET purchase_count = purchase_count + 1, updated_at = NOW()
		 WHERE id = $1`, id)
	return err
}

func (s *ItemStore) UpdateRating(ctx context.Context, id uuid.UUID, rating float32, reviewCount int) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE marketplace_items SET rating = $1, review_count = $2, updated_at = NOW()
		 WHERE id = $3`,
		rating, reviewCount, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
