package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logoslabs/logos/internal/domain"
)

type PurchaseStore struct {
	db *pgxpool.Pool
}

func NewPurchaseStore(db *pgxpool.Pool) *PurchaseStore {
	return &PurchaseStore{db: db}
}

func (s *PurchaseStore) Create(ctx context.Context, p *domain.Purchase) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO purchases (item_id, buyer_id, seller_id, amount_cents, fee_cents, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		p.ItemID, p.BuyerID, p.SellerID, p.AmountCents, p.FeeCents, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
}

func (s *PurchaseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	p := &domain.Purchase{}
	err := s.db.QueryRow(ctx,
		`SELECT id, item_id, buyer_id, seller_id, amount_cents, fee_cents, status, created_at, completed_at
		 FROM purchases WHERE id = $1`, id,
	).Scan(&p.ID, &p.ItemID, &p.BuyerID, &p.SellerID, &p.AmountCents, &p.FeeCents,
		&p.Status, &p.CreatedAt, &p.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PurchaseStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PurchaseStatus, completedAt *time.Time) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE purchases SET status = $1, completed_at = $2 WHERE id = $3`,
		status, completedAt, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpirePending fails purchases stuck in pending past the cutoff.
func (s *PurchaseStore) ExpirePending(ctx context.Context, olderThan time.Time) (int64, error) {
	ct, err := s.db.Exec(ctx,
		`UPDATE purchases SET status = 'failed'
		 WHERE status = 'pending' AND created_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
