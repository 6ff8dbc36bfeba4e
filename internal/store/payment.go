package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logoslabs/logos/internal/domain"
)

type PaymentEventStore struct {
	db *pgxpool.Pool
}

func NewPaymentEventStore(db *pgxpool.Pool) *PaymentEventStore {
	return &PaymentEventStore{db: db}
}

// Create inserts a webhook event. The (provider, provider_event_id)
// uniqueness constraint makes replayed webhooks fail with ErrConflict.
func (s *PaymentEventStore) Create(ctx context.Context, e *domain.PaymentEvent) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO payment_events (provider, provider_event_id, event_type, payload)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, processed, created_at`,
		e.Provider, e.ProviderEventID, e.EventType, e.Payload,
	).Scan(&e.ID, &e.Processed, &e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *PaymentEventStore) GetByProviderEventID(ctx context.Context, provider, providerEventID string) (*domain.PaymentEvent, error) {
	e := &domain.PaymentEvent{}
	err := s.db.QueryRow(ctx,
		`SELECT id, provider, provider_event_id, event_type, payload, processed, created_at
		 FROM payment_events WHERE provider = $1 AND provider_event_id = $2`,
		provider, providerEventID,
	).Scan(&e.ID, &e.Provider, &e.ProviderEventID, &e.EventType, &e.Payload, &e.Processed, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *PaymentEventStore) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE payment_events SET processed = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
