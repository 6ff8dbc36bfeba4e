package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logoslabs/logos/internal/domain"
)

type UsageStore struct {
	db *pgxpool.Pool
}

func NewUsageStore(db *pgxpool.Pool) *UsageStore {
	return &UsageStore{db: db}
}

func (s *UsageStore) Record(ctx context.Context, u *domain.AgentUsage) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO agent_usage
		   (tenant_id, user_id, agent_slug, session_id, success, tokens_used, charge_cents, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		 RETURNING id, created_at`,
		u.TenantID, u.UserID, u.AgentSlug, u.SessionID, u.Success,
		u.TokensUsed, u.ChargeCents, u.ErrorMessage,
	).Scan(&u.ID, &u.CreatedAt)
}

func (s *UsageStore) ListBySession(ctx context.Context, sessionID uuid.UUID, tenantID uuid.UUID) ([]domain.AgentUsage, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, user_id, agent_slug, session_id, success,
		        tokens_used, charge_cents, COALESCE(error_message, ''), created_at
		 FROM agent_usage
		 WHERE session_id = $1 AND tenant_id = $2
		 ORDER BY created_at`,
		sessionID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AgentUsage
	for rows.Next() {
		var u domain.AgentUsage
		if err := rows.Scan(&u.ID, &u.TenantID, &u.UserID, &u.AgentSlug, &u.SessionID,
			&u.Success, &u.TokensUsed, &u.ChargeCents, &u.ErrorMessage, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *UsageStore) CountByAgent(ctx context.Context, agentSlug string, tenantID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM agent_usage WHERE agent_slug = $1 AND tenant_id = $2`,
		agentSlug, tenantID,
	).Scan(&n)
	return n, err
}
