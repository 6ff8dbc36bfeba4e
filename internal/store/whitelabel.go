package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logoslabs/logos/internal/domain"
)

type WhitelabelStore struct {
	db *pgxpool.Pool
}

func NewWhitelabelStore(db *pgxpool.Pool) *WhitelabelStore {
	return &WhitelabelStore{db: db}
}

func (s *WhitelabelStore) Upsert(ctx context.Context, cfg *domain.WhitelabelConfig) error {
	colors, err := json.Marshal(cfg.Colors)
	if err != nil {
		return err
	}
	social, err := json.Marshal(cfg.SocialLinks)
	if err != nil {
		return err
	}
	features, err := json.Marshal(cfg.Features)
	if err != nil {
		return err
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO whitelabel_configs
		   (tenant_id, platform_name, logo_url, support_email, colors, social_links, features, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 ON CONFLICT (tenant_id) DO UPDATE SET
		   platform_name = EXCLUDED.platform_name,
		   logo_url = EXCLUDED.logo_url,
		   support_email = EXCLUDED.support_email,
		   colors = EXCLUDED.colors,
		   social_links = EXCLUDED.social_links,
		   features = EXCLUDED.features,
		   updated_at = NOW()
		 RETURNING updated_at`,
		cfg.TenantID, cfg.PlatformName, cfg.LogoURL, cfg.SupportEmail,
		colors, social, features,
	).Scan(&cfg.UpdatedAt)
}

func (s *WhitelabelStore) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*domain.WhitelabelConfig, error) {
	cfg := &domain.WhitelabelConfig{}
	var colors, social, features []byte
	err := s.db.QueryRow(ctx,
		`SELECT tenant_id, platform_name, logo_url, support_email, colors, social_links, features, updated_at
		 FROM whitelabel_configs WHERE tenant_id = $1`, tenantID,
	).Scan(&cfg.TenantID, &cfg.PlatformName, &cfg.LogoURL, &cfg.SupportEmail,
		&colors, &social, &features, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(colors, &cfg.Colors); err != nil {
		return nil, err
	}
	if len(social) > 0 {
		if err := json.Unmarshal(social, &cfg.SocialLinks); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(features, &cfg.Features); err != nil {
		return nil, err
	}
	return cfg, nil
}
