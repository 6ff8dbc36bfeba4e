package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/logoslabs/logos/internal/cache"
	"github.com/logoslabs/logos/internal/domain"
	"github.com/logoslabs/logos/internal/store"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var whitelabelDefaultsYAML []byte

var ErrInvalidBranding = errors.New("invalid branding config")

const whitelabelCacheTTL = 5 * time.Minute

// WhitelabelService serves per-tenant branding. Reads go through an
// in-process cache; tenants without an override get the embedded
// defaults.
type WhitelabelService struct {
	store    domain.WhitelabelStore
	cache    *cache.Cache
	defaults domain.WhitelabelConfig
	logger   *zap.Logger
}

func NewWhitelabelService(ws domain.WhitelabelStore, c *cache.Cache, logger *zap.Logger) (*WhitelabelService, error) {
	var defaults domain.WhitelabelConfig
	if err := yaml.Unmarshal(whitelabelDefaultsYAML, &defaults); err != nil {
		return nil, fmt.Errorf("parse whitelabel defaults: %w", err)
	}
	return &WhitelabelService{store: ws, cache: c, defaults: defaults, logger: logger}, nil
}

func whitelabelKey(tenantID uuid.UUID) string {
	return "wl:" + tenantID.String()
}

func (s *WhitelabelService) Get(ctx context.Context, tenantID uuid.UUID) (*domain.WhitelabelConfig, error) {
	if raw, ok := s.cache.Get(whitelabelKey(tenantID)); ok {
		cfg := &domain.WhitelabelConfig{}
		if err := json.Unmarshal(raw, cfg); err == nil {
			return cfg, nil
		}
		s.cache.Delete(whitelabelKey(tenantID))
	}

	cfg, err := s.store.GetByTenantID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			d := s.defaults
			d.TenantID = tenantID
			cfg = &d
		} else {
			return nil, err
		}
	}

	if raw, err := json.Marshal(cfg); err == nil {
		s.cache.Set(whitelabelKey(tenantID), raw, whitelabelCacheTTL)
	}
	return cfg, nil
}

func (s *WhitelabelService) Update(ctx context.Context, cfg *domain.WhitelabelConfig) error {
	if cfg.PlatformName == "" {
		return fmt.Errorf("%w: platform_name is required", ErrInvalidBranding)
	}
	if cfg.SupportEmail == "" {
		return fmt.Errorf("%w: support_email is required", ErrInvalidBranding)
	}

	if err := s.store.Upsert(ctx, cfg); err != nil {
		return err
	}
	s.cache.Delete(whitelabelKey(cfg.TenantID))

	s.logger.Info("branding updated", zap.String("tenant_id", cfg.TenantID.String()))
	return nil
}
