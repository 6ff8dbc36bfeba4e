package domain

import (
	"time"

	"github.com/google/uuid"
)

type BrandColors struct {
	Primary    string `json:"primary" yaml:"primary"`
	Secondary  string `json:"secondary" yaml:"secondary"`
	Accent     string `json:"accent" yaml:"accent"`
	Background string `json:"background" yaml:"background"`
}

type FeatureFlags struct {
	MarketplaceEnabled bool `json:"marketplace_enabled" yaml:"marketplace_enabled"`
	WalletEnabled      bool `json:"wallet_enabled" yaml:"wallet_enabled"`
	ReviewsEnabled     bool `json:"reviews_enabled" yaml:"reviews_enabled"`
	SignupEnabled      bool `json:"signup_enabled" yaml:"signup_enabled"`
}

// WhitelabelConfig holds per-tenant branding. Defaults come from an
// embedded YAML file; tenants override via the API.
type WhitelabelConfig struct {
	TenantID     uuid.UUID         `json:"tenant_id" yaml:"-"`
	PlatformName string            `json:"platform_name" yaml:"platform_name"`
	LogoURL      string            `json:"logo_url,omitempty" yaml:"logo_url"`
	SupportEmail string            `json:"support_email" yaml:"support_email"`
	Colors       BrandColors       `json:"colors" yaml:"colors"`
	SocialLinks  map[string]string `json:"social_links,omitempty" yaml:"social_links"`
	Features     FeatureFlags      `json:"features" yaml:"features"`
	UpdatedAt    time.Time         `json:"updated_at" yaml:"-"`
}
