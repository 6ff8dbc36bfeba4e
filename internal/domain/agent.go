package domain

import (
	"time"

	"github.com/google/uuid"
)

type AgentStatus string

const (
	AgentDraft      AgentStatus = "draft"
	AgentActive     AgentStatus = "active"
	AgentDeprecated AgentStatus = "deprecated"
)

func ValidAgentStatus(s string) bool {
	switch AgentStatus(s) {
	case AgentDraft, AgentActive, AgentDeprecated:
		return true
	}
	return false
}

// AgentDefinition is the static, per-agent-type record that drives the
// runtime. The catalog ships hundreds of these as data; there is one
// execution path for all of them.
type AgentDefinition struct {
	Slug             string      `json:"slug" yaml:"slug"`
	Name             string      `json:"name" yaml:"name"`
	Description      string      `json:"description" yaml:"description"`
	Category         string      `json:"category" yaml:"category"`
	SystemPrompt     string      `json:"-" yaml:"system_prompt"`
	Specializations  []string    `json:"specializations,omitempty" yaml:"specializations"`
	Tags             []string    `json:"tags,omitempty" yaml:"tags"`
	PricePerUseCents int64       `json:"price_per_use_cents" yaml:"price_per_use_cents"`
	Temperature      float64     `json:"-" yaml:"temperature"`
	MaxTokens        int         `json:"-" yaml:"max_tokens"`
	Status           AgentStatus `json:"status" yaml:"status"`
}

// AgentInput is the per-invocation request payload. It is immutable and
// discarded after the call.
type AgentInput struct {
	SessionID uuid.UUID      `json:"session_id"`
	InputData map[string]any `json:"input_data"`
}

// AgentOutput is produced exactly once per invocation. Exactly one of
// OutputData or Error is populated, matching Success.
type AgentOutput struct {
	AgentSlug  string         `json:"agent_id"`
	SessionID  uuid.UUID      `json:"session_id"`
	Success    bool           `json:"success"`
	OutputData map[string]any `json:"output_data,omitempty"`
	Error      string         `json:"error,omitempty"`
	TokensUsed int            `json:"tokens_used"`
}

// AgentUsage is the per-invocation accounting record.
type AgentUsage struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id,omitempty"`
	UserID       uuid.UUID `json:"user_id"`
	AgentSlug    string    `json:"agent_slug"`
	SessionID    uuid.UUID `json:"session_id"`
	Success      bool      `json:"success"`
	TokensUsed   int       `json:"tokens_used"`
	ChargeCents  int64     `json:"charge_cents"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CatalogMatch is a semantic search hit against the agent catalog.
type CatalogMatch struct {
	Slug  string  `json:"slug"`
	Score float32 `json:"score"`
}
