package agent

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/logoslabs/logos/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

var (
	ErrAgentUnknown   = errors.New("unknown agent")
	ErrSlugConflict   = errors.New("agent slug already registered")
	ErrInvalidDef     = errors.New("invalid agent definition")
)

// Registry holds the agent catalog. Definitions are loaded once at
// startup from the embedded YAML file and are never mutated at request
// time; additional definitions can be registered before serving.
type Registry struct {
	bySlug  map[string]*domain.AgentDefinition
	ordered []*domain.AgentDefinition
}

// NewRegistry parses the embedded catalog.
func NewRegistry() (*Registry, error) {
	var defs []*domain.AgentDefinition
	if err := yaml.Unmarshal(catalogYAML, &defs); err != nil {
		return nil, fmt.Errorf("parse agent catalog: %w", err)
	}

	r := &Registry{bySlug: make(map[string]*domain.AgentDefinition, len(defs))}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", def.Slug, err)
		}
	}
	return r, nil
}

func (r *Registry) Register(def *domain.AgentDefinition) error {
	switch {
	case def.Slug == "":
		return fmt.Errorf("%w: empty slug", ErrInvalidDef)
	case def.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidDef)
	case def.SystemPrompt == "":
		return fmt.Errorf("%w: empty system prompt", ErrInvalidDef)
	case def.PricePerUseCents < 0:
		return fmt.Errorf("%w: negative price", ErrInvalidDef)
	case !domain.ValidAgentStatus(string(def.Status)):
		return fmt.Errorf("%w: status %q", ErrInvalidDef, def.Status)
	}

	if _, exists := r.bySlug[def.Slug]; exists {
		return ErrSlugConflict
	}

	r.bySlug[def.Slug] = def
	r.ordered = append(r.ordered, def)
	return nil
}

func (r *Registry) Get(slug string) (*domain.AgentDefinition, error) {
	def, ok := r.bySlug[slug]
	if !ok {
		return nil, ErrAgentUnknown
	}
	return def, nil
}

// List returns catalog entries, optionally filtered by category and
// status. Empty filter values match everything.
func (r *Registry) List(category string, status domain.AgentStatus) []*domain.AgentDefinition {
	out := make([]*domain.AgentDefinition, 0, len(r.ordered))
	for _, def := range r.ordered {
		if category != "" && def.Category != category {
			continue
		}
		if status != "" && def.Status != status {
			continue
		}
		out = append(out, def)
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.ordered)
}
