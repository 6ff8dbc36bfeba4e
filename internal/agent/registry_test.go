package agent

import (
	"errors"
	"testing"

	"github.com/logoslabs/logos/internal/domain"
)

func TestNewRegistry_LoadsCatalog(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("expected catalog to load, got %v", err)
	}
	if r.Len() == 0 {
		t.Fatal("expected a non-empty catalog")
	}

	def, err := r.Get("business-strategy")
	if err != nil {
		t.Fatalf("expected business-strategy in catalog, got %v", err)
	}
	if def.SystemPrompt == "" || def.Status != domain.AgentActive {
		t.Fatalf("unexpected definition %+v", def)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get("no-such-agent"); !errors.Is(err, ErrAgentUnknown) {
		t.Fatalf("expected ErrAgentUnknown, got %v", err)
	}
}

func TestRegistry_RegisterConflict(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	err = r.Register(&domain.AgentDefinition{
		Slug:         "business-strategy",
		Name:         "Duplicate",
		SystemPrompt: "x",
		Status:       domain.AgentActive,
	})
	if !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("expected ErrSlugConflict, got %v", err)
	}
}

func TestRegistry_RegisterValidation(t *testing.T) {
	r := &Registry{bySlug: map[string]*domain.AgentDefinition{}}

	cases := []*domain.AgentDefinition{
		{Name: "n", SystemPrompt: "p", Status: domain.AgentActive},                        // no slug
		{Slug: "s", SystemPrompt: "p", Status: domain.AgentActive},                       // no name
		{Slug: "s", Name: "n", Status: domain.AgentActive},                               // no prompt
		{Slug: "s", Name: "n", SystemPrompt: "p", Status: "retired"},                     // bad status
		{Slug: "s", Name: "n", SystemPrompt: "p", Status: domain.AgentActive, PricePerUseCents: -1},
	}
	for i, def := range cases {
		if err := r.Register(def); !errors.Is(err, ErrInvalidDef) {
			t.Fatalf("case %d: expected ErrInvalidDef, got %v", i, err)
		}
	}
}

func TestRegistry_ListFilters(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	active := r.List("", domain.AgentActive)
	for _, def := range active {
		if def.Status != domain.AgentActive {
			t.Fatalf("status filter leaked %q", def.Slug)
		}
	}
	if len(active) == 0 {
		t.Fatal("expected active agents in catalog")
	}

	business := r.List("business", "")
	for _, def := range business {
		if def.Category != "business" {
			t.Fatalf("category filter leaked %q", def.Slug)
		}
	}
	if len(business) == 0 {
		t.Fatal("expected business agents in catalog")
	}

	if got := r.List("", ""); len(got) != r.Len() {
		t.Fatalf("empty filter should return all %d entries, got %d", r.Len(), len(got))
	}
}
