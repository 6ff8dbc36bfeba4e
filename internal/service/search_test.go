package service

import (
	"context"
	"sort"
	"testing"

	"github.com/logoslabs/logos/internal/agent"
	"github.com/logoslabs/logos/internal/domain"
	"github.com/logoslabs/logos/internal/embedding"
	"go.uber.org/zap"
)

type mockCatalogEmbeddingStore struct {
	vectors map[string][]float32
}

func newMockCatalogEmbeddingStore() *mockCatalogEmbeddingStore {
	return &mockCatalogEmbeddingStore{vectors: make(map[string][]float32)}
}

func (m *mockCatalogEmbeddingStore) Upsert(ctx context.Context, slug string, emb []float32) error {
	m.vectors[slug] = emb
	return nil
}

func (m *mockCatalogEmbeddingStore) Search(ctx context.Context, emb []float32, topK int) ([]domain.CatalogMatch, error) {
	var out []domain.CatalogMatch
	for slug, v := range m.vectors {
		var dot float32
		for i := range v {
			dot += v[i] * emb[i]
		}
		out = append(out, domain.CatalogMatch{Slug: slug, Score: dot})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func setupSearchTest(t *testing.T) (*SearchService, *mockCatalogEmbeddingStore, *agent.Registry) {
	t.Helper()
	reg, err := agent.NewRegistry()
	if err != nil {
		t.Fatalf("registry load failed: %v", err)
	}
	es := newMockCatalogEmbeddingStore()
	svc := NewSearchService(reg, es, embedding.NewMockClient(), zap.NewNop())
	return svc, es, reg
}

func TestSearchService_EmptyQuery(t *testing.T) {
	svc, _, _ := setupSearchTest(t)

	if _, err := svc.Search(context.Background(), "   ", 5); err != ErrSearchQueryEmpty {
		t.Fatalf("expected ErrSearchQueryEmpty, got %v", err)
	}
}

func TestSearchService_BackfillAndSearch(t *testing.T) {
	svc, es, reg := setupSearchTest(t)
	ctx := context.Background()

	n, err := svc.BackfillEmbeddings(ctx)
	if err != nil {
		t.Fatalf("backfill failed: %v", err)
	}
	active := len(reg.List("", domain.AgentActive))
	if n != active {
		t.Fatalf("expected %d embeddings, got %d", active, n)
	}
	if len(es.vectors) != active {
		t.Fatalf("expected %d stored vectors, got %d", active, len(es.vectors))
	}

	matches, err := svc.Search(ctx, "financial planning and tax advice", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
	for _, m := range matches {
		if m.Agent == nil {
			t.Fatal("match must carry its definition")
		}
		if m.Agent.Status != domain.AgentActive {
			t.Fatalf("search must only return active agents, got %s", m.Agent.Status)
		}
	}
}

func TestSearchService_SkipsStaleEmbeddings(t *testing.T) {
	svc, es, _ := setupSearchTest(t)
	ctx := context.Background()

	client := embedding.NewMockClient()
	emb, err := client.Embed(ctx, "orphaned")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if err := es.Upsert(ctx, "agent-removed-from-catalog", emb); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	matches, err := svc.Search(ctx, "orphaned", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	for _, m := range matches {
		if m.Agent.Slug == "agent-removed-from-catalog" {
			t.Fatal("stale embedding must be skipped")
		}
	}
}
