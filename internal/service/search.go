package service

import (
	"context"
	"errors"
	"strings"

	"github.com/logoslabs/logos/internal/agent"
	"github.com/logoslabs/logos/internal/domain"
	"go.uber.org/zap"
)

var ErrSearchQueryEmpty = errors.New("query is required")

const defaultSearchTopK = 10

// SearchService answers "which agent should handle this?" by embedding
// the query and running a cosine search over catalog embeddings.
type SearchService struct {
	registry   *agent.Registry
	embeddings domain.CatalogEmbeddingStore
	embedder   domain.EmbeddingClient
	logger     *zap.Logger
}

func NewSearchService(reg *agent.Registry, es domain.CatalogEmbeddingStore, ec domain.EmbeddingClient, logger *zap.Logger) *SearchService {
	return &SearchService{registry: reg, embeddings: es, embedder: ec, logger: logger}
}

// AgentMatch pairs a catalog definition with its similarity score.
type AgentMatch struct {
	Agent *domain.AgentDefinition `json:"agent"`
	Score float32                 `json:"score"`
}

func (s *SearchService) Search(ctx context.Context, query string, topK int) ([]AgentMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrSearchQueryEmpty
	}
	if topK <= 0 {
		topK = defaultSearchTopK
	}

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.embeddings.Search(ctx, emb, topK)
	if err != nil {
		return nil, err
	}

	var out []AgentMatch
	for _, h := range hits {
		def, err := s.registry.Get(h.Slug)
		if err != nil {
			// Embedding rows can outlive catalog entries between deploys.
			s.logger.Debug("stale catalog embedding", zap.String("slug", h.Slug))
			continue
		}
		if def.Status != domain.AgentActive {
			continue
		}
		out = append(out, AgentMatch{Agent: def, Score: h.Score})
	}
	return out, nil
}

// BackfillEmbeddings embeds every active catalog entry and upserts the
// vectors. Run at seed time and after catalog updates.
func (s *SearchService) BackfillEmbeddings(ctx context.Context) (int, error) {
	defs := s.registry.List("", domain.AgentActive)
	n := 0
	for _, def := range defs {
		text := def.Name + ". " + def.Description + ". " + strings.Join(def.Specializations, ", ")
		emb, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return n, err
		}
		if err := s.embeddings.Upsert(ctx, def.Slug, emb); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
