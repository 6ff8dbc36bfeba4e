package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logoslabs/logos/internal/domain"
	pgvector "github.com/pgvector/pgvector-go"
)

// CatalogEmbeddingStore keeps one embedding per agent slug for semantic
// catalog search.
type CatalogEmbeddingStore struct {
	db *pgxpool.Pool
}

func NewCatalogEmbeddingStore(db *pgxpool.Pool) *CatalogEmbeddingStore {
	return &CatalogEmbeddingStore{db: db}
}

func (s *CatalogEmbeddingStore) Upsert(ctx context.Context, slug string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	_, err := s.db.Exec(ctx,
		`INSERT INTO catalog_embeddings (agent_slug, embedding, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (agent_slug) DO UPDATE
		 SET embedding = EXCLUDED.embedding, updated_at = NOW()`,
		slug, vec)
	return err
}

func (s *CatalogEmbeddingStore) Search(ctx context.Context, embedding []float32, topK int) ([]domain.CatalogMatch, error) {
	if topK <= 0 {
		topK = 10
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT agent_slug, 1 - (embedding <=> $1) AS score
		 FROM catalog_embeddings
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CatalogMatch
	for rows.Next() {
		var m domain.CatalogMatch
		if err := rows.Scan(&m.Slug, &m.Score); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
