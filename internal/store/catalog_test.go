package store

import (
	"strings"
	"testing"
)

// The catalog queries name their columns in SQL strings, so a rename in
// the migration does not fail compilation. Cross-check the embedded DDL
// against the columns the store relies on.
func TestCatalogEmbeddingsSchemaMatchesQueries(t *testing.T) {
	ddl := tableDDL(t, "catalog_embeddings")

	for _, col := range []string{"agent_slug", "embedding", "updated_at"} {
		if !strings.Contains(ddl, col) {
			t.Errorf("catalog_embeddings DDL is missing column %q used by the store queries:\n%s", col, ddl)
		}
	}
	if !strings.Contains(ddl, "agent_slug TEXT PRIMARY KEY") {
		t.Errorf("catalog_embeddings upsert conflicts on agent_slug, which must be the primary key:\n%s", ddl)
	}
}

// tableDDL finds the CREATE TABLE block for name across the embedded
// migration files.
func tableDDL(t *testing.T, name string) string {
	t.Helper()

	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	marker := "CREATE TABLE " + name + " ("
	for _, e := range entries {
		data, err := migrations.ReadFile("migrations/" + e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		sql := string(data)
		start := strings.Index(sql, marker)
		if start < 0 {
			continue
		}
		end := strings.Index(sql[start:], ");")
		if end < 0 {
			t.Fatalf("unterminated CREATE TABLE %s in %s", name, e.Name())
		}
		return sql[start : start+end+2]
	}

	t.Fatalf("no migration declares table %s", name)
	return ""
}
