package agent

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtract_SectionHeadings(t *testing.T) {
	text := `Findings:
- supplier concentration drives cost
- churn stays under two percent

Recommendations:
- Focus on supplier power

Methodologies:
- comparative margin analysis
`
	ex := Extract(text)

	if len(ex.KeyFindings) != 2 {
		t.Fatalf("expected 2 findings, got %v", ex.KeyFindings)
	}
	if len(ex.Recommendations) != 1 || ex.Recommendations[0] != "Focus on supplier power" {
		t.Fatalf("unexpected recommendations %v", ex.Recommendations)
	}
	if len(ex.Methodologies) != 1 {
		t.Fatalf("expected 1 methodology, got %v", ex.Methodologies)
	}
}

func TestExtract_KeywordOverridesSection(t *testing.T) {
	// A bullet with a trigger word lands in its bucket regardless of the
	// surrounding section.
	text := `Findings:
- We recommend immediate dual sourcing
- the method of comparative analysis applies here
- plain observation about the market
`
	ex := Extract(text)

	if len(ex.Recommendations) != 1 {
		t.Fatalf("expected keyword bullet in recommendations, got %v", ex.Recommendations)
	}
	if len(ex.Methodologies) != 1 {
		t.Fatalf("expected keyword bullet in methodologies, got %v", ex.Methodologies)
	}
	if len(ex.KeyFindings) != 1 {
		t.Fatalf("expected plain bullet in findings, got %v", ex.KeyFindings)
	}
}

func TestExtract_Truncation(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Recommendations:\n")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&sb, "- recommendation number %d with enough length\n", i)
	}
	sb.WriteString("Findings:\n")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&sb, "- finding number %d with enough length\n", i)
	}

	ex := Extract(sb.String())
	if len(ex.Recommendations) != maxRecommendations {
		t.Fatalf("expected %d recommendations, got %d", maxRecommendations, len(ex.Recommendations))
	}
	if len(ex.KeyFindings) != maxFindings {
		t.Fatalf("expected %d findings, got %d", maxFindings, len(ex.KeyFindings))
	}
}

func TestExtract_FallbackPlaceholders(t *testing.T) {
	ex := Extract("Short prose with no structure whatsoever.")

	if len(ex.KeyFindings) == 0 || len(ex.Recommendations) == 0 || len(ex.Methodologies) == 0 {
		t.Fatalf("expected fallback placeholders, got %+v", ex)
	}
}

func TestExtract_IgnoresShortBullets(t *testing.T) {
	ex := Extract("Findings:\n- tiny\n- also a real finding worth keeping\n")

	if len(ex.KeyFindings) != 1 {
		t.Fatalf("expected short bullets dropped, got %v", ex.KeyFindings)
	}
}

func TestConfidenceScore(t *testing.T) {
	cases := []struct {
		name string
		in   QueryInput
		want float64
	}{
		{"base", QueryInput{Query: "q", DetailLevel: DetailIntermediate}, 0.85},
		{"comprehensive", QueryInput{Query: "q", DetailLevel: DetailComprehensive}, 0.90},
		{"expert with context", QueryInput{Query: "q", DetailLevel: DetailExpert, Context: "c"}, 0.95},
		{"basic with context", QueryInput{Query: "q", DetailLevel: DetailBasic, Context: "c"}, 0.90},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ConfidenceScore(tc.in)
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if got < 0 || got > confidenceCeil {
				t.Fatalf("score %v out of bounds", got)
			}
		})
	}
}
