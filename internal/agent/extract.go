package agent

import "strings"

const (
	maxFindings        = 5
	maxRecommendations = 5
	maxMethodologies   = 3

	confidenceBase   = 0.85
	confidenceBonus  = 0.05
	confidenceCeil   = 0.95
	minExtractLength = 10
)

// Extraction is the structured view of a free-text completion. This is
// best-effort pattern matching over unconstrained natural language, not
// a parser; when nothing matches, the placeholder fallbacks below apply.
type Extraction struct {
	KeyFindings     []string
	Recommendations []string
	Methodologies   []string
}

var fallbackExtraction = Extraction{
	KeyFindings:     []string{"See full analysis text"},
	Recommendations: []string{"Review the full analysis for guidance"},
	Methodologies:   []string{"General domain analysis"},
}

// Extract splits completion text into findings, recommendations and
// methodologies by scanning lines for keyword triggers and bullet
// markers. Section headings switch the target bucket for subsequent
// bullets; trigger words on a bullet line override the current bucket.
func Extract(text string) Extraction {
	var ex Extraction
	section := "finding"

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		bullet := strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*")

		if !bullet {
			// Heading or prose line: may switch the current section and
			// may itself carry content after a colon.
			switch {
			case strings.Contains(lower, "recommend"):
				section = "recommendation"
			case strings.Contains(lower, "method"):
				section = "methodology"
			case strings.Contains(lower, "finding"):
				section = "finding"
			default:
				continue
			}
			if content := afterColon(line); len(content) >= minExtractLength {
				ex.add(section, content)
			}
			continue
		}

		content := strings.TrimSpace(strings.TrimLeft(line, "-•* "))
		if len(content) < minExtractLength {
			continue
		}

		target := section
		switch {
		case strings.Contains(lower, "recommend"), strings.Contains(lower, "you should"), strings.Contains(lower, "consider "):
			target = "recommendation"
		case strings.Contains(lower, "method"):
			target = "methodology"
		case strings.Contains(lower, "finding"):
			target = "finding"
		}
		ex.add(target, content)
	}

	if len(ex.KeyFindings) == 0 {
		ex.KeyFindings = fallbackExtraction.KeyFindings
	}
	if len(ex.Recommendations) == 0 {
		ex.Recommendations = fallbackExtraction.Recommendations
	}
	if len(ex.Methodologies) == 0 {
		ex.Methodologies = fallbackExtraction.Methodologies
	}
	return ex
}

func (ex *Extraction) add(section, content string) {
	switch section {
	case "recommendation":
		if len(ex.Recommendations) < maxRecommendations {
			ex.Recommendations = append(ex.Recommendations, content)
		}
	case "methodology":
		if len(ex.Methodologies) < maxMethodologies {
			ex.Methodologies = append(ex.Methodologies, content)
		}
	default:
		if len(ex.KeyFindings) < maxFindings {
			ex.KeyFindings = append(ex.KeyFindings, content)
		}
	}
}

func afterColon(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}

// ConfidenceScore is a hand-computed heuristic, not a model property:
// a fixed base plus small increments for input verbosity, clamped so it
// never reaches 1.0.
func ConfidenceScore(in QueryInput) float64 {
	score := confidenceBase
	switch in.DetailLevel {
	case DetailAdvanced, DetailComprehensive, DetailExpert:
		score += confidenceBonus
	}
	if in.Context != "" {
		score += confidenceBonus
	}
	if score > confidenceCeil {
		score = confidenceCeil
	}
	return score
}
