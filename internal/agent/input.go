package agent

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrQueryRequired      = errors.New("input_data.query is required")
	ErrInvalidDetailLevel = errors.New("invalid detail_level")
)

// Detail levels accepted by every agent in the catalog.
const (
	DetailBasic         = "basic"
	DetailIntermediate  = "intermediate"
	DetailAdvanced      = "advanced"
	DetailComprehensive = "comprehensive"
	DetailExpert        = "expert"
)

// QueryInput is the validated shape of AgentInput.InputData. Parsing it
// is the single point where malformed input is rejected; the runtime
// never touches the raw map after this.
type QueryInput struct {
	Query           string
	Context         string
	DetailLevel     string
	IncludeExamples bool
	SpecificFocus   string
}

// ParseInput validates the raw input map. It runs before any provider
// call is made.
func ParseInput(data map[string]any) (QueryInput, error) {
	qi := QueryInput{
		DetailLevel:     DetailIntermediate,
		IncludeExamples: true,
	}

	query, _ := data["query"].(string)
	if strings.TrimSpace(query) == "" {
		return qi, ErrQueryRequired
	}
	qi.Query = query

	if v, ok := data["context"].(string); ok {
		qi.Context = v
	}
	if v, ok := data["specific_focus"].(string); ok {
		qi.SpecificFocus = v
	}
	if v, ok := data["include_examples"].(bool); ok {
		qi.IncludeExamples = v
	}

	if v, ok := data["detail_level"].(string); ok && v != "" {
		level := strings.ToLower(v)
		switch level {
		case DetailBasic, DetailIntermediate, DetailAdvanced, DetailComprehensive, DetailExpert:
			qi.DetailLevel = level
		default:
			return qi, fmt.Errorf("%w: %q", ErrInvalidDetailLevel, v)
		}
	}

	return qi, nil
}
