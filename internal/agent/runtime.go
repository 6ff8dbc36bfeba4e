package agent

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/logoslabs/logos/internal/domain"
	"go.uber.org/zap"
)

const defaultMaxTokens = 2000

// Runtime executes any catalog agent: validate input, build the prompt,
// make exactly one completion call, and map the text into the fixed
// output shape. Failures of any kind become a non-throwing AgentOutput
// with success=false; Execute never returns a Go error.
type Runtime struct {
	client domain.CompletionClient
	tokens *TokenCounter
	logger *zap.Logger
}

func NewRuntime(client domain.CompletionClient, logger *zap.Logger) *Runtime {
	return &Runtime{
		client: client,
		tokens: NewTokenCounter(),
		logger: logger,
	}
}

func (r *Runtime) Execute(ctx context.Context, def *domain.AgentDefinition, in domain.AgentInput) domain.AgentOutput {
	qi, err := ParseInput(in.InputData)
	if err != nil {
		// Validation failures surface before any provider call.
		return r.fail(def, in, err)
	}

	prompt := buildPrompt(def, qi)

	maxTokens := def.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	text, err := r.client.Complete(ctx, prompt, def.SystemPrompt, def.Temperature, maxTokens)
	if err != nil {
		r.logger.Warn("completion call failed",
			zap.String("agent", def.Slug),
			zap.String("session_id", in.SessionID.String()),
			zap.Error(err))
		return r.fail(def, in, err)
	}

	ex := Extract(text)

	return domain.AgentOutput{
		AgentSlug: def.Slug,
		SessionID: in.SessionID,
		Success:   true,
		OutputData: map[string]any{
			"summary":          summarize(qi.Query),
			"analysis":         text,
			"key_findings":     ex.KeyFindings,
			"recommendations":  ex.Recommendations,
			"methodologies":    ex.Methodologies,
			"confidence_score": ConfidenceScore(qi),
			"detail_level":     qi.DetailLevel,
		},
		TokensUsed: r.tokens.Count(prompt) + r.tokens.Count(text),
	}
}

func (r *Runtime) fail(def *domain.AgentDefinition, in domain.AgentInput, err error) domain.AgentOutput {
	return domain.AgentOutput{
		AgentSlug: def.Slug,
		SessionID: in.SessionID,
		Success:   false,
		Error:     err.Error(),
	}
}

func buildPrompt(def *domain.AgentDefinition, qi QueryInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Domain: %s\n", def.Description)
	fmt.Fprintf(&sb, "Query: %s\n", qi.Query)
	fmt.Fprintf(&sb, "Detail Level: %s\n", qi.DetailLevel)
	fmt.Fprintf(&sb, "Include Examples: %t\n", qi.IncludeExamples)

	if qi.Context != "" {
		fmt.Fprintf(&sb, "Additional Context: %s\n", qi.Context)
	}
	if qi.SpecificFocus != "" {
		fmt.Fprintf(&sb, "Specific Focus: %s\n", qi.SpecificFocus)
	}

	sb.WriteString(`
Please provide:
1. A clear summary of the response
2. Detailed analysis based on the requested detail level
3. Key findings and insights
4. Practical recommendations
5. The methodologies your analysis relies on

Ensure the response is technically accurate and practically useful.
`)

	return sb.String()
}

func summarize(query string) string {
	const maxLen = 100
	if len(query) > maxLen {
		// Truncate on a rune boundary so multi-byte queries stay valid UTF-8.
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(query[cut]) {
			cut--
		}
		query = query[:cut]
	}
	return "Analysis completed for: " + query
}
