package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/logoslabs/logos/internal/domain"
	"go.uber.org/zap"
)

// stubClient counts completion calls so tests can assert the provider
// was (or was not) invoked.
type stubClient struct {
	calls int
	text  string
	err   error
}

func (s *stubClient) Complete(_ context.Context, _, _ string, _ float64, _ int) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

const sampleCompletion = `The market splits into three tiers.

Key finding: supplier concentration is the dominant cost driver.
Finding: switching costs keep churn below two percent.

Recommendations:
- Focus on supplier power
- You should renegotiate the top five contracts this quarter
- Consider dual-sourcing the most concentrated inputs

Methodology: Porter's Five Forces framework was applied.
Method: comparative margin analysis across the peer group.
`

func testDef() *domain.AgentDefinition {
	return &domain.AgentDefinition{
		Slug:         "business-strategy",
		Name:         "Business Strategy Expert",
		Description:  "Business planning and strategy",
		Category:     "business",
		SystemPrompt: "You are an expert business strategist.",
		Temperature:  0.7,
		MaxTokens:    2000,
		Status:       domain.AgentActive,
	}
}

func newTestRuntime(client domain.CompletionClient) *Runtime {
	return NewRuntime(client, zap.NewNop())
}

func TestRuntimeExecute_Success(t *testing.T) {
	client := &stubClient{text: sampleCompletion}
	rt := newTestRuntime(client)

	out := rt.Execute(context.Background(), testDef(), domain.AgentInput{
		SessionID: uuid.New(),
		InputData: map[string]any{"query": "Explain Porter's Five Forces"},
	})

	if !out.Success {
		t.Fatalf("expected success, got error %q", out.Error)
	}
	if out.OutputData == nil {
		t.Fatal("expected output_data to be set")
	}
	if out.Error != "" {
		t.Fatalf("expected empty error on success, got %q", out.Error)
	}
	if client.calls != 1 {
		t.Fatalf("expected exactly 1 provider call, got %d", client.calls)
	}
	if out.TokensUsed <= 0 {
		t.Fatalf("expected positive tokens_used, got %d", out.TokensUsed)
	}
	if out.AgentSlug != "business-strategy" {
		t.Fatalf("unexpected agent slug %q", out.AgentSlug)
	}

	recs, ok := out.OutputData["recommendations"].([]string)
	if !ok {
		t.Fatalf("recommendations has unexpected type %T", out.OutputData["recommendations"])
	}
	found := false
	for _, r := range recs {
		if r == "Focus on supplier power" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected recommendations to contain the supplier power bullet, got %v", recs)
	}
}

func TestRuntimeExecute_TruncationInvariant(t *testing.T) {
	client := &stubClient{text: sampleCompletion}
	rt := newTestRuntime(client)

	out := rt.Execute(context.Background(), testDef(), domain.AgentInput{
		SessionID: uuid.New(),
		InputData: map[string]any{"query": "Analyze the market"},
	})

	findings := out.OutputData["key_findings"].([]string)
	recs := out.OutputData["recommendations"].([]string)
	if len(findings) > maxFindings {
		t.Fatalf("key_findings length %d exceeds %d", len(findings), maxFindings)
	}
	if len(recs) > maxRecommendations {
		t.Fatalf("recommendations length %d exceeds %d", len(recs), maxRecommendations)
	}
}

func TestSummarize_RuneBoundaryTruncation(t *testing.T) {
	long := strings.Repeat("市場分析を実行してください。", 20)

	s := summarize(long)
	if !utf8.ValidString(s) {
		t.Fatalf("summary is not valid UTF-8: %q", s)
	}

	short := "brief query"
	if got := summarize(short); got != "Analysis completed for: "+short {
		t.Fatalf("short query must not be truncated, got %q", got)
	}
}

func TestRuntimeExecute_MissingQuery(t *testing.T) {
	client := &stubClient{text: sampleCompletion}
	rt := newTestRuntime(client)

	out := rt.Execute(context.Background(), testDef(), domain.AgentInput{
		SessionID: uuid.New(),
		InputData: map[string]any{"context": "no query given"},
	})

	if out.Success {
		t.Fatal("expected validation failure")
	}
	if out.Error == "" {
		t.Fatal("expected non-empty error message")
	}
	if out.OutputData != nil {
		t.Fatal("expected output_data to be nil on failure")
	}
	if client.calls != 0 {
		t.Fatalf("validation must fail before any provider call, got %d calls", client.calls)
	}
}

func TestRuntimeExecute_ProviderFailure(t *testing.T) {
	client := &stubClient{err: errors.New("upstream timeout")}
	rt := newTestRuntime(client)

	out := rt.Execute(context.Background(), testDef(), domain.AgentInput{
		SessionID: uuid.New(),
		InputData: map[string]any{"query": "anything"},
	})

	if out.Success {
		t.Fatal("expected failure when the provider errors")
	}
	if out.Error == "" {
		t.Fatal("expected non-empty error string")
	}
	if out.OutputData != nil {
		t.Fatal("expected nil output_data on failure")
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", client.calls)
	}
}

func TestRuntimeExecute_ConfidenceBounds(t *testing.T) {
	client := &stubClient{text: sampleCompletion}
	rt := newTestRuntime(client)

	cases := []map[string]any{
		{"query": "q"},
		{"query": "q", "detail_level": "basic"},
		{"query": "q", "detail_level": "comprehensive"},
		{"query": "q", "detail_level": "expert", "context": "lots of background"},
	}

	for _, input := range cases {
		out := rt.Execute(context.Background(), testDef(), domain.AgentInput{
			SessionID: uuid.New(),
			InputData: input,
		})
		score, ok := out.OutputData["confidence_score"].(float64)
		if !ok {
			t.Fatalf("confidence_score missing for input %v", input)
		}
		if score < 0 || score > 0.95 {
			t.Fatalf("confidence_score %v out of [0, 0.95] for input %v", score, input)
		}
	}
}

func TestRuntimeExecute_ComprehensiveConfidence(t *testing.T) {
	client := &stubClient{text: sampleCompletion}
	rt := newTestRuntime(client)

	out := rt.Execute(context.Background(), testDef(), domain.AgentInput{
		SessionID: uuid.New(),
		InputData: map[string]any{"query": "Explain Porter's Five Forces", "detail_level": "comprehensive"},
	})

	score := out.OutputData["confidence_score"].(float64)
	if score != 0.90 {
		t.Fatalf("expected confidence 0.90 for comprehensive detail, got %v", score)
	}
}

// The provider is non-deterministic, so repeated calls may produce
// different analysis text. Only shape invariants are checked here.
func TestRuntimeExecute_ShapeStableAcrossCalls(t *testing.T) {
	rt := newTestRuntime(&stubClient{text: sampleCompletion})
	rt2 := newTestRuntime(&stubClient{text: "Completely different prose with no bullets at all."})

	input := domain.AgentInput{
		SessionID: uuid.New(),
		InputData: map[string]any{"query": "stability check"},
	}

	for _, r := range []*Runtime{rt, rt2} {
		out := r.Execute(context.Background(), testDef(), input)
		if !out.Success {
			t.Fatalf("expected success, got %q", out.Error)
		}
		for _, key := range []string{"summary", "analysis", "key_findings", "recommendations", "methodologies", "confidence_score"} {
			if _, ok := out.OutputData[key]; !ok {
				t.Fatalf("output_data missing %q", key)
			}
		}
	}
}
