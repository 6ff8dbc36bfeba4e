package api

import (
	"context"
	"testing"

	"github.com/logoslabs/logos/internal/llm"
	"go.uber.org/zap"
)

func TestNewCompletionClient_FallsBackToMock(t *testing.T) {
	logger := zap.NewNop()

	// Missing key and unknown provider both degrade to the mock
	// instead of wiring a nil client into the runtime.
	for _, tc := range []struct{ provider, key string }{
		{"anthropic", ""},
		{"openai", ""},
		{"not-a-provider", "some-key"},
	} {
		c := newCompletionClient(tc.provider, tc.key, logger)
		if c == nil {
			t.Fatalf("provider %q: expected a usable client, got nil", tc.provider)
		}
		text, err := c.Complete(context.Background(), "prompt", "system", 0.7, 100)
		if err != nil {
			t.Fatalf("provider %q: fallback client errored: %v", tc.provider, err)
		}
		if text == "" {
			t.Fatalf("provider %q: fallback client returned empty completion", tc.provider)
		}
	}
}

func TestNewEmbeddingClient_FallsBackToMock(t *testing.T) {
	logger := zap.NewNop()

	for _, tc := range []struct{ provider, key string }{
		{"openai", ""},
		{"not-a-provider", "some-key"},
	} {
		c := newEmbeddingClient(tc.provider, tc.key, logger)
		if c == nil {
			t.Fatalf("provider %q: expected a usable client, got nil", tc.provider)
		}
		vec, err := c.Embed(context.Background(), "catalog search")
		if err != nil {
			t.Fatalf("provider %q: fallback client errored: %v", tc.provider, err)
		}
		if len(vec) == 0 {
			t.Fatalf("provider %q: fallback client returned empty embedding", tc.provider)
		}
	}
}

func TestNewCompletionClient_KeepsConfiguredProvider(t *testing.T) {
	c := newCompletionClient("anthropic", "sk-test", zap.NewNop())
	if c == nil {
		t.Fatal("expected configured client")
	}
	if _, ok := c.(*llm.MockClient); ok {
		t.Fatal("valid configuration must not fall back to mock")
	}
}
