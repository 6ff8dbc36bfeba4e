package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/logoslabs/logos/internal/agent"
	"github.com/logoslabs/logos/internal/domain"
	"go.uber.org/zap"
)

type countingClient struct {
	calls int
	text  string
	err   error
}

func (c *countingClient) Complete(ctx context.Context, prompt, systemPrompt string, temperature float64, maxTokens int) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.text, nil
}

type mockUsageStore struct {
	records []*domain.AgentUsage
}

func (m *mockUsageStore) Record(ctx context.Context, u *domain.AgentUsage) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.records = append(m.records, u)
	return nil
}

func (m *mockUsageStore) ListBySession(ctx context.Context, sessionID uuid.UUID, tenantID uuid.UUID) ([]domain.AgentUsage, error) {
	var out []domain.AgentUsage
	for _, u := range m.records {
		if u.SessionID == sessionID && u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUsageStore) CountByAgent(ctx context.Context, agentSlug string, tenantID uuid.UUID) (int, error) {
	n := 0
	for _, u := range m.records {
		if u.AgentSlug == agentSlug && u.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

const executionCompletion = `Analysis of the market follows.

Key Findings:
- The sector is consolidating around two dominant platforms
- Margins compress as switching costs fall

Recommendations:
- Invest in retention before acquisition

Methodology: comparative market analysis.
`

func setupExecutionTest(t *testing.T, client domain.CompletionClient) (*ExecutionService, *WalletService, *mockUsageStore, *domain.AgentDefinition) {
	t.Helper()

	reg, err := agent.NewRegistry()
	if err != nil {
		t.Fatalf("registry load failed: %v", err)
	}
	def := &domain.AgentDefinition{
		Slug:             "test-consulting",
		Name:             "Test Consulting Agent",
		Description:      "consulting analysis for tests",
		Category:         "business",
		SystemPrompt:     "You are a consultant.",
		PricePerUseCents: 250,
		Status:           domain.AgentActive,
	}
	if err := reg.Register(def); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	wallets, _ := setupWalletTest()
	usage := &mockUsageStore{}
	rt := agent.NewRuntime(client, zap.NewNop())
	svc := NewExecutionService(reg, rt, wallets, usage, zap.NewNop())
	return svc, wallets, usage, def
}

func TestExecutionService_Success_ChargesAndRecords(t *testing.T) {
	client := &countingClient{text: executionCompletion}
	svc, wallets, usage, def := setupExecutionTest(t, client)
	ctx := context.Background()

	tenantID := uuid.New()
	userID := uuid.New()
	if _, err := wallets.Deposit(ctx, userID, 1000, "", "", ""); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	out, err := svc.Execute(ctx, def.Slug, tenantID, userID, domain.AgentInput{
		InputData: map[string]any{"query": "Should we expand into Europe?"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success, got error %q", out.Error)
	}
	if client.calls != 1 {
		t.Fatalf("expected exactly 1 provider call, got %d", client.calls)
	}

	w, _ := wallets.Get(ctx, userID)
	if w.BalanceCents != 1000-def.PricePerUseCents {
		t.Fatalf("expected balance %d, got %d", 1000-def.PricePerUseCents, w.BalanceCents)
	}

	if len(usage.records) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(usage.records))
	}
	rec := usage.records[0]
	if !rec.Success || rec.ChargeCents != def.PricePerUseCents || rec.TokensUsed == 0 {
		t.Fatalf("unexpected usage record: %+v", rec)
	}
}

func TestExecutionService_FailureRefundsCharge(t *testing.T) {
	client := &countingClient{err: errors.New("provider unavailable")}
	svc, wallets, usage, def := setupExecutionTest(t, client)
	ctx := context.Background()

	userID := uuid.New()
	if _, err := wallets.Deposit(ctx, userID, 1000, "", "", ""); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	out, err := svc.Execute(ctx, def.Slug, uuid.New(), userID, domain.AgentInput{
		InputData: map[string]any{"query": "anything"},
	})
	if err != nil {
		t.Fatalf("expected no transport error, got %v", err)
	}
	if out.Success {
		t.Fatal("expected failed output")
	}
	if out.Error == "" {
		t.Fatal("failed output must carry a non-empty error")
	}

	w, _ := wallets.Get(ctx, userID)
	if w.BalanceCents != 1000 {
		t.Fatalf("failed execution must be refunded, balance %d", w.BalanceCents)
	}

	if len(usage.records) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(usage.records))
	}
	if usage.records[0].ChargeCents != 0 {
		t.Fatalf("refunded execution must record zero charge, got %d", usage.records[0].ChargeCents)
	}
}

func TestExecutionService_InsufficientFundsBlocksExecution(t *testing.T) {
	client := &countingClient{text: executionCompletion}
	svc, _, usage, def := setupExecutionTest(t, client)

	_, err := svc.Execute(context.Background(), def.Slug, uuid.New(), uuid.New(), domain.AgentInput{
		InputData: map[string]any{"query": "anything"},
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("no provider call expected without funds, got %d", client.calls)
	}
	if len(usage.records) != 0 {
		t.Fatalf("no usage record expected, got %d", len(usage.records))
	}
}

func TestExecutionService_UnknownAgent(t *testing.T) {
	svc, _, _, _ := setupExecutionTest(t, &countingClient{})

	_, err := svc.Execute(context.Background(), "no-such-agent", uuid.New(), uuid.New(), domain.AgentInput{})
	if err != ErrAgentNotFound {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestExecutionService_DeprecatedAgentRejected(t *testing.T) {
	client := &countingClient{text: executionCompletion}
	svc, _, _, _ := setupExecutionTest(t, client)

	// blockchain-consulting ships deprecated in the catalog.
	_, err := svc.Execute(context.Background(), "blockchain-consulting", uuid.New(), uuid.New(), domain.AgentInput{
		InputData: map[string]any{"query": "anything"},
	})
	if err != ErrAgentNotAvailable {
		t.Fatalf("expected ErrAgentNotAvailable, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("no provider call expected, got %d", client.calls)
	}
}

func TestExecutionService_SessionAssignedWhenMissing(t *testing.T) {
	client := &countingClient{text: executionCompletion}
	svc, wallets, _, def := setupExecutionTest(t, client)
	ctx := context.Background()

	userID := uuid.New()
	if _, err := wallets.Deposit(ctx, userID, 1000, "", "", ""); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	out, err := svc.Execute(ctx, def.Slug, uuid.New(), userID, domain.AgentInput{
		InputData: map[string]any{"query": "anything"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.SessionID == uuid.Nil {
		t.Fatal("expected generated session id")
	}
}
