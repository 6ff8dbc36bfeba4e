package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/logoslabs/logos/internal/agent"
	"github.com/logoslabs/logos/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrAgentNotFound     = errors.New("agent not found")
	ErrAgentNotAvailable = errors.New("agent is not available for execution")
)

var timeNow = time.Now

// ExecutionService orchestrates one agent invocation: resolve the
// definition, charge the wallet per use, run the agent, record usage,
// and refund the charge when execution failed. The runtime call itself
// has no side effects beyond the single provider call.
type ExecutionService struct {
	registry *agent.Registry
	runtime  *agent.Runtime
	wallets  *WalletService
	usage    domain.UsageStore
	logger   *zap.Logger
}

func NewExecutionService(reg *agent.Registry, rt *agent.Runtime, ws *WalletService, us domain.UsageStore, logger *zap.Logger) *ExecutionService {
	return &ExecutionService{
		registry: reg,
		runtime:  rt,
		wallets:  ws,
		usage:    us,
		logger:   logger,
	}
}

func (s *ExecutionService) Execute(ctx context.Context, slug string, tenantID, userID uuid.UUID, in domain.AgentInput) (domain.AgentOutput, error) {
	def, err := s.registry.Get(slug)
	if err != nil {
		return domain.AgentOutput{}, ErrAgentNotFound
	}
	if def.Status != domain.AgentActive {
		return domain.AgentOutput{}, ErrAgentNotAvailable
	}

	if in.SessionID == uuid.Nil {
		in.SessionID = uuid.New()
	}

	var chargeTx *domain.WalletTransaction
	if def.PricePerUseCents > 0 {
		chargeTx, err = s.wallets.ChargeUsage(ctx, userID, def.PricePerUseCents, def.Slug, in.SessionID)
		if err != nil {
			return domain.AgentOutput{}, err
		}
	}

	out := s.runtime.Execute(ctx, def, in)

	if !out.Success && chargeTx != nil {
		if _, err := s.wallets.Refund(ctx, chargeTx.ID, "execution failed: "+def.Slug); err != nil {
			s.logger.Error("usage refund failed",
				zap.String("agent", def.Slug),
				zap.String("tx_id", chargeTx.ID.String()),
				zap.Error(err))
		}
	}

	charged := int64(0)
	if out.Success && chargeTx != nil {
		charged = chargeTx.AmountCents
	}
	usage := &domain.AgentUsage{
		TenantID:     tenantID,
		UserID:       userID,
		AgentSlug:    def.Slug,
		SessionID:    in.SessionID,
		Success:      out.Success,
		TokensUsed:   out.TokensUsed,
		ChargeCents:  charged,
		ErrorMessage: out.Error,
	}
	if err := s.usage.Record(ctx, usage); err != nil {
		s.logger.Error("usage record failed",
			zap.String("agent", def.Slug),
			zap.String("session_id", in.SessionID.String()),
			zap.Error(err))
	}

	return out, nil
}

func (s *ExecutionService) SessionHistory(ctx context.Context, sessionID, tenantID uuid.UUID) ([]domain.AgentUsage, error) {
	return s.usage.ListBySession(ctx, sessionID, tenantID)
}
