package service

import (
	"context"
	"time"

	"github.com/logoslabs/logos/internal/domain"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// LimitsService resets the daily and monthly spending windows on a cron
// schedule. Daily at midnight UTC, monthly on the first.
type LimitsService struct {
	wallets domain.WalletStore
	logger  *zap.Logger
	cron    *cron.Cron
}

func NewLimitsService(ws domain.WalletStore, logger *zap.Logger) *LimitsService {
	return &LimitsService{
		wallets: ws,
		logger:  logger,
		cron:    cron.New(cron.WithLocation(time.UTC)),
	}
}

func (s *LimitsService) Start() error {
	if _, err := s.cron.AddFunc("0 0 * * *", s.resetDaily); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 1 * *", s.resetMonthly); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("spending limit scheduler started")
	return nil
}

func (s *LimitsService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("spending limit scheduler stopped")
}

func (s *LimitsService) resetDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.wallets.ResetDailySpent(ctx)
	if err != nil {
		s.logger.Error("daily spent reset failed", zap.Error(err))
		return
	}
	s.logger.Info("daily spent reset", zap.Int64("wallets", n))
}

func (s *LimitsService) resetMonthly() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.wallets.ResetMonthlySpent(ctx)
	if err != nil {
		s.logger.Error("monthly spent reset failed", zap.Error(err))
		return
	}
	s.logger.Info("monthly spent reset", zap.Int64("wallets", n))
}
