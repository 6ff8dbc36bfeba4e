package service

import (
	"context"
	"sync"
	"time"

	"github.com/logoslabs/logos/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultExpirerInterval = 15 * time.Minute
	pendingMaxAge          = 24 * time.Hour
)

// ExpirerService periodically fails wallet transactions and purchases
// stuck in pending.
type ExpirerService struct {
	wallets   domain.WalletStore
	purchases domain.PurchaseStore
	logger    *zap.Logger

	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewExpirerService(ws domain.WalletStore, ps domain.PurchaseStore, logger *zap.Logger) *ExpirerService {
	return &ExpirerService{
		wallets:   ws,
		purchases: ps,
		logger:    logger,
		interval:  defaultExpirerInterval,
		maxAge:    pendingMaxAge,
		stopCh:    make(chan struct{}),
	}
}

func (s *ExpirerService) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the expirer on a periodic schedule in a background goroutine.
func (s *ExpirerService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("pending expirer started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("pending expirer stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the expirer.
func (s *ExpirerService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *ExpirerService) run(ctx context.Context) {
	cutoff := timeNow().Add(-s.maxAge)

	expired, err := s.wallets.ExpirePendingTransactions(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to expire pending transactions", zap.Error(err))
	} else if expired > 0 {
		s.logger.Info("expired pending transactions", zap.Int64("count", expired))
	}

	failed, err := s.purchases.ExpirePending(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to expire pending purchases", zap.Error(err))
	} else if failed > 0 {
		s.logger.Info("expired pending purchases", zap.Int64("count", failed))
	}
}
