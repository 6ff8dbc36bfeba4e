package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logoslabs/logos/internal/agent"
	"github.com/logoslabs/logos/internal/api/handlers"
	mw "github.com/logoslabs/logos/internal/api/middleware"
	"github.com/logoslabs/logos/internal/cache"
	"github.com/logoslabs/logos/internal/config"
	"github.com/logoslabs/logos/internal/domain"
	"github.com/logoslabs/logos/internal/embedding"
	"github.com/logoslabs/logos/internal/llm"
	"github.com/logoslabs/logos/internal/service"
	"github.com/logoslabs/logos/internal/store"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router  *chi.Mux
	Search  *service.SearchService
	Expirer *service.ExpirerService
	Limits  *service.LimitsService

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	// Stores
	tenantStore := store.NewTenantStore(db)
	userStore := store.NewUserStore(db)
	walletStore := store.NewWalletStore(db)
	paymentEventStore := store.NewPaymentEventStore(db)
	itemStore := store.NewItemStore(db)
	categoryStore := store.NewCategoryStore(db)
	purchaseStore := store.NewPurchaseStore(db)
	reviewStore := store.NewReviewStore(db)
	usageStore := store.NewUsageStore(db)
	catalogStore := store.NewCatalogEmbeddingStore(db)
	whitelabelStore := store.NewWhitelabelStore(db)

	// Agent catalog
	registry, err := agent.NewRegistry()
	if err != nil {
		return nil, err
	}
	logger.Info("agent catalog loaded", zap.Int("agents", registry.Len()))

	// External clients via provider factories
	completionClient := newCompletionClient(config.CompletionProvider(), config.CompletionAPIKey(), logger)
	embeddingClient := newEmbeddingClient(config.EmbeddingProvider(), config.EmbeddingAPIKey(), logger)

	wlCache, err := cache.New(config.WhitelabelCacheMB() << 20)
	if err != nil {
		return nil, err
	}

	// Services
	walletSvc := service.NewWalletService(walletStore, userStore, logger)
	userSvc := service.NewUserService(userStore, walletSvc, logger)
	marketplaceSvc := service.NewMarketplaceService(itemStore, categoryStore, purchaseStore, reviewStore, walletSvc, config.PlatformFeeBasisPoints(), logger)
	agentRuntime := agent.NewRuntime(completionClient, logger)
	executionSvc := service.NewExecutionService(registry, agentRuntime, walletSvc, usageStore, logger)
	searchSvc := service.NewSearchService(registry, catalogStore, embeddingClient, logger)
	whitelabelSvc, err := service.NewWhitelabelService(whitelabelStore, wlCache, logger)
	if err != nil {
		return nil, err
	}
	paymentSvc := service.NewPaymentService(paymentEventStore, walletSvc, config.StripeWebhookSecret(), logger)
	expirerSvc := service.NewExpirerService(walletStore, purchaseStore, logger)
	limitsSvc := service.NewLimitsService(walletStore, logger)

	// Handlers
	tenantHandler := handlers.NewTenantHandler(tenantStore)
	userHandler := handlers.NewUserHandler(userSvc)
	walletHandler := handlers.NewWalletHandler(walletSvc)
	agentHandler := handlers.NewAgentHandler(registry, executionSvc, searchSvc)
	marketplaceHandler := handlers.NewMarketplaceHandler(marketplaceSvc)
	whitelabelHandler := handlers.NewWhitelabelHandler(whitelabelSvc)
	webhookHandler := handlers.NewWebhookHandler(paymentSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Search:    searchSvc,
		Expirer:   expirerSvc,
		Limits:    limitsSvc,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics (no auth)
	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	// Tenant creation (no auth, bootstrap endpoint)
	r.Post("/v1/tenants", tenantHandler.Create)

	// Payment webhooks authenticate by signature, not API key.
	r.Post("/v1/webhooks/payments", webhookHandler.HandlePayment)

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(tenantStore))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Get("/{id}", userHandler.GetByID)
		})

		r.Route("/users/{userID}/wallet", func(r chi.Router) {
			r.Get("/", walletHandler.Get)
			r.Post("/deposit", walletHandler.Deposit)
			r.Post("/withdraw", walletHandler.Withdraw)
			r.Get("/transactions", walletHandler.ListTransactions)
		})

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", agentHandler.List)
			r.Get("/search", agentHandler.Search)
			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", agentHandler.Get)
				r.Post("/execute", agentHandler.Execute)
			})
		})
		r.Get("/sessions/{sessionID}/usage", agentHandler.SessionHistory)

		r.Route("/marketplace", func(r chi.Router) {
			r.Get("/categories", marketplaceHandler.ListCategories)
			r.Route("/items", func(r chi.Router) {
				r.Post("/", marketplaceHandler.CreateItem)
				r.Get("/", marketplaceHandler.ListItems)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", marketplaceHandler.GetItem)
					r.Put("/status", marketplaceHandler.UpdateItemStatus)
					r.Post("/purchase", marketplaceHandler.Purchase)
					r.Post("/reviews", marketplaceHandler.CreateReview)
					r.Get("/reviews", marketplaceHandler.ListReviews)
				})
			})
		})

		r.Route("/whitelabel", func(r chi.Router) {
			r.Get("/", whitelabelHandler.Get)
			r.Put("/", whitelabelHandler.Update)
		})
	})

	return app, nil
}

// newCompletionClient falls back to the mock provider when the
// configured one cannot be constructed. A nil client would panic on
// first execution; agents must degrade, not crash, under
// misconfiguration.
func newCompletionClient(provider, apiKey string, logger *zap.Logger) domain.CompletionClient {
	c, err := llm.NewClient(provider, apiKey)
	if err != nil {
		logger.Warn("completion client initialization failed, falling back to mock",
			zap.String("provider", provider), zap.Error(err))
		return llm.NewMockClient()
	}
	return c
}

func newEmbeddingClient(provider, apiKey string, logger *zap.Logger) domain.EmbeddingClient {
	c, err := embedding.NewClient(provider, apiKey)
	if err != nil {
		logger.Warn("embedding client initialization failed, falling back to mock",
			zap.String("provider", provider), zap.Error(err))
		return embedding.NewMockClient()
	}
	return c
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.TenantStore           = (*store.TenantStore)(nil)
	_ domain.UserStore             = (*store.UserStore)(nil)
	_ domain.WalletStore           = (*store.WalletStore)(nil)
	_ domain.PaymentEventStore     = (*store.PaymentEventStore)(nil)
	_ domain.ItemStore             = (*store.ItemStore)(nil)
	_ domain.CategoryStore         = (*store.CategoryStore)(nil)
	_ domain.PurchaseStore         = (*store.PurchaseStore)(nil)
	_ domain.ReviewStore           = (*store.ReviewStore)(nil)
	_ domain.UsageStore            = (*store.UsageStore)(nil)
	_ domain.CatalogEmbeddingStore = (*store.CatalogEmbeddingStore)(nil)
	_ domain.WhitelabelStore       = (*store.WhitelabelStore)(nil)
	_ domain.CompletionClient      = (*llm.AnthropicClient)(nil)
	_ domain.CompletionClient      = (*llm.OpenAIClient)(nil)
	_ domain.CompletionClient      = (*llm.MockClient)(nil)
	_ domain.EmbeddingClient       = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient       = (*embedding.MockClient)(nil)
)
