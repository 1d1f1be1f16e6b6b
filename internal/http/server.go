package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Ledger is the application surface the API exposes.
type Ledger interface {
	Now() time.Time
	ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListBudgets(ctx context.Context, month core.Month) ([]core.Budget, error)
	UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	Dashboard(ctx context.Context, at time.Time) (metrics.Dashboard, error)
	Ping(ctx context.Context) error
}

// Options configures NewServer. Zero values disable the optional parts.
type Options struct {
	Addr               string
	StaticDir          string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	Logger             *log.Logger
	// CacheStats reports the dashboard cache for /readyz and /metrics.
	CacheStats         func() cache.Stats
}

// appMetrics counts ledger mutations served by the API.
type appMetrics struct {
	transactionsCreated atomic.Int64
	transactionsUpdated atomic.Int64
	transactionsDeleted atomic.Int64
	budgetsUpserted     atomic.Int64
	startedAt           time.Time
}

type Server struct {
	http.Server
	ledger     Ledger
	logger     *log.Logger
	structured *log.StructuredLogger
	cacheStats func() cache.Stats

	traceMiddleware *trace.Middleware
	rateLimiter     *ratelimit.Limiter
	ipResolver      *security.ClientIPResolver
	appMetrics      *appMetrics

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, ledger Ledger) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		ledger:     ledger,
		logger:     logger,
		structured: log.NewStructuredLogger(logger),
		cacheStats: opts.CacheStats,
		ipResolver: security.NewClientIPResolver(),
		appMetrics: &appMetrics{startedAt: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.ipResolver.ExtractClientIP)
	if opts.RateLimitPerMinute > 0 {
		cfg := ratelimit.DefaultConfig()
		cfg.RequestsPerMinute = opts.RateLimitPerMinute
		s.rateLimiter = ratelimit.NewLimiter(cfg)
	}

	s.Handler = s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(s.traceMiddleware.Middleware)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(trace.RequestIDFromRequest))
	r.Use(security.DefaultHeaderPolicy().Handler)
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(security.CORS(opts.CORSAllowedOrigins))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError().Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(api chi.Router) {
		if s.rateLimiter != nil {
			api.Use(s.rateLimiter.Middleware(s.ipResolver.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					"remote_addr", r.RemoteAddr,
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path)
				TooManyRequestsError().Write(w)
			}))
		}

		api.Get("/categories", s.handleCategories)

		api.Route("/transactions", func(tr chi.Router) {
			tr.Get("/", s.handleListTransactions)
			tr.Post("/", s.handleCreateTransaction)
			tr.Get("/{id}", s.handleGetTransaction)
			tr.Put("/{id}", s.handleUpdateTransaction)
			tr.Delete("/{id}", s.handleDeleteTransaction)
		})

		api.Get("/budgets", s.handleListBudgets)
		api.Post("/budgets", s.handleUpsertBudget)

		api.Get("/dashboard", s.handleDashboard)
		api.Get("/insights", s.handleInsights)
	})

	if opts.StaticDir != "" {
		r.Get("/*", spaHandler(opts.StaticDir))
	}

	return r
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
