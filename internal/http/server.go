package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/log"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/services"
)

// Pinger reports database reachability for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheStats exposes summary cache counters for /readyz and /metrics.
type CacheStats interface {
	Stats() cache.Stats
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Logger             *log.Logger
	Pinger             Pinger
	SummaryCache       CacheStats
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	services     *services.Services
	logger       *log.Logger
	events       *log.StructuredLogger
	pinger       Pinger
	summaryCache CacheStats

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics struct {
		uptime    time.Time
		mutations atomic.Int64
	}

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	limits := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limits.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		services:         svc,
		logger:           logger,
		events:           log.NewStructuredLogger(logger),
		pinger:           opts.Pinger,
		summaryCache:     opts.SummaryCache,
		rateLimiter:      ratelimit.NewLimiter(limits),
		securityDetector: security.NewDetector(logger, security.DefaultHeadersConfig()),
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)
	s.appMetrics.uptime = time.Now()

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = log.Middleware(logger, trace.RequestID)(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/income/monthly", s.handleGetIncome)
	mux.HandleFunc("PUT /api/income/monthly", s.handleUpsertIncome)

	mux.HandleFunc("GET /api/budgets", s.handleGetBudgets)
	mux.HandleFunc("PUT /api/budgets", s.handleUpsertBudget)
	mux.HandleFunc("GET /api/budgets/usage", s.handleBudgetUsage)

	mux.HandleFunc("GET /api/goals/monthly", s.handleGetGoal)
	mux.HandleFunc("PUT /api/goals/monthly", s.handleUpsertGoal)
	mux.HandleFunc("POST /api/goals/monthly/savings", s.handleAddSaving)
	mux.HandleFunc("PUT /api/goals/monthly/savings/{id}", s.handleUpdateSaving)
	mux.HandleFunc("DELETE /api/goals/monthly/savings/{id}", s.handleDeleteSaving)

	mux.HandleFunc("GET /api/summary/monthly", s.handleGetSummary)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// Shutdown stops the rate limiter and drains the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
