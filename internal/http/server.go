package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"spendwise/internal/cache"
	"spendwise/internal/log"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/services"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// CacheStats exposes cache counters on /metrics.
type CacheStats interface {
	Stats() cache.Stats
}

// Deps wires the server to the application services.
type Deps struct {
	Accounts *services.AccountService
	Ledger   *services.LedgerService
	Reports  *services.ReportService
	Admin    *services.AdminService
	Health   HealthChecker
	// TrendCache is optional.
	TrendCache CacheStats
}

// Config holds the HTTP-facing knobs.
type Config struct {
	RateLimitPerMinute int
	AllowedOrigin      string
}

type Server struct {
	http.Server
	accounts *services.AccountService
	ledger   *services.LedgerService
	reports  *services.ReportService
	admin    *services.AdminService
	health   HealthChecker
	trends   CacheStats
	logger   *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	startedAt        time.Time

	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps, cfg Config, logger *log.Logger) *Server {
	logger = logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		accounts:         deps.Accounts,
		ledger:           deps.Ledger,
		reports:          deps.Reports,
		admin:            deps.Admin,
		health:           deps.Health,
		trends:           deps.TrendCache,
		logger:           logger,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		startedAt:        time.Now(),
	}

	headers := security.DefaultHeadersConfig()
	headers.AllowedOrigin = cfg.AllowedOrigin
	s.Handler = s.routes(security.NewHeadersMiddleware(headers))
	return s
}

func (s *Server) routes(headers *security.HeadersMiddleware) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.traceMiddleware.Middleware)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(trace.GetRequestIDFromRequest))
	r.Use(headers.Middleware)
	r.Use(s.securityDetector.Middleware)
	r.Use(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/forgot-password", s.handleForgotPassword)
		r.Post("/auth/reset-password", s.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)

			r.Get("/dashboard", s.handleDashboard)
			r.Get("/analytics/monthly", s.handleMonthlyTrend)
			r.Get("/budget-analysis", s.handleBudgetAnalysis)
			r.Get("/export/{format}", s.handleExport)

			r.Get("/expenses", s.handleListExpenses)
			r.Post("/expenses", s.handleCreateExpense)
			r.Delete("/expenses/{id}", s.handleDeleteExpense)

			r.Get("/income", s.handleListIncomes)
			r.Post("/income", s.handleCreateIncome)
			r.Delete("/income/{id}", s.handleDeleteIncome)

			r.Get("/budget", s.handleListBudgets)
			r.Post("/budget", s.handleSetBudget)

			r.Get("/recurring", s.handleListRecurring)
			r.Post("/recurring", s.handleCreateRecurring)
			r.Delete("/recurring/{id}", s.handleDeleteRecurring)

			r.Get("/emergency-fund", s.handleGetFund)
			r.Put("/emergency-fund", s.handleUpdateFund)

			r.Put("/user/profile", s.handleUpdateProfile)
			r.Put("/user/password", s.handleChangePassword)
			r.Post("/feedback", s.handleFeedback)

			r.Route("/admin", func(r chi.Router) {
				r.Use(log.ComponentMiddleware(log.ComponentAdmin))
				r.Get("/stats", s.handleAdminStats)
				r.Get("/users", s.handleAdminUsers)
				r.Get("/feedback", s.handleAdminFeedback)
			})
		})
	})
	return r
}

// Shutdown gracefully shuts down the server and its background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
