package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fiscora/internal/backend"
	applog "fiscora/internal/log"
	"fiscora/internal/middleware/ratelimit"
	"fiscora/internal/middleware/security"
	"fiscora/internal/middleware/session"
	"fiscora/internal/middleware/trace"
	"fiscora/internal/services"
)

// Services are the application services the handlers call into.
type Services struct {
	Transactions *services.TransactionService
	Summaries    *services.SummaryService
	Budgets      *services.BudgetService
	Dashboard    *services.DashboardService
	Catalogs     backend.CatalogReader
	// Ready is consulted by /readyz; nil means always ready.
	Ready backend.Pinger
}

// Config holds server settings.
type Config struct {
	Addr string
	// RateLimitPerMinute of 0 disables rate limiting.
	RateLimitPerMinute int
	// TrustedProxies are CIDRs whose forwarding headers are believed.
	TrustedProxies []string
	// RequestTimeout bounds each API request; 0 means no bound.
	RequestTimeout time.Duration
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	svc     Services
	logger  *applog.Logger
	limiter *ratelimit.Limiter
	trace   *trace.Middleware
	now     func() time.Time
}

// NewServer wires the router and middleware. Call Shutdown to stop it.
func NewServer(cfg Config, svc Services) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	clientIP := security.NewClientIP()
	for _, cidr := range cfg.TrustedProxies {
		if err := clientIP.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
	}

	s := &Server{
		svc:    svc,
		logger: logger,
		trace:  trace.NewMiddleware(logger, clientIP.Extract),
		now:    time.Now,
	}
	if cfg.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
	}

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(clientIP, cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(clientIP *security.ClientIP, timeout time.Duration) http.Handler {
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	r := chi.NewRouter()
	r.Use(s.trace.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(headers.Middleware)
	r.Use(middleware.Compress(5, "application/json"))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware(ratelimit.ClientKey(clientIP.Extract)))
		}
		r.Use(session.Require)
		if timeout > 0 {
			r.Use(middleware.Timeout(timeout))
		}

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)

			r.Get("/summary/month", s.handleMonthSummary)
			r.Get("/summary/year", s.handleYearSummary)
			r.Get("/summary/month/type", s.handleMonthByType)
			r.Get("/summary/year/type", s.handleYearByType)

			r.Get("/types/{kind}", s.handleCatalog)

			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleCreateBudget)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetBudget)
				r.Put("/", s.handleUpdateBudget)
				r.Delete("/", s.handleDeleteBudget)
				r.Post("/expenses", s.handleAddBudgetExpense)
				r.Put("/expenses/{expenseID}", s.handleUpdateBudgetExpense)
				r.Delete("/expenses/{expenseID}", s.handleDeleteBudgetExpense)
			})
		})

		r.Get("/dashboard", s.handleDashboard)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no such route").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})
	return r
}

// Metrics reports request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.trace.GetMetrics()
}

// Shutdown stops accepting requests, drains in-flight ones and stops the
// rate limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.Ready.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
			ErrorResponse(http.StatusServiceUnavailable, "backend unavailable").Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}
