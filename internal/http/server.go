package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"payoff/internal/auth"
	"payoff/internal/log"
	"payoff/internal/middleware/ratelimit"
	"payoff/internal/middleware/security"
	"payoff/internal/middleware/trace"
	"payoff/internal/services"
	"payoff/internal/storage"
)

// Deps are the collaborators a Server routes requests to.
type Deps struct {
	Auth        *auth.Authenticator
	Users       storage.UserStore
	Entities    *services.EntityService
	Projections *services.ProjectionService
	Logger      *log.Logger

	// RateLimitPerMinute bounds state-changing requests per client.
	RateLimitPerMinute int
}

type Server struct {
	http.Server

	auth        *auth.Authenticator
	users       storage.UserStore
	entities    *services.EntityService
	projections *services.ProjectionService
	logger      *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		auth:        deps.Auth,
		users:       deps.Users,
		entities:    deps.Entities,
		projections: deps.Projections,
		logger:      logger.WithComponent(log.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
		detector: security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)

	mux.HandleFunc("GET /api/snapshot", s.authed(s.handleSnapshot))

	mux.HandleFunc("GET /api/debts", s.authed(s.handleListDebts))
	mux.HandleFunc("POST /api/debts", s.authed(s.handleCreateDebt))
	mux.HandleFunc("DELETE /api/debts/{id}", s.authed(s.handleDeleteDebt))
	mux.HandleFunc("GET /api/incomes", s.authed(s.handleListIncomes))
	mux.HandleFunc("POST /api/incomes", s.authed(s.handleCreateIncome))
	mux.HandleFunc("DELETE /api/incomes/{id}", s.authed(s.handleDeleteIncome))
	mux.HandleFunc("GET /api/expenses", s.authed(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.authed(s.handleCreateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.authed(s.handleDeleteExpense))
	mux.HandleFunc("GET /api/goals", s.authed(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.authed(s.handleCreateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.authed(s.handleDeleteGoal))

	mux.HandleFunc("GET /api/analysis", s.authed(s.handleAnalysis))
	mux.HandleFunc("POST /api/projection", s.authed(s.handleProjection))
	mux.HandleFunc("POST /api/projection/compare", s.authed(s.handleCompare))
	mux.HandleFunc("POST /api/projection/export", s.authed(s.handleExport))

	mux.HandleFunc("GET /api/admin/users", s.authed(s.adminOnly(s.handleListUsers)))

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = s.detector.Middleware(handler)
	handler = log.RequestIDMiddleware(trace.RequestID)(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// authed rejects requests without a valid bearer token and passes the
// caller's principal to next.
func (s *Server) authed(next func(http.ResponseWriter, *http.Request, auth.Principal)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, r, auth.ErrInvalidToken)
			return
		}
		p, err := s.auth.Verify(r.Context(), strings.TrimSpace(raw))
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := log.NewContext(r.Context(), log.FromContext(r.Context()).With(log.FieldOwnerID, p.OwnerID))
		next(w, r.WithContext(ctx), p)
	}
}

func (s *Server) adminOnly(next func(http.ResponseWriter, *http.Request, auth.Principal)) func(http.ResponseWriter, *http.Request, auth.Principal) {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		if !p.IsAdmin {
			writeError(w, r, services.ErrForbidden)
			return
		}
		next(w, r, p)
	}
}

// owner resolves whose data the request acts on.
func (s *Server) owner(r *http.Request, p auth.Principal) (int64, error) {
	requested, err := ownerParam(r)
	if err != nil {
		return 0, err
	}
	return services.ResolveOwner(p, requested)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
}

type healthResponse struct {
	Status    string                    `json:"status"`
	Requests  trace.Metrics             `json:"requests"`
	RateLimit ratelimit.Metrics         `json:"rate_limit"`
	Security  security.DetectionMetrics `json:"security"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	})
}
