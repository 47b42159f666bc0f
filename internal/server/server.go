package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sales-analytics/internal/config"
	"sales-analytics/internal/errors"
	"sales-analytics/internal/handlers"
	"sales-analytics/internal/middleware"
	"sales-analytics/internal/observability"
	"sales-analytics/internal/services"
)

type Server struct {
	router      chi.Router
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
}

func NewServer(reports *services.Reports, limiter *middleware.RateLimiter, security config.SecurityConfig, logger *slog.Logger) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(reports, logger),
	}
	s.setupRoutes(limiter, security)
	return s
}

func (s *Server) setupRoutes(limiter *middleware.RateLimiter, security config.SecurityConfig) {
	s.router.Use(middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(s.logger),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		middleware.CORS(security),
		middleware.TrustedProxy(security),
		middleware.Recovery(s.logger),
	))

	s.router.NotFound(s.handleNotFound)
	s.router.MethodNotAllowed(s.handleMethodNotAllowed)

	// Operational endpoints
	s.router.Get("/health", s.apiHandlers.HandleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Sales reports
	s.router.Route("/api/sales", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter, s.logger))

		r.Get("/timeseries", s.apiHandlers.HandleTimeSeries)
		r.Get("/users", s.apiHandlers.HandleUsers)
		r.Get("/groups", s.apiHandlers.HandleGroups)
		r.Get("/leaderboard", s.apiHandlers.HandleLeaderboard)
		r.Get("/summary", s.apiHandlers.HandleSummary)
		r.Get("/compare", s.apiHandlers.HandleCompare)
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	errors.WriteError(w, s.logger, errors.NotFound("Route not found"), observability.GetRequestID(r.Context()))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	errors.WriteError(w, s.logger, errors.MethodNotAllowed("Method not allowed"), observability.GetRequestID(r.Context()))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
