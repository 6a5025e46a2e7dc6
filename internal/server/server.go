// Package server exposes the detection service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/straja-ai/rakshak/internal/config"
	"github.com/straja-ai/rakshak/internal/console"
	"github.com/straja-ai/rakshak/internal/detect"
	"github.com/straja-ai/rakshak/internal/ledger"
	"github.com/straja-ai/rakshak/internal/logging"
)

// Service identity reported by GET /.
const (
	Name        = "CyberRakshak AI"
	Version     = "1.0.0"
	Description = "AI-Powered Social Media Scam Detection Platform"
)

var scanEndpoints = []string{"/detect-message", "/scan-url", "/detect-job", "/analytics"}

// Server wraps the HTTP components of rakshak.
type Server struct {
	router    chi.Router
	httpSrv   *http.Server
	cfg       config.ServerConfig
	svc       *detect.Service
	ledger    *ledger.Ledger
	analytics ledger.AnalyticsOptions
	logger    logging.Logger
	now       func() time.Time
}

// New builds the router over svc and led. led must be the ledger svc
// records into for /analytics to reflect the scans served here.
func New(cfg *config.Config, svc *detect.Service, led *ledger.Ledger, logger logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return nil, fmt.Errorf("ledger timezone: %w", err)
	}

	s := &Server{
		cfg:    cfg.Server,
		svc:    svc,
		ledger: led,
		analytics: ledger.AnalyticsOptions{
			RecentLimit: cfg.Ledger.RecentLimit,
			TrendDays:   cfg.Ledger.TrendDays,
			Location:    loc,
		},
		logger: logger,
		now:    time.Now,
	}
	s.router = s.routes()
	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors(s.cfg.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealth)
	r.Get("/robots.txt", handleRobots)
	r.Get("/analytics", s.handleAnalytics)
	r.Get("/model-status", s.handleModelStatus)

	r.Group(func(r chi.Router) {
		r.Use(limitBody(s.cfg.MaxBodyBytes))
		if s.cfg.RateLimit.Enabled {
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimit.RequestsPerSecond), s.cfg.RateLimit.Burst)))
		}
		r.Post("/detect-message", s.handleDetectMessage)
		r.Post("/scan-url", s.handleScanURL)
		r.Post("/detect-job", s.handleDetectJob)
	})

	if s.cfg.Dashboard {
		r.Handle("/dashboard", http.RedirectHandler("/dashboard/", http.StatusMovedPermanently))
		r.Handle("/dashboard/*", console.Handler())
	}
	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("rakshak listening", logging.String("addr", s.httpSrv.Addr))
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
