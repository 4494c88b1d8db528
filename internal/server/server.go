// Package server exposes the engine over HTTP: scores, recommendations,
// backtests and weight optimization, plus a websocket that streams optimizer
// progress and a cron job that re-tunes weights on a schedule.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"lotto-lab/internal/observability"
	"lotto-lab/internal/orchestrator"
)

// ErrBusy is returned when an optimizer run is already in progress.
var ErrBusy = errors.New("optimization already running")

// Config holds server configuration.
type Config struct {
	Port         int
	Orchestrator *orchestrator.Orchestrator
	Log          zerolog.Logger
	// Schedule is the cron expression for automatic re-tuning. Empty disables it.
	Schedule string
}

// Server is the HTTP front of the engine.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	orch      *orchestrator.Orchestrator
	scheduler *Scheduler
	started   time.Time

	// one optimizer run at a time, whichever entry point starts it
	optimizing sync.Mutex
}

// New creates a new Server.
func New(cfg Config) (*Server, error) {
	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		orch:    cfg.Orchestrator,
		started: time.Now(),
	}

	if cfg.Schedule != "" {
		s.scheduler = NewScheduler(cfg.Log)
		if err := s.scheduler.AddJob(cfg.Schedule, &retuneJob{server: s}); err != nil {
			return nil, fmt.Errorf("schedule retune: %w", err)
		}
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		// optimizer and backtest calls can run for minutes
		WriteTimeout: 0,
	}
	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/status", s.handleStatus)
	s.router.Handle("/metrics", observability.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/numbers", func(r chi.Router) {
			r.Get("/top", s.handleTopNumbers)
			r.Get("/probabilities", s.handleProbabilities)
		})
		r.Post("/generate", s.handleGenerate)
		r.Route("/backtest", func(r chi.Router) {
			r.Post("/", s.handleBacktest)
			r.Post("/fixed", s.handleFixedWager)
			r.Post("/verify", s.handleVerifyCache)
		})
		r.Post("/optimize", s.handleOptimize)
		r.Get("/weights/latest", s.handleLatestWeights)
		r.Post("/draws/refresh", s.handleRefresh)
	})

	s.router.Get("/ws/optimize", s.handleOptimizeStream)
}

// Start serves until Shutdown. The retune scheduler runs alongside.
func (s *Server) Start() error {
	if s.scheduler != nil {
		s.scheduler.Start()
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown stops the scheduler and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs each request and records its latency under the
// matched route pattern.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.RecordHTTPRequest(route, r.Method, strconv.Itoa(status), time.Since(start).Seconds())

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// acquire takes the optimizer slot without waiting.
func (s *Server) acquire() (release func(), err error) {
	if !s.optimizing.TryLock() {
		return nil, ErrBusy
	}
	return s.optimizing.Unlock, nil
}
