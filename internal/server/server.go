/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server wires configuration, storage, providers and the HTTP
// surface into one runnable service.
package server

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/soundlog/internal/ai"
	"github.com/friendsincode/soundlog/internal/api"
	"github.com/friendsincode/soundlog/internal/cache"
	"github.com/friendsincode/soundlog/internal/config"
	"github.com/friendsincode/soundlog/internal/db"
	"github.com/friendsincode/soundlog/internal/eventbus"
	"github.com/friendsincode/soundlog/internal/events"
	"github.com/friendsincode/soundlog/internal/quota"
	"github.com/friendsincode/soundlog/internal/recommend"
	"github.com/friendsincode/soundlog/internal/signals"
	"github.com/friendsincode/soundlog/internal/spotify"
	"github.com/friendsincode/soundlog/internal/taste"
	"github.com/friendsincode/soundlog/internal/telemetry"
	"github.com/friendsincode/soundlog/internal/version"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	db           *gorm.DB
	governor     *quota.Governor
	orchestrator *recommend.Orchestrator
	api          *api.API
	bus          recommend.Publisher
	tracer       *telemetry.TracerProvider
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("soundlog-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	ctx := context.Background()

	tracer, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    "soundlog",
		ServiceVersion: version.Version,
		OTLPEndpoint:   s.cfg.OTLPEndpoint,
		Enabled:        s.cfg.TracingEnabled,
		SampleRate:     s.cfg.TracingSampleRate,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	s.tracer = tracer
	s.DeferClose(func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return tracer.Shutdown(shutdownCtx)
	})

	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(database) })

	signalSource := signals.NewStore(database, s.logger)

	s.governor = quota.NewGovernor(s.cfg.AIMaxRequests, s.cfg.AIWindow)

	var aiClient ai.Client
	if s.cfg.AIEnabled() {
		aiClient = ai.NewGemini(s.cfg.GeminiAPIKey, s.cfg.GeminiModel, "", 30*time.Second)
		s.logger.Info().Str("model", s.cfg.GeminiModel).Msg("AI taste analysis enabled")
	} else {
		s.logger.Info().Msg("no AI credential configured, using heuristic taste analysis")
	}

	catalog := spotify.NewClientFromCredentials(
		s.cfg.SpotifyClientID,
		s.cfg.SpotifyClientSecret,
		s.cfg.SpotifyMarket,
		s.cfg.ProviderTimeout,
		s.logger,
	)

	if s.cfg.NATSURL != "" {
		natsBus, err := eventbus.NewNATSBus(eventbus.NATSConfig{
			URL:           s.cfg.NATSURL,
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			Timeout:       5 * time.Second,
		}, s.logger)
		if err != nil {
			return fmt.Errorf("init nats event bus: %w", err)
		}
		s.bus = natsBus
		s.DeferClose(natsBus.Close)
	} else {
		s.bus = events.NewBus()
	}

	var moodCache *cache.Cache
	if s.cfg.CacheEnabled {
		moodCache, err = cache.New(cache.Config{
			RedisAddr:      s.cfg.RedisAddr,
			RedisPassword:  s.cfg.RedisPassword,
			RedisDB:        s.cfg.RedisDB,
			MoodTTL:        cache.DefaultMoodTTL,
			DisableOnError: true,
		}, s.logger)
		if err != nil {
			return fmt.Errorf("init cache: %w", err)
		}
		s.DeferClose(moodCache.Close)
	}

	analyzer := taste.NewAnalyzer(aiClient, s.governor, newRNG(), s.logger)
	strategies := recommend.NewStrategies(catalog, s.cfg.ProviderTimeout, newRNG(), s.logger)
	composer := recommend.NewComposer(newRNG())

	s.orchestrator = recommend.NewOrchestrator(
		signalSource,
		analyzer,
		strategies,
		composer,
		catalog,
		s.governor,
		s.bus,
		moodCache,
		s.logger,
	)
	s.api = api.New(s.orchestrator, s.logger)

	s.bus.Publish(events.EventHealth, events.Payload{
		"status":  "starting",
		"version": version.Version,
	})

	return nil
}

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.api.Routes(s.router)
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// MetricsHandler serves the Prometheus scrape endpoint, bound on its own
// listener so metrics never ride the public port.
func (s *Server) MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	return mux
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
