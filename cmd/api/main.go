// Package main is the entrypoint for the Inkpad API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/cache"
	"github.com/inkpad/inkpad/internal/config"
	"github.com/inkpad/inkpad/internal/handler"
	"github.com/inkpad/inkpad/internal/metrics"
	"github.com/inkpad/inkpad/internal/middleware"
	"github.com/inkpad/inkpad/internal/reaper"
	"github.com/inkpad/inkpad/internal/repository"
	"github.com/inkpad/inkpad/internal/server"
	"github.com/inkpad/inkpad/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Run pending migrations before opening the pool.
	if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error(
			"failed to run migrations",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Services
	recorder := metrics.NewInMemory()
	signer := auth.NewSessionSigner([]byte(cfg.SessionSecret), cfg.SessionTTL)
	authService := service.NewAuthService(repo, signer, logger, recorder)
	noteService := service.NewNoteService(repo, logger)
	shareService := service.NewShareService(
		repo, repo, repo,
		cfg.BaseURL,
		cfg.DefaultShareTTLDays, cfg.MaxShareTTLDays,
		logger, recorder,
	)

	// Expiry reaper runs for the lifetime of the process. Shutdown
	// cancels its context but lets an in-flight sweep finish.
	sweeper := reaper.New(repo, cfg.SweepInterval, logger, recorder)
	reaperCtx, stopReaper := context.WithCancel(ctx)
	reaperDone := make(chan struct{})
	go func() {
		defer close(reaperDone)
		if err := sweeper.Run(reaperCtx); err != nil && err != context.Canceled {
			logger.Error("reaper stopped", "error", err)
		}
	}()

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(authService, logger)
	noteHandler := handler.NewNoteHandler(noteService, logger)
	shareHandler := handler.NewShareHandler(shareService, logger)
	exportHandler := handler.NewExportHandler(noteService, logger)

	r := setupRouter(routerDeps{
		base:    h,
		health:  healthHandler,
		auth:    authHandler,
		notes:   noteHandler,
		shares:  shareHandler,
		export:  exportHandler,
		session: authService,
		cache:   cacheClient,
		cfg:     cfg,
		logger:  logger,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("reaper", func(ctx context.Context) error {
		stopReaper()
		select {
		case <-reaperDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base    *handler.Handler
	health  *handler.HealthHandler
	auth    *handler.AuthHandler
	notes   *handler.NoteHandler
	shares  *handler.ShareHandler
	export  *handler.ExportHandler
	session middleware.SessionVerifier
	cache   *cache.Cache
	cfg     *config.Config
	logger  *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(deps.cfg.IsDevelopment()))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: origins}))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	sessionCfg := middleware.SessionConfig{
		Logger:   deps.logger,
		Verifier: deps.session,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  deps.logger,
		Cache:   deps.cache,
		Enabled: deps.cfg.RateLimitSharedEnabled,
		RPS:     deps.cfg.RateLimitSharedRPS,
		Burst:   deps.cfg.RateLimitSharedBurst,
	}

	// Account routes (no session yet)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", deps.auth.Register)
		r.Post("/login", deps.auth.Login)
	})

	// Session-protected API
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessionCfg))

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", deps.notes.List)
			r.Post("/", deps.notes.Create)
			r.Get("/stats", deps.notes.Stats)
			r.Get("/{id}", deps.notes.Get)
			r.Put("/{id}", deps.notes.Update)
			r.Delete("/{id}", deps.notes.Delete)
			r.Post("/{id}/share", deps.shares.Create)
		})

		r.Route("/shares", func(r chi.Router) {
			r.Get("/", deps.shares.List)
			r.Delete("/{id}", deps.shares.Revoke)
		})

		r.Get("/export/{format}", deps.export.Export)
	})

	// Public share routes. The token in the path is the authorization;
	// a session is accepted but never required, and IP rate limiting
	// slows down anyone probing the token space.
	r.Route("/shared/{token}", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(sessionCfg))
		r.Use(middleware.RateLimitIP(rateLimitCfg))
		r.Get("/", deps.shares.ViewShared)
		r.Put("/", deps.shares.UpdateShared)
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
