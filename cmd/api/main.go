// Package main is the entrypoint for the Dialbook API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dialbook/dialbook/internal/auth"
	"github.com/dialbook/dialbook/internal/cache"
	"github.com/dialbook/dialbook/internal/config"
	"github.com/dialbook/dialbook/internal/handler"
	"github.com/dialbook/dialbook/internal/middleware"
	"github.com/dialbook/dialbook/internal/repository"
	"github.com/dialbook/dialbook/internal/server"
	"github.com/dialbook/dialbook/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.HasInsecureSecret() && !cfg.IsDevelopment() {
		logger.Warn("JWT_SECRET is the development default; set a real secret",
			"env", cfg.AppEnv,
		)
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

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to initialize token manager", "error", err)
		os.Exit(1)
	}

	// Services
	authService := service.NewAuthService(repo, tokens)
	contactService := service.NewContactService(repo)
	callLogService := service.NewCallLogService(repo)

	// Legacy rows carry the owner as an opaque string reference. Repair
	// runs in the background so startup is never blocked; readiness
	// reports it as pending until it succeeds.
	var repairDone atomic.Bool
	go runOwnerRepair(ctx, logger, func(ctx context.Context) (repository.RepairSummary, error) {
		return repo.RepairOwnerRefs(ctx, logger)
	}, &repairDone, time.Second)

	// Handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient, repairDone.Load)
	authHandler := handler.NewAuthHandler(authService, logger)
	contactHandler := handler.NewContactHandler(contactService, logger)
	callLogHandler := handler.NewCallLogHandler(callLogService, logger)

	r := setupRouter(healthHandler, authHandler, contactHandler, callLogHandler, tokens, cacheClient, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// runOwnerRepair drives the startup owner-reference repair to completion,
// retrying with capped backoff. A database hiccup at boot would otherwise
// leave readiness reporting the pass as pending with no way out.
func runOwnerRepair(
	ctx context.Context,
	logger *slog.Logger,
	repair func(context.Context) (repository.RepairSummary, error),
	done *atomic.Bool,
	backoff time.Duration,
) {
	const maxBackoff = time.Minute

	for {
		summary, err := repair(ctx)
		if err == nil {
			done.Store(true)
			logger.Info("owner reference repair finished",
				"contacts_repaired", summary.ContactsRepaired,
				"contacts_skipped", summary.ContactsSkipped,
				"call_logs_repaired", summary.CallLogsRepaired,
				"call_logs_skipped", summary.CallLogsSkipped,
			)
			return
		}

		logger.Error("owner reference repair failed, will retry",
			"error", err,
			"retry_in", backoff,
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
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

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	contactHandler *handler.ContactHandler,
	callLogHandler *handler.CallLogHandler,
	tokens *auth.TokenManager,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", handler.Hello)

	r.Post("/auth/signup", authHandler.Signup)
	r.Post("/auth/login", authHandler.Login)

	// Everything below requires a session token
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger:   logger,
			Tokens:   tokens,
			Sessions: cacheClient,
		}))

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", contactHandler.List)
			r.Post("/", contactHandler.Create)
			r.Put("/{id}", contactHandler.Update)
			r.Delete("/{id}", contactHandler.Delete)
			r.Post("/{id}/favorite", contactHandler.Favorite)
		})

		r.Route("/calls", func(r chi.Router) {
			r.Get("/", callLogHandler.List)
			r.Post("/", callLogHandler.Record)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

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
