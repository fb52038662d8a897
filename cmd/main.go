package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/duynhne/forum-service/config"
	"github.com/duynhne/forum-service/internal/core"
	"github.com/duynhne/forum-service/internal/core/repository"
	"github.com/duynhne/forum-service/internal/logger"
	logicv1 "github.com/duynhne/forum-service/internal/logic/v1"
	v1 "github.com/duynhne/forum-service/internal/web/v1"
	"github.com/duynhne/forum-service/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	// Initialize Zerolog with LOG_LEVEL from config
	logger.Setup(cfg.Logging.Level)

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Msg("Service starting")

	// Initialize OpenTelemetry tracing
	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		var err error
		tp, err = middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().
				Str("endpoint", cfg.Profiling.Endpoint).
				Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// Initialize database connection pool (pgx) and apply migrations
	pool, err := core.Connect(startupCtx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Database connection pool established")

	if err := core.Migrate(startupCtx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Initialize session store (MongoDB)
	mongoClient, err := core.ConnectMongo(startupCtx, cfg.Session.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to session store")
	}
	log.Info().Str("database", cfg.Session.MongoDatabase).Msg("Session store connected")

	sessionRepo := repository.NewSessionRepository(
		mongoClient.Database(cfg.Session.MongoDatabase).Collection(cfg.Session.Collection),
	)
	if err := sessionRepo.EnsureIndexes(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create session indexes")
	}

	// Wire layers: repository -> logic -> web
	hasher := logicv1.NewArgon2idHasher(logicv1.Argon2Params{
		Memory:      uint32(cfg.Hashing.MemoryKB),
		Iterations:  uint32(cfg.Hashing.Iterations),
		Parallelism: uint8(cfg.Hashing.Parallelism),
		SaltLength:  logicv1.DefaultArgon2Params.SaltLength,
		KeyLength:   logicv1.DefaultArgon2Params.KeyLength,
	})
	authService := logicv1.NewAuthService(repository.NewUserRepository(pool), hasher)
	sessionManager := logicv1.NewSessionManager(sessionRepo, cfg.Session.TTL)
	handler := v1.NewHandler(authService, sessionManager, v1.CookieConfig{
		Name:     cfg.Session.CookieName,
		MaxAge:   int(cfg.Session.TTL.Seconds()),
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	var isShuttingDown atomic.Bool

	// Tracing middleware
	r.Use(middleware.TracingMiddleware())

	// Logging middleware
	r.Use(middleware.LoggingMiddleware())

	// Prometheus middleware
	r.Use(middleware.PrometheusMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness check
	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	handler.RegisterRoutes(r.Group("/api/v1"))

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting forum service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	// Fail readiness first and wait for propagation.
	isShuttingDown.Store(true)
	drainDelay := cfg.GetReadinessDrainDelayDuration()
	if drainDelay > 0 {
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay started")
		time.Sleep(drainDelay)
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay completed")
	}

	// Shutdown context with configurable timeout
	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down server...")

	// 1. Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		log.Info().Msg("HTTP server shutdown complete")
	}

	// 2. Close database connections
	pool.Close()
	log.Info().Msg("Database pool closed")

	// 3. Disconnect session store
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Session store disconnect error")
	} else {
		log.Info().Msg("Session store disconnected")
	}

	// 4. Shutdown tracer
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		} else {
			log.Info().Msg("Tracer shutdown complete")
		}
	}

	log.Info().Msg("Graceful shutdown complete")
}
