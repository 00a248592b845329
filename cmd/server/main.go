package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	app "github.com/letterdesk/backend/internal/application/letters"
	"github.com/letterdesk/backend/internal/infrastructure/auth"
	"github.com/letterdesk/backend/internal/infrastructure/cache"
	"github.com/letterdesk/backend/internal/infrastructure/config"
	"github.com/letterdesk/backend/internal/infrastructure/directory"
	"github.com/letterdesk/backend/internal/infrastructure/logger"
	"github.com/letterdesk/backend/internal/infrastructure/recordstore"
	"github.com/letterdesk/backend/internal/infrastructure/storage"
	"github.com/letterdesk/backend/internal/infrastructure/telemetry"
	"github.com/letterdesk/backend/internal/interfaces/http/handler"
	"github.com/letterdesk/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting letter reference service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Connect to the record store database
	db, err := recordstore.OpenPostgres(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	records := recordstore.NewGormStore(db, log)
	if err := records.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate record tables", zap.Error(err))
	}

	// Blob store for letter attachments
	blobs, err := storage.NewS3BlobStore(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration))
	if err != nil {
		log.Fatal("Failed to initialize blob storage", zap.Error(err))
	}

	// Optional Redis-backed sequence guard. Without it allocation stays
	// best-effort within a single process.
	var guard app.SequenceGuard
	if cfg.Letters.GuardEnabled {
		redisGuard, err := cache.NewRedisSequenceGuard(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Letters.GuardTTL)
		if err != nil {
			log.Fatal("Failed to connect to Redis for the sequence guard", zap.Error(err))
		}
		defer func() {
			if err := redisGuard.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		guard = redisGuard
		log.Info("Sequence guard enabled")
	} else {
		log.Warn("Sequence guard disabled, allocation is best-effort across replicas")
	}

	// Application services over the shared snapshot
	collections := app.Collections{
		Companies: cfg.Letters.CompaniesCollection,
		Letters:   cfg.Letters.LettersCollection,
		Access:    cfg.Letters.AccessCollection,
	}
	state := app.NewStateStore()
	loader := app.NewLoader(records, state, collections, log)

	loadCtx, cancelLoad := context.WithTimeout(ctx, 30*time.Second)
	if err := loader.Refresh(loadCtx); err != nil {
		// The service still starts; scoped requests answer NOT_READY until
		// a refresh succeeds.
		log.Error("Initial snapshot load failed", zap.Error(err))
	}
	cancelLoad()

	companyService := app.NewCompanyService(records, state, collections, log)
	letterService := app.NewLetterService(records, blobs, guard, state, loader, collections, cfg.Letters.LibraryRoot, log)
	accessService := app.NewAccessService(records, state, collections, log)
	userDirectory := directory.NewStaticDirectory(cfg.Directory.Users)

	jwtService := auth.NewJWTService(cfg.JWT)

	engine, err := router.BuildEngine(cfg, log, jwtService, router.Handlers{
		System:    handler.NewSystemHandler(state, loader),
		Auth:      handler.NewAuthHandler(jwtService),
		Company:   handler.NewCompanyHandler(companyService),
		Letter:    handler.NewLetterHandler(letterService),
		Access:    handler.NewAccessHandler(accessService),
		Directory: handler.NewDirectoryHandler(userDirectory),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
