package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dockergen/internal/capabilities"
	"dockergen/internal/config"
	"dockergen/internal/domain/repositories"
	"dockergen/internal/handler"
	"dockergen/internal/metrics"
	"dockergen/internal/middleware"
	"dockergen/internal/repository/memory"
	"dockergen/internal/repository/postgres"
	"dockergen/internal/service/generation"
	"dockergen/internal/service/structure"
	"dockergen/internal/tree"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"default_provider", cfg.DefaultProvider,
		"id_strategy", cfg.IDStrategy,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load capabilities: %v", err)
	}

	// Artifact storage: postgres when configured, in-memory otherwise
	var artifacts repositories.ArtifactRepository
	var db handler.Pinger
	storage := "memory"
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to prepare schema: %v", err)
		}

		artifacts = postgres.NewArtifactRepository(&postgres.RepositoryConfig{
			DB:     pool,
			Tables: tables,
			Logger: logger,
		})
		db = pool
		storage = "postgres"
		logger.Info("database connected", "table_prefix", cfg.TablePrefix)
	} else {
		artifacts = memory.NewArtifactRepository()
		logger.Info("using in-memory artifact storage")
	}

	// Services
	sessions := structure.NewSessionStore(cfg.SessionTTL, cfg.HistoryLimit, func() tree.IDAllocator {
		return tree.NewAllocator(cfg.IDStrategy)
	}).WithMaxSessions(cfg.MaxSessions)
	structureService := structure.NewService(sessions, logger)

	providerFactory := generation.NewProviderFactory(cfg)
	providerRegistry := generation.NewProviderRegistry(providerFactory)
	generationService := generation.NewService(
		providerRegistry,
		catalog,
		structureService,
		artifacts,
		generation.OptionsFromConfig(cfg),
		logger,
	)

	if !providerFactory.Configured(cfg.DefaultProvider) {
		logger.Warn("default provider has no credentials; generation requests without an explicit provider will fail",
			"provider", cfg.DefaultProvider,
		)
	}

	// Routes
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, &handler.Handlers{
		Structure:  handler.NewStructureHandler(structureService, logger),
		Generation: handler.NewGenerationHandler(generationService, logger),
		Catalog:    handler.NewCatalogHandler(catalog, providerFactory, cfg.DefaultProvider),
		Health:     handler.NewHealthHandler(storage, db, sessions.Len),
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Middleware chain: session -> recovery -> metrics -> mux.
	// Metrics sits next to the mux so it sees the request carrying r.Pattern.
	var h http.Handler = metrics.Middleware(mux)
	h = middleware.Recovery(logger)(h)
	h = middleware.Session(cfg.SessionTTL, cfg.Environment == "prod")(h)

	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", middleware.SessionHeader},
		ExposedHeaders:   []string{middleware.SessionHeader, "Content-Disposition"},
		AllowCredentials: true,
	})
	h = c.Handler(h)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 15 * time.Second,
		// Must outlast the provider timeout
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
