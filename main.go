package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/notarial-tech/plantilla-engine/pkg/config"
	"github.com/notarial-tech/plantilla-engine/pkg/database"
	"github.com/notarial-tech/plantilla-engine/pkg/handlers"
	"github.com/notarial-tech/plantilla-engine/pkg/logging"
	"github.com/notarial-tech/plantilla-engine/pkg/repositories"
	"github.com/notarial-tech/plantilla-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync errors are not actionable

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Float64("detection_threshold", cfg.Mapping.DetectionThreshold))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}

	// Repositories
	templateRepo := repositories.NewTemplateRepository(db)
	versionRepo := repositories.NewTemplateVersionRepository(db)
	keyRepo := repositories.NewStandardKeyRepository(db)

	// Services
	versionService := services.NewVersionService(templateRepo, versionRepo, logger)
	catalogService := services.NewCatalogService(keyRepo, logger)
	templateService := services.NewTemplateService(templateRepo, versionService, cfg.Mapping.DetectionThreshold, logger)
	mappingService := services.NewMappingService(versionService, templateService, catalogService, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewTemplateHandler(templateService, logger).RegisterRoutes(mux)
	handlers.NewVersionHandler(versionService, logger).RegisterRoutes(mux)
	handlers.NewMappingHandler(mappingService, logger).RegisterRoutes(mux)
	handlers.NewCatalogHandler(catalogService, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting plantilla-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
