package main

import (
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hintlane/clarify-engine/pkg/catalog"
	"github.com/hintlane/clarify-engine/pkg/config"
	"github.com/hintlane/clarify-engine/pkg/handlers"
	"github.com/hintlane/clarify-engine/pkg/mcp"
	"github.com/hintlane/clarify-engine/pkg/mcp/tools"
	"github.com/hintlane/clarify-engine/pkg/models"
	"github.com/hintlane/clarify-engine/pkg/services"
	"github.com/hintlane/clarify-engine/pkg/snapshots"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("catalog_csv", cfg.Catalog.CSVPath),
		zap.String("snapshot_results", cfg.Catalog.SnapshotResultsPath),
		zap.Int("session_ttl_minutes", cfg.Sessions.TTLMinutes),
		zap.Int("session_max_entries", cfg.Sessions.MaxEntries))

	loadDataset := func() (*models.ClarificationDataset, error) {
		return catalog.Compile(cfg.Catalog.CSVPath, cfg.Catalog.SamplesPath)
	}
	loadResults := func() (map[string]models.ReferenceQueryResult, error) {
		return snapshots.LoadResults(cfg.Catalog.SnapshotResultsPath)
	}

	engine, err := services.NewClarifyEngine(loadDataset, loadResults, logger)
	if err != nil {
		logger.Fatal("Failed to load clarification catalog", zap.Error(err))
	}

	if cfg.Catalog.CompiledPath != "" {
		if err := catalog.WriteCompiled(engine.Dataset(), cfg.Catalog.CompiledPath); err != nil {
			logger.Warn("Failed to persist compiled dataset",
				zap.String("path", cfg.Catalog.CompiledPath),
				zap.Error(err))
		}
	}

	sessionTTL := time.Duration(cfg.Sessions.TTLMinutes) * time.Minute
	store := services.NewSessionStore(sessionTTL, cfg.Sessions.MaxEntries, logger)

	clarificationService := services.NewClarificationService(engine, store, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	clarificationsHandler := handlers.NewClarificationsHandler(clarificationService, logger)
	clarificationsHandler.RegisterRoutes(mux)

	mcpServer := mcp.NewServer("clarify-engine", cfg.Version, logger)
	tools.RegisterClarifyTools(mcpServer.MCP(), &tools.ClarifyToolDeps{
		ClarificationService: clarificationService,
		Logger:               logger,
	})

	mcpHandler := handlers.NewMCPHandler(mcpServer, logger)
	mcpHandler.RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting clarify-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newLogger builds a production logger, or a development logger for local runs.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
