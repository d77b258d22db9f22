package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/compliance"
	"github.com/mzhao/ai-invoice-audit/internal/config"
	"github.com/mzhao/ai-invoice-audit/internal/extract"
	"github.com/mzhao/ai-invoice-audit/internal/ocr"
	"github.com/mzhao/ai-invoice-audit/internal/pipeline"
	"github.com/mzhao/ai-invoice-audit/internal/repository"
	"github.com/mzhao/ai-invoice-audit/internal/risk"
	"github.com/mzhao/ai-invoice-audit/internal/server"
	"github.com/mzhao/ai-invoice-audit/internal/validate"
	"github.com/mzhao/ai-invoice-audit/internal/vendors"
	"github.com/mzhao/ai-invoice-audit/internal/vlm"
	"github.com/mzhao/ai-invoice-audit/pkg/database"
	"github.com/mzhao/ai-invoice-audit/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting invoice audit service",
		zap.Int("port", cfg.Server.Port),
		zap.String("model", cfg.OpenAI.Model))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Vendor directory: file-backed, database-backed, or absent.
	var directory vendors.Directory
	switch {
	case cfg.Vendor.UseDatabase:
		directory = vendors.NewSQLiteDirectory(db.DB, logger)
	case cfg.Vendor.DirectoryPath != "":
		dir, err := vendors.Load(cfg.Vendor.DirectoryPath, logger)
		if err != nil {
			logger.Fatal("Failed to load vendor directory", zap.Error(err))
		}
		directory = dir
	default:
		logger.Warn("No vendor directory configured, vendor checks disabled")
	}

	var textExtractor pipeline.TextExtractor
	if cfg.Audit.UseOCR {
		textExtractor = ocr.NewFitzExtractor(logger)
	}

	var analyzer pipeline.RiskAnalyzer
	if cfg.Audit.UseVLM {
		analyzer = vlm.NewAnalyzer(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	}

	auditor := pipeline.NewAuditor(
		textExtractor,
		extract.NewExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger),
		validate.NewLogicalValidator(cfg.Audit.HighUnitPriceThreshold, logger),
		risk.NewEngine(),
		analyzer,
		compliance.NewEngine(),
		logger,
	)

	auditRepo := repository.NewAuditRepository(db.DB, logger)
	handlers := server.NewHandlers(auditor, auditRepo, directory, logger)

	srv := server.New(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}
