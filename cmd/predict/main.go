// Package main provides the entry point for the prediction pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/config"
	"github.com/Gill87/bucket-props/internal/confidence"
	"github.com/Gill87/bucket-props/internal/database"
	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/gamelog"
	"github.com/Gill87/bucket-props/internal/logger"
	"github.com/Gill87/bucket-props/internal/metrics"
	"github.com/Gill87/bucket-props/internal/pipeline"
	"github.com/Gill87/bucket-props/internal/predictor"
	"github.com/Gill87/bucket-props/internal/repository"
	"github.com/Gill87/bucket-props/internal/roster"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"season":      cfg.StatsAPI.Season,
	}).Info("Bucket Props prediction run starting")

	metrics.InitRegistry()
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg, appLog)
	}

	ctx := context.Background()

	statsHTTP := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
		Timeout:      cfg.StatsAPITimeout(),
		MaxRetries:   cfg.StatsAPI.MaxRetries,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 10 * time.Second,
		RateLimit:    cfg.StatsAPI.RateLimitPerSecond,
	}, appLog)
	defer statsHTTP.Close()

	statsClient := datasource.NewStatsAPIClient(statsHTTP, cfg.StatsAPI.BaseURL, cfg.StatsAPI.APIKey, appLog)

	feedHTTP := datasource.NewRateLimitedHTTPClient(datasource.DefaultHTTPClientConfig(), appLog)
	defer feedHTTP.Close()

	propFeed := datasource.NewPropFeedClient(
		feedHTTP, cfg.PropFeed.BaseURL, cfg.PropFeed.LeagueID, cfg.PropFeed.PerPage,
		cfg.PropFeed.Enabled, appLog,
	)

	directory, err := roster.Build(ctx, statsClient, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to build player directory")
	}
	metrics.PlayerDirectorySize.Set(float64(directory.Size()))

	store, err := gamelog.NewCSVStore(cfg.StatsAPI.CacheDir, statsClient, cfg.StatsAPI.Season, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to open game log cache")
	}
	history := gamelog.NewCachedProvider(store, cfg.CacheTTL())

	regressor := buildRegressor(cfg, appLog)

	metadata := predictor.LoadMetadata(cfg.Model.MetadataPath, appLog)
	if !metadata.HasMAE() {
		logger.NewPickLogger(appLog).LogDegradedMode(cfg.Model.MetadataPath)
	}

	scorer := confidence.NewEngine(confidence.Config{
		Policy:  confidence.Policy(cfg.Confidence.Policy),
		Ceiling: cfg.Confidence.Ceiling,
	})

	orch := pipeline.NewOrchestrator(pipeline.Config{
		Props:         propFeed,
		Directory:     directory,
		History:       history,
		Regressor:     regressor,
		Scorer:        scorer,
		Metadata:      metadata,
		Logger:        appLog,
		Pace:          cfg.Pace(),
		MinConfidence: cfg.Pipeline.MinimumConfidence,
	})

	report, err := orch.Run(ctx)
	if err != nil {
		appLog.WithError(err).Fatal("Prediction run failed")
	}

	if err := report.WriteJSON(cfg.Pipeline.OutputPath); err != nil {
		appLog.WithError(err).Fatal("Failed to write report")
	}
	appLog.WithFields(logrus.Fields{
		"path":  cfg.Pipeline.OutputPath,
		"picks": report.Len(),
	}).Info("Report written")

	if cfg.Database.Enabled {
		persistReport(ctx, cfg, report, appLog)
	}
}

// buildRegressor constructs the configured backend. A regressor that cannot
// be loaded is fatal: there is no meaningful run without a predictor.
func buildRegressor(cfg *config.Config, appLog *logrus.Logger) predictor.Regressor {
	switch cfg.Model.Backend {
	case "http":
		r := predictor.NewHTTPRegressor(cfg.Model.ServiceURL, time.Duration(cfg.Model.TimeoutSeconds)*time.Second, appLog)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.HealthCheck(ctx); err != nil {
			appLog.WithError(err).Warn("Model service health check failed; predictions may be skipped")
		}
		return r
	default:
		r, err := predictor.LoadArtifact(cfg.Model.ArtifactPath, appLog)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to load regressor artifact")
		}
		return r
	}
}

func persistReport(ctx context.Context, cfg *config.Config, report *pipeline.Report, appLog *logrus.Logger) {
	db, err := database.Initialize(ctx, &cfg.Database, appLog)
	if err != nil {
		appLog.WithError(err).Error("Failed to connect to database; report not persisted")
		return
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Error("Failed to initialize repositories")
		return
	}

	if err := report.Persist(ctx, repos.Prediction); err != nil {
		appLog.WithError(err).Error("Failed to persist report")
		return
	}
	appLog.Info("Report persisted to database")
}

func serveMetrics(cfg *config.Config, appLog *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	appLog.WithField("addr", addr).Info("Metrics endpoint listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		appLog.WithError(err).Warn("Metrics endpoint stopped")
	}
}
