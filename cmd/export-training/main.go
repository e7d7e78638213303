// Package main provides the entry point for the training dataset exporter.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/config"
	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/logger"
	"github.com/Gill87/bucket-props/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	output := flag.String("output", "", "output CSV path (overrides config)")
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)

	outputPath := cfg.Training.OutputPath
	if *output != "" {
		outputPath = *output
	}
	if outputPath == "" {
		log.Fatalf("No training output path configured")
	}

	httpClient := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
		Timeout:      cfg.StatsAPITimeout(),
		MaxRetries:   cfg.StatsAPI.MaxRetries,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 10 * time.Second,
		RateLimit:    cfg.StatsAPI.RateLimitPerSecond,
	}, appLog)
	defer httpClient.Close()

	statsClient := datasource.NewStatsAPIClient(httpClient, cfg.StatsAPI.BaseURL, cfg.StatsAPI.APIKey, appLog)

	exporter := service.NewTrainingExportService(
		statsClient,
		cfg.Training.Seasons,
		cfg.Training.SampleSize,
		cfg.TrainingPace(),
		appLog,
	)

	f, err := os.Create(outputPath)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create output file")
	}
	defer f.Close()

	summary, err := exporter.Export(context.Background(), f)
	if err != nil {
		appLog.WithError(err).Fatal("Training export failed")
	}

	appLog.WithFields(logrus.Fields{
		"path":            outputPath,
		"players_sampled": summary.PlayersSampled,
		"players_written": summary.PlayersWritten,
		"rows":            summary.Rows,
		"fetch_errors":    summary.FetchErrors,
		"duration":        summary.Duration.Round(time.Second).String(),
	}).Info("Training dataset exported")
}
