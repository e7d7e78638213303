// Package main provides the entry point for the game log cache refresher.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Gill87/bucket-props/internal/config"
	"github.com/Gill87/bucket-props/internal/database"
	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/gamelog"
	"github.com/Gill87/bucket-props/internal/health"
	"github.com/Gill87/bucket-props/internal/logger"
	"github.com/Gill87/bucket-props/internal/metrics"
	"github.com/Gill87/bucket-props/internal/repository"
	"github.com/Gill87/bucket-props/internal/roster"
	"github.com/Gill87/bucket-props/internal/scheduler"
	"github.com/Gill87/bucket-props/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

var (
	configFile string
	daemonMode bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVarP(&daemonMode, "daemon", "d", false, "Run on the configured cron schedule instead of once")
}

var rootCmd = &cobra.Command{
	Use:   "cache-update",
	Short: "Refresh cached player game logs",
	Long:  `Re-fetches game logs for every player already present in the cache and merges in newly played games.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		refreshSvc, closeFn, err := buildRefreshService(cfg, appLog)
		if err != nil {
			return err
		}
		defer closeFn()

		if daemonMode {
			return runDaemon(cfg, refreshSvc, appLog)
		}
		return runOnce(cfg, refreshSvc, appLog)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func buildRefreshService(cfg *config.Config, appLog *logrus.Logger) (*service.CacheUpdateService, func(), error) {
	httpClient := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
		Timeout:      cfg.StatsAPITimeout(),
		MaxRetries:   cfg.StatsAPI.MaxRetries,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 10 * time.Second,
		RateLimit:    cfg.StatsAPI.RateLimitPerSecond,
	}, appLog)

	statsClient := datasource.NewStatsAPIClient(httpClient, cfg.StatsAPI.BaseURL, cfg.StatsAPI.APIKey, appLog)

	directory, err := roster.Build(context.Background(), statsClient, appLog)
	if err != nil {
		_ = httpClient.Close()
		return nil, nil, fmt.Errorf("failed to build player directory: %w", err)
	}

	store, err := gamelog.NewCSVStore(cfg.StatsAPI.CacheDir, statsClient, cfg.StatsAPI.Season, appLog)
	if err != nil {
		_ = httpClient.Close()
		return nil, nil, fmt.Errorf("failed to open game log cache: %w", err)
	}

	svc := service.NewCacheUpdateService(store, directory, appLog, cfg.RefreshPace())

	closeFn := func() { _ = httpClient.Close() }
	if cfg.Database.Enabled {
		db, err := database.Initialize(context.Background(), &cfg.Database, appLog)
		if err != nil {
			appLog.WithError(err).Warn("Failed to connect to database; caches will not be mirrored")
		} else {
			repos, err := repository.NewRepositories(db)
			if err != nil {
				appLog.WithError(err).Warn("Failed to initialize repositories")
				db.Close()
			} else {
				svc.WithRepository(repos.GameLog)
				closeFn = func() {
					_ = httpClient.Close()
					db.Close()
				}
			}
		}
	}

	return svc, closeFn, nil
}

func runOnce(cfg *config.Config, svc *service.CacheUpdateService, appLog *logrus.Logger) error {
	ctx := context.Background()

	result, err := svc.RefreshAll(ctx)
	if err != nil {
		return fmt.Errorf("cache refresh failed: %w", err)
	}

	metrics.RecordCacheRefresh(result.GamesAdded)
	appLog.WithFields(logrus.Fields{
		"players":     result.TotalPlayers,
		"updated":     result.UpdatedPlayers,
		"games_added": result.GamesAdded,
		"errors":      result.Errors,
	}).Info("Cache refresh complete")
	fmt.Println(result.String())
	return nil
}

func runDaemon(cfg *config.Config, svc *service.CacheUpdateService, appLog *logrus.Logger) error {
	metrics.InitRegistry()
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			appLog.WithField("addr", addr).Info("Metrics endpoint listening")
			if err := http.ListenAndServe(addr, mux); err != nil {
				appLog.WithError(err).Warn("Metrics endpoint stopped")
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthServer := health.NewServer(health.Config{
		ServiceName: "cache-update",
		Version:     Version,
		Port:        fmt.Sprintf("%d", cfg.Refresh.HealthPort),
		Logger:      appLog,
	})
	healthServer.AddCheck("cache_dir", func(ctx context.Context) error {
		_, err := os.Stat(cfg.StatsAPI.CacheDir)
		return err
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	sched := scheduler.NewScheduler(svc, appLog)
	if err := sched.ScheduleRefresh(cfg.Refresh.Schedule); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"schedule": cfg.Refresh.Schedule,
		"next_run": sched.GetNextRun().Format(time.RFC3339),
	}).Info("Cache refresh daemon running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	cancel()
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error stopping scheduler")
	}
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error stopping health server")
	}

	appLog.Info("Cache refresh daemon shut down")
	return nil
}
