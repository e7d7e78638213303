// Package main provides a status check for the trained points regressor.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Gill87/bucket-props/internal/config"
	"github.com/Gill87/bucket-props/internal/predictor"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "model-status",
	Short: "Check regressor artifact and metadata status",
	Long:  `Displays the trained model's metadata and verifies the configured prediction backend can serve.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		appLog = logrus.New()
		appLog.SetLevel(logrus.WarnLevel)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		displayStatus()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func displayStatus() {
	fmt.Println("\n╔════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                    Points Model Status                         ║")
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Printf("Backend:  %s\n", cfg.Model.Backend)
	checkBackend()
	fmt.Println()
	displayMetadata()
}

func checkBackend() {
	fmt.Print("Status:   ")
	switch cfg.Model.Backend {
	case "http":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r := predictor.NewHTTPRegressor(cfg.Model.ServiceURL, time.Duration(cfg.Model.TimeoutSeconds)*time.Second, appLog)
		if err := r.HealthCheck(ctx); err != nil {
			fmt.Println("UNAVAILABLE")
			fmt.Printf("   Error: %v\n", err)
			return
		}
		fmt.Println("ONLINE")
	default:
		r, err := predictor.LoadArtifact(cfg.Model.ArtifactPath, appLog)
		if err != nil {
			fmt.Println("UNAVAILABLE")
			fmt.Printf("   Error: %v\n", err)
			return
		}
		fmt.Printf("LOADED (%s)\n", r.ModelType())
	}
}

func displayMetadata() {
	meta := predictor.LoadMetadata(cfg.Model.MetadataPath, appLog)
	if meta == nil {
		fmt.Println("Metadata: unavailable (confidence scoring runs degraded)")
		return
	}

	fmt.Println("Metadata:")
	fmt.Printf("   Model type:    %s\n", meta.ModelType)
	if meta.HasMAE() {
		fmt.Printf("   MAE:           %.3f points\n", *meta.MAE)
	} else {
		fmt.Println("   MAE:           missing (confidence scoring runs degraded)")
	}
	fmt.Printf("   Features:      %d\n", len(meta.Features))
	fmt.Printf("   Train seasons: %s\n", strings.Join(meta.TrainSeasons, ", "))
	fmt.Printf("   Train/test:    %d / %d rows\n", meta.TrainSize, meta.TestSize)
	if !meta.TrainedAt.IsZero() {
		fmt.Printf("   Trained at:    %s\n", meta.TrainedAt.Format(time.RFC3339))
	}
}
