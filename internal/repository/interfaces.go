// Package repository provides data access for game logs and prediction reports.
package repository

import (
	"context"

	"github.com/Gill87/bucket-props/internal/models"
)

// GameLogRepository defines data access for player game logs
type GameLogRepository interface {
	UpsertGames(ctx context.Context, playerID string, games []models.GameRecord) (int, error)
	GetByPlayer(ctx context.Context, playerID string) ([]models.GameRecord, error)
}

// PredictionRepository defines data access for prediction reports
type PredictionRepository interface {
	ReplaceReport(ctx context.Context, records []models.PredictionRecord) error
	GetLatest(ctx context.Context) ([]models.PredictionRecord, error)
}
