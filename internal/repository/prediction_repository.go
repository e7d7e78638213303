package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Gill87/bucket-props/internal/database"
	"github.com/Gill87/bucket-props/internal/models"
)

const errScanPrediction = "failed to scan prediction: %w"

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// ReplaceReport replaces the stored report with the given records in a single
// transaction. The previous report is discarded even when records is empty.
func (r *PostgresPredictionRepository) ReplaceReport(ctx context.Context, records []models.PredictionRecord) error {
	insert := `
		INSERT INTO predictions (id, player, line, predicted_points, pick, probability_over, confidence, game_time, predicted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM predictions"); err != nil {
			return fmt.Errorf("failed to clear previous report: %w", err)
		}

		for _, rec := range records {
			id := rec.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			_, err := tx.Exec(ctx, insert,
				id, rec.Player, rec.Line, rec.PredictedPoints, rec.Pick,
				rec.ProbabilityOver, rec.Confidence, rec.GameTime, rec.PredictedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert prediction: %w", err)
			}
		}
		return nil
	})
}

// GetLatest retrieves the stored report ordered by confidence descending
func (r *PostgresPredictionRepository) GetLatest(ctx context.Context) ([]models.PredictionRecord, error) {
	query := `
		SELECT id, player, line, predicted_points, pick, probability_over, confidence, game_time, predicted_at
		FROM predictions
		ORDER BY confidence DESC, player ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var records []models.PredictionRecord
	for rows.Next() {
		var rec models.PredictionRecord
		if err := rows.Scan(
			&rec.ID, &rec.Player, &rec.Line, &rec.PredictedPoints, &rec.Pick,
			&rec.ProbabilityOver, &rec.Confidence, &rec.GameTime, &rec.PredictedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanPrediction, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	if len(records) == 0 {
		return nil, models.ErrNotFound
	}

	return records, nil
}
