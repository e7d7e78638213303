package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Gill87/bucket-props/internal/database"
	"github.com/Gill87/bucket-props/internal/models"
)

const errScanGameLog = "failed to scan game log: %w"

// PostgresGameLogRepository implements GameLogRepository for PostgreSQL
type PostgresGameLogRepository struct {
	db *database.DB
}

// NewPostgresGameLogRepository creates a new game log repository
func NewPostgresGameLogRepository(db *database.DB) GameLogRepository {
	return &PostgresGameLogRepository{db: db}
}

// UpsertGames inserts the given games for a player, ignoring rows that are
// already present. Returns the number of newly inserted rows.
func (r *PostgresGameLogRepository) UpsertGames(ctx context.Context, playerID string, games []models.GameRecord) (int, error) {
	query := `
		INSERT INTO player_game_logs (player_id, game_id, game_date, matchup, season, pts, min, fga)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (player_id, game_id) DO NOTHING
	`

	added := 0
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, game := range games {
			tag, err := tx.Exec(ctx, query,
				playerID, game.Key(), game.Date, game.Matchup, game.Season,
				game.Points, game.Minutes, game.FieldGoalAttempts,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert game log: %w", err)
			}
			added += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return added, nil
}

// GetByPlayer retrieves a player's full game history ordered by date ascending
func (r *PostgresGameLogRepository) GetByPlayer(ctx context.Context, playerID string) ([]models.GameRecord, error) {
	query := `
		SELECT game_id, game_date, matchup, season, pts, min, fga
		FROM player_game_logs
		WHERE player_id = $1
		ORDER BY game_date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query game logs: %w", err)
	}
	defer rows.Close()

	var games []models.GameRecord
	for rows.Next() {
		var game models.GameRecord
		if err := rows.Scan(
			&game.GameID, &game.Date, &game.Matchup, &game.Season,
			&game.Points, &game.Minutes, &game.FieldGoalAttempts,
		); err != nil {
			return nil, fmt.Errorf(errScanGameLog, err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game logs: %w", err)
	}

	if len(games) == 0 {
		return nil, models.ErrNotFound
	}

	return games, nil
}
