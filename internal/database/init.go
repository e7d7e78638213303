package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/config"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS player_game_logs (
	player_id  TEXT        NOT NULL,
	game_id    TEXT        NOT NULL,
	game_date  DATE        NOT NULL,
	matchup    TEXT        NOT NULL,
	season     TEXT        NOT NULL,
	pts        REAL        NOT NULL,
	min        REAL        NOT NULL,
	fga        REAL        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (player_id, game_id)
);

CREATE INDEX IF NOT EXISTS idx_game_logs_player_date
	ON player_game_logs (player_id, game_date);

CREATE TABLE IF NOT EXISTS predictions (
	id               UUID             PRIMARY KEY,
	player           TEXT             NOT NULL,
	line             NUMERIC(5,1)     NOT NULL,
	predicted_points DOUBLE PRECISION NOT NULL,
	pick             TEXT             NOT NULL,
	probability_over DOUBLE PRECISION NOT NULL,
	confidence       INT              NOT NULL,
	game_time        TIMESTAMPTZ,
	predicted_at     TIMESTAMPTZ      NOT NULL
);
`

// Initialize connects to PostgreSQL and ensures the schema exists.
func Initialize(ctx context.Context, cfg *config.DatabaseConfig, logger *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": cfg.Host,
		"name": cfg.Name,
	}).Info("Database initialized")

	return db, nil
}
