package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/features"
	"github.com/Gill87/bucket-props/internal/models"
)

// shuffleSeed keeps training exports reproducible across runs
const shuffleSeed = 42

// TrainingExportService builds the model training dataset: engineered
// feature rows with the actual points scored as the target, across a sampled
// set of players and multiple seasons.
type TrainingExportService struct {
	source     datasource.StatsSource
	seasons    []string
	sampleSize int
	pace       time.Duration
	logger     *logrus.Logger
}

// ExportSummary reports what an export run produced
type ExportSummary struct {
	PlayersSampled int
	PlayersWritten int
	Rows           int
	FetchErrors    int
	Duration       time.Duration
}

// NewTrainingExportService creates a training dataset exporter
func NewTrainingExportService(source datasource.StatsSource, seasons []string, sampleSize int, pace time.Duration, logger *logrus.Logger) *TrainingExportService {
	return &TrainingExportService{
		source:     source,
		seasons:    seasons,
		sampleSize: sampleSize,
		pace:       pace,
		logger:     logger,
	}
}

// Export writes the dataset as CSV to w
func (s *TrainingExportService) Export(ctx context.Context, w io.Writer) (*ExportSummary, error) {
	startTime := time.Now()
	summary := &ExportSummary{}

	players, err := s.source.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	sampled := samplePlayers(players, s.sampleSize)
	summary.PlayersSampled = len(sampled)

	s.logger.WithFields(logrus.Fields{
		"players": len(sampled),
		"seasons": s.seasons,
	}).Info("Building training dataset")

	writer := csv.NewWriter(w)
	if err := writer.Write(trainingHeader()); err != nil {
		return nil, err
	}

	for _, player := range sampled {
		history := s.collectHistory(ctx, player, summary)
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if len(history) == 0 {
			continue
		}

		rows := features.Compute(history, features.TrainingSeasonAverage)
		if len(rows) == 0 {
			continue
		}

		for _, row := range rows {
			if err := writer.Write(trainingRow(player, row)); err != nil {
				return summary, err
			}
		}
		summary.PlayersWritten++
		summary.Rows += len(rows)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return summary, err
	}

	summary.Duration = time.Since(startTime)
	s.logger.WithFields(logrus.Fields{
		"rows":         summary.Rows,
		"players":      summary.PlayersWritten,
		"fetch_errors": summary.FetchErrors,
		"duration":     summary.Duration.String(),
	}).Info("Training dataset export complete")

	return summary, nil
}

// collectHistory fetches a player's game logs across all training seasons.
// A failed or empty season is skipped, not fatal.
func (s *TrainingExportService) collectHistory(ctx context.Context, player datasource.PlayerInfo, summary *ExportSummary) []models.GameRecord {
	var history []models.GameRecord
	for _, season := range s.seasons {
		games, err := s.source.FetchPlayerGames(ctx, player.ID, season)
		if err != nil {
			if ctx.Err() != nil {
				return history
			}
			summary.FetchErrors++
			s.logger.WithFields(logrus.Fields{
				"player": player.FullName,
				"season": season,
				"error":  err.Error(),
			}).Warn("Skipping season for player")
			continue
		}
		history = append(history, games...)

		select {
		case <-ctx.Done():
			return history
		case <-time.After(s.pace):
		}
	}
	return history
}

// samplePlayers shuffles deterministically and takes the first limit entries
func samplePlayers(players []datasource.PlayerInfo, limit int) []datasource.PlayerInfo {
	sampled := make([]datasource.PlayerInfo, len(players))
	copy(sampled, players)

	rng := rand.New(rand.NewSource(shuffleSeed))
	rng.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})

	if limit > 0 && limit < len(sampled) {
		sampled = sampled[:limit]
	}
	return sampled
}

func trainingHeader() []string {
	header := []string{"player_id", "season", "game_date"}
	header = append(header, models.FeatureNames...)
	return append(header, "pts")
}

func trainingRow(player datasource.PlayerInfo, row models.FeatureRow) []string {
	out := []string{
		player.ID,
		row.Game.Season,
		row.Game.Date.Format("2006-01-02"),
	}
	for _, v := range row.Features.Values() {
		out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return append(out, strconv.FormatFloat(row.Target(), 'f', -1, 64))
}
