package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/gamelog"
	"github.com/Gill87/bucket-props/internal/repository"
	"github.com/Gill87/bucket-props/internal/roster"
)

// CacheUpdateService refreshes existing player cache files with newly
// played games. It never creates caches for new players; the prediction
// pipeline does that on demand.
type CacheUpdateService struct {
	store     *gamelog.CSVStore
	directory *roster.Directory
	repo      repository.GameLogRepository
	metrics   *RefreshMetrics
	logger    *logrus.Logger
	pace      time.Duration
}

// NewCacheUpdateService creates a cache refresh service
func NewCacheUpdateService(store *gamelog.CSVStore, directory *roster.Directory, logger *logrus.Logger, pace time.Duration) *CacheUpdateService {
	return &CacheUpdateService{
		store:     store,
		directory: directory,
		metrics:   NewRefreshMetrics(),
		logger:    logger,
		pace:      pace,
	}
}

// WithRepository additionally mirrors merged game logs into Postgres
func (s *CacheUpdateService) WithRepository(repo repository.GameLogRepository) *CacheUpdateService {
	s.repo = repo
	return s
}

// RefreshAll merges fresh game logs into every existing cache file
func (s *CacheUpdateService) RefreshAll(ctx context.Context) (*RefreshMetrics, error) {
	s.metrics.Reset()
	startTime := time.Now()

	names, err := s.store.CachedPlayers()
	if err != nil {
		return s.metrics, fmt.Errorf("failed to list cached players: %w", err)
	}
	s.metrics.TotalPlayers = len(names)

	if len(names) == 0 {
		s.logger.Warn("No existing player caches found")
		return s.metrics, nil
	}

	s.logger.WithField("players", len(names)).Info("Refreshing player caches")

	for i, name := range names {
		if err := s.refreshPlayer(ctx, name); err != nil {
			if ctx.Err() != nil {
				return s.metrics, ctx.Err()
			}
			s.metrics.RecordError()
			s.logger.WithFields(logrus.Fields{
				"player": name,
				"error":  err.Error(),
			}).Warn("Failed to refresh player cache")
		}

		if i < len(names)-1 {
			select {
			case <-ctx.Done():
				return s.metrics, ctx.Err()
			case <-time.After(s.pace):
			}
		}
	}

	s.metrics.Duration = time.Since(startTime)
	s.logger.WithFields(logrus.Fields{
		"updated":     s.metrics.UpdatedPlayers,
		"up_to_date":  s.metrics.UpToDate,
		"games_added": s.metrics.GamesAdded,
		"errors":      s.metrics.Errors,
		"duration":    s.metrics.Duration.String(),
	}).Info("Player cache refresh complete")

	return s.metrics, nil
}

func (s *CacheUpdateService) refreshPlayer(ctx context.Context, name string) error {
	player, err := s.directory.Resolve(name)
	if err != nil {
		s.metrics.RecordSkippedUnknown()
		s.logger.WithField("player", name).Warn("No stats ID for cached player, skipping")
		return nil
	}

	existing, err := s.store.Load(name)
	if err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}

	fetched, err := s.store.Fetch(ctx, player)
	if err != nil {
		return fmt.Errorf("failed to fetch game log: %w", err)
	}

	merged, added := gamelog.MergeGames(existing, fetched)
	if added == 0 {
		s.metrics.RecordUpToDate()
		return nil
	}

	if err := s.store.Save(name, merged); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}

	if s.repo != nil {
		if _, err := s.repo.UpsertGames(ctx, player.ID, merged); err != nil {
			s.logger.WithFields(logrus.Fields{
				"player": name,
				"error":  err.Error(),
			}).Warn("Failed to mirror game log to database")
		}
	}

	s.metrics.RecordUpdated(added)
	s.logger.WithFields(logrus.Fields{
		"player":      name,
		"games_added": added,
	}).Info("Updated player cache")

	return nil
}

// Metrics returns the metrics from the most recent refresh
func (s *CacheUpdateService) Metrics() *RefreshMetrics {
	return s.metrics
}
