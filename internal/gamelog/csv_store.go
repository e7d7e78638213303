package gamelog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/models"
)

const csvDateLayout = "2006-01-02"

var csvHeader = []string{"GAME_ID", "GAME_DATE", "MATCHUP", "PTS", "MIN", "FGA", "SEASON"}

// CSVStore keeps one CSV file per player under a cache directory and falls
// back to the stats provider on a cache miss. Fetched histories are written
// back so subsequent runs stay off the network.
type CSVStore struct {
	dir    string
	source datasource.StatsSource
	season string
	logger *logrus.Logger
}

// NewCSVStore creates a store rooted at dir, creating it if needed
func NewCSVStore(dir string, source datasource.StatsSource, season string, logger *logrus.Logger) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &CSVStore{dir: dir, source: source, season: season, logger: logger}, nil
}

// History implements Provider with load-or-fetch semantics
func (s *CSVStore) History(ctx context.Context, player datasource.PlayerInfo) FetchResult {
	games, err := s.Load(player.FullName)
	if err == nil {
		return okResult(games)
	}
	if !os.IsNotExist(err) {
		s.logger.WithFields(logrus.Fields{
			"player": player.FullName,
			"error":  err.Error(),
		}).Warn("Unreadable cache file, refetching")
	}

	games, err = s.source.FetchPlayerGames(ctx, player.ID, s.season)
	if err != nil {
		return FetchResult{Status: StatusFetchFailed, Err: err}
	}

	sortGames(games)
	if err := s.Save(player.FullName, games); err != nil {
		s.logger.WithFields(logrus.Fields{
			"player": player.FullName,
			"error":  err.Error(),
		}).Warn("Failed to write cache file")
	}

	return okResult(games)
}

// Fetch pulls a fresh game log from the stats provider without touching the
// cache file
func (s *CSVStore) Fetch(ctx context.Context, player datasource.PlayerInfo) ([]models.GameRecord, error) {
	games, err := s.source.FetchPlayerGames(ctx, player.ID, s.season)
	if err != nil {
		return nil, err
	}
	sortGames(games)
	return games, nil
}

// CachedPlayers lists the players that already have a cache file
func (s *CSVStore) CachedPlayers() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".csv"))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads a player's cached history. Returns an os.IsNotExist error when
// the player has no cache file.
func (s *CSVStore) Load(playerName string) ([]models.GameRecord, error) {
	f, err := os.Open(s.path(playerName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse cache for %s: %w", playerName, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	games := make([]models.GameRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		game, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("bad cache row for %s: %w", playerName, err)
		}
		games = append(games, game)
	}

	sortGames(games)
	return games, nil
}

// Save writes a player's history, replacing any existing file
func (s *CSVStore) Save(playerName string, games []models.GameRecord) error {
	tmp, err := os.CreateTemp(s.dir, "."+playerName+"-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(csvHeader); err != nil {
		tmp.Close()
		return err
	}
	for _, g := range games {
		row := []string{
			g.GameID,
			g.Date.Format(csvDateLayout),
			g.Matchup,
			formatFloat(g.Points),
			formatFloat(g.Minutes),
			formatFloat(g.FieldGoalAttempts),
			g.Season,
		}
		if err := writer.Write(row); err != nil {
			tmp.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path(playerName))
}

// Season returns the season the store fetches on cache miss
func (s *CSVStore) Season() string {
	return s.season
}

func (s *CSVStore) path(playerName string) string {
	return filepath.Join(s.dir, playerName+".csv")
}

// MergeGames combines an existing history with newly fetched games, deduping
// on each game's key and sorting by date. Returns the merged history and how
// many games were added.
func MergeGames(existing, fetched []models.GameRecord) ([]models.GameRecord, int) {
	seen := make(map[string]struct{}, len(existing))
	merged := make([]models.GameRecord, 0, len(existing)+len(fetched))

	for _, g := range existing {
		if _, ok := seen[g.Key()]; ok {
			continue
		}
		seen[g.Key()] = struct{}{}
		merged = append(merged, g)
	}

	added := 0
	for _, g := range fetched {
		if _, ok := seen[g.Key()]; ok {
			continue
		}
		seen[g.Key()] = struct{}{}
		merged = append(merged, g)
		added++
	}

	sortGames(merged)
	return merged, added
}

func sortGames(games []models.GameRecord) {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Date.Before(games[j].Date)
	})
}

func parseRow(row []string) (models.GameRecord, error) {
	if len(row) < 7 {
		return models.GameRecord{}, fmt.Errorf("expected 7 columns, got %d", len(row))
	}

	date, err := time.Parse(csvDateLayout, row[1])
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("invalid date %q: %w", row[1], err)
	}
	pts, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("invalid points %q: %w", row[3], err)
	}
	min, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("invalid minutes %q: %w", row[4], err)
	}
	fga, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("invalid attempts %q: %w", row[5], err)
	}

	return models.GameRecord{
		GameID:            row[0],
		Season:            row[6],
		Date:              date,
		Matchup:           row[2],
		Points:            pts,
		Minutes:           min,
		FieldGoalAttempts: fga,
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
