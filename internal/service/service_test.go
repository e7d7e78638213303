package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/gamelog"
	"github.com/Gill87/bucket-props/internal/models"
	"github.com/Gill87/bucket-props/internal/roster"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func game(id string, d int, pts float64) models.GameRecord {
	return models.GameRecord{
		GameID:            id,
		Season:            "2025-26",
		Date:              time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC),
		Matchup:           "LAL vs. BOS",
		Points:            pts,
		Minutes:           33,
		FieldGoalAttempts: 17,
	}
}

// fakeStatsSource serves canned game logs per player ID
type fakeStatsSource struct {
	players    []datasource.PlayerInfo
	gamesByID  map[string][]models.GameRecord
	err        error
	fetchErr   error
	fetchCalls int
}

func (f *fakeStatsSource) FetchPlayerGames(ctx context.Context, playerID, season string) ([]models.GameRecord, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.gamesByID[playerID], nil
}

func (f *fakeStatsSource) ListPlayers(ctx context.Context) ([]datasource.PlayerInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.players, nil
}

func (f *fakeStatsSource) Name() string { return "fake" }

// fakeGameLogRepo records mirrored game logs
type fakeGameLogRepo struct {
	upserts map[string][]models.GameRecord
}

func (f *fakeGameLogRepo) UpsertGames(ctx context.Context, playerID string, games []models.GameRecord) (int, error) {
	if f.upserts == nil {
		f.upserts = make(map[string][]models.GameRecord)
	}
	f.upserts[playerID] = games
	return len(games), nil
}

func (f *fakeGameLogRepo) GetByPlayer(ctx context.Context, playerID string) ([]models.GameRecord, error) {
	games, ok := f.upserts[playerID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return games, nil
}

func newRefreshFixture(t *testing.T, source *fakeStatsSource) (*CacheUpdateService, *gamelog.CSVStore) {
	t.Helper()

	store, err := gamelog.NewCSVStore(t.TempDir(), source, "2025-26", testLogger())
	require.NoError(t, err)

	directory := roster.NewDirectory(source.players)
	svc := NewCacheUpdateService(store, directory, testLogger(), 0)
	return svc, store
}

func TestRefreshAllAddsNewGames(t *testing.T) {
	source := &fakeStatsSource{
		players: []datasource.PlayerInfo{{ID: "2544", FullName: "LeBron James"}},
		gamesByID: map[string][]models.GameRecord{
			"2544": {game("g1", 1, 25), game("g2", 3, 30)},
		},
	}
	svc, store := newRefreshFixture(t, source)
	require.NoError(t, store.Save("LeBron James", []models.GameRecord{game("g1", 1, 25)}))

	metrics, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.TotalPlayers)
	assert.Equal(t, 1, metrics.UpdatedPlayers)
	assert.Equal(t, 1, metrics.GamesAdded)
	assert.Equal(t, 0, metrics.Errors)

	games, err := store.Load("LeBron James")
	require.NoError(t, err)
	assert.Len(t, games, 2)
}

func TestRefreshAllMirrorsToRepository(t *testing.T) {
	source := &fakeStatsSource{
		players: []datasource.PlayerInfo{{ID: "2544", FullName: "LeBron James"}},
		gamesByID: map[string][]models.GameRecord{
			"2544": {game("g1", 1, 25), game("g2", 3, 30)},
		},
	}
	svc, store := newRefreshFixture(t, source)
	require.NoError(t, store.Save("LeBron James", []models.GameRecord{game("g1", 1, 25)}))

	repo := &fakeGameLogRepo{}
	svc.WithRepository(repo)

	_, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)

	require.Contains(t, repo.upserts, "2544")
	assert.Len(t, repo.upserts["2544"], 2)
}

func TestRefreshAllUpToDate(t *testing.T) {
	source := &fakeStatsSource{
		players: []datasource.PlayerInfo{{ID: "2544", FullName: "LeBron James"}},
		gamesByID: map[string][]models.GameRecord{
			"2544": {game("g1", 1, 25)},
		},
	}
	svc, store := newRefreshFixture(t, source)
	require.NoError(t, store.Save("LeBron James", []models.GameRecord{game("g1", 1, 25)}))

	metrics, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.UpToDate)
	assert.Equal(t, 0, metrics.UpdatedPlayers)
	assert.Equal(t, 0, metrics.GamesAdded)
}

func TestRefreshAllSkipsUnresolvableNames(t *testing.T) {
	source := &fakeStatsSource{players: []datasource.PlayerInfo{{ID: "1", FullName: "Someone Else"}}}
	svc, store := newRefreshFixture(t, source)
	require.NoError(t, store.Save("Retired Guy", []models.GameRecord{game("g1", 1, 25)}))

	metrics, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.SkippedUnknown)
	assert.Equal(t, 0, source.fetchCalls)
}

func TestRefreshAllRecordsFetchErrors(t *testing.T) {
	source := &fakeStatsSource{
		players: []datasource.PlayerInfo{{ID: "2544", FullName: "LeBron James"}},
	}
	svc, store := newRefreshFixture(t, source)
	require.NoError(t, store.Save("LeBron James", []models.GameRecord{game("g1", 1, 25)}))
	source.err = errors.New("stats API down")

	metrics, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.Errors)
	assert.Equal(t, 0, metrics.UpdatedPlayers)
}

func TestRefreshAllEmptyCache(t *testing.T) {
	source := &fakeStatsSource{}
	svc, _ := newRefreshFixture(t, source)

	metrics, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.TotalPlayers)
}

func seasonGames(n int) []models.GameRecord {
	games := make([]models.GameRecord, 0, n)
	for i := 0; i < n; i++ {
		games = append(games, game(fmt.Sprintf("g%02d", i), i+1, float64(15+i)))
	}
	return games
}

func TestExportWritesFeatureRows(t *testing.T) {
	source := &fakeStatsSource{
		players: []datasource.PlayerInfo{{ID: "2544", FullName: "LeBron James"}},
		gamesByID: map[string][]models.GameRecord{
			"2544": seasonGames(12),
		},
	}

	svc := NewTrainingExportService(source, []string{"2025-26"}, 0, 0, testLogger())

	var buf bytes.Buffer
	summary, err := svc.Export(context.Background(), &buf)
	require.NoError(t, err)

	// 12 games, trailing 10-game window leaves rows for games 10..12
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, 1, summary.PlayersWritten)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	header := rows[0]
	assert.Equal(t, "player_id", header[0])
	assert.Equal(t, "pts_last5", header[3])
	assert.Equal(t, "pts", header[len(header)-1])
	assert.Len(t, header, 3+models.FeatureCount+1)

	first := rows[1]
	assert.Equal(t, "2544", first[0])
	assert.Equal(t, "2025-26", first[1])
	// Target is the points actually scored in the row's game
	assert.Equal(t, "24", first[len(first)-1])
}

func TestExportSkipsFailingSeasons(t *testing.T) {
	source := &fakeStatsSource{
		players:  []datasource.PlayerInfo{{ID: "1", FullName: "X"}},
		fetchErr: errors.New("season unavailable"),
	}
	svc := NewTrainingExportService(source, []string{"2025-26", "2024-25"}, 0, 0, testLogger())

	var buf bytes.Buffer
	summary, err := svc.Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Rows)
	assert.Equal(t, 2, summary.FetchErrors)
}

func TestSamplePlayersDeterministic(t *testing.T) {
	players := make([]datasource.PlayerInfo, 20)
	for i := range players {
		players[i] = datasource.PlayerInfo{ID: fmt.Sprintf("%d", i)}
	}

	a := samplePlayers(players, 5)
	b := samplePlayers(players, 5)

	assert.Equal(t, a, b, "sampling is seeded and reproducible")
	assert.Len(t, a, 5)
	assert.NotEqual(t, players[:5], a, "sampling shuffles rather than truncating")
}
