package gamelog

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func day(d int) time.Time {
	return time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC)
}

func game(id string, d int, pts float64) models.GameRecord {
	return models.GameRecord{
		GameID:            id,
		Season:            "2025-26",
		Date:              day(d),
		Matchup:           "LAL vs. BOS",
		Points:            pts,
		Minutes:           34.5,
		FieldGoalAttempts: 18,
	}
}

// fakeStatsSource records calls and serves a fixed game log
type fakeStatsSource struct {
	games []models.GameRecord
	err   error
	calls int
}

func (f *fakeStatsSource) FetchPlayerGames(ctx context.Context, playerID, season string) ([]models.GameRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.games, nil
}

func (f *fakeStatsSource) ListPlayers(ctx context.Context) ([]datasource.PlayerInfo, error) {
	return nil, nil
}

func (f *fakeStatsSource) Name() string { return "fake" }

func TestCSVStoreSaveLoadRoundTrip(t *testing.T) {
	store, err := NewCSVStore(t.TempDir(), &fakeStatsSource{}, "2025-26", testLogger())
	require.NoError(t, err)

	games := []models.GameRecord{game("g1", 1, 25), game("g2", 3, 31.5)}
	require.NoError(t, store.Save("LeBron James", games))

	loaded, err := store.Load("LeBron James")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, games[0], loaded[0])
	assert.Equal(t, 31.5, loaded[1].Points)
}

func TestCSVStoreLoadSortsByDate(t *testing.T) {
	store, err := NewCSVStore(t.TempDir(), &fakeStatsSource{}, "2025-26", testLogger())
	require.NoError(t, err)

	require.NoError(t, store.Save("p", []models.GameRecord{game("g2", 5, 10), game("g1", 2, 20)}))

	loaded, err := store.Load("p")
	require.NoError(t, err)
	assert.Equal(t, "g1", loaded[0].GameID)
	assert.Equal(t, "g2", loaded[1].GameID)
}

func TestHistoryFetchesOnCacheMiss(t *testing.T) {
	source := &fakeStatsSource{games: []models.GameRecord{game("g1", 1, 25)}}
	store, err := NewCSVStore(t.TempDir(), source, "2025-26", testLogger())
	require.NoError(t, err)

	player := datasource.PlayerInfo{ID: "2544", FullName: "LeBron James"}

	result := store.History(context.Background(), player)
	assert.Equal(t, StatusOK, result.Status)
	require.Len(t, result.Games, 1)
	assert.Equal(t, 1, source.calls)

	// Second call hits the file cache, not the network
	result = store.History(context.Background(), player)
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, 1, source.calls)
}

func TestHistoryFetchFailure(t *testing.T) {
	source := &fakeStatsSource{err: errors.New("timeout")}
	store, err := NewCSVStore(t.TempDir(), source, "2025-26", testLogger())
	require.NoError(t, err)

	result := store.History(context.Background(), datasource.PlayerInfo{ID: "1", FullName: "X"})
	assert.Equal(t, StatusFetchFailed, result.Status)
	assert.Error(t, result.Err)
	assert.Empty(t, result.Games)
}

func TestHistoryEmptyGameLog(t *testing.T) {
	source := &fakeStatsSource{}
	store, err := NewCSVStore(t.TempDir(), source, "2025-26", testLogger())
	require.NoError(t, err)

	result := store.History(context.Background(), datasource.PlayerInfo{ID: "1", FullName: "Rookie"})
	assert.Equal(t, StatusNoData, result.Status)
	assert.ErrorIs(t, result.Err, models.ErrEmptyHistory)
}

func TestCachedPlayers(t *testing.T) {
	store, err := NewCSVStore(t.TempDir(), &fakeStatsSource{}, "2025-26", testLogger())
	require.NoError(t, err)

	require.NoError(t, store.Save("Zion Williamson", []models.GameRecord{game("g1", 1, 20)}))
	require.NoError(t, store.Save("Anthony Davis", []models.GameRecord{game("g2", 2, 22)}))

	names, err := store.CachedPlayers()
	require.NoError(t, err)
	assert.Equal(t, []string{"Anthony Davis", "Zion Williamson"}, names)
}

func TestMergeGamesDedupesByGameID(t *testing.T) {
	existing := []models.GameRecord{game("g1", 1, 25), game("g2", 3, 18)}
	fetched := []models.GameRecord{game("g2", 3, 18), game("g3", 5, 30)}

	merged, added := MergeGames(existing, fetched)
	assert.Equal(t, 1, added)
	require.Len(t, merged, 3)
	assert.Equal(t, []string{"g1", "g2", "g3"}, []string{merged[0].GameID, merged[1].GameID, merged[2].GameID})
}

func TestMergeGamesFallsBackToDateMatchup(t *testing.T) {
	a := game("", 1, 25)
	b := game("", 1, 25) // same date+matchup, no id
	c := game("", 2, 30)

	merged, added := MergeGames([]models.GameRecord{a}, []models.GameRecord{b, c})
	assert.Equal(t, 1, added)
	assert.Len(t, merged, 2)
}

// fakeProvider counts History calls
type fakeProvider struct {
	result FetchResult
	calls  int
}

func (f *fakeProvider) History(ctx context.Context, player datasource.PlayerInfo) FetchResult {
	f.calls++
	return f.result
}

func TestCachedProviderCachesSuccess(t *testing.T) {
	inner := &fakeProvider{result: okResult([]models.GameRecord{game("g1", 1, 25)})}
	provider := NewCachedProvider(inner, time.Minute)

	player := datasource.PlayerInfo{ID: "2544", FullName: "LeBron James"}

	first := provider.History(context.Background(), player)
	second := provider.History(context.Background(), player)

	assert.Equal(t, StatusOK, first.Status)
	assert.Equal(t, StatusOK, second.Status)
	assert.Equal(t, 1, inner.calls)

	hits, misses, ratio := provider.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.5, ratio)
}

func TestCachedProviderDoesNotCacheFailures(t *testing.T) {
	inner := &fakeProvider{result: FetchResult{Status: StatusFetchFailed, Err: errors.New("down")}}
	provider := NewCachedProvider(inner, time.Minute)

	player := datasource.PlayerInfo{ID: "1", FullName: "X"}
	provider.History(context.Background(), player)
	provider.History(context.Background(), player)

	assert.Equal(t, 2, inner.calls)
}
