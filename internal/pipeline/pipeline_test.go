package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gill87/bucket-props/internal/confidence"
	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/gamelog"
	"github.com/Gill87/bucket-props/internal/models"
	"github.com/Gill87/bucket-props/internal/roster"
)

type fakePropSource struct {
	props []models.Prop
	err   error
}

func (f *fakePropSource) FetchProps(ctx context.Context) ([]models.Prop, error) {
	return f.props, f.err
}

func (f *fakePropSource) Name() string { return "fake-feed" }

func (f *fakePropSource) IsEnabled() bool { return true }

type fakeProvider struct {
	results map[string]gamelog.FetchResult
}

func (f *fakeProvider) History(_ context.Context, player datasource.PlayerInfo) gamelog.FetchResult {
	return f.results[player.ID]
}

type fakeRegressor struct {
	value float64
	err   error
}

func (f *fakeRegressor) Predict(_ context.Context, features []float64) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if len(features) != models.FeatureCount {
		return 0, fmt.Errorf("unexpected feature count %d", len(features))
	}
	return f.value, nil
}

func (f *fakeRegressor) ModelType() string { return "fake" }

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// steadyHistory builds a history of consecutive-day home games with constant
// box scores, long enough for the latest game to be feature-eligible.
func steadyHistory(n int, pts float64) []models.GameRecord {
	games := make([]models.GameRecord, n)
	for i := range games {
		games[i] = models.GameRecord{
			GameID:            fmt.Sprintf("00225%05d", i),
			Season:            "2025-26",
			Date:              time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Matchup:           "LAL vs. BOS",
			Points:            pts,
			Minutes:           35,
			FieldGoalAttempts: 20,
		}
	}
	return games
}

func maeOf(v float64) *float64 { return &v }

func rosterWith(players ...datasource.PlayerInfo) *roster.Directory {
	return roster.NewDirectory(players)
}

func newTestOrchestrator(t *testing.T, cfg Config) *Orchestrator {
	t.Helper()
	if cfg.Directory == nil {
		cfg.Directory = rosterWith(datasource.PlayerInfo{ID: "2544", FullName: "LeBron James"})
	}
	if cfg.Scorer == nil {
		cfg.Scorer = confidence.NewEngine(confidence.DefaultConfig())
	}
	if cfg.Metadata == nil {
		cfg.Metadata = &models.ModelMetadata{MAE: maeOf(2.0)}
	}
	if cfg.Logger == nil {
		cfg.Logger = testLogger()
	}
	return NewOrchestrator(cfg)
}

func propFor(name string, line float64) models.Prop {
	return models.Prop{
		PlayerName: name,
		Line:       decimal.NewFromFloat(line),
		Team:       "LAL",
		Opponent:   "BOS",
	}
}

func TestRunScoresEligibleProp(t *testing.T) {
	orch := newTestOrchestrator(t, Config{
		Props: &fakePropSource{props: []models.Prop{propFor("LeBron James", 24.5)}},
		History: &fakeProvider{results: map[string]gamelog.FetchResult{
			"2544": {Games: steadyHistory(10, 25), Status: gamelog.StatusOK},
		}},
		Regressor: &fakeRegressor{value: 28.0},
	})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Len())

	rec := report.Records()[0]
	assert.Equal(t, "LeBron James", rec.Player)
	assert.Equal(t, models.PickOver, rec.Pick)
	assert.Equal(t, 28.0, rec.PredictedPoints)
	// Constant scoring: volatility floors at 3.0, widened by MAE 2.0 to
	// sqrt(13), so z = 3.5/sqrt(13) and P(over) ~ 0.834. The raw 83 hits
	// the default ceiling.
	assert.InDelta(t, 0.834, rec.ProbabilityOver, 0.002)
	assert.Equal(t, 80, rec.Confidence)
	assert.False(t, rec.PredictedAt.IsZero())
}

func TestRunAppliesConfidenceCeiling(t *testing.T) {
	// Without MAE the divisor floors at 1.0, so z = 3.5 and the raw
	// confidence 100 must be capped.
	orch := newTestOrchestrator(t, Config{
		Props: &fakePropSource{props: []models.Prop{propFor("LeBron James", 24.5)}},
		History: &fakeProvider{results: map[string]gamelog.FetchResult{
			"2544": {Games: steadyHistory(10, 25), Status: gamelog.StatusOK},
		}},
		Regressor: &fakeRegressor{value: 28.0},
		Metadata:  &models.ModelMetadata{},
	})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Len())
	assert.Equal(t, 80, report.Records()[0].Confidence)
}

func TestRunSkipsUnresolvablePlayer(t *testing.T) {
	orch := newTestOrchestrator(t, Config{
		Props:     &fakePropSource{props: []models.Prop{propFor("Unknown Rookie", 12.5)}},
		History:   &fakeProvider{},
		Regressor: &fakeRegressor{value: 15},
	})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Len())
}

func TestRunSkipsFailedHistoryAndContinues(t *testing.T) {
	dir := rosterWith(
		datasource.PlayerInfo{ID: "2544", FullName: "LeBron James"},
		datasource.PlayerInfo{ID: "1628369", FullName: "Jayson Tatum"},
	)

	orch := newTestOrchestrator(t, Config{
		Props: &fakePropSource{props: []models.Prop{
			propFor("LeBron James", 24.5),
			propFor("Jayson Tatum", 26.5),
		}},
		History: &fakeProvider{results: map[string]gamelog.FetchResult{
			"2544":    {Status: gamelog.StatusFetchFailed, Err: errors.New("stats api down")},
			"1628369": {Games: steadyHistory(10, 27), Status: gamelog.StatusOK},
		}},
		Regressor: &fakeRegressor{value: 30.0},
		Directory: dir,
	})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Len())
	assert.Equal(t, "Jayson Tatum", report.Records()[0].Player)
}

func TestRunSkipsShortHistory(t *testing.T) {
	orch := newTestOrchestrator(t, Config{
		Props: &fakePropSource{props: []models.Prop{propFor("LeBron James", 24.5)}},
		History: &fakeProvider{results: map[string]gamelog.FetchResult{
			"2544": {Games: steadyHistory(6, 25), Status: gamelog.StatusOK},
		}},
		Regressor: &fakeRegressor{value: 28.0},
	})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Len())
}

func TestRunSkipsFailedPrediction(t *testing.T) {
	orch := newTestOrchestrator(t, Config{
		Props: &fakePropSource{props: []models.Prop{propFor("LeBron James", 24.5)}},
		History: &fakeProvider{results: map[string]gamelog.FetchResult{
			"2544": {Games: steadyHistory(10, 25), Status: gamelog.StatusOK},
		}},
		Regressor: &fakeRegressor{err: errors.New("model exploded")},
	})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Len())
}

func TestRunFiltersBelowMinimumConfidence(t *testing.T) {
	// Prediction equal to the line gives P(over) = 0.5 and confidence 50.
	orch := newTestOrchestrator(t, Config{
		Props: &fakePropSource{props: []models.Prop{propFor("LeBron James", 25.0)}},
		History: &fakeProvider{results: map[string]gamelog.FetchResult{
			"2544": {Games: steadyHistory(10, 25), Status: gamelog.StatusOK},
		}},
		Regressor:     &fakeRegressor{value: 25.0},
		MinConfidence: 60,
	})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Len())
}

func TestRunAbortsWhenPropFetchFails(t *testing.T) {
	orch := newTestOrchestrator(t, Config{
		Props:     &fakePropSource{err: errors.New("feed unavailable")},
		History:   &fakeProvider{},
		Regressor: &fakeRegressor{value: 20},
	})

	_, err := orch.Run(context.Background())
	require.Error(t, err)
}

func TestReportWriteJSON(t *testing.T) {
	report := NewReport()
	report.Add(models.PredictionRecord{
		Player:          "LeBron James",
		Line:            decimal.NewFromFloat(24.5),
		PredictedPoints: 27.1,
		Pick:            models.PickOver,
		ProbabilityOver: 0.81,
		Confidence:      80,
		PredictedAt:     time.Now().UTC(),
	})

	path := filepath.Join(t.TempDir(), "public", "picks.json")
	require.NoError(t, report.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var picks []map[string]any
	require.NoError(t, json.Unmarshal(data, &picks))
	require.Len(t, picks, 1)
	assert.Equal(t, "LeBron James", picks[0]["player"])
	assert.Equal(t, "OVER", picks[0]["pick"])
	assert.Equal(t, float64(80), picks[0]["confidence"])
}

func TestReportWriteJSONEmptyRun(t *testing.T) {
	report := NewReport()
	path := filepath.Join(t.TempDir(), "picks.json")
	require.NoError(t, report.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}
