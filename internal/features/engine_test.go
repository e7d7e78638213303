package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gill87/bucket-props/internal/models"
)

func gameOn(day int, pts, min, fga float64, matchup string) models.GameRecord {
	return models.GameRecord{
		GameID:            "",
		Season:            "2025-26",
		Date:              time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Matchup:           matchup,
		Points:            pts,
		Minutes:           min,
		FieldGoalAttempts: fga,
	}
}

// historyOfLength builds a daily schedule of identical games.
func historyOfLength(n int, pts float64) []models.GameRecord {
	games := make([]models.GameRecord, 0, n)
	for i := 0; i < n; i++ {
		matchup := "LAL vs. BOS"
		if i%2 == 0 {
			matchup = "LAL @ BOS"
		}
		// Every other day so back_to_back stays 0.
		games = append(games, gameOn(i*2, pts, 34, 18, matchup))
	}
	return games
}

func TestComputeShortHistoryYieldsNoRows(t *testing.T) {
	for _, n := range []int{0, 1, 4, 9} {
		rows := Compute(historyOfLength(n, 20), LiveExpandingAverage)
		assert.Empty(t, rows, "history of %d games must yield no eligible rows", n)
	}
}

func TestComputeFirstEligibleRowIsTenthGame(t *testing.T) {
	rows := Compute(historyOfLength(12, 20), LiveExpandingAverage)
	require.Len(t, rows, 3)
	assert.Equal(t, historyOfLength(12, 20)[9].Date, rows[0].Game.Date)
}

func TestComputeConstantWindowExactValues(t *testing.T) {
	rows := Compute(historyOfLength(10, 22.5), LiveExpandingAverage)
	require.Len(t, rows, 1)

	fv := rows[0].Features
	assert.Equal(t, 22.5, fv.PtsLast5)
	assert.Equal(t, 22.5, fv.PtsLast10)
	assert.Equal(t, 22.5, fv.SeasonPtsAvg)
	assert.Equal(t, 0.0, fv.PtsStd5, "std over a constant window is exactly 0")
	assert.Equal(t, 0.0, fv.MinutesTrend)
	assert.Equal(t, 0.0, fv.FgaTrend)
}

func TestComputeHomeFlag(t *testing.T) {
	games := historyOfLength(10, 20)
	games[9].Matchup = "LAL vs. BOS"
	rows := Compute(games, LiveExpandingAverage)
	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0].Features.HomeFlag)

	games[9].Matchup = "LAL @ BOS"
	rows = Compute(games, LiveExpandingAverage)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].Features.HomeFlag)
}

func TestComputeRestDaysAndBackToBack(t *testing.T) {
	tests := []struct {
		name           string
		gapDays        int
		wantRest       float64
		wantBackToBack float64
	}{
		{"back to back", 1, 1, 1},
		{"one rest day", 2, 2, 0},
		{"long layoff", 5, 5, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			games := historyOfLength(10, 20)
			games[9].Date = games[8].Date.AddDate(0, 0, tc.gapDays)
			rows := Compute(games, LiveExpandingAverage)
			require.Len(t, rows, 1)
			assert.Equal(t, tc.wantRest, rows[0].Features.RestDays)
			assert.Equal(t, tc.wantBackToBack, rows[0].Features.BackToBack)
		})
	}
}

func TestComputeResortsAndDeduplicates(t *testing.T) {
	games := historyOfLength(11, 20)
	// Duplicate of the most recent game plus a shuffled order.
	games = append(games, games[10])
	games[0], games[5] = games[5], games[0]

	rows := Compute(games, LiveExpandingAverage)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Game.Date.Before(rows[1].Game.Date))
}

func TestComputeRollingMeansTrailingWindow(t *testing.T) {
	games := historyOfLength(10, 0)
	for i := range games {
		games[i].Points = float64(i + 1) // 1..10
	}
	rows := Compute(games, LiveExpandingAverage)
	require.Len(t, rows, 1)

	fv := rows[0].Features
	assert.InDelta(t, 8.0, fv.PtsLast5, 1e-9)  // mean of 6..10
	assert.InDelta(t, 5.5, fv.PtsLast10, 1e-9) // mean of 1..10
	assert.InDelta(t, 5.5, fv.SeasonPtsAvg, 1e-9)
}

func TestSeasonAverageModes(t *testing.T) {
	games := historyOfLength(12, 10)
	for i := 10; i < 12; i++ {
		games[i].Season = "2026-27"
		games[i].Points = 30
	}

	live := Compute(games, LiveExpandingAverage)
	training := Compute(games, TrainingSeasonAverage)
	require.Len(t, live, 3)
	require.Len(t, training, 3)

	// Live mode: expanding mean never resets at the season boundary.
	assert.InDelta(t, (10*10.0+30)/11.0, live[1].Features.SeasonPtsAvg, 1e-9)
	// Training mode: the mean of the row's own season label.
	assert.Equal(t, 30.0, training[1].Features.SeasonPtsAvg)
	assert.Equal(t, 10.0, training[0].Features.SeasonPtsAvg)
}

func TestLatestEligible(t *testing.T) {
	_, ok := LatestEligible(historyOfLength(9, 20))
	assert.False(t, ok)

	games := historyOfLength(12, 20)
	games[11].Points = 41
	row, ok := LatestEligible(games)
	require.True(t, ok)
	assert.Equal(t, 41.0, row.Game.Points)
}

func TestFeatureVectorOrder(t *testing.T) {
	fv := models.FeatureVector{
		PtsLast5: 1, PtsLast10: 2, PtsStd5: 3, SeasonPtsAvg: 4,
		MinLast5: 5, MinLast10: 6, MinutesTrend: 7,
		FgaLast5: 8, FgaLast10: 9, FgaTrend: 10,
		HomeFlag: 11, RestDays: 12, BackToBack: 13,
	}
	values := fv.Values()
	require.Len(t, values, models.FeatureCount)
	for i, v := range values {
		assert.Equal(t, float64(i+1), v, "feature %s out of order", models.FeatureNames[i])
	}
}
