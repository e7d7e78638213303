// Package features derives model input vectors from a player's chronological
// game history.
package features

import (
	"sort"
	"time"

	"github.com/Gill87/bucket-props/internal/models"
	"github.com/Gill87/bucket-props/internal/stats"
)

// Rolling window sizes. A trailing window of size k is defined only once k
// prior-or-current observations exist.
const (
	shortWindow = 5
	longWindow  = 10
)

// SeasonAverageMode selects how season_pts_avg is derived. The two modes are
// deliberately kept distinct: the regressor was trained on per-season-label
// means, while the live path uses an expanding mean with no season reset.
// Unifying them would silently shift the model input distribution away from
// what it was trained on.
type SeasonAverageMode int

const (
	// LiveExpandingAverage is the running mean of points over all games up
	// to and including the reference game. Used for single-game prediction.
	LiveExpandingAverage SeasonAverageMode = iota

	// TrainingSeasonAverage is the mean of points within the same season
	// label. Used when building training examples.
	TrainingSeasonAverage
)

// Compute derives a feature row for every eligible game in the history.
// The input is defensively re-sorted ascending by date and deduplicated by
// game key before any window is evaluated. Rows whose feature vector has any
// undefined component (short early-history windows, the first game's rest
// days) are dropped.
func Compute(history []models.GameRecord, mode SeasonAverageMode) []models.FeatureRow {
	games := normalize(history)
	if len(games) < longWindow {
		return nil
	}

	var seasonMeans map[string]float64
	if mode == TrainingSeasonAverage {
		seasonMeans = seasonPointMeans(games)
	}

	points := make([]float64, len(games))
	minutes := make([]float64, len(games))
	attempts := make([]float64, len(games))
	for i, g := range games {
		points[i] = g.Points
		minutes[i] = g.Minutes
		attempts[i] = g.FieldGoalAttempts
	}

	var expandingSum float64
	rows := make([]models.FeatureRow, 0, len(games)-longWindow+1)

	for i, game := range games {
		expandingSum += game.Points

		// rest_days is undefined for the first game; every long window is
		// undefined before index longWindow-1. The row-wise AND of the
		// definedness rules reduces to the long-window bound.
		if i < longWindow-1 {
			continue
		}

		seasonAvg := expandingSum / float64(i+1)
		if mode == TrainingSeasonAverage {
			seasonAvg = seasonMeans[game.Season]
		}

		restDays := wholeDaysBetween(games[i-1].Date, game.Date)
		backToBack := 0.0
		if restDays == 1 {
			backToBack = 1.0
		}
		homeFlag := 0.0
		if game.IsHome() {
			homeFlag = 1.0
		}

		fv := models.FeatureVector{
			PtsLast5:     stats.Mean(points[i-shortWindow+1 : i+1]),
			PtsLast10:    stats.Mean(points[i-longWindow+1 : i+1]),
			PtsStd5:      stats.SampleStdDev(points[i-shortWindow+1 : i+1]),
			SeasonPtsAvg: seasonAvg,
			MinLast5:     stats.Mean(minutes[i-shortWindow+1 : i+1]),
			MinLast10:    stats.Mean(minutes[i-longWindow+1 : i+1]),
			FgaLast5:     stats.Mean(attempts[i-shortWindow+1 : i+1]),
			FgaLast10:    stats.Mean(attempts[i-longWindow+1 : i+1]),
			HomeFlag:     homeFlag,
			RestDays:     float64(restDays),
			BackToBack:   backToBack,
		}
		fv.MinutesTrend = fv.MinLast5 - fv.MinLast10
		fv.FgaTrend = fv.FgaLast5 - fv.FgaLast10

		rows = append(rows, models.FeatureRow{Game: game, Features: fv})
	}

	return rows
}

// LatestEligible returns the feature row for the player's most recent
// eligible game, the single row consumed by the prediction path. The second
// return value is false when the history yields no eligible row.
func LatestEligible(history []models.GameRecord) (models.FeatureRow, bool) {
	rows := Compute(history, LiveExpandingAverage)
	if len(rows) == 0 {
		return models.FeatureRow{}, false
	}
	return rows[len(rows)-1], true
}

// normalize returns a date-ascending, duplicate-free copy of the history.
func normalize(history []models.GameRecord) []models.GameRecord {
	games := make([]models.GameRecord, len(history))
	copy(games, history)

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Date.Before(games[j].Date)
	})

	seen := make(map[string]struct{}, len(games))
	deduped := games[:0]
	for _, g := range games {
		key := g.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, g)
	}

	return deduped
}

// seasonPointMeans computes the mean points per season label.
func seasonPointMeans(games []models.GameRecord) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, g := range games {
		sums[g.Season] += g.Points
		counts[g.Season]++
	}

	means := make(map[string]float64, len(sums))
	for season, sum := range sums {
		means[season] = sum / float64(counts[season])
	}
	return means
}

// wholeDaysBetween returns the number of whole calendar days from a to b.
func wholeDaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
