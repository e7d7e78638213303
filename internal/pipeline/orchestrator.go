// Package pipeline runs the per-prop prediction loop and assembles the report.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/confidence"
	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/features"
	"github.com/Gill87/bucket-props/internal/gamelog"
	"github.com/Gill87/bucket-props/internal/logger"
	"github.com/Gill87/bucket-props/internal/metrics"
	"github.com/Gill87/bucket-props/internal/models"
	"github.com/Gill87/bucket-props/internal/predictor"
	"github.com/Gill87/bucket-props/internal/roster"
	"github.com/Gill87/bucket-props/internal/stats"
)

// Skip reasons recorded per prop. One prop failing never aborts the run.
const (
	SkipPlayerUnresolved    = "player_unresolved"
	SkipHistoryUnavailable  = "history_unavailable"
	SkipNoHistory           = "no_history"
	SkipInsufficientHistory = "insufficient_history"
	SkipPredictionFailed    = "prediction_failed"
	SkipBelowThreshold      = "below_minimum_confidence"
)

// Orchestrator walks active props through resolution, feature engineering,
// prediction and confidence scoring, one prop at a time.
type Orchestrator struct {
	props         datasource.PropSource
	directory     *roster.Directory
	history       gamelog.Provider
	regressor     predictor.Regressor
	scorer        *confidence.Engine
	metadata      *models.ModelMetadata
	pickLogger    *logger.PickLogger
	logger        *logrus.Logger
	pace          time.Duration
	minConfidence int
}

// Config assembles an orchestrator from its collaborators.
type Config struct {
	Props         datasource.PropSource
	Directory     *roster.Directory
	History       gamelog.Provider
	Regressor     predictor.Regressor
	Scorer        *confidence.Engine
	Metadata      *models.ModelMetadata
	Logger        *logrus.Logger
	Pace          time.Duration
	MinConfidence int
}

// NewOrchestrator creates a prediction pipeline
func NewOrchestrator(cfg Config) *Orchestrator {
	return &Orchestrator{
		props:         cfg.Props,
		directory:     cfg.Directory,
		history:       cfg.History,
		regressor:     cfg.Regressor,
		scorer:        cfg.Scorer,
		metadata:      cfg.Metadata,
		pickLogger:    logger.NewPickLogger(cfg.Logger),
		logger:        cfg.Logger,
		pace:          cfg.Pace,
		minConfidence: cfg.MinConfidence,
	}
}

// Run fetches the active props and scores each one in sequence. Individual
// props that cannot be scored are skipped and logged; the run completes with
// whatever could be scored. Only a failed prop fetch aborts the run.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	degraded := !o.metadata.HasMAE()
	metrics.SetDegradedMode(degraded)

	props, err := o.props.FetchProps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch props: %w", err)
	}

	o.logger.WithField("props", len(props)).Info("Starting prediction run")

	report := NewReport()
	for i, prop := range props {
		if i > 0 && o.pace > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.pace):
			}
		}

		rec, skipReason, err := o.processProp(ctx, prop)
		if skipReason != "" {
			o.pickLogger.LogSkip(prop.PlayerName, skipReason, err)
			metrics.RecordSkip(skipReason)
			continue
		}

		report.Add(rec)
		o.pickLogger.LogPick(rec, rec.ProbabilityOver, degraded)
		metrics.RecordPick(string(rec.Pick))
	}

	elapsed := time.Since(start)
	metrics.RecordPipelineRun(elapsed.Seconds(), report.Len())
	o.logger.WithFields(logrus.Fields{
		"picks":    report.Len(),
		"props":    len(props),
		"duration": elapsed.Round(time.Millisecond).String(),
	}).Info("Prediction run complete")

	return report, nil
}

func (o *Orchestrator) processProp(ctx context.Context, prop models.Prop) (models.PredictionRecord, string, error) {
	player, err := o.directory.Resolve(prop.PlayerName)
	if err != nil {
		return models.PredictionRecord{}, SkipPlayerUnresolved, err
	}

	fetchStart := time.Now()
	result := o.history.History(ctx, player)
	metrics.HistoryFetchDuration.Observe(time.Since(fetchStart).Seconds())

	switch result.Status {
	case gamelog.StatusNoData:
		return models.PredictionRecord{}, SkipNoHistory, result.Err
	case gamelog.StatusFetchFailed:
		return models.PredictionRecord{}, SkipHistoryUnavailable, result.Err
	}

	row, ok := features.LatestEligible(result.Games)
	if !ok {
		return models.PredictionRecord{}, SkipInsufficientHistory, models.ErrInsufficientHistory
	}

	predicted, err := o.regressor.Predict(ctx, row.Features.Values())
	if err != nil {
		return models.PredictionRecord{}, SkipPredictionFailed, err
	}

	var mae *float64
	if o.metadata.HasMAE() {
		mae = o.metadata.MAE
	}

	seasonStd := stats.SampleStdDev(pointsOf(result.Games))
	scored := o.scorer.Score(predicted, prop.LineValue(), row.Features.PtsStd5, seasonStd, mae)

	rec := models.PredictionRecord{
		ID:              uuid.New(),
		Player:          prop.PlayerName,
		Line:            prop.Line,
		PredictedPoints: math.Round(predicted*10) / 10,
		Pick:            scored.Pick,
		ProbabilityOver: scored.ProbabilityOver,
		Confidence:      scored.Confidence,
		GameTime:        prop.GameTime,
		PredictedAt:     time.Now().UTC(),
	}

	if !rec.MeetsThreshold(o.minConfidence) {
		return models.PredictionRecord{}, SkipBelowThreshold, nil
	}

	return rec, "", nil
}

func pointsOf(games []models.GameRecord) []float64 {
	points := make([]float64, len(games))
	for i, g := range games {
		points[i] = g.Points
	}
	return points
}
