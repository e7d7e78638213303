// Package logger provides pick audit logging.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/models"
)

// PickLogger provides a dedicated audit trail for pick decisions, so every
// published pick and every skipped prop can be traced after the fact.
type PickLogger struct {
	*logrus.Entry
}

// NewPickLogger creates a new pick logger
func NewPickLogger(baseLogger *logrus.Logger) *PickLogger {
	return &PickLogger{
		Entry: baseLogger.WithField("component", "picks"),
	}
}

// LogPick logs a recorded pick
func (pl *PickLogger) LogPick(rec models.PredictionRecord, probabilityOver float64, degraded bool) {
	pl.WithFields(logrus.Fields{
		"player":           rec.Player,
		"line":             rec.Line.String(),
		"predicted_points": rec.PredictedPoints,
		"pick":             string(rec.Pick),
		"probability_over": probabilityOver,
		"confidence":       rec.Confidence,
		"degraded":         degraded,
	}).Info("Pick recorded")
}

// LogSkip logs a prop skipped by the pipeline
func (pl *PickLogger) LogSkip(playerName, reason string, err error) {
	fields := logrus.Fields{
		"player": playerName,
		"reason": reason,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	pl.WithFields(fields).Warn("Prop skipped")
}

// LogDegradedMode logs entry into the MAE-less confidence fallback
func (pl *PickLogger) LogDegradedMode(metadataPath string) {
	pl.WithField("metadata_path", metadataPath).Warn("Model error metadata unavailable, using raw volatility for confidence")
}
