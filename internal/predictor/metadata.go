package predictor

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/models"
)

// LoadMetadata reads model metadata from disk. A missing file or a missing
// MAE value is a degraded configuration, not a failure: the caller receives
// nil metadata and the confidence engine falls back to its simpler formula.
func LoadMetadata(path string, logger *logrus.Logger) *models.ModelMetadata {
	meta, err := readMetadata(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Warn("Model metadata unavailable, confidence engine degrades to fallback mode")
		return nil
	}

	if !meta.HasMAE() {
		logger.WithField("path", path).Warn("Model metadata has no MAE, confidence engine degrades to fallback mode")
		return nil
	}

	logger.WithFields(logrus.Fields{
		"mae":        *meta.MAE,
		"model_type": meta.ModelType,
		"trained_at": meta.TrainedAt,
	}).Info("Model metadata loaded")

	return meta
}

func readMetadata(path string) (*models.ModelMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	meta := &models.ModelMetadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return meta, nil
}
