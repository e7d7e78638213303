// Package predictor wraps the externally trained points regressor.
package predictor

import (
	"context"
	"errors"
)

var (
	// ErrArtifactLoad indicates the regressor artifact cannot be loaded.
	// This is fatal for a prediction run: there is no meaningful partial
	// output without a predictor.
	ErrArtifactLoad = errors.New("failed to load regressor artifact")

	// ErrFeatureMismatch indicates the caller supplied a vector that does
	// not match the trained feature contract.
	ErrFeatureMismatch = errors.New("feature vector does not match model contract")

	// ErrServiceUnavailable indicates the remote model service is unreachable.
	ErrServiceUnavailable = errors.New("model service unavailable")

	// ErrInvalidResponse indicates an invalid response from the model service.
	ErrInvalidResponse = errors.New("invalid response from model service")
)

// Regressor maps a feature vector to an expected points estimate. The vector
// must be supplied in the fixed documented feature order; the model is
// treated as an opaque function fit externally and is never retrained here.
type Regressor interface {
	Predict(ctx context.Context, features []float64) (float64, error)
	ModelType() string
}
