package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/models"
)

// HTTPRegressor queries a remote model-serving endpoint. It is the
// alternative to loading a local artifact when the trained model stays
// behind a service boundary.
type HTTPRegressor struct {
	client    *http.Client
	baseURL   string
	modelType string
	logger    *logrus.Logger
}

// NewHTTPRegressor creates a remote regressor client.
func NewHTTPRegressor(baseURL string, timeout time.Duration, logger *logrus.Logger) *HTTPRegressor {
	return &HTTPRegressor{
		client:    &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		modelType: "remote",
		logger:    logger,
	}
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	PredictedPoints float64 `json:"predicted_points"`
	ModelType       string  `json:"model_type"`
}

// Predict posts the feature vector to the model service.
func (r *HTTPRegressor) Predict(ctx context.Context, features []float64) (float64, error) {
	start := time.Now()
	defer func() {
		PredictionLatency.WithLabelValues("remote").Observe(time.Since(start).Seconds())
	}()

	if len(features) != models.FeatureCount {
		return 0, fmt.Errorf("%w: got %d values, want %d", ErrFeatureMismatch, len(features), models.FeatureCount)
	}

	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/v1/predict", bytes.NewBuffer(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		PredictionErrorsTotal.WithLabelValues("remote", "network").Inc()
		return 0, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		PredictionErrorsTotal.WithLabelValues("remote", "http_error").Inc()
		return 0, fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, string(payload))
	}

	var parsed predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		PredictionErrorsTotal.WithLabelValues("remote", "decode").Inc()
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if parsed.ModelType != "" {
		r.modelType = parsed.ModelType
	}
	PredictionsTotal.WithLabelValues("remote").Inc()
	return parsed.PredictedPoints, nil
}

// ModelType returns the model family reported by the service.
func (r *HTTPRegressor) ModelType() string {
	return r.modelType
}

// HealthCheck verifies the model service is reachable.
func (r *HTTPRegressor) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	return nil
}
