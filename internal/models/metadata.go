package models

import "time"

// ModelMetadata describes the trained regressor accompanying an artifact.
// The mean absolute error widens the confidence engine's uncertainty band;
// its absence degrades the engine to the fallback formula rather than
// failing the run.
type ModelMetadata struct {
	MAE          *float64  `json:"mae"`
	ModelType    string    `json:"model_type"`
	Features     []string  `json:"features"`
	TrainSeasons []string  `json:"train_seasons"`
	TrainSize    int       `json:"train_size"`
	TestSize     int       `json:"test_size"`
	TrainedAt    time.Time `json:"trained_at"`
}

// HasMAE reports whether historical model error is available.
func (m *ModelMetadata) HasMAE() bool {
	return m != nil && m.MAE != nil
}
