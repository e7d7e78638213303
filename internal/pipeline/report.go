package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Gill87/bucket-props/internal/models"
	"github.com/Gill87/bucket-props/internal/repository"
)

// Report accumulates the run's prediction records in memory. Nothing is
// written until the run has walked every prop; the previous report is then
// replaced wholesale.
type Report struct {
	records     []models.PredictionRecord
	generatedAt time.Time
}

// NewReport creates an empty report
func NewReport() *Report {
	return &Report{
		records:     []models.PredictionRecord{},
		generatedAt: time.Now().UTC(),
	}
}

// Add appends a record to the report
func (r *Report) Add(rec models.PredictionRecord) {
	r.records = append(r.records, rec)
}

// Len returns the number of records in the report
func (r *Report) Len() int {
	return len(r.records)
}

// Records returns the accumulated records
func (r *Report) Records() []models.PredictionRecord {
	return r.records
}

// WriteJSON writes the full report to path in a single write, replacing any
// previous file. An empty run still produces a valid (empty) report.
func (r *Report) WriteJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(r.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// Persist replaces the stored report with this run's records
func (r *Report) Persist(ctx context.Context, repo repository.PredictionRepository) error {
	return repo.ReplaceReport(ctx, r.records)
}
