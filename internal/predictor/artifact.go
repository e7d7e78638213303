package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/models"
)

// treeNode is one node of a regression tree. A node is a leaf when Feature
// is negative; otherwise samples with feature < Threshold go Left, the rest
// go Right.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

// artifact is the on-disk JSON export of the trained gradient-boosted
// ensemble. Leaf values are stored with the learning rate already applied,
// so a prediction is the base prediction plus the sum of leaf values.
type artifact struct {
	ModelType      string           `json:"model_type"`
	Features       []string         `json:"features"`
	BasePrediction float64          `json:"base_prediction"`
	Trees          []regressionTree `json:"trees"`
}

// ArtifactRegressor evaluates a locally loaded gradient-boosted trees
// artifact. Evaluation is pure and deterministic for fixed inputs.
type ArtifactRegressor struct {
	artifact artifact
	logger   *logrus.Logger
}

// LoadArtifact reads and validates a regressor artifact from disk.
func LoadArtifact(path string, logger *logrus.Logger) (*ArtifactRegressor, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}

	if err := validateArtifact(&art); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}

	logger.WithFields(logrus.Fields{
		"path":       path,
		"model_type": art.ModelType,
		"trees":      len(art.Trees),
		"duration":   time.Since(start),
	}).Info("Regressor artifact loaded")

	return &ArtifactRegressor{artifact: art, logger: logger}, nil
}

// validateArtifact enforces the trained feature contract and tree sanity.
func validateArtifact(art *artifact) error {
	if len(art.Trees) == 0 {
		return fmt.Errorf("artifact contains no trees")
	}
	if len(art.Features) != models.FeatureCount {
		return fmt.Errorf("artifact has %d features, want %d", len(art.Features), models.FeatureCount)
	}
	for i, name := range art.Features {
		if name != models.FeatureNames[i] {
			return fmt.Errorf("feature %d is %q, want %q", i, name, models.FeatureNames[i])
		}
	}
	for ti, tree := range art.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, node := range tree.Nodes {
			if node.Feature >= models.FeatureCount {
				return fmt.Errorf("tree %d node %d splits on unknown feature %d", ti, ni, node.Feature)
			}
			if node.Feature >= 0 {
				if node.Left < 0 || node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
					return fmt.Errorf("tree %d node %d has out-of-range children", ti, ni)
				}
			}
		}
	}
	return nil
}

// Predict walks every tree and sums the reached leaf values.
func (r *ArtifactRegressor) Predict(_ context.Context, features []float64) (float64, error) {
	start := time.Now()
	defer func() {
		PredictionLatency.WithLabelValues("artifact").Observe(time.Since(start).Seconds())
	}()

	if len(features) != models.FeatureCount {
		return 0, fmt.Errorf("%w: got %d values, want %d", ErrFeatureMismatch, len(features), models.FeatureCount)
	}

	prediction := r.artifact.BasePrediction
	for _, tree := range r.artifact.Trees {
		prediction += evaluateTree(tree, features)
	}

	PredictionsTotal.WithLabelValues("artifact").Inc()
	return prediction, nil
}

// ModelType returns the artifact's declared model family.
func (r *ArtifactRegressor) ModelType() string {
	return r.artifact.ModelType
}

func evaluateTree(tree regressionTree, features []float64) float64 {
	idx := 0
	for {
		node := tree.Nodes[idx]
		if node.Feature < 0 {
			return node.Value
		}
		if features[node.Feature] < node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}
