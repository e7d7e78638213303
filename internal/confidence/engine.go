// Package confidence converts a prediction/line gap into a calibrated
// over/under probability and a bounded confidence percentage.
package confidence

import (
	"math"

	"github.com/Gill87/bucket-props/internal/models"
	"github.com/Gill87/bucket-props/internal/stats"
)

// Policy names the confidence ceiling behavior. The two policies reflect two
// observed product variants that disagree on how hard to bound reported
// confidence; the choice is configuration, not something the engine decides.
type Policy string

const (
	// PolicyCapped clamps confidence to an explicit ceiling.
	PolicyCapped Policy = "capped"

	// PolicyUncapped only clamps the degenerate 100 down to 99, avoiding
	// absolute certainty claims without imposing a lower ceiling.
	PolicyUncapped Policy = "uncapped"
)

// Default tuning shared by both policies.
const (
	DefaultCeiling = 80

	// volatilityFloor prevents degenerate certainty when recent variance is
	// near zero or undersampled.
	volatilityFloor = 3.0

	// zDivisorFloor avoids division blow-up for players with near-zero
	// recent variance.
	zDivisorFloor = 1.0

	recentWeight = 0.7
	seasonWeight = 0.3
)

// Config tunes the confidence engine.
type Config struct {
	Policy  Policy
	Ceiling int
}

// DefaultConfig returns the stricter observed variant.
func DefaultConfig() Config {
	return Config{Policy: PolicyCapped, Ceiling: DefaultCeiling}
}

// Result is the scored outcome for one prop.
type Result struct {
	Pick            models.Pick
	ProbabilityOver float64
	Confidence      int
}

// Engine scores prediction/line gaps.
type Engine struct {
	cfg Config
}

// NewEngine creates a confidence engine with the given policy configuration.
func NewEngine(cfg Config) *Engine {
	if cfg.Policy == "" {
		cfg.Policy = PolicyCapped
	}
	if cfg.Ceiling <= 0 || cfg.Ceiling > 100 {
		cfg.Ceiling = DefaultCeiling
	}
	return &Engine{cfg: cfg}
}

// Score combines the point estimate, the betting line, scoring volatility and
// (when available) historical model error into an over/under pick.
//
// With model error present, recent and season volatility are blended, floored,
// and widened in quadrature with the MAE. Without it the engine degrades to
// the fallback formula: the recent standard deviation alone, no widening.
// Either way the z divisor is floored so a near-constant scorer cannot
// produce an unbounded z.
func (e *Engine) Score(predicted, line, recentStd, seasonStd float64, mae *float64) Result {
	diff := predicted - line

	var effectiveStd float64
	if mae != nil {
		blended := math.Max(recentWeight*recentStd+seasonWeight*seasonStd, volatilityFloor)
		effectiveStd = math.Sqrt(blended*blended + *mae**mae)
	} else {
		effectiveStd = recentStd
	}

	z := diff / math.Max(effectiveStd, zDivisorFloor)
	probOver := stats.NormalCDF(z)

	pick := models.PickUnder
	confidence := int(math.Round((1 - probOver) * 100))
	if probOver >= 0.5 {
		pick = models.PickOver
		confidence = int(math.Round(probOver * 100))
	}

	return Result{
		Pick:            pick,
		ProbabilityOver: probOver,
		Confidence:      e.bound(confidence),
	}
}

func (e *Engine) bound(confidence int) int {
	switch e.cfg.Policy {
	case PolicyUncapped:
		if confidence >= 100 {
			return 99
		}
		return confidence
	default:
		if confidence > e.cfg.Ceiling {
			return e.cfg.Ceiling
		}
		return confidence
	}
}
