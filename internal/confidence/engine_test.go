package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Gill87/bucket-props/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestScoreErrorAwareOverCappedAtCeiling(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	// blended std = max(0.7*4 + 0.3*5, 3.0) = 4.3
	// effective   = sqrt(4.3^2 + 3^2) = 5.243...
	// z           = 4.8/5.243 = 0.915 -> P(over) ~ 0.820
	result := engine.Score(25, 20, 4, 5, floatPtr(3))

	assert.Equal(t, models.PickOver, result.Pick)
	assert.InDelta(t, 0.820, result.ProbabilityOver, 0.002)
	assert.Equal(t, 80, result.Confidence, "raw ~82 must clamp to the ceiling")
}

func TestScoreFallbackUnderClampsHundredToNinetyNine(t *testing.T) {
	engine := NewEngine(Config{Policy: PolicyUncapped})

	// No MAE: effective std is the recent std alone, then the z divisor is
	// floored at 1.0: z = -4/max(0.5, 1.0) = -4.
	result := engine.Score(18, 22, 0.5, 6, nil)

	assert.Equal(t, models.PickUnder, result.Pick)
	assert.InDelta(t, 0.0000317, result.ProbabilityOver, 1e-4)
	assert.Equal(t, 99, result.Confidence, "degenerate 100 must clamp to 99")
}

func TestScoreTieBreakFavorsOver(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	// predicted == line gives z = 0 and probability exactly 0.5.
	result := engine.Score(21.5, 21.5, 4, 5, floatPtr(3))

	assert.Equal(t, models.PickOver, result.Pick)
	assert.Equal(t, 0.5, result.ProbabilityOver)
	assert.Equal(t, 50, result.Confidence)
}

func TestScoreVolatilityFloorAppliesWhenVarianceTiny(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	// Near-zero volatility: blended std floors at 3.0 rather than letting
	// small variance manufacture certainty.
	floored := engine.Score(30, 25, 0.1, 0.1, floatPtr(0))
	unfloored := engine.Score(30, 25, 4, 5, floatPtr(0))

	assert.True(t, floored.ProbabilityOver < 0.96)
	assert.True(t, floored.ProbabilityOver > unfloored.ProbabilityOver)
}

func TestScoreUncappedKeepsHighConfidence(t *testing.T) {
	engine := NewEngine(Config{Policy: PolicyUncapped})

	result := engine.Score(40, 20, 2, 2, nil)
	assert.Equal(t, models.PickOver, result.Pick)
	assert.Equal(t, 99, result.Confidence)
}

func TestScoreCappedUnderSide(t *testing.T) {
	engine := NewEngine(Config{Policy: PolicyCapped, Ceiling: 80})

	result := engine.Score(10, 30, 4, 5, floatPtr(3))
	assert.Equal(t, models.PickUnder, result.Pick)
	assert.Equal(t, 80, result.Confidence)
}

func TestNewEngineDefaultsBadCeiling(t *testing.T) {
	engine := NewEngine(Config{Policy: PolicyCapped, Ceiling: 0})
	result := engine.Score(40, 20, 2, 2, floatPtr(1))
	assert.Equal(t, DefaultCeiling, result.Confidence)
}
