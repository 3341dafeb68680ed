package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veltra/mixfeed/pkg/models"
)

func defaultEngine() Engine {
	return Engine{
		ColdStartWeights: DefaultColdStartWeights(),
		WeightTable:      DefaultWeightTable(),
		DefaultWeights:   DefaultWeights(),
	}
}

func TestEngineValidate_Defaults(t *testing.T) {
	e := defaultEngine()
	require.NoError(t, e.Validate())
}

func TestEngineValidate_MissingAlgorithm(t *testing.T) {
	e := defaultEngine()
	delete(e.DefaultWeights, models.AlgorithmUpdated)
	assert.Error(t, e.Validate())
}

func TestEngineValidate_NegativeWeight(t *testing.T) {
	e := defaultEngine()
	e.WeightTable[models.ActivityActive][models.AlgorithmHot] = -0.1
	assert.Error(t, e.Validate())
}

func TestEngineValidate_ColdStartPersonalizedMustBeZero(t *testing.T) {
	e := defaultEngine()
	e.ColdStartWeights[models.AlgorithmContentBased] = 0.1
	assert.Error(t, e.Validate())
}

func TestWeightTableRowsSumToOne(t *testing.T) {
	e := defaultEngine()

	rows := map[string]models.WeightVector{
		"cold_start": e.ColdStartWeights,
		"default":    e.DefaultWeights,
	}
	for level, w := range e.WeightTable {
		rows[string(level)] = w
	}

	for name, w := range rows {
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 0.001, "row %s", name)
	}
}

func TestWeightsFor_FallsBackToDefault(t *testing.T) {
	e := defaultEngine()

	assert.Equal(t, e.WeightTable[models.ActivityVeryActive], e.WeightsFor(models.ActivityVeryActive))
	assert.Equal(t, e.DefaultWeights, e.WeightsFor(models.ActivityLow))
	assert.Equal(t, e.DefaultWeights, e.WeightsFor(models.ActivityInactive))
}

func TestWeightAnchors(t *testing.T) {
	e := defaultEngine()

	// Anchors the downstream weighting depends on.
	assert.Equal(t, 0.80, e.ColdStartWeights[models.AlgorithmHot])
	assert.Equal(t, 0.15, e.ColdStartWeights[models.AlgorithmLatest])
	assert.Equal(t, 0.05, e.ColdStartWeights[models.AlgorithmUpdated])
	assert.Equal(t, 0.28, e.WeightTable[models.ActivityVeryActive][models.AlgorithmContentBased])
	assert.Equal(t, 0.35, e.DefaultWeights[models.AlgorithmHot])
}
