package engine

import (
	"github.com/veltra/mixfeed/internal/config"
	"github.com/veltra/mixfeed/pkg/models"
)

// AdjustWeights maps a cold-start status to a per-algorithm weight vector.
// Pure function: cold start forces the hot/latest-heavy row with all
// personalized weights at zero, otherwise the table row for the activity
// level applies, and caller overrides win for any key they set.
func AdjustWeights(
	cfg *config.Engine,
	status models.ColdStartStatus,
	overrides models.WeightVector,
) models.WeightVector {
	var weights models.WeightVector
	if status.IsColdStart {
		weights = cfg.ColdStartWeights.Clone()
	} else {
		weights = cfg.WeightsFor(status.ActivityProfile.Level).Clone()
	}

	for alg, w := range overrides {
		if w < 0 {
			continue
		}
		weights[alg] = w
	}

	return weights
}
