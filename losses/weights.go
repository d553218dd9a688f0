package losses

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ezoic/longtail/pkg/errors"
)

// EffectiveNumberWeights returns class-balanced weights for the counts in
// clsNumList: w_j = (1-beta)/(1-beta^n_j), rescaled to sum to the number of
// classes. beta must lie in [0, 1); beta = 0 gives uniform weights and values
// close to 1 approach inverse-frequency weighting.
//
// The result can be passed to WithClassWeights.
func EffectiveNumberWeights(clsNumList []int, beta float64) ([]float64, error) {
	if len(clsNumList) == 0 {
		return nil, errors.NewModelError("EffectiveNumberWeights", "no classes", errors.ErrEmptyData)
	}
	if !(beta >= 0 && beta < 1) {
		return nil, errors.NewValidationError("beta", "must be in [0, 1)", beta)
	}

	w := make([]float64, len(clsNumList))
	for j, n := range clsNumList {
		if n <= 0 {
			return nil, errors.NewValidationErrorWithCause(fmt.Sprintf("clsNumList[%d]", j),
				"class count must be positive", n, errors.ErrZeroCount)
		}
		w[j] = (1 - beta) / (1 - math.Pow(beta, float64(n)))
	}
	floats.Scale(float64(len(w))/floats.Sum(w), w)
	return w, nil
}
