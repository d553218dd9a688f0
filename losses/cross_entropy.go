package losses

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/longtail/pkg/errors"
)

// CrossEntropy returns the multi-class log loss of logits against targets.
//
// logits has shape (batch, classes) and holds unnormalized scores. When
// weights is nil the result is the batch mean of -log softmax(logits_i)[t_i];
// otherwise each term is scaled by weights[t_i] and the sum is divided by the
// sum of those weights.
func CrossEntropy(logits mat.Matrix, targets []int, weights []float64) (loss float64, err error) {
	defer errors.Recover(&err, "CrossEntropy")

	r, c, err := checkBatch("CrossEntropy", logits, targets, weights)
	if err != nil {
		return 0, err
	}

	row := make([]float64, c)
	var total, norm float64
	for i := 0; i < r; i++ {
		mat.Row(row, i, logits)
		t := targets[i]
		w := 1.0
		if weights != nil {
			w = weights[t]
		}
		total += w * (floats.LogSumExp(row) - row[t])
		norm += w
	}
	if norm == 0 {
		return 0, errors.NewValueError("CrossEntropy", "sum of target weights is zero")
	}
	return total / norm, nil
}

// crossEntropyGrad returns d CrossEntropy / d logits.
func crossEntropyGrad(logits mat.Matrix, targets []int, weights []float64) (*mat.Dense, error) {
	r, c, err := checkBatch("crossEntropyGrad", logits, targets, weights)
	if err != nil {
		return nil, err
	}

	var norm float64
	for _, t := range targets {
		if weights == nil {
			norm++
		} else {
			norm += weights[t]
		}
	}
	if norm == 0 {
		return nil, errors.NewValueError("crossEntropyGrad", "sum of target weights is zero")
	}

	grad := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, logits)
		t := targets[i]
		w := 1.0
		if weights != nil {
			w = weights[t]
		}
		lse := floats.LogSumExp(row)
		for j := 0; j < c; j++ {
			g := math.Exp(row[j] - lse)
			if j == t {
				g--
			}
			grad.Set(i, j, w*g/norm)
		}
	}
	return grad, nil
}

func checkBatch(op string, logits mat.Matrix, targets []int, weights []float64) (int, int, error) {
	if logits == nil || len(targets) == 0 {
		return 0, 0, errors.NewModelError(op, "empty batch", errors.ErrEmptyData)
	}
	r, c := logits.Dims()
	if r != len(targets) {
		return 0, 0, errors.NewDimensionError(op, r, len(targets), 0)
	}
	if weights != nil && len(weights) != c {
		return 0, 0, errors.NewDimensionError(op, c, len(weights), 1)
	}
	for i, t := range targets {
		if t < 0 || t >= c {
			return 0, 0, errors.NewValidationErrorWithCause(fmt.Sprintf("targets[%d]", i),
				fmt.Sprintf("must be in [0, %d)", c), t, errors.ErrInvalidClass)
		}
	}
	return r, c, nil
}
