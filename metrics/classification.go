// Package metrics evaluates classifiers trained on long-tailed data.
//
// Plain accuracy is dominated by the head classes of an imbalanced test
// set, so the package reports per-class recall, its unweighted mean
// (balanced accuracy) and the usual many/medium/few-shot group means keyed
// on the number of training samples per class.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	ltErrors "github.com/ezoic/longtail/pkg/errors"
)

// Default group thresholds on training-set class counts.
const (
	DefaultManyShotThreshold = 100
	DefaultFewShotThreshold  = 20
)

// Predict returns the arg-max class of every row of logits.
func Predict(logits mat.Matrix) []int {
	r, c := logits.Dims()
	preds := make([]int, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, logits)
		preds[i] = floats.MaxIdx(row)
	}
	return preds
}

// ConfusionMatrix returns the clsNum × clsNum matrix whose (i, j) entry counts
// samples of true class i predicted as class j.
//
// Example:
//
//	cm, err := ConfusionMatrix([]int{0, 0, 1}, []int{0, 1, 1}, 2)
//	// cm = [[1 1] [0 1]]
func ConfusionMatrix(yTrue, yPred []int, clsNum int) (*mat.Dense, error) {
	if err := checkLabels("ConfusionMatrix", yTrue, yPred, clsNum); err != nil {
		return nil, err
	}
	cm := mat.NewDense(clsNum, clsNum, nil)
	for i := range yTrue {
		cm.Set(yTrue[i], yPred[i], cm.At(yTrue[i], yPred[i])+1)
	}
	return cm, nil
}

// Accuracy returns the fraction of correct predictions.
func Accuracy(yTrue, yPred []int) (float64, error) {
	if len(yTrue) == 0 {
		return 0, ltErrors.NewValueError("Accuracy", "input slices cannot be empty")
	}
	if len(yTrue) != len(yPred) {
		return 0, ltErrors.NewDimensionError("Accuracy", len(yTrue), len(yPred), 0)
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// PerClassAccuracy returns the recall of every class. Classes absent from
// yTrue get NaN.
func PerClassAccuracy(yTrue, yPred []int, clsNum int) ([]float64, error) {
	cm, err := ConfusionMatrix(yTrue, yPred, clsNum)
	if err != nil {
		return nil, err
	}
	acc := make([]float64, clsNum)
	for c := 0; c < clsNum; c++ {
		support := floats.Sum(cm.RawRowView(c))
		if support == 0 {
			acc[c] = math.NaN()
			continue
		}
		acc[c] = cm.At(c, c) / support
	}
	return acc, nil
}

// BalancedAccuracy returns the mean recall over classes present in yTrue.
func BalancedAccuracy(yTrue, yPred []int, clsNum int) (float64, error) {
	acc, err := PerClassAccuracy(yTrue, yPred, clsNum)
	if err != nil {
		return 0, err
	}
	return nanMean(acc), nil
}

// GroupResult holds mean per-class accuracy of class groups defined by
// training-set size. A group without classes is NaN.
type GroupResult struct {
	Many   float64
	Medium float64
	Few    float64
}

// GroupAccuracy averages perClass over many-shot classes (more than
// manyThreshold training samples), few-shot classes (fewer than
// fewThreshold) and the medium-shot classes in between. trainCounts is the
// per-class training count table.
func GroupAccuracy(perClass []float64, trainCounts []int, manyThreshold, fewThreshold int) (GroupResult, error) {
	if len(perClass) != len(trainCounts) {
		return GroupResult{}, ltErrors.NewDimensionError("GroupAccuracy", len(trainCounts), len(perClass), 0)
	}
	if fewThreshold > manyThreshold {
		return GroupResult{}, ltErrors.NewValidationError("fewThreshold",
			fmt.Sprintf("must not exceed manyThreshold (%d)", manyThreshold), fewThreshold)
	}
	var many, medium, few []float64
	for c, n := range trainCounts {
		switch {
		case n > manyThreshold:
			many = append(many, perClass[c])
		case n < fewThreshold:
			few = append(few, perClass[c])
		default:
			medium = append(medium, perClass[c])
		}
	}
	return GroupResult{
		Many:   nanMean(many),
		Medium: nanMean(medium),
		Few:    nanMean(few),
	}, nil
}

func checkLabels(op string, yTrue, yPred []int, clsNum int) error {
	if len(yTrue) == 0 {
		return ltErrors.NewValueError(op, "input slices cannot be empty")
	}
	if len(yTrue) != len(yPred) {
		return ltErrors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	if clsNum < 1 {
		return ltErrors.NewValidationError("clsNum", "must be at least 1", clsNum)
	}
	for i := range yTrue {
		if yTrue[i] < 0 || yTrue[i] >= clsNum {
			return ltErrors.NewValidationErrorWithCause("yTrue",
				fmt.Sprintf("label %d at index %d outside [0, %d)", yTrue[i], i, clsNum), yTrue[i], ltErrors.ErrInvalidClass)
		}
		if yPred[i] < 0 || yPred[i] >= clsNum {
			return ltErrors.NewValidationErrorWithCause("yPred",
				fmt.Sprintf("label %d at index %d outside [0, %d)", yPred[i], i, clsNum), yPred[i], ltErrors.ErrInvalidClass)
		}
	}
	return nil
}

// nanMean averages the non-NaN entries of x, NaN if there are none.
func nanMean(x []float64) float64 {
	var sum float64
	n := 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
