package metrics_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/longtail/metrics"
	ltErrors "github.com/ezoic/longtail/pkg/errors"
)

func TestPredict(t *testing.T) {
	logits := mat.NewDense(3, 3, []float64{
		0.1, 0.7, 0.2,
		2.0, -1, 0,
		0, 0, 5,
	})
	assert.Equal(t, []int{1, 0, 2}, metrics.Predict(logits))
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := []int{0, 0, 1, 1, 2}
	yPred := []int{0, 1, 1, 1, 0}

	cm, err := metrics.ConfusionMatrix(yTrue, yPred, 3)
	require.NoError(t, err)

	want := mat.NewDense(3, 3, []float64{
		1, 1, 0,
		0, 2, 0,
		1, 0, 0,
	})
	assert.True(t, mat.Equal(want, cm))
}

func TestPerClassAndBalancedAccuracy(t *testing.T) {
	// Head class 0 dominates; plain accuracy hides the tail failure.
	yTrue := []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1}
	yPred := []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 1}

	acc, err := metrics.Accuracy(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, acc, 1e-12)

	perClass, err := metrics.PerClassAccuracy(yTrue, yPred, 3)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, perClass[0], 1e-12)
	assert.InDelta(t, 0.5, perClass[1], 1e-12)
	assert.True(t, math.IsNaN(perClass[2]))

	balanced, err := metrics.BalancedAccuracy(yTrue, yPred, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, balanced, 1e-12)
}

func TestGroupAccuracy(t *testing.T) {
	perClass := []float64{0.9, 0.8, 0.6, 0.4, 0.2, math.NaN()}
	trainCounts := []int{500, 150, 100, 20, 5, 1}

	got, err := metrics.GroupAccuracy(perClass, trainCounts,
		metrics.DefaultManyShotThreshold, metrics.DefaultFewShotThreshold)
	require.NoError(t, err)
	assert.InDelta(t, 0.85, got.Many, 1e-12)
	assert.InDelta(t, 0.5, got.Medium, 1e-12)
	assert.InDelta(t, 0.2, got.Few, 1e-12)

	got, err = metrics.GroupAccuracy([]float64{0.5}, []int{1000}, 100, 20)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Few))
	assert.True(t, math.IsNaN(got.Medium))
}

func TestMetricsErrors(t *testing.T) {
	_, err := metrics.ConfusionMatrix(nil, nil, 2)
	var valueErr *ltErrors.ValueError
	assert.True(t, ltErrors.As(err, &valueErr))

	_, err = metrics.ConfusionMatrix([]int{0, 1}, []int{0}, 2)
	var dimErr *ltErrors.DimensionError
	assert.True(t, ltErrors.As(err, &dimErr))

	_, err = metrics.ConfusionMatrix([]int{0, 2}, []int{0, 1}, 2)
	assert.True(t, ltErrors.Is(err, ltErrors.ErrInvalidClass))

	_, err = metrics.PerClassAccuracy([]int{0}, []int{-1}, 2)
	assert.True(t, ltErrors.Is(err, ltErrors.ErrInvalidClass))

	_, err = metrics.GroupAccuracy([]float64{1}, []int{1, 2}, 100, 20)
	assert.True(t, ltErrors.As(err, &dimErr))

	_, err = metrics.GroupAccuracy([]float64{1}, []int{1}, 10, 20)
	var valErr *ltErrors.ValidationError
	assert.True(t, ltErrors.As(err, &valErr))
}
