package dataset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/longtail/dataset"
	"github.com/ezoic/longtail/pkg/errors"
)

func TestSimpleDataset(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	y := []int{0, 1, 0}

	ds, err := dataset.NewSimpleDataset(X, y, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	x, label, err := ds.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 1, label)
	assert.Equal(t, []float64{3, 4}, x.RawVector().Data)

	// Get returns a copy.
	x.SetVec(0, 100)
	again, _, err := ds.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, again.AtVec(0))

	// The label slice is copied on construction.
	y[0] = 9
	_, label, err = ds.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

func TestSimpleDataset_Transform(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	calls := 0
	negate := func(x *mat.VecDense) *mat.VecDense {
		calls++
		out := mat.NewVecDense(x.Len(), nil)
		out.ScaleVec(-1, x)
		return out
	}

	ds, err := dataset.NewSimpleDataset(X, []int{0, 1}, negate)
	require.NoError(t, err)

	x, _, err := ds.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -2}, x.RawVector().Data)
	assert.Equal(t, 1, calls)
}

func TestSimpleDataset_Errors(t *testing.T) {
	X := mat.NewDense(2, 2, nil)

	_, err := dataset.NewSimpleDataset(X, []int{0}, nil)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = dataset.NewSimpleDataset(nil, []int{0}, nil)
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))

	empty, err := dataset.NewSimpleDataset(nil, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
	_, _, err = empty.Get(0)
	var indexErr *errors.IndexError
	assert.True(t, errors.As(err, &indexErr))

	ds, err := dataset.NewSimpleDataset(X, []int{0, 1}, nil)
	require.NoError(t, err)
	_, _, err = ds.Get(2)
	assert.True(t, errors.As(err, &indexErr))
	assert.Equal(t, 2, indexErr.Index)
	assert.Equal(t, 2, indexErr.Len)
}

func TestDatasetInterface(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := []int{0, 1, 0, 1}

	simple, err := dataset.NewSimpleDataset(X, y, nil)
	require.NoError(t, err)
	imbalanced, err := dataset.NewImbalancedDataset(X, y,
		dataset.WithClsNum(2),
		dataset.WithImbalanceType(dataset.ImbalanceNone),
	)
	require.NoError(t, err)

	for _, ds := range []dataset.Dataset{simple, imbalanced} {
		assert.Equal(t, 4, ds.Len())
		for i := 0; i < ds.Len(); i++ {
			x, label, err := ds.Get(i)
			require.NoError(t, err)
			assert.Equal(t, label, int(x.AtVec(0))%2)
		}
	}
}
