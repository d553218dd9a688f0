// Package dataset builds long-tailed classification datasets from balanced ones.
//
// A source collection is a feature matrix X (one flattened sample per row)
// and a label slice y with values in [0, clsNum). ImbalancedDataset keeps a
// seeded random subset of every class, sized by one of several decay
// profiles:
//
//   - ImbalanceExp: geometric decay from the first class to the last
//   - ImbalanceStep: two levels, the second half of the classes reduced
//   - ImbalanceMinority: a single reduced class
//   - ImbalanceNone: every class kept at the balanced size
//
// Example usage:
//
//	ds, err := dataset.NewImbalancedDataset(X, y,
//		dataset.WithClsNum(10),
//		dataset.WithImbFactor(0.01),
//		dataset.WithRandomState(0),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	counts := ds.ClassCounts() // feed into losses.NewLDAMLoss
//
// Both SimpleDataset and ImbalancedDataset implement Dataset and are meant to
// be consumed by an external training loop's batching machinery.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/longtail/pkg/errors"
)

// Transform maps a sample to a new sample. It may be stochastic.
type Transform func(x *mat.VecDense) *mat.VecDense

// Dataset is an indexable collection of (sample, label) pairs.
type Dataset interface {
	// Len returns the number of samples.
	Len() int
	// Get returns the sample at idx after the transform, if any, and its label.
	Get(idx int) (*mat.VecDense, int, error)
}

var (
	_ Dataset = (*SimpleDataset)(nil)
	_ Dataset = (*ImbalancedDataset)(nil)
)

// SimpleDataset pairs rows of a feature matrix with integer labels.
type SimpleDataset struct {
	data      mat.Matrix
	targets   []int
	transform Transform
}

// NewSimpleDataset wraps X and y. X may be nil only when y is empty.
// transform may be nil.
func NewSimpleDataset(X mat.Matrix, y []int, transform Transform) (*SimpleDataset, error) {
	if err := checkRows("NewSimpleDataset", X, y); err != nil {
		return nil, err
	}
	return &SimpleDataset{
		data:      X,
		targets:   append([]int(nil), y...),
		transform: transform,
	}, nil
}

// Len returns the number of samples.
func (s *SimpleDataset) Len() int {
	return len(s.targets)
}

// Get returns a copy of row idx, passed through the transform, and its label.
func (s *SimpleDataset) Get(idx int) (*mat.VecDense, int, error) {
	return getSample("SimpleDataset.Get", s.data, s.targets, s.transform, idx)
}

func rows(X mat.Matrix) int {
	if X == nil {
		return 0
	}
	r, _ := X.Dims()
	return r
}

func checkRows(op string, X mat.Matrix, y []int) error {
	if X == nil && len(y) > 0 {
		return errors.NewValueError(op, "feature matrix is nil but labels are not empty")
	}
	if r := rows(X); r != len(y) {
		return errors.NewDimensionError(op, r, len(y), 0)
	}
	return nil
}

func getSample(op string, data mat.Matrix, targets []int, transform Transform, idx int) (*mat.VecDense, int, error) {
	if idx < 0 || idx >= len(targets) {
		return nil, 0, errors.NewIndexError(op, idx, len(targets))
	}
	row := mat.Row(nil, idx, data)
	x := mat.NewVecDense(len(row), row)
	if transform != nil {
		x = transform(x)
	}
	return x, targets[idx], nil
}
