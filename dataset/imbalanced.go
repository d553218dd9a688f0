package dataset

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/longtail/pkg/errors"
	"github.com/ezoic/longtail/pkg/log"
)

// ImbalancedDataset is a long-tailed subset of a balanced source dataset.
// Samples are grouped by class in ascending class order. It is immutable
// after construction.
type ImbalancedDataset struct {
	// Hyperparameters
	clsNum        int
	imbType       ImbalanceType
	imbFactor     float64
	minorityLabel int
	randomState   int64
	transform     Transform

	// Derived state
	data         *mat.Dense // nil when no sample was selected
	targets      []int
	targetCounts []int
	numPerCls    map[int]int

	logger log.Logger
}

// Option configures an ImbalancedDataset.
type Option func(*ImbalancedDataset)

// WithClsNum sets the number of classes.
func WithClsNum(n int) Option {
	return func(d *ImbalancedDataset) {
		d.clsNum = n
	}
}

// WithImbalanceType sets the decay profile.
func WithImbalanceType(t ImbalanceType) Option {
	return func(d *ImbalancedDataset) {
		d.imbType = t
	}
}

// WithImbFactor sets the ratio between the rarest and the most frequent class.
func WithImbFactor(f float64) Option {
	return func(d *ImbalancedDataset) {
		d.imbFactor = f
	}
}

// WithMinorityLabel sets the class reduced by ImbalanceMinority.
func WithMinorityLabel(label int) Option {
	return func(d *ImbalancedDataset) {
		d.minorityLabel = label
	}
}

// WithTransform sets the transform applied by Get.
func WithTransform(t Transform) Option {
	return func(d *ImbalancedDataset) {
		d.transform = t
	}
}

// WithRandomState sets the seed of the generator used for sample selection.
func WithRandomState(seed int64) Option {
	return func(d *ImbalancedDataset) {
		d.randomState = seed
	}
}

// NewImbalancedDataset subsamples the balanced collection (X, y) into a
// long-tailed one.
//
// The per-class sizes come from TargetCounts with totalSamples = len(y).
// Selection is reproducible: the same inputs and random state always yield
// the same rows in the same order.
//
// Defaults: 200 classes, ImbalanceExp, imbFactor 0.01, random state 0.
//
// Errors:
//   - ValidationError: invalid configuration or a label outside [0, clsNum)
//   - DimensionError: X and y disagree on the number of samples
//   - ModelError wrapping ErrEmptyData: y is empty
func NewImbalancedDataset(X mat.Matrix, y []int, opts ...Option) (*ImbalancedDataset, error) {
	startTime := time.Now()
	d := &ImbalancedDataset{
		clsNum:        200,
		imbType:       ImbalanceExp,
		imbFactor:     0.01,
		minorityLabel: -1,
		randomState:   0,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = log.GetLoggerWithName("dataset").With(
		log.ComponentKey, "ImbalancedDataset",
	)

	counts, err := TargetCounts(len(y), d.clsNum, d.imbType, d.imbFactor, d.minorityLabel)
	if err != nil {
		return nil, err
	}
	d.targetCounts = counts

	// One generator for the whole build; classes consume it in ascending order.
	rng := rand.New(rand.NewPCG(uint64(d.randomState), uint64(d.randomState)))
	d.data, d.targets, d.numPerCls, err = BuildImbalanced(X, y, counts, rng)
	if err != nil {
		return nil, err
	}
	for c, want := range counts {
		if got := d.numPerCls[c]; got < want {
			d.logger.Debug("Class has fewer samples than requested",
				log.ClassKey, c,
				log.RequestedKey, want,
				log.AvailableKey, got,
			)
		}
	}

	d.logger.Info("Imbalanced dataset constructed",
		log.OperationKey, log.OperationBuild,
		log.PhaseKey, log.PhaseConstruction,
		log.ImbTypeKey, string(d.imbType),
		log.ImbFactorKey, d.imbFactor,
		log.SeedKey, d.randomState,
		log.ClassesKey, d.clsNum,
		log.SamplesKey, len(d.targets),
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
	)
	return d, nil
}

// BuildImbalanced selects up to targetCounts[c] rows of every class c present
// in y.
//
// Classes are visited in ascending order. The indices of a class are
// shuffled with rng and the first targetCounts[c] are kept; a class with
// fewer samples keeps all of them. rng is advanced once per visited class and
// never reseeded, so reproducing a result needs the same rng state and the
// same class order.
//
// It returns the selected rows (nil if none), their labels, and the realized
// count of every class in [0, len(targetCounts)).
func BuildImbalanced(X mat.Matrix, y []int, targetCounts []int, rng *rand.Rand) (*mat.Dense, []int, map[int]int, error) {
	const op = "BuildImbalanced"
	if len(y) == 0 {
		return nil, nil, nil, errors.NewModelError(op, "no samples", errors.ErrEmptyData)
	}
	if err := checkRows(op, X, y); err != nil {
		return nil, nil, nil, err
	}
	if rng == nil {
		return nil, nil, nil, errors.NewValueError(op, "random generator must not be nil")
	}
	for c, n := range targetCounts {
		if n < 0 {
			return nil, nil, nil, errors.NewValidationError(fmt.Sprintf("targetCounts[%d]", c), "must be non-negative", n)
		}
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		if label < 0 || label >= len(targetCounts) {
			return nil, nil, nil, errors.NewValidationErrorWithCause(fmt.Sprintf("y[%d]", i),
				fmt.Sprintf("label must be in [0, %d)", len(targetCounts)), label, errors.ErrInvalidClass)
		}
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	realized := make(map[int]int, len(targetCounts))
	for c := range targetCounts {
		realized[c] = 0
	}

	selected := make([]int, 0, len(y))
	targets := make([]int, 0, len(y))
	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(i, j int) {
			idx[i], idx[j] = idx[j], idx[i]
		})
		n := targetCounts[c]
		if n > len(idx) {
			n = len(idx)
		}
		selected = append(selected, idx[:n]...)
		for k := 0; k < n; k++ {
			targets = append(targets, c)
		}
		realized[c] = n
	}

	if len(selected) == 0 {
		return nil, targets, realized, nil
	}
	_, cols := X.Dims()
	data := mat.NewDense(len(selected), cols, nil)
	row := make([]float64, cols)
	for k, i := range selected {
		data.SetRow(k, mat.Row(row, i, X))
	}
	return data, targets, realized, nil
}

// Len returns the number of selected samples.
func (d *ImbalancedDataset) Len() int {
	return len(d.targets)
}

// Get returns a copy of sample idx, passed through the transform, and its label.
func (d *ImbalancedDataset) Get(idx int) (*mat.VecDense, int, error) {
	if d.data == nil {
		return nil, 0, errors.NewIndexError("ImbalancedDataset.Get", idx, 0)
	}
	return getSample("ImbalancedDataset.Get", d.data, d.targets, d.transform, idx)
}

// ClassCounts returns the realized number of samples per class, indexed by
// class. It is the input expected by losses.NewLDAMLoss.
func (d *ImbalancedDataset) ClassCounts() []int {
	counts := make([]int, d.clsNum)
	for i := range counts {
		counts[i] = d.numPerCls[i]
	}
	return counts
}

// ClassCountMap returns the realized count table keyed by class.
func (d *ImbalancedDataset) ClassCountMap() map[int]int {
	m := make(map[int]int, len(d.numPerCls))
	for c, n := range d.numPerCls {
		m[c] = n
	}
	return m
}

// TargetCounts returns the requested number of samples per class.
func (d *ImbalancedDataset) TargetCounts() []int {
	return append([]int(nil), d.targetCounts...)
}

// Data returns a copy of the selected samples, or nil if there are none.
func (d *ImbalancedDataset) Data() *mat.Dense {
	if d.data == nil {
		return nil
	}
	return mat.DenseCopyOf(d.data)
}

// Targets returns a copy of the labels of the selected samples.
func (d *ImbalancedDataset) Targets() []int {
	return append([]int(nil), d.targets...)
}

// NumClasses returns the number of classes.
func (d *ImbalancedDataset) NumClasses() int {
	return d.clsNum
}
