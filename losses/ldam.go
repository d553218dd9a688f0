// Package losses implements classification losses for long-tailed training.
//
// LDAMLoss is the label-distribution-aware margin loss: before a scaled
// cross-entropy it subtracts a per-class margin from the logit of the true
// class, and rare classes get larger margins. Margins are proportional to
// n_j^(-1/4) where n_j is the number of training samples of class j, and are
// normalized so that the rarest class receives exactly the maximum margin.
//
// Example usage:
//
//	loss, err := losses.NewLDAMLoss(ds.ClassCounts(),
//		losses.WithMaxMargin(0.5),
//		losses.WithScale(30),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	value, err := loss.Forward(logits, targets)
//	grad, err := loss.Backward(logits, targets)
//
// Losses operate on plain gonum matrices and hold no device state; placing
// the computation is left to the caller.
package losses

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/longtail/pkg/errors"
	"github.com/ezoic/longtail/pkg/log"
)

// Loss is a differentiable classification loss over a batch of logits.
type Loss interface {
	// Forward returns the scalar loss.
	Forward(logits mat.Matrix, targets []int) (float64, error)
	// Backward returns the gradient of Forward with respect to logits.
	Backward(logits mat.Matrix, targets []int) (*mat.Dense, error)
}

var _ Loss = (*LDAMLoss)(nil)

// LDAMLoss is the label-distribution-aware margin loss.
type LDAMLoss struct {
	margins      []float64
	maxMargin    float64
	scale        float64
	classWeights []float64

	logger log.Logger
}

// LDAMOption configures an LDAMLoss.
type LDAMOption func(*LDAMLoss)

// WithMaxMargin sets the margin given to the rarest class.
func WithMaxMargin(m float64) LDAMOption {
	return func(l *LDAMLoss) {
		l.maxMargin = m
	}
}

// WithScale sets the factor applied to the adjusted logits.
func WithScale(s float64) LDAMOption {
	return func(l *LDAMLoss) {
		l.scale = s
	}
}

// WithClassWeights sets per-class weights for the cross-entropy reduction.
// nil means unweighted.
func WithClassWeights(w []float64) LDAMOption {
	return func(l *LDAMLoss) {
		if w == nil {
			l.classWeights = nil
			return
		}
		l.classWeights = append([]float64(nil), w...)
	}
}

// NewLDAMLoss creates the loss for a training set with clsNumList[j]
// samples of class j.
//
// Defaults: max margin 0.5, scale 30, no class weights.
//
// Every count must be positive: the margin of an empty class is undefined.
// scale and the max margin must be positive, and class weights, when given,
// must be non-negative with one entry per class.
func NewLDAMLoss(clsNumList []int, opts ...LDAMOption) (*LDAMLoss, error) {
	l := &LDAMLoss{
		maxMargin: 0.5,
		scale:     30,
	}
	for _, opt := range opts {
		opt(l)
	}

	if len(clsNumList) == 0 {
		return nil, errors.NewModelError("NewLDAMLoss", "no classes", errors.ErrEmptyData)
	}
	if !(l.scale > 0) {
		return nil, errors.NewValidationError("scale", "must be positive", l.scale)
	}
	if !(l.maxMargin > 0) || math.IsInf(l.maxMargin, 0) {
		return nil, errors.NewValidationError("maxMargin", "must be positive and finite", l.maxMargin)
	}
	if l.classWeights != nil {
		if len(l.classWeights) != len(clsNumList) {
			return nil, errors.NewDimensionError("NewLDAMLoss", len(clsNumList), len(l.classWeights), 0)
		}
		for j, w := range l.classWeights {
			if w < 0 || math.IsNaN(w) {
				return nil, errors.NewValidationError(fmt.Sprintf("classWeights[%d]", j), "must be non-negative", w)
			}
		}
	}

	l.margins = make([]float64, len(clsNumList))
	for j, n := range clsNumList {
		if n <= 0 {
			return nil, errors.NewValidationErrorWithCause(fmt.Sprintf("clsNumList[%d]", j),
				"class count must be positive", n, errors.ErrZeroCount)
		}
		l.margins[j] = 1 / math.Sqrt(math.Sqrt(float64(n)))
	}
	floats.Scale(l.maxMargin/floats.Max(l.margins), l.margins)

	l.logger = log.GetLoggerWithName("losses").With(
		log.ComponentKey, "LDAMLoss",
	)
	l.logger.Debug("LDAM loss constructed",
		log.ClassesKey, len(l.margins),
		log.MaxMarginKey, l.maxMargin,
		log.ScaleKey, l.scale,
		"min_margin", floats.Min(l.margins),
	)
	return l, nil
}

// Forward returns the loss of logits (batch × classes) against targets.
//
// For sample i the margin of class targets[i] is subtracted from
// logits[i, targets[i]] only; the adjusted matrix is multiplied by the scale
// and reduced with CrossEntropy using the class weights. logits is not
// modified.
func (l *LDAMLoss) Forward(logits mat.Matrix, targets []int) (loss float64, err error) {
	defer errors.Recover(&err, "LDAMLoss.Forward")

	adjusted, err := l.adjust(logits, targets)
	if err != nil {
		return 0, err
	}
	loss, err = CrossEntropy(adjusted, targets, l.classWeights)
	if err != nil {
		return 0, err
	}
	if err := errors.CheckScalar("LDAMLoss.Forward", loss, 0); err != nil {
		return 0, err
	}

	l.logger.Debug("Forward completed",
		log.OperationKey, log.OperationForward,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, len(targets),
		log.LossKey, loss,
	)
	return loss, nil
}

// Backward returns the gradient of Forward with respect to logits. The
// margin shift is constant, so the gradient is the scaled cross-entropy
// gradient evaluated at the adjusted logits.
func (l *LDAMLoss) Backward(logits mat.Matrix, targets []int) (grad *mat.Dense, err error) {
	defer errors.Recover(&err, "LDAMLoss.Backward")

	adjusted, err := l.adjust(logits, targets)
	if err != nil {
		return nil, err
	}
	grad, err = crossEntropyGrad(adjusted, targets, l.classWeights)
	if err != nil {
		return nil, err
	}
	grad.Scale(l.scale, grad)
	return grad, nil
}

// adjust returns scale * (logits - margin at each target position).
func (l *LDAMLoss) adjust(logits mat.Matrix, targets []int) (*mat.Dense, error) {
	r, c, err := checkBatch("LDAMLoss", logits, targets, nil)
	if err != nil {
		return nil, err
	}
	if c != len(l.margins) {
		return nil, errors.NewDimensionError("LDAMLoss", len(l.margins), c, 1)
	}

	adjusted := mat.DenseCopyOf(logits)
	for i := 0; i < r; i++ {
		t := targets[i]
		adjusted.Set(i, t, adjusted.At(i, t)-l.margins[t])
	}
	adjusted.Scale(l.scale, adjusted)
	return adjusted, nil
}

// Margins returns a copy of the per-class margins.
func (l *LDAMLoss) Margins() []float64 {
	return append([]float64(nil), l.margins...)
}

// Scale returns the logit scale.
func (l *LDAMLoss) Scale() float64 {
	return l.scale
}

// MaxMargin returns the margin of the rarest class.
func (l *LDAMLoss) MaxMargin() float64 {
	return l.maxMargin
}

// NumClasses returns the number of classes.
func (l *LDAMLoss) NumClasses() int {
	return len(l.margins)
}

// ClassWeights returns a copy of the class weights, or nil when unweighted.
func (l *LDAMLoss) ClassWeights() []float64 {
	if l.classWeights == nil {
		return nil
	}
	return append([]float64(nil), l.classWeights...)
}
