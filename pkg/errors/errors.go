// Package errors provides the error types shared by the longtail packages.
//
// Every constructor returns a concrete pointer type so callers can branch with
// errors.As, and every type that carries a cause implements Unwrap so that
// errors.Is reaches the sentinel values declared below. Stack traces and
// wrapping are delegated to github.com/cockroachdb/errors; printing an error
// with %+v shows the recorded stack.
package errors

import (
	"fmt"
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Sentinel errors.
var (
	// ErrEmptyData is returned when an operation receives no samples.
	ErrEmptyData = errors.New("empty data")

	// ErrInvalidClass is returned for a class index outside [0, clsNum).
	ErrInvalidClass = errors.New("invalid class index")

	// ErrZeroCount is returned when a per-class count that must be positive is not.
	ErrZeroCount = errors.New("non-positive class count")

	// ErrNotImplemented marks functionality that is not available.
	ErrNotImplemented = errors.New("not implemented")
)

// New creates an error with a stack trace.
func New(msg string) error { return errors.New(msg) }

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error { return errors.Newf(format, args...) }

// Wrap annotates err with msg. It returns nil if err is nil.
func Wrap(err error, msg string) error { return errors.Wrap(err, msg) }

// Wrapf annotates err with a formatted message. It returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Unwrap returns the next error in err's chain.
func Unwrap(err error) error { return errors.Unwrap(err) }

// ModelError reports a failure inside a named operation with an underlying cause.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

// NewModelError creates a ModelError.
func NewModelError(op, message string, err error) error {
	return &ModelError{Op: op, Message: message, Err: err}
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("longtail: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("longtail: %s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// DimensionError reports mismatched sizes along an axis.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) error {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("longtail: %s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

// ValueError reports an argument with an unacceptable value.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError.
func NewValueError(op, message string) error {
	return &ValueError{Op: op, Message: message}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("longtail: %s: %s", e.Op, e.Message)
}

// ValidationError reports a parameter that failed validation. Err optionally
// links the failure to one of the sentinel errors.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
	Err       error
}

// NewValidationError creates a ValidationError.
func NewValidationError(param, reason string, value interface{}) error {
	return &ValidationError{ParamName: param, Reason: reason, Value: value}
}

// NewValidationErrorWithCause creates a ValidationError that unwraps to cause.
func NewValidationErrorWithCause(param, reason string, value interface{}, cause error) error {
	return &ValidationError{ParamName: param, Reason: reason, Value: value, Err: cause}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("longtail: invalid parameter %s=%v: %s", e.ParamName, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IndexError reports an index outside [0, Len).
type IndexError struct {
	Op    string
	Index int
	Len   int
}

// NewIndexError creates an IndexError.
func NewIndexError(op string, index, length int) error {
	return &IndexError{Op: op, Index: index, Len: length}
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("longtail: %s: index %d out of range [0, %d)", e.Op, e.Index, e.Len)
}

// NumericalInstabilityError reports a NaN or infinite value.
type NumericalInstabilityError struct {
	Op        string
	Value     float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("longtail: numerical instability in %s at iteration %d: value=%v",
		e.Op, e.Iteration, e.Value)
}

// CheckScalar returns a NumericalInstabilityError if v is NaN or infinite.
func CheckScalar(op string, v float64, iter int) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &NumericalInstabilityError{Op: op, Value: v, Iteration: iter}
	}
	return nil
}

// Recover converts a panic raised inside op into an error stored in *err.
// Use it with defer at the top of functions that call into gonum, which
// reports shape problems by panicking.
func Recover(err *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	switch v := r.(type) {
	case error:
		*err = errors.Wrapf(v, "%s: recovered panic", op)
	default:
		*err = errors.Newf("%s: recovered panic: %v", op, v)
	}
}

var (
	warnMu      sync.RWMutex
	warnHandler = defaultWarningHandler
)

func defaultWarningHandler(w error) {
	zlog.Warn().Err(w).Msg("longtail warning")
}

// SetWarningHandler replaces the function that receives warnings passed to
// Warn. A nil handler restores the default, which logs through zerolog.
func SetWarningHandler(h func(error)) {
	warnMu.Lock()
	defer warnMu.Unlock()
	if h == nil {
		h = defaultWarningHandler
	}
	warnHandler = h
}

// Warn reports a non-fatal condition.
func Warn(w error) {
	if w == nil {
		return
	}
	warnMu.RLock()
	h := warnHandler
	warnMu.RUnlock()
	h(w)
}
