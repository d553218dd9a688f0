package dataset

import (
	"fmt"
	"math"
	"strings"

	"github.com/ezoic/longtail/pkg/errors"
)

// ImbalanceType selects the per-class decay profile.
type ImbalanceType string

const (
	// ImbalanceExp decays counts geometrically: class i keeps
	// imgMax * imbFactor^(i/(clsNum-1)).
	ImbalanceExp ImbalanceType = "exp"
	// ImbalanceStep keeps imgMax for the first clsNum/2 classes (rounded
	// down) and imgMax*imbFactor for the rest.
	ImbalanceStep ImbalanceType = "step"
	// ImbalanceMinority reduces only the minority label to imgMax*imbFactor.
	ImbalanceMinority ImbalanceType = "minority"
	// ImbalanceNone keeps every class at imgMax. Unknown types behave the same.
	ImbalanceNone ImbalanceType = "none"
)

// ParseImbalanceType maps a name to an ImbalanceType. Unrecognized names
// produce ImbalanceNone and a warning.
func ParseImbalanceType(s string) ImbalanceType {
	switch t := ImbalanceType(strings.ToLower(strings.TrimSpace(s))); t {
	case ImbalanceExp, ImbalanceStep, ImbalanceMinority, ImbalanceNone:
		return t
	case "":
		return ImbalanceNone
	default:
		errors.Warn(errors.NewValueError("ParseImbalanceType",
			fmt.Sprintf("unknown imbalance type %q, falling back to %q", s, ImbalanceNone)))
		return ImbalanceNone
	}
}

// TargetCounts returns the number of samples to keep for each class.
//
// imgMax is totalSamples/clsNum, the per-class size of a balanced source.
// imbFactor must lie in (0, 1]; smaller values give a steeper imbalance.
// minorityLabel is only read for ImbalanceMinority and must then be a valid
// class index. The result has exactly clsNum entries.
func TargetCounts(totalSamples, clsNum int, imbType ImbalanceType, imbFactor float64, minorityLabel int) ([]int, error) {
	if clsNum < 1 {
		return nil, errors.NewValidationErrorWithCause("clsNum", "must be at least 1", clsNum, errors.ErrInvalidClass)
	}
	if totalSamples < 0 {
		return nil, errors.NewValidationError("totalSamples", "must be non-negative", totalSamples)
	}
	if !(imbFactor > 0 && imbFactor <= 1) {
		return nil, errors.NewValidationError("imbFactor", "must be in (0, 1]", imbFactor)
	}

	imgMax := float64(totalSamples) / float64(clsNum)
	full := int(math.Floor(imgMax))
	reduced := int(math.Floor(imgMax * imbFactor))

	counts := make([]int, clsNum)
	switch imbType {
	case ImbalanceExp:
		for i := range counts {
			exponent := 0.0
			if clsNum > 1 {
				exponent = float64(i) / float64(clsNum-1)
			}
			counts[i] = int(math.Floor(imgMax * math.Pow(imbFactor, exponent)))
		}
	case ImbalanceStep:
		half := clsNum / 2
		for i := range counts {
			if i < half {
				counts[i] = full
			} else {
				counts[i] = reduced
			}
		}
	case ImbalanceMinority:
		if minorityLabel < 0 || minorityLabel >= clsNum {
			return nil, errors.NewValidationErrorWithCause("minorityLabel",
				fmt.Sprintf("must be in [0, %d)", clsNum), minorityLabel, errors.ErrInvalidClass)
		}
		for i := range counts {
			counts[i] = full
		}
		counts[minorityLabel] = reduced
	default:
		for i := range counts {
			counts[i] = full
		}
	}
	return counts, nil
}
