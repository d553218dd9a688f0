package log

import "fmt"

// Structured field keys.
const (
	LoggerNameKey = "logger"
	ComponentKey  = "component"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	SamplesKey    = "n_samples"
	FeaturesKey   = "n_features"
	ClassesKey    = "n_classes"
	ClassKey      = "class"
	RequestedKey  = "requested"
	AvailableKey  = "available"
	ImbTypeKey    = "imb_type"
	ImbFactorKey  = "imb_factor"
	SeedKey       = "seed"
	MaxMarginKey  = "max_margin"
	ScaleKey      = "scale"
	LossKey       = "loss"
	DurationMsKey = "duration_ms"
	StackKey      = "stack"
)

// Operation and phase values.
const (
	OperationBuild    = "build"
	OperationForward  = "forward"
	OperationBackward = "backward"

	PhaseConstruction = "construction"
	PhaseTraining     = "training"
)

func stackOf(err error) string {
	return fmt.Sprintf("%+v", err)
}
