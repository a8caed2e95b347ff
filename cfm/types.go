package cfm

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNilField is returned when no vector-field capability is supplied.
	ErrNilField = errors.New("cfm: vector field must be non-nil")

	// ErrNilMatrix indicates a nil matrix argument.
	ErrNilMatrix = errors.New("cfm: matrix argument must be non-nil")

	// ErrShapeMismatch indicates that the target, conditioning, or field
	// output disagree on dimensions.
	ErrShapeMismatch = errors.New("cfm: incompatible matrix shapes")

	// ErrInvalidLength indicates a non-positive or out-of-range frame
	// validity bound.
	ErrInvalidLength = errors.New("cfm: invalid frame validity bound")

	// ErrStepCount is returned for a non-positive integration step count.
	ErrStepCount = errors.New("cfm: step count must be positive")

	// ErrTemperature is returned for a negative sampling temperature.
	ErrTemperature = errors.New("cfm: temperature must be non-negative")

	// ErrNumericInstability indicates NaN/Inf in the ODE state or loss.
	// Correct masking should prevent this; it is surfaced, never hidden.
	ErrNumericInstability = errors.New("cfm: NaN or Inf in ODE state")
)

// Conditioning bundles the side information handed to the vector field at
// every evaluation: the frame-aligned prior and a speaker embedding.
type Conditioning struct {
	// Mu is the expanded prior, Ty×D, aligned with the current state.
	Mu *mat.Dense

	// Spk is the speaker embedding; nil for single-speaker models.
	Spk []float64
}

// VectorField is the external learned estimator f(x, t, conditioning) →
// velocity. It must return a matrix of x's shape. The estimator's internal
// architecture is opaque to this package.
type VectorField func(x *mat.Dense, t float64, cond Conditioning) *mat.Dense

// Options configures ODE sampling.
//   - Steps:       number of explicit Euler steps (N > 0).
//   - Temperature: scale of the initial noise; 0 starts from all zeros.
//   - Seed:        noise seed; 0 selects a fixed default (deterministic).
type Options struct {
	Steps       int
	Temperature float64
	Seed        int64
}

// DefaultOptions returns the canonical sampling configuration:
// 10 Euler steps, unit temperature, deterministic default seed.
func DefaultOptions() Options {
	return Options{Steps: 10, Temperature: 1.0, Seed: 0}
}
