package align

import "errors"

var (
	// ErrNilMatrix indicates a nil matrix argument.
	ErrNilMatrix = errors.New("align: matrix argument must be non-nil")

	// ErrShapeMismatch indicates incompatible matrix dimensions
	// (e.g. prior and target feature dimensions differ).
	ErrShapeMismatch = errors.New("align: incompatible matrix shapes")

	// ErrInvalidLength indicates a validity bound that is non-positive,
	// exceeds the matrix dimensions, or admits no monotonic path
	// (fewer valid frames than valid tokens).
	ErrInvalidLength = errors.New("align: invalid validity bounds")

	// ErrNumericInstability indicates NaN (or an unexpected Inf) inside
	// the valid region of a cost matrix. Correct masking never produces
	// this; it is surfaced rather than propagated.
	ErrNumericInstability = errors.New("align: NaN or Inf in valid cost region")

	// ErrBadDurations indicates a duration vector with a negative entry
	// or a total exceeding the available frame count.
	ErrBadDurations = errors.New("align: invalid duration vector")

	// ErrBadLengthScale indicates a non-positive length scale.
	ErrBadLengthScale = errors.New("align: length scale must be positive")
)
