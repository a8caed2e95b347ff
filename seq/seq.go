package seq

import (
	"errors"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidLength indicates a non-positive or out-of-range length.
	ErrInvalidLength = errors.New("seq: invalid sequence length")

	// ErrSegmentTooLong indicates a segment that does not fit inside the
	// valid region of the sequence.
	ErrSegmentTooLong = errors.New("seq: segment exceeds valid length")

	// ErrNilMatrix indicates a nil matrix argument.
	ErrNilMatrix = errors.New("seq: matrix argument must be non-nil")
)

// Mask returns a {0,1} validity vector of size max with the first length
// entries set to 1.
//
// Complexity: O(max).
func Mask(length, max int) ([]float64, error) {
	if length <= 0 || length > max {
		return nil, ErrInvalidLength
	}
	m := make([]float64, max)
	for i := 0; i < length; i++ {
		m[i] = 1
	}
	return m, nil
}

// FixLength rounds n up to the nearest multiple of 2^depth, the internal
// downsampling factor of the vector-field network. depth <= 0 leaves n
// unchanged.
//
// Complexity: O(1).
func FixLength(n, depth int) int {
	if depth <= 0 {
		return n
	}
	f := 1 << depth
	return (n + f - 1) / f * f
}

// RandSegmentStart draws a uniform segment start in [0, validLen−segLen]
// from rng, for extracting a fixed-length contiguous training segment.
//
// Errors: ErrInvalidLength on non-positive inputs; ErrSegmentTooLong when
// the segment cannot fit.
//
// Complexity: O(1).
func RandSegmentStart(rng *rand.Rand, validLen, segLen int) (int, error) {
	if validLen <= 0 || segLen <= 0 {
		return 0, ErrInvalidLength
	}
	if segLen > validLen {
		return 0, ErrSegmentTooLong
	}
	return rng.Intn(validLen - segLen + 1), nil
}

// SliceRows copies rows [start, start+n) of x into a fresh n×D matrix.
//
// Errors: ErrNilMatrix on nil x; ErrInvalidLength when the range falls
// outside x.
//
// Complexity: O(n·D).
func SliceRows(x *mat.Dense, start, n int) (*mat.Dense, error) {
	if x == nil {
		return nil, ErrNilMatrix
	}
	rows, cols := x.Dims()
	if start < 0 || n <= 0 || start+n > rows {
		return nil, ErrInvalidLength
	}
	out := mat.NewDense(n, cols, nil)
	out.Copy(x.Slice(start, start+n, 0, cols))
	return out, nil
}

// Normalize maps a feature field into statistics space: (x − mean) / std.
// A fresh matrix is returned; x is untouched.
//
// Complexity: O(rows·cols).
func Normalize(x *mat.Dense, mean, std float64) (*mat.Dense, error) {
	if x == nil {
		return nil, ErrNilMatrix
	}
	if std == 0 {
		return nil, ErrInvalidLength
	}
	rows, cols := x.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, (x.At(i, j)-mean)/std)
		}
	}
	return out, nil
}

// Denormalize is the inverse of Normalize: x·std + mean.
//
// Complexity: O(rows·cols).
func Denormalize(x *mat.Dense, mean, std float64) (*mat.Dense, error) {
	if x == nil {
		return nil, ErrNilMatrix
	}
	rows, cols := x.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, x.At(i, j)*std+mean)
		}
	}
	return out, nil
}
