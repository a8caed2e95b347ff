package align

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Durations returns the per-token frame counts of an alignment path:
// the row sums of its first txValid rows. Entries are exact integers
// because path cells are 0/1.
//
// Complexity: O(Tx·Ty).
func Durations(path *mat.Dense, txValid int) ([]int, error) {
	if path == nil {
		return nil, ErrNilMatrix
	}
	tx, ty := path.Dims()
	if txValid <= 0 || txValid > tx {
		return nil, ErrInvalidLength
	}
	dur := make([]int, txValid)
	for i := 0; i < txValid; i++ {
		sum := 0.0
		for j := 0; j < ty; j++ {
			sum += path.At(i, j)
		}
		dur[i] = int(math.Round(sum))
	}
	return dur, nil
}

// PathFromDurations constructs the inference-time alignment path directly
// from per-token durations: token i occupies durations[i] consecutive
// frames, in increasing token order, starting at frame 0. The returned
// matrix has len(durations) rows and tyMax columns; frames beyond the
// duration total stay zero (downstream padding, discarded by callers).
//
// Errors: ErrBadDurations on a negative entry or a total exceeding tyMax;
// ErrInvalidLength on tyMax <= 0.
//
// Complexity: O(Σ durations).
func PathFromDurations(durations []int, tyMax int) (*mat.Dense, error) {
	if tyMax <= 0 {
		return nil, ErrInvalidLength
	}
	if len(durations) == 0 {
		return nil, ErrBadDurations
	}
	total := 0
	for _, d := range durations {
		if d < 0 {
			return nil, ErrBadDurations
		}
		total += d
	}
	if total > tyMax {
		return nil, ErrBadDurations
	}

	path := mat.NewDense(len(durations), tyMax, nil)
	j := 0
	for i, d := range durations {
		for k := 0; k < d; k++ {
			path.Set(i, j, 1)
			j++
		}
	}
	return path, nil
}

// ExpandPrior selects, for every frame, the prior mean of its assigned
// token: out = pathᵀ · mu, a Ty×D matrix. Because path rows are 0/1 with
// at most a single 1 per column, this is exact row selection — no
// interpolation. Padded path columns select nothing and yield zero rows
// that callers discard.
//
// Errors: ErrNilMatrix on nil inputs; ErrShapeMismatch if path rows and
// mu rows disagree.
//
// Complexity: O(Tx·Ty·D) worst case; sparse in practice.
func ExpandPrior(path, mu *mat.Dense) (*mat.Dense, error) {
	if path == nil || mu == nil {
		return nil, ErrNilMatrix
	}
	tx, ty := path.Dims()
	txMu, d := mu.Dims()
	if tx != txMu {
		return nil, ErrShapeMismatch
	}
	out := mat.NewDense(ty, d, nil)
	out.Mul(path.T(), mu)
	return out, nil
}

// ScaledDurations converts predicted per-token log-durations into whole
// frame counts for inference: ceil(exp(logw_i)) · lengthScale per valid
// token, rounded to the nearest frame; padded tokens get zero. lengthScale
// uniformly stretches (>1) or compresses (<1) the output.
//
// Errors: ErrInvalidLength if txValid is out of range;
// ErrBadLengthScale if lengthScale <= 0.
//
// Complexity: O(Tx).
func ScaledDurations(logw []float64, txValid int, lengthScale float64) ([]int, error) {
	if txValid <= 0 || txValid > len(logw) {
		return nil, ErrInvalidLength
	}
	if lengthScale <= 0 {
		return nil, ErrBadLengthScale
	}
	dur := make([]int, len(logw))
	for i := 0; i < txValid; i++ {
		dur[i] = int(math.Round(math.Ceil(math.Exp(logw[i])) * lengthScale))
		if dur[i] < 0 {
			dur[i] = 0
		}
	}
	return dur, nil
}
