package align

import "math"

// durationFloor guards log(0) for zero-duration tokens.
const durationFloor = 1e-8

// LogDurations maps alignment-derived frame counts to regression targets:
// log(1e-8 + d_i). The floor keeps zero durations finite.
//
// Complexity: O(Tx).
func LogDurations(durations []int) []float64 {
	out := make([]float64, len(durations))
	for i, d := range durations {
		out[i] = math.Log(durationFloor + float64(d))
	}
	return out
}

// DurationLoss is the mean squared error between predicted and target
// log-durations over the first txValid tokens. Padded entries beyond
// txValid never contribute, so their values are irrelevant by
// construction.
//
// Errors: ErrShapeMismatch if the slices differ in length;
// ErrInvalidLength if txValid is out of range.
//
// Complexity: O(Tx).
func DurationLoss(pred, target []float64, txValid int) (float64, error) {
	if len(pred) != len(target) {
		return 0, ErrShapeMismatch
	}
	if txValid <= 0 || txValid > len(pred) {
		return 0, ErrInvalidLength
	}
	sum := 0.0
	for i := 0; i < txValid; i++ {
		d := pred[i] - target[i]
		sum += d * d
	}
	return sum / float64(txValid), nil
}
