package align

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaximumPath — Monotonic Alignment Search
//
// Description:
//
//	Finds the maximum-score monotonic assignment of frames to tokens over
//	a Tx×Ty cost matrix. The path visits every frame column exactly once;
//	the token row never decreases as the frame index advances; the path
//	starts at (0,0) and ends at (txValid−1, tyValid−1).
//
// Algorithm Outline (Viterbi-style forward DP + backtrack):
//  1. score[0][0] = cost[0][0].
//  2. score[i][j] = cost[i][j] + max(score[i−1][j−1], score[i][j−1]).
//     Cells with i > j are unreachable (a token cannot appear before
//     enough frames have passed); cells outside validity stay −Inf.
//  3. Backtrack from (txValid−1, tyValid−1): take the diagonal predecessor
//     (i−1, j−1) when its score ≥ the horizontal one (i, j−1), else the
//     horizontal; j decrements every step, i only on a diagonal move.
//
// The search is pure combinatorial optimization: no randomness, no notion
// of gradients. Its output is treated as a constant by every caller.
//
// Complexity:
//
//	Time   = O(Tx·Ty)
//	Memory = O(Tx·Ty), freshly allocated per call

// MaximumPath returns the optimal monotonic alignment path over cost as a
// binary matrix of the same Tx×Ty shape: path[i][j] = 1 iff frame j is
// assigned to token i. Cells outside [0,txValid)×[0,tyValid) are zero.
//
// Errors: ErrNilMatrix on nil cost; ErrInvalidLength if a bound is
// non-positive, exceeds the cost dimensions, or tyValid < txValid (no
// monotonic path can place every valid token); ErrNumericInstability if
// the valid region contains NaN. Padded cells are ignored entirely, so
// their contents cannot influence the result.
func MaximumPath(cost *mat.Dense, txValid, tyValid int) (*mat.Dense, error) {
	if cost == nil {
		return nil, ErrNilMatrix
	}
	tx, ty := cost.Dims()
	if txValid <= 0 || txValid > tx || tyValid <= 0 || tyValid > ty {
		return nil, ErrInvalidLength
	}
	if tyValid < txValid {
		return nil, ErrInvalidLength
	}

	negInf := math.Inf(-1)

	// Forward pass over the valid region only; one flat buffer, row-major.
	score := make([]float64, txValid*tyValid)
	for i := 0; i < txValid; i++ {
		for j := 0; j < tyValid; j++ {
			c := cost.At(i, j)
			if math.IsNaN(c) {
				return nil, ErrNumericInstability
			}
			if i > j {
				score[i*tyValid+j] = negInf
				continue
			}
			switch {
			case i == 0 && j == 0:
				score[j] = c
			case i == 0:
				// Only the horizontal predecessor exists on row 0.
				score[j] = c + score[j-1]
			default:
				diag := score[(i-1)*tyValid+j-1]
				horiz := negInf
				if j > i {
					// j == i admits only the diagonal predecessor.
					horiz = score[i*tyValid+j-1]
				}
				score[i*tyValid+j] = c + math.Max(diag, horiz)
			}
		}
	}

	// Backtracking pass: one token per frame, right to left.
	path := mat.NewDense(tx, ty, nil)
	i := txValid - 1
	for j := tyValid - 1; j >= 0; j-- {
		path.Set(i, j, 1)
		if i > 0 && (i == j || score[(i-1)*tyValid+j-1] >= score[i*tyValid+j-1]) {
			i--
		}
	}
	return path, nil
}
