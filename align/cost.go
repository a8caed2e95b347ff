package align

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// log2Pi is log(2π), the normalization constant of the unit Gaussian.
const log2Pi = 1.8378770664093453

// LogPriorCost builds the Tx×Ty alignment cost matrix between per-token
// prior means mu (Tx×D) and per-frame target features z (Ty×D), assuming
// unit covariance:
//
//	cost[i][j] = −0.5·D·log(2π) − 0.5·‖z_j‖² + ⟨z_j, mu_i⟩ − 0.5·‖mu_i‖²
//
// The four terms are computed additively — one Tx×Ty matmul plus per-row
// and per-column squared norms — so no Tx×Ty×D intermediate is ever formed.
//
// Cells outside the valid region [0,txValid)×[0,tyValid) are set to −Inf
// after the arithmetic, before any search can observe them.
//
// Errors: ErrNilMatrix on nil inputs; ErrShapeMismatch if mu and z disagree
// on D; ErrInvalidLength if a validity bound is non-positive or exceeds the
// matrix dimensions; ErrNumericInstability if the valid region contains NaN
// or Inf (padding is the only place −Inf belongs).
//
// Complexity: O(Tx·Ty·D) time, O(Tx·Ty) memory.
func LogPriorCost(mu, z *mat.Dense, txValid, tyValid int) (*mat.Dense, error) {
	if mu == nil || z == nil {
		return nil, ErrNilMatrix
	}
	tx, d := mu.Dims()
	ty, dz := z.Dims()
	if d != dz {
		return nil, ErrShapeMismatch
	}
	if txValid <= 0 || txValid > tx || tyValid <= 0 || tyValid > ty {
		return nil, ErrInvalidLength
	}

	// Cross term ⟨z_j, mu_i⟩ for all (i,j) at once.
	cost := mat.NewDense(tx, ty, nil)
	cost.Mul(mu, z.T())

	// Per-token and per-frame norm terms, each computed once.
	muNorm := make([]float64, tx)
	for i := 0; i < tx; i++ {
		row := mu.RawRowView(i)
		muNorm[i] = 0.5 * floats.Dot(row, row)
	}
	zNorm := make([]float64, ty)
	for j := 0; j < ty; j++ {
		row := z.RawRowView(j)
		zNorm[j] = 0.5 * floats.Dot(row, row)
	}

	base := -0.5 * log2Pi * float64(d)
	negInf := math.Inf(-1)
	for i := 0; i < tx; i++ {
		for j := 0; j < ty; j++ {
			if i >= txValid || j >= tyValid {
				cost.Set(i, j, negInf)
				continue
			}
			v := base - zNorm[j] + cost.At(i, j) - muNorm[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, ErrNumericInstability
			}
			cost.Set(i, j, v)
		}
	}
	return cost, nil
}
