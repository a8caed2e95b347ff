package cfm

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Loss computes the flow-matching training objective for one example.
//
// It draws t ~ U(0,1) and ε ~ N(0,I) matching x1's shape, forms the
// interpolant x_t = (1−t)·ε + t·x1 with constant target velocity x1 − ε,
// and returns the mean squared error between field(x_t, t, cond) and that
// velocity over the first tyValid frames. Padded frames of x_t are zero
// before the field sees them, and padded residuals are excluded, so the
// loss is invariant to anything stored in padding.
//
// rng supplies the (t, ε) draws; pass a seeded source for reproducible
// training steps. A nil rng selects the deterministic default stream.
//
// Errors: ErrNilField / ErrNilMatrix on missing inputs; ErrShapeMismatch
// if x1, mu, or the field output disagree on shape; ErrInvalidLength on a
// bad validity bound; ErrNumericInstability if the loss is NaN/Inf.
func Loss(x1, mu *mat.Dense, tyValid int, spk []float64, field VectorField, rng *rand.Rand) (float64, error) {
	if field == nil {
		return 0, ErrNilField
	}
	if x1 == nil || mu == nil {
		return 0, ErrNilMatrix
	}
	ty, d := x1.Dims()
	if tyMu, dMu := mu.Dims(); tyMu != ty || dMu != d {
		return 0, ErrShapeMismatch
	}
	if tyValid <= 0 || tyValid > ty {
		return 0, ErrInvalidLength
	}
	if rng == nil {
		rng = rngFromSeed(0)
	}

	t := rng.Float64()
	eps := normalNoise(rng, ty, d, tyValid)

	xt := mat.NewDense(ty, d, nil)
	for i := 0; i < tyValid; i++ {
		for j := 0; j < d; j++ {
			xt.Set(i, j, (1-t)*eps.At(i, j)+t*x1.At(i, j))
		}
	}

	v := field(xt, t, Conditioning{Mu: mu, Spk: spk})
	if v == nil {
		return 0, ErrNilMatrix
	}
	if rv, cv := v.Dims(); rv != ty || cv != d {
		return 0, ErrShapeMismatch
	}

	sum := 0.0
	for i := 0; i < tyValid; i++ {
		for j := 0; j < d; j++ {
			r := v.At(i, j) - (x1.At(i, j) - eps.At(i, j))
			sum += r * r
		}
	}
	loss := sum / float64(tyValid*d)
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return 0, ErrNumericInstability
	}
	return loss, nil
}

// Sample integrates dx/dt = field(x, t, cond) from t=0 to t=1 with
// opts.Steps explicit Euler steps:
//
//	x_{k+1} = x_k + (1/N)·field(x_k, k/N, cond),  k = 0..N−1
//
// starting from x_0 = Temperature · ε with ε ~ N(0,I) on valid frames.
// The frame validity mask is re-applied to the state after every step,
// so nothing the field computes can leak across the padding boundary.
// The final state is the generated Ty×D feature field.
//
// Errors: ErrStepCount on Steps <= 0; ErrTemperature on a negative
// temperature; ErrNilField / ErrNilMatrix / ErrShapeMismatch /
// ErrInvalidLength as in Loss; ErrNumericInstability if any step
// produces NaN/Inf in a valid cell.
//
// Complexity: O(Steps·Ty·D) plus Steps field evaluations; strictly
// sequential across steps.
func Sample(mu *mat.Dense, tyValid int, spk []float64, field VectorField, opts Options) (*mat.Dense, error) {
	if opts.Steps <= 0 {
		return nil, ErrStepCount
	}
	if opts.Temperature < 0 {
		return nil, ErrTemperature
	}
	if field == nil {
		return nil, ErrNilField
	}
	if mu == nil {
		return nil, ErrNilMatrix
	}
	ty, d := mu.Dims()
	if tyValid <= 0 || tyValid > ty {
		return nil, ErrInvalidLength
	}

	rng := rngFromSeed(opts.Seed)
	x := normalNoise(rng, ty, d, tyValid)
	x.Scale(opts.Temperature, x)

	cond := Conditioning{Mu: mu, Spk: spk}
	n := opts.Steps
	dt := 1.0 / float64(n)
	for k := 0; k < n; k++ {
		t := float64(k) * dt
		v := field(x, t, cond)
		if v == nil {
			return nil, ErrNilMatrix
		}
		if rv, cv := v.Dims(); rv != ty || cv != d {
			return nil, ErrShapeMismatch
		}
		for i := 0; i < ty; i++ {
			for j := 0; j < d; j++ {
				if i >= tyValid {
					// Re-mask: padding stays exactly zero at every step.
					x.Set(i, j, 0)
					continue
				}
				next := x.At(i, j) + dt*v.At(i, j)
				if math.IsNaN(next) || math.IsInf(next, 0) {
					return nil, ErrNumericInstability
				}
				x.Set(i, j, next)
			}
		}
	}
	return x, nil
}
