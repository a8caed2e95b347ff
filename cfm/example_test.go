package cfm_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/melign/cfm"
)

// //////////////////////////////////////////////////////////////////////////////
// ExampleSample
// //////////////////////////////////////////////////////////////////////////////
//
// Scenario:
//
//	Integrate a constant unit vector field over 4 frames (3 valid) from a
//	zero start. N Euler steps of size 1/N accumulate to exactly 1 on every
//	valid cell; the padded frame stays pinned at zero by re-masking.
//
// Complexity: O(Steps·Ty·D) plus one field evaluation per step
func ExampleSample() {
	mu := mat.NewDense(4, 2, nil)
	ones := func(x *mat.Dense, _ float64, _ cfm.Conditioning) *mat.Dense {
		r, c := x.Dims()
		out := mat.NewDense(r, c, nil)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				out.Set(i, j, 1)
			}
		}
		return out
	}

	opts := cfm.Options{Steps: 10, Temperature: 0, Seed: 1}
	x, err := cfm.Sample(mu, 3, nil, ones, opts)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	for i := 0; i < 4; i++ {
		fmt.Printf("frame %d: [%.0f %.0f]\n", i, x.At(i, 0), x.At(i, 1))
	}
	// Output:
	// frame 0: [1 1]
	// frame 1: [1 1]
	// frame 2: [1 1]
	// frame 3: [0 0]
}
