// Package cfm implements conditional flow matching: a regression objective
// for training a vector-field estimator, and a fixed-step Euler sampler
// that integrates the learned field from noise to data.
//
// 🚀 What is flow matching?
//
//	A generative process along scalar time t ∈ [0,1]. A straight path
//	x_t = (1−t)·ε + t·x1 connects Gaussian noise ε to a data sample x1;
//	its constant velocity is x1 − ε. Training regresses an external
//	estimator f(x_t, t, conditioning) onto that velocity. Sampling starts
//	from (temperature-scaled) noise at t=0 and integrates dx/dt = f with
//	N explicit Euler steps.
//
// ✨ Key properties:
//
//   - The vector field is a caller-supplied capability (VectorField);
//     swap in a zero field or identity field for tests
//   - The frame validity mask is re-applied to the state after every
//     step and to every loss residual — nothing computed inside f can
//     leak across the padding boundary
//   - Deterministic: noise comes from an explicit seeded source; seed 0
//     maps to a fixed default, so the zero Options value is reproducible
//   - Integration is strictly sequential over its N steps; batch items
//     are independent and use decorrelated noise streams (DeriveSeed)
//
// ⚙️ Usage:
//
//	opts := cfm.DefaultOptions()
//	opts.Steps = 10
//	opts.Temperature = 0.7
//	x, err := cfm.Sample(muY, tyValid, spk, field, opts)
//
// Performance: O(N·Ty·D) per sample plus N field evaluations; fresh
// buffers per call, nothing shared across invocations.
package cfm
