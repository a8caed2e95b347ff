// Package align computes the monotonic alignment between text-token priors
// and spectral frames, and expands aligned priors to frame resolution.
//
// 🚀 What is align?
//
//	Given per-token prior means mu (Tx×D) and per-frame target features z
//	(Ty×D), align answers "which token produced which frame?" under a
//	monotonicity constraint: as the frame index advances, the assigned
//	token index never decreases.
//
// The pipeline:
//  1. LogPriorCost — build a Tx×Ty Gaussian log-likelihood cost matrix
//     additively (one matmul plus row/column norms; no Tx×Ty×D tensor).
//     Padded cells are forced to −Inf here, before any search runs.
//  2. MaximumPath — Viterbi-style forward DP plus backtracking pass that
//     returns the maximum-score monotonic path as a binary Tx×Ty matrix.
//  3. Durations / PathFromDurations / ScaledDurations — convert between
//     paths and per-token frame counts; the duration-driven direction is
//     used at inference time when no target frames exist to search over.
//  4. ExpandPrior — exact row selection (pathᵀ·mu) producing the Ty×D
//     frame-aligned prior; no interpolation, no blending.
//  5. DurationLoss / LogDurations — masked regression loss between
//     predicted and alignment-derived log-durations.
//
// ✨ Guarantees:
//
//   - Monotonic, surjective paths: every valid frame maps to exactly one
//     token; the path starts at (0,0) and ends at the last valid cell
//   - Pure and non-differentiable by construction: MaximumPath is a plain
//     combinatorial subroutine; its output is a constant downstream
//   - Fail-fast on malformed shapes, inconsistent validity bounds, and
//     NaN contamination; never silently truncates
//
// Performance:
//
//   - LogPriorCost: O(Tx·Ty·D) via one matmul
//   - MaximumPath:  O(Tx·Ty) time and memory per example
//   - Batch items are independent; run them in any order
//
// See example_test.go for a worked 3-token / 6-frame alignment.
package align
