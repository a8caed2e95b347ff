// Package melign aligns encoded text-token priors to spectral frames and
// refines the aligned field with a conditional flow-matching sampler.
//
// 🚀 What is melign?
//
//	A small, deterministic library for the two "systems" halves of a
//	non-autoregressive speech synthesizer:
//	  • Monotonic Alignment Search (MAS): an O(Tx·Ty) dynamic program that
//	    assigns every spectral frame to exactly one text token.
//	  • Conditional Flow Matching (CFM): a single-step regression loss for
//	    training and a fixed-step Euler ODE sampler for inference.
//
// ✨ Why choose melign?
//
//   - Deterministic – seeded RNG everywhere, same seed ⇒ identical output
//   - Mask-disciplined – padding is forced to −Inf before any search and
//     re-masked after every ODE step; padded cells can never leak
//   - Fail-fast – sentinel errors for bad shapes, lengths, and NaN/Inf;
//     malformed input is never silently truncated or defaulted
//   - Pure core – the encoder, posterior encoder, vector field, vocoder and
//     feature extractor are caller-supplied capabilities, trivially swapped
//     for test doubles
//
// Under the hood, everything is organized under four subpackages:
//
//	align/ — cost matrix, monotonic alignment search, path expansion,
//	         duration loss
//	cfm/   — flow-matching loss, Euler sampler, deterministic noise
//	seq/   — validity masks, length rounding, segment slicing, statistics
//	synth/ — orchestration: TrainStep and Synthesize over external
//	         capability providers
//
// Quick ASCII example:
//
//	tokens   t0──────t1────t2
//	frames   f0 f1 f2 f3 f4 f5
//	path     t0 t0 t0 t1 t1 t2   (monotonic, one token per frame)
//
// Dive into align/doc.go and cfm/doc.go for algorithm walkthroughs.
//
//	go get github.com/katalvlaran/melign
package melign
