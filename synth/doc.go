// Package synth orchestrates training and inference over the alignment
// (align), flow-matching (cfm), and sequence (seq) primitives, together
// with five caller-supplied external capabilities: a text encoder, a
// posterior encoder, a vector-field estimator, a vocoder, and a feature
// extractor. The internal architecture of those networks is out of scope
// here; only their array-in/array-out contracts matter.
//
// ⚙️ Training (TrainStep):
//
//	text ─encoder→ (mu_x, logw)        targets ─posterior→ z
//	LogPriorCost(mu_x, z) → MaximumPath → durations → DurationLoss
//	ExpandPrior → mu_y → prior NLL + cfm.Loss
//	random z segment ─vocoder→ signal ─extractor→ reconstruction L1
//
// The alignment search runs as a pure combinatorial subroutine; its result
// is a constant for every downstream loss.
//
// ⚙️ Inference (Synthesize):
//
//	text ─encoder→ (mu_x, logw) → ScaledDurations → PathFromDurations
//	→ mu_y → cfm.Sample (N Euler steps) → vocoder → extractor
//	→ normalized + denormalized feature fields, plus the real-time factor
//	(wall-clock seconds ÷ output audio seconds).
//
// Configuration (feature dimensionality, downsampling depth, audio/feature
// extraction parameters, data statistics) is an explicit immutable value on
// the Model — never a hidden default — to keep runs reproducible.
//
// Logging goes through an injected *zap.Logger; pass nil for a no-op.
package synth
