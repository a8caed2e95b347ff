// Package seq provides sequence-length bookkeeping shared by the alignment
// and sampling stages: validity masks, downsampling-compatible length
// rounding, random contiguous segment extraction, and feature-statistics
// normalization.
//
// The length-rounding convention (FixLength) exists because the external
// vector-field network downsamples its input 2^depth times internally;
// frame counts handed to it must be multiples of 2^depth. Callers pad up
// front and discard the extra frames from final results.
//
// All helpers are pure, deterministic, and allocate fresh outputs; nothing
// is shared across calls.
package seq
