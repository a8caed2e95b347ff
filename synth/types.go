package synth

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrMissingCapability indicates that a required external capability
	// (encoder, posterior encoder, vector field, vocoder, extractor) is nil.
	ErrMissingCapability = errors.New("synth: required external capability is nil")

	// ErrBadConfig indicates an unusable model configuration
	// (non-positive feature dimension, zero std, negative depth).
	ErrBadConfig = errors.New("synth: invalid model configuration")

	// ErrEmptyBatch indicates a batch with zero examples.
	ErrEmptyBatch = errors.New("synth: batch must contain at least one example")

	// ErrBatchMismatch indicates per-example slices of differing lengths.
	ErrBatchMismatch = errors.New("synth: batch slices disagree on length")

	// ErrInvalidLength indicates a non-positive token or frame length
	// reaching the pipeline.
	ErrInvalidLength = errors.New("synth: non-positive sequence length")

	// ErrShapeMismatch indicates a capability output with the wrong shape.
	ErrShapeMismatch = errors.New("synth: capability output has wrong shape")
)

// FeatureConfig holds the spectral feature-extraction parameters threaded
// through the external extractor. Every field is explicit; there are no
// hidden defaults, so independent runs are reproducible by construction.
type FeatureConfig struct {
	Bands      int     // number of spectral bands (feature dimension)
	SampleRate int     // samples per second of the raw signal
	Hop        int     // hop size in samples between adjacent frames
	Window     int     // analysis window size in samples
	FFTSize    int     // FFT length in samples
	FMin       float64 // lower frequency bound
	FMax       float64 // upper frequency bound
}

// Stats carries the dataset feature statistics used to normalize and
// denormalize feature fields.
type Stats struct {
	Mean float64
	Std  float64
}

// Encoder maps one token sequence (plus speaker conditioning) to per-token
// prior means (Tx×D), predicted log-durations (len Tx), implicitly defining
// the token validity via the caller-supplied token length.
type Encoder func(tokens []int, spk []float64) (mu *mat.Dense, logw []float64, err error)

// PosteriorEncoder maps one target feature sequence to its latent
// representation z (Ty×D); rows at index >= tyValid are padding.
type PosteriorEncoder func(target *mat.Dense, tyValid int, spk []float64) (*mat.Dense, error)

// Vocoder reconstructs a raw signal from a feature field.
type Vocoder func(feat *mat.Dense) ([]float64, error)

// FeatureExtractor maps a raw signal back to a feature field under an
// explicit extraction configuration.
type FeatureExtractor func(signal []float64, cfg FeatureConfig) (*mat.Dense, error)

// Config is the immutable model configuration.
type Config struct {
	// Features is the feature dimensionality D shared by priors, targets,
	// and generated fields.
	Features int

	// Downsamplings is the vector-field network's internal downsampling
	// depth; generated lengths are rounded up to multiples of 2^Downsamplings.
	Downsamplings int

	// Audio configures the external feature extractor.
	Audio FeatureConfig

	// Stats normalizes/denormalizes feature fields.
	Stats Stats

	// ReconWeight scales the auxiliary reconstruction L1 loss.
	ReconWeight float64
}

// DefaultConfig mirrors the conventional 80-band / 22.05 kHz setup.
func DefaultConfig() Config {
	return Config{
		Features:      80,
		Downsamplings: 2,
		Audio: FeatureConfig{
			Bands:      80,
			SampleRate: 22050,
			Hop:        256,
			Window:     1024,
			FFTSize:    1024,
			FMin:       0,
			FMax:       8000,
		},
		Stats:       Stats{Mean: 0, Std: 1},
		ReconWeight: 45,
	}
}

// TrainResult aggregates the four training losses (batch means) and the
// reconstruction/target segment pairs used by the auxiliary loss.
type TrainResult struct {
	DurationLoss float64
	PriorLoss    float64
	FlowLoss     float64
	ReconLoss    float64

	// Recon and Target hold the per-example reconstructed and reference
	// feature segments; nil when the auxiliary loss was skipped.
	Recon  []*mat.Dense
	Target []*mat.Dense
}

// SynthesisResult is the outcome of one Synthesize call.
type SynthesisResult struct {
	// Prior holds the frame-aligned prior fields mu_y (one per example,
	// padded to the rounded length).
	Prior []*mat.Dense

	// Refined holds the normalized feature fields after ODE sampling,
	// vocoding, and re-extraction.
	Refined []*mat.Dense

	// Denormalized holds the same fields in raw (denormalized) units.
	Denormalized []*mat.Dense

	// Paths holds the duration-derived alignment paths.
	Paths []*mat.Dense

	// Lengths holds the valid frame count per example; frames beyond a
	// length are rounding padding and should be discarded.
	Lengths []int

	// RTF is wall-clock synthesis time divided by output audio duration.
	RTF float64
}
