package synth

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/melign/align"
	"github.com/katalvlaran/melign/cfm"
	"github.com/katalvlaran/melign/seq"
)

// log2Pi is log(2π), the unit-Gaussian normalization constant.
const log2Pi = 1.8378770664093453

// Model wires the external capabilities to the alignment and flow-matching
// core. It holds no mutable state across calls; every TrainStep/Synthesize
// invocation allocates its own buffers, so a Model is safe for concurrent
// use as long as its capabilities are.
type Model struct {
	cfg Config

	encoder   Encoder
	posterior PosteriorEncoder
	field     cfm.VectorField
	vocoder   Vocoder
	extractor FeatureExtractor

	log *zap.Logger
}

// Capabilities bundles the external networks handed to NewModel. Encoder,
// Posterior, and Field are always required; Vocoder and Extractor are
// required for Synthesize and for the auxiliary reconstruction loss (which
// TrainStep skips when either is absent).
type Capabilities struct {
	Encoder   Encoder
	Posterior PosteriorEncoder
	Field     cfm.VectorField
	Vocoder   Vocoder
	Extractor FeatureExtractor
}

// NewModel validates the configuration and capabilities and returns a
// ready Model. A nil logger selects zap.NewNop().
func NewModel(cfg Config, caps Capabilities, logger *zap.Logger) (*Model, error) {
	if cfg.Features <= 0 || cfg.Downsamplings < 0 || cfg.Stats.Std == 0 {
		return nil, ErrBadConfig
	}
	if caps.Encoder == nil || caps.Posterior == nil || caps.Field == nil {
		return nil, ErrMissingCapability
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		cfg:       cfg,
		encoder:   caps.Encoder,
		posterior: caps.Posterior,
		field:     caps.Field,
		vocoder:   caps.Vocoder,
		extractor: caps.Extractor,
		log:       logger,
	}, nil
}

// TrainStep runs one full training pass over a batch and returns the four
// losses (batch means) plus the reconstruction segment pairs.
//
// Flow per example: encode text → (mu_x, logw); encode targets → z; build
// the cost matrix; run MaximumPath (pure, constant downstream); derive
// durations and the duration loss; expand the prior to mu_y; masked
// Gaussian NLL between z and mu_y; flow-matching loss on (z, mu_y). When
// the vocoder and extractor are present, a random contiguous z segment of
// length min(targetLens)/2 is vocoded, re-extracted, normalized, and
// compared to the target slice with L1 × ReconWeight.
//
// rng drives segment starts and the flow-matching (t, ε) draws; nil
// selects a fixed deterministic stream.
func (m *Model) TrainStep(tokens [][]int, tokenLens []int, targets []*mat.Dense, targetLens []int, spk [][]float64, rng *rand.Rand) (*TrainResult, error) {
	b := len(tokens)
	if b == 0 {
		return nil, ErrEmptyBatch
	}
	if len(tokenLens) != b || len(targets) != b || len(targetLens) != b {
		return nil, ErrBatchMismatch
	}
	if spk != nil && len(spk) != b {
		return nil, ErrBatchMismatch
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	// Segment length for the auxiliary loss is fixed across the batch.
	segLen := targetLens[0]
	for _, l := range targetLens {
		if l < segLen {
			segLen = l
		}
	}
	segLen /= 2
	withRecon := m.vocoder != nil && m.extractor != nil && segLen >= 1

	res := &TrainResult{}
	if withRecon {
		res.Recon = make([]*mat.Dense, b)
		res.Target = make([]*mat.Dense, b)
	}

	for e := 0; e < b; e++ {
		var spkE []float64
		if spk != nil {
			spkE = spk[e]
		}
		txValid := tokenLens[e]
		tyValid := targetLens[e]
		if txValid <= 0 || tyValid <= 0 {
			return nil, ErrInvalidLength
		}

		mu, logw, err := m.encoder(tokens[e], spkE)
		if err != nil {
			return nil, err
		}
		tx, d := mu.Dims()
		if d != m.cfg.Features || len(logw) != tx || txValid > tx {
			return nil, ErrShapeMismatch
		}

		z, err := m.posterior(targets[e], tyValid, spkE)
		if err != nil {
			return nil, err
		}
		ty, dz := z.Dims()
		if dz != m.cfg.Features || tyValid > ty {
			return nil, ErrShapeMismatch
		}
		maskRows(z, tyValid)

		cost, err := align.LogPriorCost(mu, z, txValid, tyValid)
		if err != nil {
			return nil, err
		}
		path, err := align.MaximumPath(cost, txValid, tyValid)
		if err != nil {
			return nil, err
		}

		dur, err := align.Durations(path, txValid)
		if err != nil {
			return nil, err
		}
		logwTarget := make([]float64, tx)
		copy(logwTarget, align.LogDurations(dur))
		dLoss, err := align.DurationLoss(logw, logwTarget, txValid)
		if err != nil {
			return nil, err
		}
		res.DurationLoss += dLoss

		muY, err := align.ExpandPrior(path, mu)
		if err != nil {
			return nil, err
		}

		// Prior loss: masked unit-Gaussian negative log-likelihood.
		sum := 0.0
		for i := 0; i < tyValid; i++ {
			for j := 0; j < m.cfg.Features; j++ {
				r := z.At(i, j) - muY.At(i, j)
				sum += 0.5 * (r*r + log2Pi)
			}
		}
		res.PriorLoss += sum / float64(tyValid*m.cfg.Features)

		fLoss, err := cfm.Loss(z, muY, tyValid, spkE, m.field, rng)
		if err != nil {
			return nil, err
		}
		res.FlowLoss += fLoss

		if withRecon {
			rLoss, rec, tgt, err := m.reconLoss(z, targets[e], tyValid, segLen, rng)
			if err != nil {
				return nil, err
			}
			res.ReconLoss += rLoss
			res.Recon[e] = rec
			res.Target[e] = tgt
		}
	}

	n := float64(b)
	res.DurationLoss /= n
	res.PriorLoss /= n
	res.FlowLoss /= n
	res.ReconLoss /= n

	m.log.Debug("train step",
		zap.Int("batch", b),
		zap.Float64("duration_loss", res.DurationLoss),
		zap.Float64("prior_loss", res.PriorLoss),
		zap.Float64("flow_loss", res.FlowLoss),
		zap.Float64("recon_loss", res.ReconLoss),
	)
	return res, nil
}

// reconLoss vocodes a random contiguous latent segment, re-extracts its
// features, and compares them to the matching target slice with L1.
func (m *Model) reconLoss(z, target *mat.Dense, tyValid, segLen int, rng *rand.Rand) (float64, *mat.Dense, *mat.Dense, error) {
	start, err := seq.RandSegmentStart(rng, tyValid, segLen)
	if err != nil {
		return 0, nil, nil, err
	}
	zSeg, err := seq.SliceRows(z, start, segLen)
	if err != nil {
		return 0, nil, nil, err
	}
	tgtSeg, err := seq.SliceRows(target, start, segLen)
	if err != nil {
		return 0, nil, nil, err
	}

	signal, err := m.vocoder(zSeg)
	if err != nil {
		return 0, nil, nil, err
	}
	feat, err := m.extractor(signal, m.cfg.Audio)
	if err != nil {
		return 0, nil, nil, err
	}
	featN, err := seq.Normalize(feat, m.cfg.Stats.Mean, m.cfg.Stats.Std)
	if err != nil {
		return 0, nil, nil, err
	}

	rows, cols := featN.Dims()
	if cols != m.cfg.Features {
		return 0, nil, nil, ErrShapeMismatch
	}
	// Extractor frame counts can differ from segLen by boundary effects;
	// compare the overlapping prefix.
	if rows > segLen {
		rows = segLen
	}
	if rows == 0 {
		return 0, nil, nil, ErrShapeMismatch
	}
	sum := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			sum += math.Abs(tgtSeg.At(i, j) - featN.At(i, j))
		}
	}
	return m.cfg.ReconWeight * sum / float64(rows*cols), featN, tgtSeg, nil
}

// Synthesize generates feature fields for a batch of token sequences.
//
// Flow per example: encode text → (mu_x, logw); ceil-rounded scaled
// durations → output length (clamped to ≥ 1 frame, rounded up to a
// multiple of 2^Downsamplings); duration-derived path → mu_y; ODE sampling
// with opts.Steps Euler steps and opts.Temperature initial noise; vocoder
// → signal → feature extractor → normalized and denormalized fields.
//
// The reported RTF is wall-clock time divided by output audio duration
// (valid frames × hop / sample rate).
func (m *Model) Synthesize(tokens [][]int, tokenLens []int, spk [][]float64, opts cfm.Options, lengthScale float64) (*SynthesisResult, error) {
	if opts.Steps <= 0 {
		return nil, cfm.ErrStepCount
	}
	if m.vocoder == nil || m.extractor == nil {
		return nil, ErrMissingCapability
	}
	b := len(tokens)
	if b == 0 {
		return nil, ErrEmptyBatch
	}
	if len(tokenLens) != b || (spk != nil && len(spk) != b) {
		return nil, ErrBatchMismatch
	}

	started := time.Now()
	res := &SynthesisResult{
		Prior:        make([]*mat.Dense, b),
		Refined:      make([]*mat.Dense, b),
		Denormalized: make([]*mat.Dense, b),
		Paths:        make([]*mat.Dense, b),
		Lengths:      make([]int, b),
	}

	for e := 0; e < b; e++ {
		var spkE []float64
		if spk != nil {
			spkE = spk[e]
		}
		txValid := tokenLens[e]
		if txValid <= 0 {
			return nil, ErrInvalidLength
		}

		mu, logw, err := m.encoder(tokens[e], spkE)
		if err != nil {
			return nil, err
		}
		tx, d := mu.Dims()
		if d != m.cfg.Features || len(logw) != tx || txValid > tx {
			return nil, ErrShapeMismatch
		}

		dur, err := align.ScaledDurations(logw, txValid, lengthScale)
		if err != nil {
			return nil, err
		}
		total := 0
		for _, w := range dur {
			total += w
		}
		if total < 1 {
			// A degenerate prediction still yields one frame.
			dur[0] = 1
			total = 1
		}
		tyMax := seq.FixLength(total, m.cfg.Downsamplings)

		path, err := align.PathFromDurations(dur, tyMax)
		if err != nil {
			return nil, err
		}
		muY, err := align.ExpandPrior(path, mu)
		if err != nil {
			return nil, err
		}

		sampleOpts := opts
		sampleOpts.Seed = cfm.DeriveSeed(opts.Seed, uint64(e))
		refined, err := cfm.Sample(muY, total, spkE, m.field, sampleOpts)
		if err != nil {
			return nil, err
		}

		signal, err := m.vocoder(refined)
		if err != nil {
			return nil, err
		}
		feat, err := m.extractor(signal, m.cfg.Audio)
		if err != nil {
			return nil, err
		}
		featN, err := seq.Normalize(feat, m.cfg.Stats.Mean, m.cfg.Stats.Std)
		if err != nil {
			return nil, err
		}

		res.Prior[e] = muY
		res.Refined[e] = featN
		res.Denormalized[e] = feat
		res.Paths[e] = path
		res.Lengths[e] = total
	}

	frames := 0
	for _, l := range res.Lengths {
		frames += l
	}
	elapsed := time.Since(started).Seconds()
	res.RTF = elapsed * float64(m.cfg.Audio.SampleRate) / (float64(frames) * float64(m.cfg.Audio.Hop))

	m.log.Debug("synthesis complete",
		zap.Int("batch", b),
		zap.Int("frames", frames),
		zap.Float64("rtf", res.RTF),
	)
	return res, nil
}

// maskRows zeroes every row of x at index >= valid.
func maskRows(x *mat.Dense, valid int) {
	rows, cols := x.Dims()
	for i := valid; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x.Set(i, j, 0)
		}
	}
}
