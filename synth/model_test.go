package synth_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/melign/cfm"
	"github.com/katalvlaran/melign/synth"
)

const testFeats = 2

// testConfig is a tiny 2-band configuration so stub capabilities can
// round-trip features exactly.
func testConfig() synth.Config {
	cfg := synth.DefaultConfig()
	cfg.Features = testFeats
	cfg.Audio.Bands = testFeats
	return cfg
}

// stubEncoder emits one prior row per token (deterministic values) and a
// constant predicted log-duration of ln 2 (two frames per token).
func stubEncoder(tokens []int, _ []float64) (*mat.Dense, []float64, error) {
	tx := len(tokens)
	mu := mat.NewDense(tx, testFeats, nil)
	logw := make([]float64, tx)
	for i := 0; i < tx; i++ {
		for k := 0; k < testFeats; k++ {
			mu.Set(i, k, float64(i+1)+float64(k)/10)
		}
		logw[i] = math.Log(2)
	}
	return mu, logw, nil
}

// identityPosterior returns a copy of the target features.
func identityPosterior(target *mat.Dense, _ int, _ []float64) (*mat.Dense, error) {
	r, c := target.Dims()
	out := mat.NewDense(r, c, nil)
	out.Copy(target)
	return out, nil
}

// zeroField is the all-zero velocity estimator.
func zeroField(x *mat.Dense, _ float64, _ cfm.Conditioning) *mat.Dense {
	r, c := x.Dims()
	return mat.NewDense(r, c, nil)
}

// flattenVocoder serializes a feature field row-major; reshapeExtractor
// inverts it. Together they make the reconstruction path an exact
// round-trip, so the auxiliary loss on matching segments is zero.
func flattenVocoder(feat *mat.Dense) ([]float64, error) {
	r, c := feat.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, feat.RawRowView(i)...)
	}
	return out, nil
}

func reshapeExtractor(signal []float64, cfg synth.FeatureConfig) (*mat.Dense, error) {
	rows := len(signal) / cfg.Bands
	return mat.NewDense(rows, cfg.Bands, signal[:rows*cfg.Bands]), nil
}

func fullCaps() synth.Capabilities {
	return synth.Capabilities{
		Encoder:   stubEncoder,
		Posterior: identityPosterior,
		Field:     zeroField,
		Vocoder:   flattenVocoder,
		Extractor: reshapeExtractor,
	}
}

// rampTarget builds a Ty×2 target with a per-row ramp.
func rampTarget(ty int) *mat.Dense {
	out := mat.NewDense(ty, testFeats, nil)
	for i := 0; i < ty; i++ {
		for k := 0; k < testFeats; k++ {
			out.Set(i, k, float64(i)/4+float64(k))
		}
	}
	return out
}

// TestNewModel_Guards covers configuration and capability validation.
func TestNewModel_Guards(t *testing.T) {
	cfg := testConfig()

	_, err := synth.NewModel(cfg, synth.Capabilities{}, nil)
	assert.ErrorIs(t, err, synth.ErrMissingCapability)

	caps := fullCaps()
	caps.Posterior = nil
	_, err = synth.NewModel(cfg, caps, nil)
	assert.ErrorIs(t, err, synth.ErrMissingCapability)

	bad := cfg
	bad.Features = 0
	_, err = synth.NewModel(bad, fullCaps(), nil)
	assert.ErrorIs(t, err, synth.ErrBadConfig)

	bad = cfg
	bad.Stats.Std = 0
	_, err = synth.NewModel(bad, fullCaps(), nil)
	assert.ErrorIs(t, err, synth.ErrBadConfig)

	m, err := synth.NewModel(cfg, fullCaps(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, m)
}

// TestTrainStep_Losses runs a two-example batch end to end and checks the
// loss surface: finite duration/prior/flow losses, and an exactly-zero
// reconstruction loss because the stub vocoder/extractor pair round-trips
// features and the posterior is the identity.
func TestTrainStep_Losses(t *testing.T) {
	m, err := synth.NewModel(testConfig(), fullCaps(), nil)
	require.NoError(t, err)

	tokens := [][]int{{1, 2}, {3, 4, 5}}
	tokenLens := []int{2, 3}
	targets := []*mat.Dense{rampTarget(8), rampTarget(8)}
	targetLens := []int{6, 8}

	res, err := m.TrainStep(tokens, tokenLens, targets, targetLens, nil, rand.New(rand.NewSource(17)))
	require.NoError(t, err)

	assert.False(t, math.IsNaN(res.DurationLoss) || math.IsInf(res.DurationLoss, 0))
	assert.GreaterOrEqual(t, res.DurationLoss, 0.0)
	assert.Greater(t, res.PriorLoss, 0.0, "unit-Gaussian NLL includes the log 2π constant")
	assert.Greater(t, res.FlowLoss, 0.0, "zero field against a noisy velocity target")
	assert.InDelta(t, 0.0, res.ReconLoss, 1e-12, "round-trip vocoder/extractor must reconstruct exactly")

	require.Len(t, res.Recon, 2)
	require.Len(t, res.Target, 2)
	segRows, segCols := res.Recon[0].Dims()
	assert.Equal(t, 3, segRows, "segment length is min(targetLens)/2")
	assert.Equal(t, testFeats, segCols)
}

// TestTrainStep_Deterministic verifies identical RNG seeds reproduce the
// exact same losses.
func TestTrainStep_Deterministic(t *testing.T) {
	m, err := synth.NewModel(testConfig(), fullCaps(), nil)
	require.NoError(t, err)

	run := func() *synth.TrainResult {
		res, err := m.TrainStep(
			[][]int{{1, 2, 3}}, []int{3},
			[]*mat.Dense{rampTarget(10)}, []int{10},
			nil, rand.New(rand.NewSource(23)))
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.DurationLoss, b.DurationLoss)
	assert.Equal(t, a.PriorLoss, b.PriorLoss)
	assert.Equal(t, a.FlowLoss, b.FlowLoss)
	assert.Equal(t, a.ReconLoss, b.ReconLoss)
}

// TestTrainStep_SkipsReconWithoutVocoder verifies the auxiliary loss is
// skipped (not erred) when the vocoder/extractor capabilities are absent.
func TestTrainStep_SkipsReconWithoutVocoder(t *testing.T) {
	caps := fullCaps()
	caps.Vocoder = nil
	caps.Extractor = nil
	m, err := synth.NewModel(testConfig(), caps, nil)
	require.NoError(t, err)

	res, err := m.TrainStep(
		[][]int{{1, 2}}, []int{2},
		[]*mat.Dense{rampTarget(6)}, []int{6},
		nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.ReconLoss)
	assert.Nil(t, res.Recon)
	assert.Nil(t, res.Target)
}

// TestTrainStep_BatchGuards covers empty and mismatched batches.
func TestTrainStep_BatchGuards(t *testing.T) {
	m, err := synth.NewModel(testConfig(), fullCaps(), nil)
	require.NoError(t, err)

	_, err = m.TrainStep(nil, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, synth.ErrEmptyBatch)

	_, err = m.TrainStep([][]int{{1}}, []int{1, 2}, []*mat.Dense{rampTarget(4)}, []int{4}, nil, nil)
	assert.ErrorIs(t, err, synth.ErrBatchMismatch)
}

// TestSynthesize_ZeroFieldZeroTemperature reproduces the reference case:
// step_count=4, temperature=0, zero vector field — the refined output is
// all zeros at every frame, and the duration-driven pipeline still
// produces the expected lengths, paths, and priors.
func TestSynthesize_ZeroFieldZeroTemperature(t *testing.T) {
	m, err := synth.NewModel(testConfig(), fullCaps(), nil)
	require.NoError(t, err)

	opts := cfm.Options{Steps: 4, Temperature: 0, Seed: 5}
	res, err := m.Synthesize([][]int{{1, 2, 3}}, []int{3}, nil, opts, 1.0)
	require.NoError(t, err)

	// ln 2 log-durations → 2 frames per token → 6 valid frames, padded to 8.
	require.Equal(t, []int{6}, res.Lengths)
	refRows, refCols := res.Refined[0].Dims()
	assert.Equal(t, 8, refRows, "length rounds up to a multiple of 2^depth")
	assert.Equal(t, testFeats, refCols)

	zero := mat.NewDense(refRows, refCols, nil)
	assert.True(t, mat.Equal(zero, res.Refined[0]), "zero field + zero noise must stay all-zero")

	// The prior field copies prior rows: frames 2i, 2i+1 carry token i.
	mu, _, _ := stubEncoder([]int{1, 2, 3}, nil)
	for j := 0; j < 6; j++ {
		token := j / 2
		for k := 0; k < testFeats; k++ {
			assert.Equal(t, mu.At(token, k), res.Prior[0].At(j, k), "frame %d token %d", j, token)
		}
	}

	assert.Greater(t, res.RTF, 0.0, "real-time factor must be reported")
}

// TestSynthesize_Deterministic verifies repeated calls with the same seed
// and inputs return identical refined fields.
func TestSynthesize_Deterministic(t *testing.T) {
	m, err := synth.NewModel(testConfig(), fullCaps(), nil)
	require.NoError(t, err)

	opts := cfm.Options{Steps: 6, Temperature: 0.8, Seed: 77}
	a, err := m.Synthesize([][]int{{1, 2}}, []int{2}, nil, opts, 1.0)
	require.NoError(t, err)
	b, err := m.Synthesize([][]int{{1, 2}}, []int{2}, nil, opts, 1.0)
	require.NoError(t, err)

	assert.True(t, mat.Equal(a.Refined[0], b.Refined[0]))
	assert.True(t, mat.Equal(a.Prior[0], b.Prior[0]))
}

// TestSynthesize_LengthScale verifies the pace control stretches output
// lengths uniformly.
func TestSynthesize_LengthScale(t *testing.T) {
	m, err := synth.NewModel(testConfig(), fullCaps(), nil)
	require.NoError(t, err)

	opts := cfm.Options{Steps: 2, Temperature: 0, Seed: 1}
	res, err := m.Synthesize([][]int{{1, 2, 3}}, []int{3}, nil, opts, 2.0)
	require.NoError(t, err)
	assert.Equal(t, []int{12}, res.Lengths, "length scale 2 doubles every duration")
}

// TestSynthesize_Guards covers step count, capability, and batch errors.
func TestSynthesize_Guards(t *testing.T) {
	m, err := synth.NewModel(testConfig(), fullCaps(), nil)
	require.NoError(t, err)

	_, err = m.Synthesize([][]int{{1}}, []int{1}, nil, cfm.Options{Steps: 0}, 1.0)
	assert.ErrorIs(t, err, cfm.ErrStepCount, "step count is validated before any work")

	caps := fullCaps()
	caps.Vocoder = nil
	noVoc, err := synth.NewModel(testConfig(), caps, nil)
	require.NoError(t, err)
	_, err = noVoc.Synthesize([][]int{{1}}, []int{1}, nil, cfm.DefaultOptions(), 1.0)
	assert.ErrorIs(t, err, synth.ErrMissingCapability)

	_, err = m.Synthesize(nil, nil, nil, cfm.DefaultOptions(), 1.0)
	assert.ErrorIs(t, err, synth.ErrEmptyBatch)

	_, err = m.Synthesize([][]int{{1}}, []int{1, 2}, nil, cfm.DefaultOptions(), 1.0)
	assert.ErrorIs(t, err, synth.ErrBatchMismatch)
}
