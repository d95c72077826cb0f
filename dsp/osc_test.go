package dsp_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/pdgraph"
	"github.com/vsariola/pdgraph/dsp"
	"gonum.org/v1/gonum/dsp/fourier"
)

func TestOscSpectrum(t *testing.T) {
	const n = 1024
	rt := dsp.NewRuntime(pdgraph.Config{SampleRate: n, BlockSize: 64}, dsp.WithLogger(&recorder{}))
	p, err := rt.LoadPatch(pdgraph.Patch{
		Objects:     []pdgraph.Object{{Type: "osc~", Args: pdgraph.Float(64)}, {Type: "dac~"}},
		Connections: []pdgraph.Connection{{Source: 0, Sink: 1}, {Source: 0, Sink: 1, Inlet: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NoError(t, rt.Start())
	buffer := make(pdgraph.AudioBuffer, 2*n)
	require.NoError(t, rt.Render(buffer))

	left := make([]float64, n)
	for i := range left {
		left[i] = float64(buffer[2*i])
		assert.Equal(t, buffer[2*i], buffer[2*i+1])
	}
	coeffs := fourier.NewFFT(n).Coefficients(nil, left)
	peak := 0
	for i, c := range coeffs {
		if cmplx.Abs(c) > cmplx.Abs(coeffs[peak]) {
			peak = i
		}
	}
	assert.Equal(t, 64, peak)
	assert.InDelta(t, n/2, cmplx.Abs(coeffs[peak]), 1)
	assert.InDelta(t, math.Cos(2*math.Pi*64/n), left[0], 1e-6, "the phase advances before the first sample")
}

func TestOscFrequencyModulation(t *testing.T) {
	rt, _ := newTestRuntime(t)
	p := rt.CreatePatch()
	freq := add(t, p, "line~")
	osc := add(t, p, "osc~", 123)
	dac := add(t, p, "dac~")
	connect(t, p, freq, 0, osc, 0)
	connect(t, p, osc, 0, dac, 0)
	// a quarter of the sample rate advances a quarter cycle per sample
	freq.HandleMessage(0, pdgraph.Float(testSampleRate/4))
	left, _ := tick(t, p)
	assert.InDeltaSlice(t, []float32{0, -1, 0, 1}, left, 1e-6)
}

func TestOscPhaseReset(t *testing.T) {
	rt, rec := newTestRuntime(t)
	p := rt.CreatePatch()
	osc := add(t, p, "osc~", testSampleRate/4)
	dac := add(t, p, "dac~")
	connect(t, p, osc, 0, dac, 0)
	tick(t, p)
	osc.HandleMessage(1, pdgraph.Float(0.5))
	left, _ := tick(t, p)
	assert.InDeltaSlice(t, []float32{0, 1, 0, -1}, left, 1e-6)
	osc.HandleMessage(1, pdgraph.Bang())
	osc.HandleMessage(0, pdgraph.Float(0))
	left, _ = tick(t, p)
	assert.Equal(t, constant(1), left)
	osc.HandleMessage(1, pdgraph.Atoms("reset"))
	assert.Equal(t, 1, rec.count("invalid control argument"))
	assert.False(t, math.IsNaN(float64(left[0])))
}
