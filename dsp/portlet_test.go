package dsp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/pdgraph/dsp"
)

func TestConnectKinds(t *testing.T) {
	rt, _ := newTestRuntime(t)
	p := rt.CreatePatch()
	osc := add(t, p, "osc~", 440)
	prt := add(t, p, "print")
	dac := add(t, p, "dac~")
	lb := add(t, p, "loadbang")

	assert.ErrorIs(t, p.Connect(osc, 0, prt, 0), dsp.ErrKindMismatch, "signal outlet to message inlet")
	assert.ErrorIs(t, p.Connect(lb, 0, dac, 0), dsp.ErrKindMismatch, "message outlet to signal inlet")
	assert.NoError(t, p.Connect(lb, 0, osc, 0), "message outlet to value-or-signal inlet")
	assert.NoError(t, p.Connect(osc, 0, dac, 0))
	assert.ErrorIs(t, p.Connect(osc, 0, dac, 0), dsp.ErrAlreadyConnected)
	assert.ErrorIs(t, p.Connect(osc, 1, dac, 0), dsp.ErrPortletIndex)
	assert.ErrorIs(t, p.Connect(osc, 0, dac, 2), dsp.ErrPortletIndex)
	assert.ErrorIs(t, p.Disconnect(osc, 0, dac, 1), dsp.ErrNotConnected)
	assert.Len(t, p.Connections(), 2)
}

func TestConnectAcrossPatches(t *testing.T) {
	rt, _ := newTestRuntime(t)
	p := rt.CreatePatch()
	q := rt.CreatePatch()
	osc := add(t, p, "osc~")
	dac := add(t, q, "dac~")
	assert.Error(t, p.Connect(osc, 0, dac, 0))
	assert.Error(t, q.Connect(osc, 0, dac, 0))
}

func TestPortletIntrospection(t *testing.T) {
	rt, _ := newTestRuntime(t)
	p := rt.CreatePatch()
	osc := add(t, p, "osc~", 440)
	mul := add(t, p, "*~")
	connect(t, p, osc, 0, mul, 1)

	out := osc.(interface{ Outlet(int) *dsp.Outlet }).Outlet(0)
	in := mul.(interface{ Inlet(int) *dsp.Inlet }).Inlet(1)
	assert.Equal(t, dsp.KindSignal, out.Kind())
	assert.Equal(t, dsp.KindSignal, in.Kind())
	assert.True(t, in.AcceptsMessages())
	assert.True(t, in.HasSignalSources())
	assert.Equal(t, []*dsp.Inlet{in}, out.Sinks())
	assert.Equal(t, []*dsp.Outlet{out}, in.Sources())
	assert.Same(t, osc, out.Object())
	assert.Equal(t, 1, in.Index())
	assert.Len(t, out.Buffer(), testBlockSize)
}

func TestFanInSums(t *testing.T) {
	rt, _ := newTestRuntime(t)
	p := rt.CreatePatch()
	a := add(t, p, "osc~", 0)
	b := add(t, p, "osc~", 0)
	c := add(t, p, "osc~", 0)
	dac := add(t, p, "dac~")
	connect(t, p, a, 0, dac, 0)
	connect(t, p, b, 0, dac, 0)
	connect(t, p, c, 0, dac, 0)
	connect(t, p, a, 0, dac, 1)
	require.NoError(t, rt.Start())
	left, right := tick(t, p)
	assert.Equal(t, constant(3), left)
	assert.Equal(t, constant(1), right)
}

func TestUnconnectedSignalInletIsSilent(t *testing.T) {
	rt, _ := newTestRuntime(t)
	p := rt.CreatePatch()
	add(t, p, "dac~")
	left, right := tick(t, p)
	assert.Equal(t, constant(0), left)
	assert.Equal(t, constant(0), right)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "signal", dsp.KindSignal.String())
	assert.Equal(t, "message", dsp.KindMessage.String())
	assert.Equal(t, "value-or-signal", dsp.KindValueOrSignal.String())
}
