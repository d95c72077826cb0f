package dsp_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vsariola/pdgraph"
	"github.com/vsariola/pdgraph/dsp"
)

// recorder collects the reports of a runtime.
type recorder struct {
	lines []string
}

func (r *recorder) Printf(format string, v ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

func (r *recorder) count(substr string) int {
	n := 0
	for _, l := range r.lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

const (
	testSampleRate = 1000
	testBlockSize  = 4
)

func newTestRuntime(t *testing.T) (*dsp.Runtime, *recorder) {
	t.Helper()
	rec := &recorder{}
	rt := dsp.NewRuntime(pdgraph.Config{SampleRate: testSampleRate, BlockSize: testBlockSize}, dsp.WithLogger(rec))
	t.Cleanup(rt.Close)
	return rt, rec
}

func add(t *testing.T, p *dsp.Patch, typ string, args ...any) dsp.Object {
	t.Helper()
	obj, err := p.AddObject(typ, pdgraph.Atoms(args...))
	require.NoError(t, err, "could not add %v", typ)
	return obj
}

func connect(t *testing.T, p *dsp.Patch, source dsp.Object, outlet int, sink dsp.Object, inlet int) {
	t.Helper()
	require.NoError(t, p.Connect(source, outlet, sink, inlet))
}

func tick(t *testing.T, p *dsp.Patch) (left, right []float32) {
	t.Helper()
	require.NoError(t, p.Tick())
	out := p.Output()
	for i := 0; i < len(out); i += 2 {
		left = append(left, out[i])
		right = append(right, out[i+1])
	}
	return left, right
}

func constant(v float32) []float32 {
	ret := make([]float32, testBlockSize)
	for i := range ret {
		ret[i] = v
	}
	return ret
}

func indexOf(order []dsp.Object, obj dsp.Object) int {
	for i, o := range order {
		if o == obj {
			return i
		}
	}
	return -1
}
