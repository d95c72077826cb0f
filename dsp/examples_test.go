package dsp_test

import (
	"math"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/pdgraph"
	"github.com/vsariola/pdgraph/dsp"
)

func TestAllExamples(t *testing.T) {
	_, myname, _, _ := runtime.Caller(0)
	files, err := filepath.Glob(path.Join(path.Dir(myname), "..", "examples", "*.yml"))
	require.NoError(t, err, "cannot glob files in the examples directory")
	require.NotEmpty(t, files)
	for _, filename := range files {
		basename := filepath.Base(filename)
		testname := strings.TrimSuffix(basename, path.Ext(basename))
		t.Run(testname, func(t *testing.T) {
			data, err := os.ReadFile(filename)
			require.NoError(t, err)
			doc, err := pdgraph.LoadDocument(data)
			require.NoError(t, err)
			rec := &recorder{}
			rt := dsp.NewRuntime(doc.Config, dsp.WithLogger(rec))
			defer rt.Close()
			_, err = rt.Load(doc)
			require.NoError(t, err)
			require.NoError(t, rt.Start())
			buffer := make(pdgraph.AudioBuffer, 2*rt.Config().SampleRate/10)
			require.NoError(t, rt.Render(buffer))
			peak := 0.0
			for i, v := range buffer {
				f := float64(v)
				require.False(t, math.IsNaN(f) || math.IsInf(f, 0), "sample %v is not finite", i)
				peak = math.Max(peak, math.Abs(f))
			}
			assert.Greater(t, peak, 0.01, "the example should be audible")
			assert.LessOrEqual(t, peak, 1.0, "the example should not clip")
			assert.Zero(t, rec.count(dsp.ErrInvalidControlArgument.Error()))
			assert.Zero(t, rec.count("stack overflow"))
		})
	}
}
