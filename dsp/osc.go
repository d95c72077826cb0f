package dsp

import (
	"math"

	"github.com/vsariola/pdgraph"
)

// osc is a cosine oscillator ("osc~ [freq]"). The frequency is the constant
// set by messages on the left inlet, or the signal on the left inlet when a
// signal source is connected to it. The phase advances before each sample is
// emitted, so the first sample after a reset is already one step in. A bang on the right inlet resets the
// phase to 0; a number sets the phase, in cycles.
type osc struct {
	Node
	freq  float64
	phase float64
}

func newOsc(_ *Patch, args pdgraph.Message) (Object, error) {
	freq, err := floatArg(args, 0, 0)
	if err != nil {
		return nil, err
	}
	return &osc{freq: freq}, nil
}

func (o *osc) Render() {
	out := o.Outlet(0).Buffer()
	k := 2 * math.Pi / o.SampleRate()
	if in := o.Inlet(0); in.HasSignalSources() {
		freq := in.Buffer()
		for i := range out {
			o.phase += k * float64(freq[i])
			out[i] = float32(math.Cos(o.phase))
		}
	} else {
		step := k * o.freq
		for i := range out {
			o.phase += step
			out[i] = float32(math.Cos(o.phase))
		}
	}
	o.phase = math.Mod(o.phase, 2*math.Pi)
}

func (o *osc) HandleMessage(inlet int, msg pdgraph.Message) {
	switch inlet {
	case 0:
		f := msg.Float()
		if math.IsNaN(f) {
			o.invalid(msg, "frequency must be a number")
			return
		}
		o.freq = f
	case 1:
		if msg.IsBang() {
			o.phase = 0
			return
		}
		f := msg.Float()
		if math.IsNaN(f) {
			o.invalid(msg, "phase must be a number or bang")
			return
		}
		o.phase = 2 * math.Pi * f
	}
}

// dac is the audio output ("dac~"): it adds its left and right inlets into
// the interleaved output buffer of the root patch. Several dac~ objects mix.
type dac struct {
	Node
}

func newDac(*Patch, pdgraph.Message) (Object, error) { return &dac{}, nil }

func (d *dac) Render() {
	out := d.patch.Root().output
	left, right := d.Inlet(0).Buffer(), d.Inlet(1).Buffer()
	for i := range left {
		out[2*i] += left[i]
		out[2*i+1] += right[i]
	}
}
