package dsp

import (
	"math"

	"github.com/vsariola/pdgraph"
)

type lineMode int

const (
	lineConst lineMode = iota // emit y0 every sample
	lineRamp                  // interpolate from y0 to y1
)

// line is a ramp generator ("line~"). A single number jumps to that value; a
// pair [target, durationMs] ramps linearly from the current value to target
// in durationMs·sampleRate/1000 samples. The sample whose index reaches the
// duration, and every sample after it, is exactly the target; completion
// fires once, in the block where the target is reached.
type line struct {
	Node
	done  StopNotifier
	mode  lineMode
	y0    float64
	y1    float64
	slope float64
	n     int
	nMax  float64
}

func newLine(*Patch, pdgraph.Message) (Object, error) { return &line{}, nil }

func (l *line) OnComplete(callback func()) { l.done.OnComplete(callback) }

func (l *line) Render() {
	out := l.Outlet(0).Buffer()
	switch l.mode {
	case lineConst:
		v := float32(l.y0)
		for i := range out {
			out[i] = v
		}
	case lineRamp:
		for i := range out {
			if float64(l.n) >= l.nMax {
				v := float32(l.y1)
				for j := i; j < len(out); j++ {
					out[j] = v
				}
				l.toConst(l.y1)
				l.done.Fire()
				return
			}
			out[i] = float32(float64(l.n)*l.slope + l.y0)
			l.n++
		}
	}
}

func (l *line) HandleMessage(inlet int, msg pdgraph.Message) {
	if inlet != 0 {
		return
	}
	switch len(msg) {
	case 0:
		return
	case 1:
		v := msg.Float()
		if math.IsNaN(v) {
			l.invalid(msg, "expected a number")
			return
		}
		l.toConst(v)
	default:
		y1, duration := msg[0].Float(), msg[1].Float()
		if math.IsNaN(y1) || math.IsNaN(duration) {
			l.invalid(msg, "expected target and duration")
			return
		}
		l.toRamp(y1, duration)
	}
}

// Stop abandons a ramp in progress, holding the current value, and fires the
// pending completion callbacks.
func (l *line) Stop() {
	if l.mode == lineRamp {
		l.toConst(l.value())
	}
	l.done.Fire()
}

// value is the value the line would emit next.
func (l *line) value() float64 {
	if l.mode == lineRamp {
		if float64(l.n) >= l.nMax {
			return l.y1
		}
		return float64(l.n)*l.slope + l.y0
	}
	return l.y0
}

func (l *line) toConst(v float64) {
	l.y0 = v
	l.mode = lineConst
}

func (l *line) toRamp(target, durationMs float64) {
	l.y0 = l.value()
	l.y1 = target
	l.n = 0
	l.nMax = durationMs * l.SampleRate() / 1000
	l.slope = 0
	if l.nMax > 0 {
		l.slope = (l.y1 - l.y0) / l.nMax
	}
	l.mode = lineRamp
}
