package dsp

import (
	"math"

	"github.com/viterin/vek/vek32"
	"github.com/vsariola/pdgraph"
)

type arithOp int

const (
	opMul arithOp = iota
	opDiv
	opAdd
	opSub
)

// arith is a binary signal operator ("*~", "/~", "+~", "-~"). The right
// operand is the signal on the right inlet when one is connected, otherwise
// the constant given as creation argument or by a number on the right inlet.
// Division by zero yields 0.
type arith struct {
	Node
	op    arithOp
	value float32
}

func arithmetic(op arithOp) func(*Patch, pdgraph.Message) (Object, error) {
	return func(_ *Patch, args pdgraph.Message) (Object, error) {
		v, err := floatArg(args, 0, 0)
		if err != nil {
			return nil, err
		}
		return &arith{op: op, value: float32(v)}, nil
	}
}

func (a *arith) Render() {
	out := a.Outlet(0).Buffer()
	x := a.Inlet(0).Buffer()
	if right := a.Inlet(1); right.HasSignalSources() {
		y := right.Buffer()
		switch a.op {
		case opMul:
			vek32.Mul_Into(out, x, y)
		case opAdd:
			vek32.Add_Into(out, x, y)
		case opSub:
			vek32.Sub_Into(out, x, y)
		case opDiv:
			for i := range out {
				if y[i] == 0 {
					out[i] = 0
				} else {
					out[i] = x[i] / y[i]
				}
			}
		}
		return
	}
	switch a.op {
	case opMul:
		vek32.MulNumber_Into(out, x, a.value)
	case opAdd:
		vek32.AddNumber_Into(out, x, a.value)
	case opSub:
		vek32.SubNumber_Into(out, x, a.value)
	case opDiv:
		if a.value == 0 {
			vek32.Zeros_Into(out, len(out))
		} else {
			vek32.DivNumber_Into(out, x, a.value)
		}
	}
}

func (a *arith) HandleMessage(inlet int, msg pdgraph.Message) {
	if inlet != 1 {
		return
	}
	v := msg.Float()
	if math.IsNaN(v) {
		a.invalid(msg, "expected a number")
		return
	}
	a.value = float32(v)
}
