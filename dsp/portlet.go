package dsp

import (
	"github.com/viterin/vek/vek32"
)

// Kind tells whether a portlet carries signals (a sample buffer per block)
// or discrete messages.
type Kind int

const (
	KindMessage Kind = iota
	KindSignal
	// KindValueOrSignal is only used when declaring inlets: the inlet is a
	// signal inlet that also accepts message connections, typically to set
	// a constant used when no signal is connected.
	KindValueOrSignal
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindSignal:
		return "signal"
	case KindValueOrSignal:
		return "value-or-signal"
	}
	return "unknown"
}

type (
	// Inlet is an input endpoint of an object.
	Inlet struct {
		owner   Object
		index   int
		kind    Kind
		values  bool
		sources []*Outlet
		sum     []float32
	}

	// Outlet is an output endpoint of an object. Signal outlets own a
	// buffer of one block, overwritten by every render of the owner.
	// Message outlets own no buffer; messages are delivered by direct calls.
	Outlet struct {
		owner Object
		index int
		kind  Kind
		sinks []*Inlet
		buf   []float32
	}

	// Connection is a directed edge from an outlet to an inlet.
	Connection struct {
		Source *Outlet
		Sink   *Inlet
	}
)

func newInlet(owner Object, index int, kind Kind) *Inlet {
	if kind == KindValueOrSignal {
		return &Inlet{owner: owner, index: index, kind: KindSignal, values: true}
	}
	return &Inlet{owner: owner, index: index, kind: kind}
}

func newOutlet(owner Object, index int, kind Kind) *Outlet {
	if kind == KindValueOrSignal {
		kind = KindSignal
	}
	return &Outlet{owner: owner, index: index, kind: kind}
}

func (i *Inlet) Object() Object { return i.owner }
func (i *Inlet) Index() int     { return i.index }
func (i *Inlet) Kind() Kind     { return i.kind }

// AcceptsMessages tells if message outlets can be connected to the inlet.
func (i *Inlet) AcceptsMessages() bool { return i.kind == KindMessage || i.values }

// Sources returns the outlets connected to the inlet, in connection order.
func (i *Inlet) Sources() []*Outlet {
	ret := make([]*Outlet, len(i.sources))
	copy(ret, i.sources)
	return ret
}

// HasSignalSources tells if at least one signal outlet is connected to the
// inlet. Objects with value-or-signal inlets use it to switch between the
// constant and the signal driven behaviour.
func (i *Inlet) HasSignalSources() bool {
	for _, s := range i.sources {
		if s.kind == KindSignal {
			return true
		}
	}
	return false
}

// Buffer returns the signal arriving at the inlet during the current block:
// silence when nothing is connected, the buffer of the source when a single
// signal outlet is connected, and the sum of the sources otherwise. The
// returned buffer must not be modified.
func (i *Inlet) Buffer() []float32 {
	var first []float32
	count := 0
	for _, s := range i.sources {
		if s.kind != KindSignal {
			continue
		}
		b := s.Buffer()
		switch count {
		case 0:
			first = b
		case 1:
			i.sum = resize(i.sum, len(first))
			copy(i.sum, first)
			vek32.Add_Inplace(i.sum, b)
		default:
			vek32.Add_Inplace(i.sum, b)
		}
		count++
	}
	switch count {
	case 0:
		return i.owner.node().rt.silence()
	case 1:
		return first
	}
	return i.sum
}

func (o *Outlet) Object() Object { return o.owner }
func (o *Outlet) Index() int     { return o.index }
func (o *Outlet) Kind() Kind     { return o.kind }

// Sinks returns the inlets the outlet is connected to, in connection order.
func (o *Outlet) Sinks() []*Inlet {
	ret := make([]*Inlet, len(o.sinks))
	copy(ret, o.sinks)
	return ret
}

// Buffer returns the block buffer of a signal outlet, allocating it on first
// use once the block size is known. Message outlets return nil.
func (o *Outlet) Buffer() []float32 {
	if o.kind != KindSignal {
		return nil
	}
	bs := o.owner.node().rt.config.BlockSize
	if len(o.buf) != bs {
		o.buf = make([]float32, bs)
	}
	return o.buf
}

func (o *Outlet) connectedTo(in *Inlet) bool {
	for _, s := range o.sinks {
		if s == in {
			return true
		}
	}
	return false
}

func resize(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}

func removeInlet(list []*Inlet, in *Inlet) []*Inlet {
	for i, x := range list {
		if x == in {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func removeOutlet(list []*Outlet, out *Outlet) []*Outlet {
	for i, x := range list {
		if x == out {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
