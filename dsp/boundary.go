package dsp

import "github.com/vsariola/pdgraph"

// boundary is implemented by the inlet and outlet objects that give a patch
// its portlets when it is nested inside another patch.
type boundary interface {
	Object
	setPortlet(index int)
}

type (
	// messageInlet ("inlet") forwards messages arriving at the patch inlet
	// into the patch.
	messageInlet struct {
		Node
		index int
	}

	// signalInlet ("inlet~") copies the signal arriving at the patch inlet
	// into the patch.
	signalInlet struct {
		Node
		index int
	}

	// messageOutlet ("outlet") forwards messages out of the patch.
	messageOutlet struct {
		Node
		index int
	}

	// signalOutlet ("outlet~") copies a signal into the patch outlet buffer.
	signalOutlet struct {
		Node
		index int
	}
)

func (p *Patch) addBoundary(b boundary) {
	switch b.(type) {
	case *messageInlet, *signalInlet:
		kind := KindMessage
		if _, ok := b.(*signalInlet); ok {
			kind = KindSignal
		}
		idx := len(p.inlets)
		p.inlets = append(p.inlets, newInlet(p, idx, kind))
		p.inletProxies = append(p.inletProxies, b)
		b.setPortlet(idx)
	case *messageOutlet, *signalOutlet:
		kind := KindMessage
		if _, ok := b.(*signalOutlet); ok {
			kind = KindSignal
		}
		idx := len(p.outlets)
		p.outlets = append(p.outlets, newOutlet(p, idx, kind))
		p.outletProxies = append(p.outletProxies, b)
		b.setPortlet(idx)
	}
}

func (b *messageInlet) setPortlet(i int)  { b.index = i }
func (b *signalInlet) setPortlet(i int)   { b.index = i }
func (b *messageOutlet) setPortlet(i int) { b.index = i }
func (b *signalOutlet) setPortlet(i int)  { b.index = i }

// parentInlet is the inlet of the enclosing patch object this proxy reads.
func (b *signalInlet) parentInlet() *Inlet { return b.patch.Inlet(b.index) }

func (b *signalInlet) Render() {
	copy(b.Outlet(0).Buffer(), b.parentInlet().Buffer())
}

func (b *messageOutlet) HandleMessage(_ int, msg pdgraph.Message) {
	b.patch.Outlet(b.index).Send(msg)
}

func (b *signalOutlet) Render() {
	copy(b.patch.Outlet(b.index).Buffer(), b.Inlet(0).Buffer())
}
