package dsp

import (
	"fmt"

	"github.com/vsariola/pdgraph"
)

type (
	// Object is a node of a patch. Every object embeds a Node, which holds
	// its identity and portlets, and overrides Render and/or HandleMessage.
	//
	// Render is invoked once per block, in schedule order: it reads the
	// buffers of its signal inlets and writes a full block into each of its
	// signal outlets. It must not fail, block or allocate unboundedly; out of
	// range values are clamped internally.
	//
	// HandleMessage is invoked synchronously when a message arrives to one
	// of its inlets. It may change the state of the object, including which
	// render behaviour is active, and send messages from its own outlets.
	// The message must not be retained or modified.
	Object interface {
		node() *Node
		Render()
		HandleMessage(inlet int, msg pdgraph.Message)
	}

	// Loader is implemented by objects that need a one time initialization
	// when their patch starts, e.g. binding to a table. Load is called
	// exactly once per object, before any LoadBanger of the same start.
	Loader interface {
		Load() error
	}

	// LoadBanger is implemented by objects that emit messages when their
	// patch starts. LoadBang is called exactly once per object, after all
	// objects started at the same time have been loaded.
	LoadBanger interface {
		LoadBang()
	}

	// Stopper is implemented by objects that have something to tear down
	// when their patch stops.
	Stopper interface {
		Stop()
	}

	// Completer is implemented by bounded-duration objects (ramps, table
	// playback and recording) that notify listeners when done.
	Completer interface {
		OnComplete(callback func())
	}

	// ObjectType documents the portlets of a type of object and how to
	// construct one.
	ObjectType struct {
		Inlets  []Kind
		Outlets []Kind
		// EndPoint marks objects that are roots of the DSP graph: the
		// scheduler always renders them, and everything feeding them.
		EndPoint bool
		// New constructs the object. The patch is the one the object is
		// being added to; the node of the returned object is initialized
		// by the patch afterwards.
		New func(p *Patch, args pdgraph.Message) (Object, error)
	}

	// Node holds the identity and the portlets of an object. It is embedded
	// in every object; the zero Node is initialized when the object is added
	// to a patch.
	Node struct {
		id       int
		typ      string
		args     pdgraph.Message
		patch    *Patch
		rt       *Runtime
		inlets   []*Inlet
		outlets  []*Outlet
		endPoint bool
		loaded   bool
	}
)

func (n *Node) node() *Node { return n }

// Render does nothing; objects without signal outlets need not override it.
func (n *Node) Render() {}

// HandleMessage ignores the message; objects without message behaviour need
// not override it.
func (n *Node) HandleMessage(int, pdgraph.Message) {}

func (n *Node) init(p *Patch, rt *Runtime, owner Object, typ string, args pdgraph.Message, t ObjectType) {
	n.id = rt.newID()
	n.typ = typ
	n.args = args.Copy()
	n.patch = p
	n.rt = rt
	n.endPoint = t.EndPoint
	n.inlets = make([]*Inlet, len(t.Inlets))
	for i, k := range t.Inlets {
		n.inlets[i] = newInlet(owner, i, k)
	}
	n.outlets = make([]*Outlet, len(t.Outlets))
	for i, k := range t.Outlets {
		n.outlets[i] = newOutlet(owner, i, k)
	}
}

// ID is the identity of the object, unique within the runtime. IDs grow in
// construction order.
func (n *Node) ID() int { return n.id }

// Type is the type the object was created with, e.g. "osc~".
func (n *Node) Type() string { return n.typ }

// Args are the creation arguments of the object.
func (n *Node) Args() pdgraph.Message { return n.args.Copy() }

// Patch is the patch owning the object; nil for root patches.
func (n *Node) Patch() *Patch { return n.patch }

// EndPoint tells if the object is a root of the DSP graph.
func (n *Node) EndPoint() bool { return n.endPoint }

func (n *Node) NumInlets() int  { return len(n.inlets) }
func (n *Node) NumOutlets() int { return len(n.outlets) }

// Inlet returns the inlet with the given index; nil if out of range.
func (n *Node) Inlet(i int) *Inlet {
	if i < 0 || i >= len(n.inlets) {
		return nil
	}
	return n.inlets[i]
}

// Outlet returns the outlet with the given index; nil if out of range.
func (n *Node) Outlet(i int) *Outlet {
	if i < 0 || i >= len(n.outlets) {
		return nil
	}
	return n.outlets[i]
}

// SampleRate is the sample rate of the runtime, in Hz.
func (n *Node) SampleRate() float64 { return float64(n.rt.config.SampleRate) }

// BlockSize is the number of samples rendered per block.
func (n *Node) BlockSize() int { return n.rt.config.BlockSize }

func (n *Node) String() string {
	if len(n.args) == 0 {
		return fmt.Sprintf("%v#%v", n.typ, n.id)
	}
	return fmt.Sprintf("%v#%v [%v]", n.typ, n.id, n.args)
}

// report logs a non-fatal error of the object.
func (n *Node) report(err error) {
	n.rt.logger.Printf("%v: %v", n, err)
}

// invalid reports an InvalidControlArgument for msg.
func (n *Node) invalid(msg pdgraph.Message, reason string) {
	n.report(fmt.Errorf("%w '%v': %v", ErrInvalidControlArgument, msg, reason))
}

// StopNotifier is a registry of completion callbacks. Objects own it by value
// and delegate their OnComplete to it.
type StopNotifier struct {
	callbacks []func()
}

// OnComplete registers a callback for the next completion.
func (s *StopNotifier) OnComplete(callback func()) {
	s.callbacks = append(s.callbacks, callback)
}

// Fire calls the registered callbacks, last registered first, and clears
// the registry. Callbacks registered while firing wait for the next
// completion.
func (s *StopNotifier) Fire() {
	callbacks := s.callbacks
	s.callbacks = nil
	for i := len(callbacks) - 1; i >= 0; i-- {
		callbacks[i]()
	}
}

// Pending returns the number of registered callbacks.
func (s *StopNotifier) Pending() int { return len(s.callbacks) }
