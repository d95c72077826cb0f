package dsp

import (
	"fmt"

	"github.com/vsariola/pdgraph"
)

// maxMessageDepth bounds the nesting of synchronous message deliveries. A
// message loop in a patch would otherwise recurse until the goroutine stack
// overflows.
const maxMessageDepth = 1000

// Send delivers msg to every inlet connected to the outlet, in connection
// order. Delivery is synchronous and depth-first: if an object forwards the
// message from its own outlets, those deliveries complete before the next
// connection of this outlet is served. Nothing is buffered or deferred.
// Sending from a signal outlet does nothing.
func (o *Outlet) Send(msg pdgraph.Message) {
	if o.kind != KindMessage || len(o.sinks) == 0 {
		return
	}
	rt := o.owner.node().rt
	if rt.msgDepth >= maxMessageDepth {
		o.owner.node().report(fmt.Errorf("stack overflow: message '%v' dropped after %v nested deliveries", msg, maxMessageDepth))
		return
	}
	rt.msgDepth++
	defer func() { rt.msgDepth-- }()
	// a handler may edit the connections of this outlet; deliver to the ones
	// that existed when sending started
	sinks := o.Sinks()
	for _, in := range sinks {
		in.owner.HandleMessage(in.index, msg)
	}
}
