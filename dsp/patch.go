package dsp

import (
	"errors"
	"fmt"

	"github.com/viterin/vek/vek32"
	"github.com/vsariola/pdgraph"
)

// Patch is a graph of objects and the connections among them. A patch is
// itself an Object: nested inside another patch, its inlets and outlets are
// the boundary objects (inlet, inlet~, outlet, outlet~) it contains, in
// creation order.
//
// Patches own their children; children refer back to their patch without
// owning it. The root patch of a tree additionally owns the cached render
// order and the stereo output buffer.
type Patch struct {
	Node

	objects       []Object
	connections   []Connection
	tables        Tables
	inletProxies  []boundary
	outletProxies []boundary
	started       bool

	// root only
	order  []Object
	valid  bool
	output []float32
}

func newPatch(parent *Patch, rt *Runtime, typ string, args pdgraph.Message) *Patch {
	p := &Patch{}
	p.Node.init(parent, rt, p, typ, args, ObjectType{})
	return p
}

// Runtime returns the runtime the patch belongs to.
func (p *Patch) Runtime() *Runtime { return p.rt }

// Root returns the outermost patch containing p.
func (p *Patch) Root() *Patch {
	for p.patch != nil {
		p = p.patch
	}
	return p
}

// Objects returns the children of the patch in creation order.
func (p *Patch) Objects() []Object {
	ret := make([]Object, len(p.objects))
	copy(ret, p.objects)
	return ret
}

// Connections returns the connections among the children of the patch, in
// creation order.
func (p *Patch) Connections() []Connection {
	ret := make([]Connection, len(p.connections))
	copy(ret, p.connections)
	return ret
}

// Started tells if the patch is running.
func (p *Patch) Started() bool { return p.started }

// AddObject creates an object and adds it to the patch. typ is either a type
// of the object library, a registered abstraction or "pd" for an empty
// subpatch. If the patch is already running, the object is loaded
// immediately.
func (p *Patch) AddObject(typ string, args pdgraph.Message) (Object, error) {
	if t, ok := ObjectTypes[typ]; ok {
		obj, err := t.New(p, args)
		if err != nil {
			return nil, fmt.Errorf("could not create %v: %w", typ, err)
		}
		obj.node().init(p, p.rt, obj, typ, args, t)
		if b, ok := obj.(boundary); ok {
			p.addBoundary(b)
		}
		return obj, p.adopt(obj)
	}
	if typ == "pd" {
		return p.addSubpatch(typ, args, pdgraph.Patch{})
	}
	if tmpl, ok := p.rt.abstractions[typ]; ok {
		if p.rt.instantiating[typ] {
			return nil, fmt.Errorf("abstraction %v contains itself", typ)
		}
		p.rt.instantiating[typ] = true
		defer delete(p.rt.instantiating, typ)
		return p.addSubpatch(typ, args, tmpl.Substitute(args))
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownObjectType, typ)
}

func (p *Patch) addSubpatch(typ string, args pdgraph.Message, doc pdgraph.Patch) (Object, error) {
	sub := newPatch(p, p.rt, typ, args)
	if err := sub.Build(doc); err != nil {
		return nil, fmt.Errorf("could not build subpatch %v: %w", typ, err)
	}
	return sub, p.adopt(sub)
}

// adopt appends a constructed object to the children, loading it if the
// patch is running.
func (p *Patch) adopt(obj Object) error {
	p.objects = append(p.objects, obj)
	p.invalidate()
	if !p.started {
		return nil
	}
	var fresh []Object
	err := p.load(obj, &fresh)
	fireLoadBangs(fresh)
	return err
}

// RemoveObject disconnects obj from every other object, stops it and removes
// it from the patch. Boundary objects cannot be removed, as the portlets of
// the patch would change.
func (p *Patch) RemoveObject(obj Object) error {
	idx := p.indexOf(obj)
	if idx < 0 {
		return fmt.Errorf("%v is not a child of this patch", obj)
	}
	if _, ok := obj.(boundary); ok {
		return fmt.Errorf("cannot remove boundary object %v", obj)
	}
	for _, c := range p.Connections() {
		if c.Source.owner == obj || c.Sink.owner == obj {
			p.disconnect(c.Source, c.Sink)
		}
	}
	if sub, ok := obj.(*Patch); ok {
		sub.Stop()
	} else if s, ok := obj.(Stopper); ok && p.started {
		s.Stop()
	}
	if d, ok := obj.(*tableDecl); ok {
		p.tables.Undeclare(d.table)
	}
	p.objects = append(p.objects[:idx:idx], p.objects[idx+1:]...)
	p.invalidate()
	return nil
}

func (p *Patch) indexOf(obj Object) int {
	for i, o := range p.objects {
		if o == obj {
			return i
		}
	}
	return -1
}

// Connect connects an outlet of source to an inlet of sink, both of which
// must be children of the patch. Signal outlets connect only to signal
// inlets; message outlets connect to message inlets and to value-or-signal
// inlets.
func (p *Patch) Connect(source Object, outlet int, sink Object, inlet int) error {
	out, in, err := p.portlets(source, outlet, sink, inlet)
	if err != nil {
		return err
	}
	if out.kind == KindSignal && in.kind != KindSignal || out.kind == KindMessage && !in.AcceptsMessages() {
		return fmt.Errorf("%w: %v outlet %v of %v -> %v inlet %v of %v", ErrKindMismatch, out.kind, outlet, source, in.kind, inlet, sink)
	}
	if out.connectedTo(in) {
		return fmt.Errorf("%w: outlet %v of %v -> inlet %v of %v", ErrAlreadyConnected, outlet, source, inlet, sink)
	}
	out.sinks = append(out.sinks, in)
	in.sources = append(in.sources, out)
	p.connections = append(p.connections, Connection{Source: out, Sink: in})
	if out.kind == KindSignal {
		p.invalidate()
	}
	return nil
}

// Disconnect removes the connection from an outlet of source to an inlet of
// sink.
func (p *Patch) Disconnect(source Object, outlet int, sink Object, inlet int) error {
	out, in, err := p.portlets(source, outlet, sink, inlet)
	if err != nil {
		return err
	}
	if !out.connectedTo(in) {
		return fmt.Errorf("%w: outlet %v of %v -> inlet %v of %v", ErrNotConnected, outlet, source, inlet, sink)
	}
	p.disconnect(out, in)
	return nil
}

func (p *Patch) disconnect(out *Outlet, in *Inlet) {
	out.sinks = removeInlet(out.sinks, in)
	in.sources = removeOutlet(in.sources, out)
	for i, c := range p.connections {
		if c.Source == out && c.Sink == in {
			p.connections = append(p.connections[:i:i], p.connections[i+1:]...)
			break
		}
	}
	if out.kind == KindSignal {
		p.invalidate()
	}
}

func (p *Patch) portlets(source Object, outlet int, sink Object, inlet int) (*Outlet, *Inlet, error) {
	if source.node().patch != p || sink.node().patch != p {
		return nil, nil, fmt.Errorf("cannot connect %v -> %v: both objects must belong to the patch", source, sink)
	}
	out := source.node().Outlet(outlet)
	if out == nil {
		return nil, nil, fmt.Errorf("%w: %v has no outlet %v", ErrPortletIndex, source, outlet)
	}
	in := sink.node().Inlet(inlet)
	if in == nil {
		return nil, nil, fmt.Errorf("%w: %v has no inlet %v", ErrPortletIndex, sink, inlet)
	}
	return out, in, nil
}

// DeclareTable creates a zero initialized table in the scope of the patch.
func (p *Patch) DeclareTable(name string, size int) (*Table, error) {
	return p.tables.Declare(name, size)
}

// Table looks up a table by name: first in the patch, then in the enclosing
// patches and finally in the global tables of the runtime.
func (p *Patch) Table(name string) (*Table, error) {
	for s := p; s != nil; s = s.patch {
		if t, err := s.tables.Lookup(name); err == nil {
			return t, nil
		}
	}
	return p.rt.tables.Lookup(name)
}

// Build populates the patch from a graph description: tables first, then the
// objects in order, then the connections.
func (p *Patch) Build(doc pdgraph.Patch) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	for _, t := range doc.Tables {
		if _, err := p.DeclareTable(t.Name, t.Size); err != nil {
			return err
		}
	}
	objs := make([]Object, len(doc.Objects))
	for i, o := range doc.Objects {
		var err error
		if o.Type == "pd" && o.Patch != nil {
			objs[i], err = p.addSubpatch(o.Type, o.Args, *o.Patch)
		} else {
			objs[i], err = p.AddObject(o.Type, o.Args)
		}
		if err != nil {
			return fmt.Errorf("object %v: %w", i, err)
		}
	}
	for i, c := range doc.Connections {
		if err := p.Connect(objs[c.Source], c.Outlet, objs[c.Sink], c.Inlet); err != nil {
			return fmt.Errorf("connection %v: %w", i, err)
		}
	}
	return nil
}

// Start starts the patch: every not-yet-loaded child is loaded and nested
// patches are started. Objects are loaded at most once during their
// lifetime, so restarting a stopped patch does not load them again. Starting
// a running patch does nothing. Load errors (e.g. unknown tables) leave the
// failing objects unbound and are returned joined; the patch still runs.
func (p *Patch) Start() error {
	var fresh []Object
	err := p.start(&fresh)
	fireLoadBangs(fresh)
	return err
}

func (p *Patch) start(fresh *[]Object) error {
	if p.started {
		return nil
	}
	p.started = true
	var errs []error
	for _, obj := range p.objects {
		if err := p.load(obj, fresh); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Patch) load(obj Object, fresh *[]Object) error {
	if sub, ok := obj.(*Patch); ok {
		return sub.start(fresh)
	}
	n := obj.node()
	if n.loaded {
		return nil
	}
	n.loaded = true
	*fresh = append(*fresh, obj)
	if l, ok := obj.(Loader); ok {
		if err := l.Load(); err != nil {
			return fmt.Errorf("could not load %v: %w", n, err)
		}
	}
	return nil
}

func fireLoadBangs(objs []Object) {
	for _, obj := range objs {
		if l, ok := obj.(LoadBanger); ok {
			l.LoadBang()
		}
	}
}

// Stop stops the patch and its nested patches. Objects with an action in
// progress abandon it and fire their pending completion notifications.
// Stopping a stopped patch does nothing.
func (p *Patch) Stop() {
	if !p.started {
		return
	}
	p.started = false
	for _, obj := range p.objects {
		if sub, ok := obj.(*Patch); ok {
			sub.Stop()
		} else if s, ok := obj.(Stopper); ok {
			s.Stop()
		}
	}
}

// HandleMessage forwards a message arriving at an inlet of the patch to the
// corresponding inlet object inside.
func (p *Patch) HandleMessage(inlet int, msg pdgraph.Message) {
	if inlet < 0 || inlet >= len(p.inletProxies) {
		return
	}
	if b, ok := p.inletProxies[inlet].(*messageInlet); ok {
		b.Outlet(0).Send(msg)
	}
}

// Output returns the interleaved stereo buffer of the last rendered block.
func (p *Patch) Output() []float32 { return p.Root().output }

// Tick renders one block: the output buffer is cleared and every object of
// the render order is rendered once. Only root patches can be ticked.
func (p *Patch) Tick() (err error) {
	if p.patch != nil {
		return errors.New("only root patches can be ticked")
	}
	order, err := p.Schedule()
	if err != nil {
		return err
	}
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("render panicked: %v", e)
		}
	}()
	n := 2 * p.rt.config.BlockSize
	p.output = resize(p.output, n)
	vek32.Zeros_Into(p.output, n)
	for _, obj := range order {
		obj.Render()
	}
	return nil
}

func (p *Patch) invalidate() {
	p.Root().valid = false
}

// walk calls f for every object in the tree of the patch, in creation
// order, descending into nested patches in place of the patch objects.
func (p *Patch) walk(f func(Object)) {
	for _, obj := range p.objects {
		if sub, ok := obj.(*Patch); ok {
			sub.walk(f)
			continue
		}
		f(obj)
	}
}
