package dsp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/viterin/vek/vek32"
	"github.com/vsariola/pdgraph"
)

type (
	// Logger receives the reports of the engine: print objects and
	// non-fatal errors such as invalid control arguments. *log.Logger
	// satisfies it.
	Logger interface {
		Printf(format string, v ...any)
	}

	// Runtime is the registry of the live patches of a process. It owns the
	// audio configuration, the registered abstractions and the global
	// tables, and starts, stops and renders all its patches together.
	//
	// A Runtime is not safe for concurrent use: graph edits, messages and
	// rendering must happen on one goroutine, with graph edits only between
	// blocks.
	Runtime struct {
		config        pdgraph.Config
		logger        Logger
		patches       []*Patch
		abstractions  map[string]pdgraph.Patch
		instantiating map[string]bool
		tables        Tables
		started       bool
		nextID        int
		msgDepth      int
		zeros         []float32
		mix           []float32
		pending       []float32
	}

	// Option configures a Runtime.
	Option func(*Runtime)
)

// WithLogger sets the logger of the runtime. By default, reports are written
// to standard error.
func WithLogger(l Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// NewRuntime creates an empty, stopped runtime. Zero fields of the config
// are replaced by defaults.
func NewRuntime(config pdgraph.Config, opts ...Option) *Runtime {
	r := &Runtime{
		config:        config.WithDefaults(),
		logger:        log.New(os.Stderr, "pdgraph: ", 0),
		abstractions:  make(map[string]pdgraph.Patch),
		instantiating: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runtime) Config() pdgraph.Config { return r.config }
func (r *Runtime) Logger() Logger         { return r.logger }

func (r *Runtime) newID() int {
	r.nextID++
	return r.nextID
}

func (r *Runtime) silence() []float32 {
	if len(r.zeros) != r.config.BlockSize {
		r.zeros = make([]float32, r.config.BlockSize)
	}
	return r.zeros
}

// CreatePatch registers a new, empty root patch. If the runtime is running,
// so is the patch, and objects added to it are loaded immediately.
func (r *Runtime) CreatePatch() *Patch {
	p := newPatch(nil, r, "pd", nil)
	r.patches = append(r.patches, p)
	if r.started {
		p.Start()
	}
	return p
}

// LoadPatch builds a patch from doc and registers it. The patch is complete
// before it starts, so loadbang objects see their connections. If the
// runtime is running, the patch is started and its load errors, if any, are
// returned along with it.
func (r *Runtime) LoadPatch(doc pdgraph.Patch) (*Patch, error) {
	p := newPatch(nil, r, "pd", nil)
	if err := p.Build(doc); err != nil {
		return nil, err
	}
	r.patches = append(r.patches, p)
	if r.started {
		return p, p.Start()
	}
	return p, nil
}

// Load registers the abstractions of the document and loads its patch.
func (r *Runtime) Load(doc *pdgraph.Document) (*Patch, error) {
	for name, a := range doc.Abstractions {
		if err := r.RegisterAbstraction(name, a); err != nil {
			return nil, err
		}
	}
	return r.LoadPatch(doc.Patch)
}

// RemovePatch stops a patch and unregisters it.
func (r *Runtime) RemovePatch(p *Patch) {
	for i, q := range r.patches {
		if q == p {
			p.Stop()
			r.patches = append(r.patches[:i:i], r.patches[i+1:]...)
			return
		}
	}
}

// Patches returns the registered patches in creation order.
func (r *Runtime) Patches() []*Patch {
	ret := make([]*Patch, len(r.patches))
	copy(ret, r.patches)
	return ret
}

// Patch finds a registered patch by its ID.
func (r *Runtime) Patch(id int) (*Patch, bool) {
	for _, p := range r.patches {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

// RegisterAbstraction makes a graph template instantiable by name. The
// template is copied; instances never share objects with it or with each
// other.
func (r *Runtime) RegisterAbstraction(name string, tmpl pdgraph.Patch) error {
	if _, ok := ObjectTypes[name]; ok || name == "pd" {
		return fmt.Errorf("abstraction %v would shadow a built-in object type", name)
	}
	if err := tmpl.Validate(); err != nil {
		return fmt.Errorf("abstraction %v: %w", name, err)
	}
	r.abstractions[name] = tmpl.Copy()
	return nil
}

// DeclareTable declares a table visible to every patch of the runtime.
func (r *Runtime) DeclareTable(name string, size int) (*Table, error) {
	return r.tables.Declare(name, size)
}

// Start starts every registered patch. Starting a running runtime does
// nothing.
func (r *Runtime) Start() error {
	if r.started {
		return nil
	}
	r.started = true
	var errs []error
	for _, p := range r.patches {
		if err := p.Start(); err != nil {
			errs = append(errs, fmt.Errorf("patch %v: %w", p.id, err))
		}
	}
	return errors.Join(errs...)
}

// Stop stops every registered patch. Stopping a stopped runtime does
// nothing.
func (r *Runtime) Stop() {
	if !r.started {
		return
	}
	r.started = false
	for _, p := range r.patches {
		p.Stop()
	}
}

func (r *Runtime) Started() bool { return r.started }

// Close stops the runtime and clears the registry: patches, abstractions
// and global tables.
func (r *Runtime) Close() {
	r.Stop()
	r.patches = nil
	r.abstractions = make(map[string]pdgraph.Patch)
	r.tables = Tables{}
	r.pending = nil
}

// Render fills buffer with interleaved stereo audio: the sum of the outputs
// of all running patches. Blocks are rendered as needed and a partially
// consumed block is carried over to the next call, so buffer can have any
// even length.
func (r *Runtime) Render(buffer []float32) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("render panicked: %v", e)
		}
	}()
	for len(buffer) > 0 {
		if len(r.pending) == 0 {
			if err := r.tick(); err != nil {
				return err
			}
			r.pending = r.mix
		}
		n := copy(buffer, r.pending)
		buffer = buffer[n:]
		r.pending = r.pending[n:]
	}
	return nil
}

// Play renders blocks and hands each of them to the sink, until the given
// number of blocks is written or ctx is cancelled. blocks < 0 plays until
// cancelled.
func (r *Runtime) Play(ctx context.Context, sink pdgraph.AudioSink, blocks int) error {
	for i := 0; blocks < 0 || i < blocks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := r.tick(); err != nil {
			return err
		}
		if err := sink.WriteAudio(r.mix); err != nil {
			return fmt.Errorf("could not write audio: %w", err)
		}
	}
	return nil
}

// tick renders one block of every running patch and mixes them into r.mix.
func (r *Runtime) tick() error {
	n := 2 * r.config.BlockSize
	r.mix = resize(r.mix, n)
	vek32.Zeros_Into(r.mix, n)
	for _, p := range r.patches {
		if !p.started {
			continue
		}
		if err := p.Tick(); err != nil {
			return fmt.Errorf("patch %v: %w", p.id, err)
		}
		vek32.Add_Inplace(r.mix, p.output)
	}
	return nil
}
