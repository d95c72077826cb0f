package pdgraph

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

type (
	// Document is the serializable top level description of what to load:
	// the audio configuration, the abstractions available for instantiation,
	// and the main patch.
	Document struct {
		Config       Config           `yaml:",omitempty"`
		Abstractions map[string]Patch `yaml:",omitempty"`
		Patch        Patch
	}

	// Config is the audio configuration of the runtime.
	Config struct {
		// SampleRate in Hz. 0 means DefaultSampleRate.
		SampleRate int `yaml:",omitempty"`
		// BlockSize is the number of samples rendered per scheduler pass.
		// 0 means DefaultBlockSize.
		BlockSize int `yaml:",omitempty"`
	}

	// Patch is the graph description of a patch: the tables it declares, its
	// objects and the connections among them. Connections refer to objects
	// by their index in Objects.
	Patch struct {
		Tables      []TableDecl  `yaml:",omitempty"`
		Objects     []Object     `yaml:",omitempty"`
		Connections []Connection `yaml:",flow,omitempty"`
	}

	// Object describes one node of the graph.
	Object struct {
		// Type is the type of the object, e.g. "osc~", "dac~" or the name of
		// a registered abstraction. "pd" denotes an inline subpatch, whose
		// contents are given in Patch.
		Type string

		// Args are the creation arguments of the object, e.g. 440 for "osc~
		// 440". Inside abstractions, $1, $2... refer to the creation
		// arguments of the abstraction instance.
		Args Message `yaml:",omitempty"`

		// Patch is the contents of an inline subpatch; only used when Type
		// is "pd".
		Patch *Patch `yaml:",omitempty"`

		// Comment is a free-form comment, ignored by the engine.
		Comment string `yaml:",omitempty"`
	}

	// Connection is a directed edge from the outlet of object Source to the
	// inlet of object Sink.
	Connection struct {
		Source int
		Outlet int
		Sink   int
		Inlet  int
	}

	// TableDecl declares a named, zero initialized sample table of the
	// given size.
	TableDecl struct {
		Name string
		Size int
	}
)

const (
	DefaultSampleRate = 44100
	DefaultBlockSize  = 64
)

// WithDefaults returns the config with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	return c
}

// Copy makes a deep copy of an Object.
func (o *Object) Copy() Object {
	ret := Object{Type: o.Type, Args: o.Args.Copy(), Comment: o.Comment}
	if o.Patch != nil {
		p := o.Patch.Copy()
		ret.Patch = &p
	}
	return ret
}

// Copy makes a deep copy of a Patch.
func (p Patch) Copy() Patch {
	ret := Patch{}
	if p.Tables != nil {
		ret.Tables = make([]TableDecl, len(p.Tables))
		copy(ret.Tables, p.Tables)
	}
	if p.Objects != nil {
		ret.Objects = make([]Object, len(p.Objects))
		for i, o := range p.Objects {
			ret.Objects[i] = o.Copy()
		}
	}
	if p.Connections != nil {
		ret.Connections = make([]Connection, len(p.Connections))
		copy(ret.Connections, p.Connections)
	}
	return ret
}

// Substitute returns a deep copy of the patch, with the $n placeholders in
// the object arguments (except those of message boxes) and table names
// replaced by args. Inline subpatches
// are substituted as well, as they share the creation arguments of their
// enclosing abstraction.
func (p Patch) Substitute(args Message) Patch {
	ret := p.Copy()
	ret.substitute(args)
	return ret
}

func (p *Patch) substitute(args Message) {
	for i := range p.Tables {
		p.Tables[i].Name = Message{Atom(p.Tables[i].Name)}.Substitute(args)[0].String()
	}
	for i := range p.Objects {
		// in message boxes, $n refers to the incoming message
		if p.Objects[i].Type != "msg" {
			p.Objects[i].Args = p.Objects[i].Args.Substitute(args)
		}
		if p.Objects[i].Patch != nil {
			p.Objects[i].Patch.substitute(args)
		}
	}
}

// Validate checks that every connection refers to an existing object, that
// table declarations are sane and that only "pd" objects carry subpatches.
// Portlet indices are validated by the engine, which knows the object types.
func (p Patch) Validate() error {
	for i, t := range p.Tables {
		if t.Name == "" {
			return fmt.Errorf("table %v has no name", i)
		}
		if t.Size < 0 {
			return fmt.Errorf("table %v has negative size %v", t.Name, t.Size)
		}
	}
	for i, o := range p.Objects {
		if o.Type == "" {
			return fmt.Errorf("object %v has no type", i)
		}
		if o.Patch != nil {
			if o.Type != "pd" {
				return fmt.Errorf("object %v of type %v cannot have a subpatch", i, o.Type)
			}
			if err := o.Patch.Validate(); err != nil {
				return fmt.Errorf("subpatch %v: %w", i, err)
			}
		}
	}
	for i, c := range p.Connections {
		if c.Source < 0 || c.Source >= len(p.Objects) {
			return fmt.Errorf("connection %v: source object %v does not exist", i, c.Source)
		}
		if c.Sink < 0 || c.Sink >= len(p.Objects) {
			return fmt.Errorf("connection %v: sink object %v does not exist", i, c.Sink)
		}
		if c.Outlet < 0 || c.Inlet < 0 {
			return fmt.Errorf("connection %v: negative portlet index", i)
		}
	}
	return nil
}

// Validate validates the main patch and every abstraction.
func (d *Document) Validate() error {
	if d.Config.SampleRate < 0 || d.Config.BlockSize < 0 {
		return errors.New("sample rate and block size cannot be negative")
	}
	for name, a := range d.Abstractions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("abstraction %v: %w", name, err)
		}
	}
	return d.Patch.Validate()
}

// LoadDocument parses a document from JSON or, failing that, from YAML, and
// validates it.
func LoadDocument(data []byte) (*Document, error) {
	var doc Document
	if errJSON := json.Unmarshal(data, &doc); errJSON != nil {
		doc = Document{}
		if errYaml := yaml.Unmarshal(data, &doc); errYaml != nil {
			return nil, fmt.Errorf("the document could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return &doc, nil
}
