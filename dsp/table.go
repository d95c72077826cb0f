package dsp

import (
	"fmt"
)

type (
	// Table is a named, fixed-size sample buffer shared by any number of
	// reader and writer objects. Its size never changes after creation.
	Table struct {
		name string
		data []float32
	}

	// Tables is a scope of tables, indexed by name.
	Tables struct {
		byName map[string]*Table
	}
)

// MaxTableSize is the largest number of samples a table can hold.
const MaxTableSize = 1 << 26

func (t *Table) Name() string { return t.name }
func (t *Table) Size() int    { return len(t.data) }

// Data returns the samples of the table. Writes through the returned slice
// are visible to every object bound to the table.
func (t *Table) Data() []float32 { return t.data }

// Declare creates a zero initialized table.
func (s *Tables) Declare(name string, size int) (*Table, error) {
	if size < 0 || size > MaxTableSize {
		return nil, fmt.Errorf("table %v: %w: size %v outside [0, %v]", name, ErrBadArgument, size, MaxTableSize)
	}
	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateTable, name)
	}
	if s.byName == nil {
		s.byName = make(map[string]*Table)
	}
	t := &Table{name: name, data: make([]float32, size)}
	s.byName[name] = t
	return t, nil
}

// Lookup finds a table by name.
func (s *Tables) Lookup(name string) (*Table, error) {
	if t, ok := s.byName[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownTable, name)
}

// Undeclare removes t from the scope, if it is still the table declared
// under its name.
func (s *Tables) Undeclare(t *Table) {
	if s.byName[t.name] == t {
		delete(s.byName, t.name)
	}
}

// tableRef is the binding of a reader or writer object to a table.
type tableRef struct {
	name  string
	table *Table
}

// bind looks the table up starting from the patch of the object. On failure
// the object is left unbound.
func (r *tableRef) bind(n *Node, name string) error {
	r.name = name
	r.table = nil
	t, err := n.patch.Table(name)
	if err != nil {
		return err
	}
	r.table = t
	return nil
}

func (r *tableRef) bound() bool { return r.table != nil }
