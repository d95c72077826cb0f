package dsp

import (
	"fmt"
	"math"

	"github.com/vsariola/pdgraph"
)

type tabMode int

const (
	tabSilent tabMode = iota // emit zeros or, for writers, do nothing
	tabActive                // reading, playing or writing
)

// tabRead reads a table at the indices given by its input signal
// ("tabread~ name"), without interpolation: indices are truncated to the
// next lower integer and out of range indices read the nearest end.
type tabRead struct {
	Node
	ref  tableRef
	mode tabMode
}

func newTabRead(_ *Patch, args pdgraph.Message) (Object, error) {
	return &tabRead{ref: tableRef{name: stringArg(args, 0)}}, nil
}

func (t *tabRead) Load() error {
	if t.ref.name == "" {
		return nil
	}
	return t.setTable(t.ref.name)
}

func (t *tabRead) setTable(name string) error {
	t.mode = tabSilent
	if err := t.ref.bind(&t.Node, name); err != nil {
		return err
	}
	t.mode = tabActive
	return nil
}

func (t *tabRead) Render() {
	out := t.Outlet(0).Buffer()
	if t.mode == tabSilent {
		clear(out)
		return
	}
	in := t.Inlet(0).Buffer()
	data := t.ref.table.data
	last := len(data) - 1
	if last < 0 {
		clear(out)
		return
	}
	for i, x := range in {
		out[i] = data[clampIndex(x, last)]
	}
}

func (t *tabRead) HandleMessage(inlet int, msg pdgraph.Message) {
	if inlet == 0 && msg.Head() == "set" {
		rebind(&t.Node, msg, t.setTable)
	}
}

func clampIndex(x float32, last int) int {
	f := math.Floor(float64(x))
	switch {
	case f != f, f < 0:
		return 0
	case f > float64(last):
		return last
	}
	return int(f)
}

// rebind handles "set name" messages; on failure the object is left unbound
// and the error reported.
func rebind(n *Node, msg pdgraph.Message, set func(string) error) {
	if len(msg) < 2 {
		n.invalid(msg, "set requires a table name")
		return
	}
	if err := set(msg[1].String()); err != nil {
		n.report(err)
	}
}

// tabPlay plays a table at signal rate when triggered ("tabplay~ name"). A
// bang plays the whole table; [start] plays from start to the end; [start n]
// plays n samples from start. Completion fires when the end is reached;
// "stop" silences it without firing.
type tabPlay struct {
	Node
	done   StopNotifier
	ref    tableRef
	mode   tabMode
	pos    int
	posMax int
}

func newTabPlay(_ *Patch, args pdgraph.Message) (Object, error) {
	return &tabPlay{ref: tableRef{name: stringArg(args, 0)}}, nil
}

func (t *tabPlay) OnComplete(callback func()) { t.done.OnComplete(callback) }

func (t *tabPlay) Load() error {
	if t.ref.name == "" {
		return nil
	}
	return t.ref.bind(&t.Node, t.ref.name)
}

func (t *tabPlay) Render() {
	out := t.Outlet(0).Buffer()
	if t.mode == tabSilent {
		clear(out)
		return
	}
	n := copy(out, t.ref.table.data[t.pos:t.posMax])
	t.pos += n
	if t.pos >= t.posMax {
		clear(out[n:])
		t.mode = tabSilent
		t.done.Fire()
	}
}

func (t *tabPlay) HandleMessage(inlet int, msg pdgraph.Message) {
	if inlet != 0 {
		return
	}
	switch {
	case msg.Head() == "set":
		t.mode = tabSilent
		rebind(&t.Node, msg, func(name string) error { return t.ref.bind(&t.Node, name) })
	case msg.Head() == "stop":
		t.mode = tabSilent
	case msg.IsBang():
		t.play(msg, 0, 0)
	case msg.Head() != "":
		// unknown sub-protocol
	case len(msg) == 1:
		start := msg.Float()
		if math.IsNaN(start) {
			t.invalid(msg, "expected a start position")
			return
		}
		t.play(msg, start, 0)
	case len(msg) >= 2:
		start, count := msg[0].Float(), msg[1].Float()
		if math.IsNaN(start) || math.IsNaN(count) {
			t.invalid(msg, "expected a start position and a sample count")
			return
		}
		t.play(msg, start, count)
	}
}

// play starts playing from start; count <= 0 plays until the end of the
// table.
func (t *tabPlay) play(msg pdgraph.Message, start, count float64) {
	if !t.ref.bound() {
		t.report(fmt.Errorf("%w: no table bound (%v)", ErrUnknownTable, t.ref.name))
		return
	}
	size := t.ref.table.Size()
	first := math.Floor(start)
	if first < 0 || first >= float64(size) {
		t.invalid(msg, fmt.Sprintf("start position %v outside table of size %v", start, size))
		return
	}
	s, end := int(first), size
	if count > 0 && first+math.Floor(count) < float64(size) {
		end = s + int(count)
	}
	t.pos, t.posMax = s, end
	t.mode = tabActive
}

// Stop abandons playback and fires the pending completion callbacks.
func (t *tabPlay) Stop() {
	t.mode = tabSilent
	t.done.Fire()
}

// tabWrite records its input signal into a table ("tabwrite~ name").
// "start [pos]" (or bang) records from pos until the table is full, then
// stops and fires completion; "stop" halts early. A block crossing the end
// of the table is truncated.
type tabWrite struct {
	Node
	done StopNotifier
	ref  tableRef
	mode tabMode
	pos  int
}

func newTabWrite(_ *Patch, args pdgraph.Message) (Object, error) {
	return &tabWrite{ref: tableRef{name: stringArg(args, 0)}}, nil
}

func (t *tabWrite) OnComplete(callback func()) { t.done.OnComplete(callback) }

func (t *tabWrite) Load() error {
	if t.ref.name == "" {
		return nil
	}
	return t.ref.bind(&t.Node, t.ref.name)
}

func (t *tabWrite) Render() {
	if t.mode == tabSilent {
		return
	}
	in := t.Inlet(0).Buffer()
	n := copy(t.ref.table.data[t.pos:], in)
	t.pos += n
	if t.pos >= t.ref.table.Size() {
		t.mode = tabSilent
		t.done.Fire()
	}
}

func (t *tabWrite) HandleMessage(inlet int, msg pdgraph.Message) {
	if inlet != 0 {
		return
	}
	switch {
	case msg.Head() == "set":
		t.mode = tabSilent
		rebind(&t.Node, msg, func(name string) error { return t.ref.bind(&t.Node, name) })
	case msg.Head() == "start":
		pos := 0.0
		if len(msg) > 1 {
			pos = msg[1].Float()
			if math.IsNaN(pos) {
				t.invalid(msg, "invalid start position")
				return
			}
		}
		t.start(msg, pos)
	case msg.IsBang():
		t.start(msg, 0)
	case msg.Head() == "stop":
		t.mode = tabSilent
	}
}

// start begins recording at pos. Starting at or beyond the end of the table
// completes immediately, with nothing written.
func (t *tabWrite) start(msg pdgraph.Message, pos float64) {
	if !t.ref.bound() {
		t.report(fmt.Errorf("%w: no table bound (%v)", ErrUnknownTable, t.ref.name))
		return
	}
	p := math.Floor(pos)
	if p < 0 {
		t.invalid(msg, "start position cannot be negative")
		return
	}
	if p >= float64(t.ref.table.Size()) {
		t.mode = tabSilent
		t.done.Fire()
		return
	}
	t.pos = int(p)
	t.mode = tabActive
}

// Stop abandons recording and fires the pending completion callbacks.
func (t *tabWrite) Stop() {
	t.mode = tabSilent
	t.done.Fire()
}

// tableDecl declares a table in its patch when created ("table name
// [size]"). The size defaults to 100 samples. Removing the object from its
// patch undeclares the table; objects already bound to it keep reading and
// writing the old data until rebound.
type tableDecl struct {
	Node
	table *Table
}

func newTableDecl(p *Patch, args pdgraph.Message) (Object, error) {
	name := stringArg(args, 0)
	if name == "" {
		return nil, fmt.Errorf("%w: table requires a name", ErrBadArgument)
	}
	size, err := floatArg(args, 1, 100)
	if err != nil {
		return nil, err
	}
	if size < 0 || size > MaxTableSize {
		return nil, fmt.Errorf("%w: table size %v outside [0, %v]", ErrBadArgument, size, MaxTableSize)
	}
	t, err := p.DeclareTable(name, int(size))
	if err != nil {
		return nil, err
	}
	return &tableDecl{table: t}, nil
}
