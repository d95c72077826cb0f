package dsp

import (
	"math"

	"github.com/vsariola/pdgraph"
)

// loadBang sends a bang when its patch starts.
type loadBang struct {
	Node
}

func newLoadBang(*Patch, pdgraph.Message) (Object, error) { return &loadBang{}, nil }

func (l *loadBang) LoadBang() { l.Outlet(0).Send(pdgraph.Bang()) }

// printer ("print [name]") logs every message it receives, prefixed with its name.
type printer struct {
	Node
	name string
}

func newPrint(_ *Patch, args pdgraph.Message) (Object, error) {
	name := "print"
	if len(args) > 0 {
		name = args.String()
	}
	return &printer{name: name}, nil
}

func (p *printer) HandleMessage(_ int, msg pdgraph.Message) {
	p.rt.logger.Printf("%v: %v", p.name, msg)
}

const (
	mtofBase  = 8.17579891564
	mtofCoeff = 0.0577622650
)

var mtofMax = mtofBase * math.Exp(mtofCoeff*1499)

// mtof converts MIDI note numbers to frequencies in Hz.
type mtof struct {
	Node
}

func newMtof(*Patch, pdgraph.Message) (Object, error) { return &mtof{}, nil }

func (m *mtof) HandleMessage(_ int, msg pdgraph.Message) {
	note := msg.Float()
	if math.IsNaN(note) {
		m.invalid(msg, "no method for this message")
		return
	}
	m.Outlet(0).Send(pdgraph.Float(noteToFrequency(note)))
}

func noteToFrequency(note float64) float64 {
	switch {
	case note <= -1500:
		return 0
	case note > 1499:
		return mtofMax
	}
	return mtofBase * math.Exp(mtofCoeff*note)
}

// msgBox is a message box ("msg content..."): a bang sends the content;
// any other message sends the content with $1, $2... replaced by the tokens
// of the incoming message. "set content..." replaces the content without
// sending anything.
type msgBox struct {
	Node
	content pdgraph.Message
}

func newMsgBox(_ *Patch, args pdgraph.Message) (Object, error) {
	return &msgBox{content: args.Copy()}, nil
}

func (b *msgBox) HandleMessage(_ int, msg pdgraph.Message) {
	switch {
	case msg.Head() == "set":
		b.content = msg.Args().Copy()
	case msg.IsBang():
		b.Outlet(0).Send(b.content.Copy())
	default:
		b.Outlet(0).Send(b.content.Substitute(msg))
	}
}
