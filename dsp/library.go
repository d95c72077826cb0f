package dsp

import (
	"fmt"
	"sort"

	"github.com/vsariola/pdgraph"
)

// ObjectTypes is the object library: the portlets of every built-in type of
// object and how to construct it. Abstractions registered in a Runtime and
// "pd" subpatches come on top of these.
var ObjectTypes = map[string]ObjectType{
	"osc~":      {Inlets: []Kind{KindValueOrSignal, KindMessage}, Outlets: []Kind{KindSignal}, New: newOsc},
	"dac~":      {Inlets: []Kind{KindSignal, KindSignal}, EndPoint: true, New: newDac},
	"line~":     {Inlets: []Kind{KindMessage}, Outlets: []Kind{KindSignal}, New: newLine},
	"*~":        {Inlets: []Kind{KindSignal, KindValueOrSignal}, Outlets: []Kind{KindSignal}, New: arithmetic(opMul)},
	"/~":        {Inlets: []Kind{KindSignal, KindValueOrSignal}, Outlets: []Kind{KindSignal}, New: arithmetic(opDiv)},
	"+~":        {Inlets: []Kind{KindSignal, KindValueOrSignal}, Outlets: []Kind{KindSignal}, New: arithmetic(opAdd)},
	"-~":        {Inlets: []Kind{KindSignal, KindValueOrSignal}, Outlets: []Kind{KindSignal}, New: arithmetic(opSub)},
	"tabread~":  {Inlets: []Kind{KindValueOrSignal}, Outlets: []Kind{KindSignal}, New: newTabRead},
	"tabplay~":  {Inlets: []Kind{KindMessage}, Outlets: []Kind{KindSignal}, New: newTabPlay},
	"tabwrite~": {Inlets: []Kind{KindValueOrSignal}, EndPoint: true, New: newTabWrite},
	"table":     {New: newTableDecl},
	"loadbang":  {Outlets: []Kind{KindMessage}, New: newLoadBang},
	"print":     {Inlets: []Kind{KindMessage}, New: newPrint},
	"mtof":      {Inlets: []Kind{KindMessage}, Outlets: []Kind{KindMessage}, New: newMtof},
	"msg":       {Inlets: []Kind{KindMessage}, Outlets: []Kind{KindMessage}, New: newMsgBox},
	"inlet":     {Outlets: []Kind{KindMessage}, New: func(*Patch, pdgraph.Message) (Object, error) { return &messageInlet{}, nil }},
	"inlet~":    {Outlets: []Kind{KindSignal}, New: func(*Patch, pdgraph.Message) (Object, error) { return &signalInlet{}, nil }},
	"outlet":    {Inlets: []Kind{KindMessage}, New: func(*Patch, pdgraph.Message) (Object, error) { return &messageOutlet{}, nil }},
	"outlet~":   {Inlets: []Kind{KindSignal}, New: func(*Patch, pdgraph.Message) (Object, error) { return &signalOutlet{}, nil }},
}

// ObjectTypeNames is a list of all the names of the built-in object types,
// sorted alphabetically.
var ObjectTypeNames []string

func init() {
	ObjectTypeNames = make([]string, 0, len(ObjectTypes))
	for k := range ObjectTypes {
		ObjectTypeNames = append(ObjectTypeNames, k)
	}
	sort.Strings(ObjectTypeNames)
}

// floatArg returns the i-th creation argument as a number, def if it is
// missing and an error if it is not numeric.
func floatArg(args pdgraph.Message, i int, def float64) (float64, error) {
	if i >= len(args) {
		return def, nil
	}
	if !args[i].IsNumber() {
		return 0, fmt.Errorf("%w: argument %v '%v' is not a number", ErrBadArgument, i+1, args[i])
	}
	return args[i].Float(), nil
}

// stringArg returns the i-th creation argument as a string, "" if missing.
func stringArg(args pdgraph.Message, i int) string {
	if i >= len(args) {
		return ""
	}
	return args[i].String()
}
