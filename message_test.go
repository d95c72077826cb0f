package pdgraph_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/pdgraph"
	"gopkg.in/yaml.v3"
)

func TestParseMessage(t *testing.T) {
	msg := pdgraph.ParseMessage("  osc~ 440  1e3 inf nan -2.5 ")
	require.Len(t, msg, 6)
	assert.Equal(t, "osc~", msg[0].Atom())
	assert.False(t, msg[0].IsNumber())
	assert.Equal(t, 440.0, msg[1].Float())
	assert.Equal(t, 1000.0, msg[2].Float())
	assert.Equal(t, "inf", msg[3].Atom(), "infinities are not numbers")
	assert.Equal(t, "nan", msg[4].Atom())
	assert.Equal(t, -2.5, msg[5].Float())
	assert.Equal(t, "osc~ 440 1000 inf nan -2.5", msg.String())
}

func TestBangIsNotZero(t *testing.T) {
	assert.True(t, pdgraph.Bang().IsBang())
	assert.False(t, pdgraph.Float(0).IsBang())
	assert.Equal(t, 0.0, pdgraph.Float(0).Float())
	assert.True(t, math.IsNaN(pdgraph.Bang().Float()))
	assert.NotEqual(t, pdgraph.Bang(), pdgraph.Float(0))
}

func TestMessageFloat(t *testing.T) {
	assert.Equal(t, 3.5, pdgraph.Atoms(3.5).Float())
	assert.True(t, math.IsNaN(pdgraph.Message{}.Float()), "empty message")
	assert.True(t, math.IsNaN(pdgraph.Atoms(1, 2).Float()), "list")
	assert.True(t, math.IsNaN(pdgraph.Atoms("set").Float()), "atom")
}

func TestHeadAndArgs(t *testing.T) {
	msg := pdgraph.ParseMessage("start 4")
	assert.Equal(t, "start", msg.Head())
	assert.Equal(t, pdgraph.Float(4), msg.Args())
	assert.Equal(t, "", pdgraph.Atoms(1, 2).Head(), "numbers select no sub-protocol")
	assert.Equal(t, "", pdgraph.Message{}.Head())
	assert.Nil(t, pdgraph.Message{}.Args())
}

func TestTokensIsACopy(t *testing.T) {
	msg := pdgraph.Atoms(1, 2)
	tokens := msg.Tokens()
	tokens[0] = pdgraph.Atom("x")
	assert.Equal(t, 1.0, msg[0].Float())
}

func TestSubstitute(t *testing.T) {
	msg := pdgraph.ParseMessage("$1 $2-left $3 x$1y $ plain 7")
	got := msg.Substitute(pdgraph.ParseMessage("440 foo"))
	want := pdgraph.Message{
		pdgraph.Number(440),
		pdgraph.Atom("foo-left"),
		pdgraph.Number(0),
		pdgraph.Atom("x440y"),
		pdgraph.Atom("$"),
		pdgraph.Atom("plain"),
		pdgraph.Number(7),
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "$1", msg[0].Atom(), "the original message must not change")
}

func TestSubstituteKeepsArgumentType(t *testing.T) {
	got := pdgraph.ParseMessage("$1 $2").Substitute(pdgraph.Message{pdgraph.Atom("12"), pdgraph.Number(3)})
	assert.False(t, got[0].IsNumber(), "a whole-token placeholder takes the type of the argument")
	assert.True(t, got[1].IsNumber())
}

func TestMessageYAML(t *testing.T) {
	var v struct {
		A pdgraph.Message
		B pdgraph.Message
		C pdgraph.Message
	}
	err := yaml.Unmarshal([]byte("a: osc~ 440\nb: [440, $1, set]\nc: 3\n"), &v)
	require.NoError(t, err)
	assert.Equal(t, pdgraph.Atoms("osc~", 440), v.A)
	assert.Equal(t, pdgraph.Message{pdgraph.Number(440), pdgraph.Atom("$1"), pdgraph.Atom("set")}, v.B)
	assert.Equal(t, pdgraph.Float(3), v.C)
	err = yaml.Unmarshal([]byte("a: {x: 1}\n"), &v)
	assert.Error(t, err, "mappings are not messages")
	out, err := yaml.Marshal(struct{ A pdgraph.Message }{pdgraph.Atoms("set", 2)})
	require.NoError(t, err)
	assert.Equal(t, "a: set 2\n", string(out))
}

func TestMessageJSON(t *testing.T) {
	var m pdgraph.Message
	require.NoError(t, json.Unmarshal([]byte(`"set 1.5"`), &m))
	assert.Equal(t, pdgraph.Atoms("set", 1.5), m)
	require.NoError(t, json.Unmarshal([]byte(`["start", 4]`), &m))
	assert.Equal(t, pdgraph.Atoms("start", 4), m)
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &m))
	out, err := json.Marshal(pdgraph.Atoms("start", 4))
	require.NoError(t, err)
	assert.Equal(t, `"start 4"`, string(out))
}
