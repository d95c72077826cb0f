package pdgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/pdgraph"
)

func TestDot(t *testing.T) {
	patch := pdgraph.Patch{
		Objects: []pdgraph.Object{
			{Type: "osc~", Args: pdgraph.Float(440)},
			{Type: "dac~"},
			{Type: "pd", Args: pdgraph.Atoms("sub"), Patch: &pdgraph.Patch{
				Objects:     []pdgraph.Object{{Type: "inlet~"}, {Type: "outlet~"}},
				Connections: []pdgraph.Connection{{Source: 0, Sink: 1}},
			}},
		},
		Connections: []pdgraph.Connection{
			{Source: 0, Outlet: 0, Sink: 2, Inlet: 0},
			{Source: 2, Outlet: 0, Sink: 1, Inlet: 1},
		},
	}
	dot, err := patch.Dot("sine")
	require.NoError(t, err)
	assert.Contains(t, dot, `digraph "sine" {`)
	assert.Contains(t, dot, `n0 [label="osc~ 440"];`)
	assert.Contains(t, dot, `n1 [label="dac~"];`)
	assert.Contains(t, dot, `subgraph "cluster_n2" {`)
	assert.Contains(t, dot, `n2 [label="pd sub", shape=component];`)
	assert.Contains(t, dot, `n2_0 [label="inlet~"];`)
	assert.Contains(t, dot, `n2_0 -> n2_1 [taillabel="0", headlabel="0"];`)
	assert.Contains(t, dot, `n2 -> n1 [taillabel="0", headlabel="1"];`)
}
