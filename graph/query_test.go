package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeByID(t *testing.T) {
	g := viewTestGraph()

	node := g.NodeByID("lineage_0")
	require.NotNil(t, node)
	assert.Equal(t, "B.1.1.7", node.Name)

	assert.Nil(t, g.NodeByID("nope"))
}

func TestOneHop(t *testing.T) {
	g := viewTestGraph()

	nbh := g.OneHop("lineage_0")
	// lineage_0 touches airport_0 (sampled_at), lineage_1 (evolves_from and temporal)
	assert.Len(t, nbh.NodeIDs, 3)
	assert.True(t, nbh.NodeIDs["lineage_0"])
	assert.True(t, nbh.NodeIDs["airport_0"])
	assert.True(t, nbh.NodeIDs["lineage_1"])
	assert.Len(t, nbh.Edges, 3)
}

func TestOneHopIsolatedNode(t *testing.T) {
	g := &Graph{Nodes: []Node{{ID: "solo", Type: NodeLineage, Name: "XBB"}}}

	nbh := g.OneHop("solo")
	assert.Equal(t, map[string]bool{"solo": true}, nbh.NodeIDs)
	assert.Empty(t, nbh.Edges)
}

func TestDegree(t *testing.T) {
	g := viewTestGraph()
	degree := g.Degree()

	assert.Equal(t, 2, degree["airport_0"]) // flight + sampled_at
	assert.Equal(t, 1, degree["airport_1"])
	assert.Equal(t, 3, degree["lineage_0"])
	assert.Equal(t, 2, degree["lineage_1"])
}
