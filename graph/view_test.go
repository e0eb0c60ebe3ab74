package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewTestGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: "airport_0", Type: NodeAirport, Code: "JFK"},
			{ID: "airport_1", Type: NodeAirport, Code: "LHR"},
			{ID: "lineage_0", Type: NodeLineage, Name: "B.1.1.7"},
			{ID: "lineage_1", Type: NodeLineage, Name: "BA.2"},
		},
		Links: []Link{
			{Source: "airport_0", Target: "airport_1", Type: EdgeFlight, Weight: 10},
			{Source: "lineage_0", Target: "airport_0", Type: EdgeSampledAt, Weight: 2},
			{Source: "lineage_1", Target: "lineage_0", Type: EdgeEvolvesFrom, Weight: 1},
			{Source: "lineage_0", Target: "lineage_1", Type: EdgeTemporal, Weight: 1},
		},
	}
}

func visibleEdgeTypes(g *Graph) map[string]int {
	types := make(map[string]int)
	for _, link := range g.Links {
		if !link.Hidden {
			types[link.Type]++
		}
	}
	return types
}

func TestViewAllShowsEverything(t *testing.T) {
	g := viewTestGraph()
	counts := NewViewFilter().Apply(g)

	assert.Equal(t, 4, counts.VisibleNodes)
	assert.Equal(t, 4, counts.VisibleEdges)
}

func TestViewAirports(t *testing.T) {
	g := viewTestGraph()
	filter := ViewFilter{ViewMode: ViewAirports, EdgeFilter: EdgeFilterAll}
	counts := filter.Apply(g)

	assert.Equal(t, 2, counts.VisibleNodes)
	types := visibleEdgeTypes(g)
	assert.Equal(t, 1, types[EdgeFlight])
	assert.Len(t, types, 1, "airports view shows flight edges only")
}

func TestViewLineages(t *testing.T) {
	g := viewTestGraph()
	filter := ViewFilter{ViewMode: ViewLineages, EdgeFilter: EdgeFilterAll}
	counts := filter.Apply(g)

	assert.Equal(t, 2, counts.VisibleNodes)
	types := visibleEdgeTypes(g)
	assert.Equal(t, 1, types[EdgeEvolvesFrom])
	assert.Equal(t, 1, types[EdgeTemporal])
	assert.Zero(t, types[EdgeFlight])
	// sampled_at touches a hidden airport endpoint, so it stays hidden even
	// though it is a lineage relationship
	assert.Zero(t, types[EdgeSampledAt])
}

func TestViewFlightsShowsAllNodes(t *testing.T) {
	g := viewTestGraph()
	filter := ViewFilter{ViewMode: ViewFlights, EdgeFilter: EdgeFilterAll}
	counts := filter.Apply(g)

	assert.Equal(t, 4, counts.VisibleNodes, "flights view keeps all nodes visible")
	types := visibleEdgeTypes(g)
	assert.Len(t, types, 1)
	assert.Equal(t, 1, types[EdgeFlight])
}

func TestViewEvolution(t *testing.T) {
	g := viewTestGraph()
	filter := ViewFilter{ViewMode: ViewEvolution, EdgeFilter: EdgeFilterAll}
	counts := filter.Apply(g)

	assert.Equal(t, 4, counts.VisibleNodes)
	types := visibleEdgeTypes(g)
	assert.Equal(t, 1, types[EdgeEvolvesFrom])
	assert.Equal(t, 1, types[EdgeTemporal])
	assert.Len(t, types, 2)
}

func TestEdgeFilterTakesPrecedence(t *testing.T) {
	g := viewTestGraph()
	// flights view would show only flight edges, but the explicit edge
	// filter overrides the view mode's edge rule
	filter := ViewFilter{ViewMode: ViewFlights, EdgeFilter: EdgeEvolvesFrom}
	filter.Apply(g)

	types := visibleEdgeTypes(g)
	assert.Len(t, types, 1)
	assert.Equal(t, 1, types[EdgeEvolvesFrom])
}

func TestEdgeFilterWithHiddenEndpoint(t *testing.T) {
	g := viewTestGraph()
	// airports view hides lineage nodes; filtering to sampled_at leaves
	// nothing visible since every sampled_at edge touches a lineage
	filter := ViewFilter{ViewMode: ViewAirports, EdgeFilter: EdgeSampledAt}
	counts := filter.Apply(g)

	assert.Equal(t, 0, counts.VisibleEdges)
}

func TestFilterHidesButNeverRemoves(t *testing.T) {
	g := viewTestGraph()
	filter := ViewFilter{ViewMode: ViewAirports, EdgeFilter: EdgeFilterAll}
	filter.Apply(g)

	assert.Len(t, g.Nodes, 4, "filtering must not remove nodes")
	assert.Len(t, g.Links, 4, "filtering must not remove links")

	// Reverting to the all view restores everything
	counts := NewViewFilter().Apply(g)
	assert.Equal(t, 4, counts.VisibleNodes)
	assert.Equal(t, 4, counts.VisibleEdges)
}

func TestCountsNeverExceedTotals(t *testing.T) {
	g := viewTestGraph()
	modes := []string{ViewAll, ViewAirports, ViewLineages, ViewFlights, ViewEvolution}
	filters := []string{EdgeFilterAll, EdgeFlight, EdgeSampledAt, EdgeEvolvesFrom, EdgeTemporal}

	for _, mode := range modes {
		for _, edgeFilter := range filters {
			filter := ViewFilter{ViewMode: mode, EdgeFilter: edgeFilter}
			counts := filter.Apply(g)
			require.LessOrEqual(t, counts.VisibleNodes, counts.TotalNodes,
				"mode=%s filter=%s", mode, edgeFilter)
			require.LessOrEqual(t, counts.VisibleEdges, counts.TotalEdges,
				"mode=%s filter=%s", mode, edgeFilter)
		}
	}
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidViewMode(ViewAll))
	assert.True(t, ValidViewMode(ViewEvolution))
	assert.False(t, ValidViewMode("sideways"))

	assert.True(t, ValidEdgeFilter(EdgeFilterAll))
	assert.True(t, ValidEdgeFilter(EdgeTemporal))
	assert.False(t, ValidEdgeFilter("teleport"))
}
