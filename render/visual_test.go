package render

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phylomap/phylomap/graph"
	"github.com/phylomap/phylomap/layout"
)

func testGraph() *graph.Graph {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "airport_0", Type: graph.NodeAirport, Code: "JFK", Visible: true},
			{ID: "lineage_0", Type: graph.NodeLineage, Name: "B.1.1.7", Visible: true},
			{ID: "lineage_1", Type: graph.NodeLineage, Name: "BA.2", Visible: true},
		},
		Links: []graph.Link{
			{Source: "lineage_0", Target: "airport_0", Type: graph.EdgeSampledAt, Weight: 4},
			{Source: "lineage_1", Target: "lineage_0", Type: graph.EdgeEvolvesFrom, Weight: 1},
		},
	}
	return g
}

func testPositions() []layout.Position {
	return []layout.Position{
		{ID: "airport_0", X: 100, Y: 100},
		{ID: "lineage_0", X: 200, Y: 150},
		{ID: "lineage_1", X: 300, Y: 200},
	}
}

func TestNodeRadiusScalesAirports(t *testing.T) {
	assert.InDelta(t, 7.2, NodeRadius(graph.NodeAirport, 6), 1e-9)
	assert.InDelta(t, 6.0, NodeRadius(graph.NodeLineage, 6), 1e-9)
	assert.InDelta(t, 6.0, NodeRadius("unknown", 6), 1e-9)
}

func TestEdgeWidthSqrtScaling(t *testing.T) {
	assert.InDelta(t, 0.5, EdgeWidth(1), 1e-9)
	assert.InDelta(t, 1.0, EdgeWidth(4), 1e-9)
	assert.InDelta(t, 0.0, EdgeWidth(0), 1e-9)
	assert.InDelta(t, 0.0, EdgeWidth(-2), 1e-9)
	assert.InDelta(t, 0.0, EdgeWidth(math.NaN()), 1e-9)

	// monotonically non-decreasing in weight
	prev := 0.0
	for w := 0.0; w < 50; w += 0.5 {
		width := EdgeWidth(w)
		assert.GreaterOrEqual(t, width, prev)
		prev = width
	}
}

func TestBuildSceneBaselineOpacities(t *testing.T) {
	scene := BuildScene(testGraph(), testPositions(), DefaultStyle(), Highlight{})

	require.Len(t, scene.Nodes, 3)
	require.Len(t, scene.Edges, 2)

	for _, n := range scene.Nodes {
		assert.Equal(t, BaselineNodeOpacity, n.Opacity)
		assert.True(t, n.LabelVisible)
	}
	for _, e := range scene.Edges {
		assert.Equal(t, BaselineEdgeOpacity, e.Opacity)
	}
}

func TestBuildSceneHighlightDimsOutsiders(t *testing.T) {
	g := testGraph()
	nbh := g.OneHop("airport_0")
	hl := Highlight{Active: true, NodeIDs: nbh.NodeIDs, Edges: map[int]bool{}}
	for _, i := range nbh.Edges {
		hl.Edges[i] = true
	}

	scene := BuildScene(g, testPositions(), DefaultStyle(), hl)

	byID := make(map[string]NodeVisual)
	for _, n := range scene.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, BaselineNodeOpacity, byID["airport_0"].Opacity)
	assert.Equal(t, BaselineNodeOpacity, byID["lineage_0"].Opacity)
	assert.Equal(t, DimmedOpacity, byID["lineage_1"].Opacity)

	assert.Equal(t, BaselineEdgeOpacity, scene.Edges[0].Opacity, "sampled_at edge is in the neighborhood")
	assert.Equal(t, DimmedOpacity, scene.Edges[1].Opacity, "evolves_from edge is outside the neighborhood")
}

func TestBuildSceneStyleToggles(t *testing.T) {
	style := DefaultStyle()
	style.ShowLabels = false
	style.ShowArrows = false
	style.AnimateEdges = true

	scene := BuildScene(testGraph(), testPositions(), style, Highlight{})

	for _, n := range scene.Nodes {
		assert.False(t, n.LabelVisible)
	}
	for _, e := range scene.Edges {
		assert.False(t, e.Arrow)
		assert.True(t, e.Animated)
	}
}

func TestBuildSceneArrowFollowsEdgeType(t *testing.T) {
	scene := BuildScene(testGraph(), testPositions(), DefaultStyle(), Highlight{})

	byType := make(map[string]EdgeVisual)
	for _, e := range scene.Edges {
		byType[e.Type] = e
	}
	assert.False(t, byType[graph.EdgeSampledAt].Arrow, "sampled_at edges are undirected")
	assert.True(t, byType[graph.EdgeEvolvesFrom].Arrow)
}

func TestBuildSceneHiddenEdgeSuppressesArrow(t *testing.T) {
	g := testGraph()
	g.Links[1].Hidden = true

	scene := BuildScene(g, testPositions(), DefaultStyle(), Highlight{})
	assert.False(t, scene.Edges[1].Arrow)
	assert.False(t, scene.Edges[1].Visible)
}

func TestBuildSceneEndpointCoordinates(t *testing.T) {
	scene := BuildScene(testGraph(), testPositions(), DefaultStyle(), Highlight{})

	e := scene.Edges[0] // lineage_0 -> airport_0
	assert.Equal(t, 200.0, e.X1)
	assert.Equal(t, 150.0, e.Y1)
	assert.Equal(t, 100.0, e.X2)
	assert.Equal(t, 100.0, e.Y2)
}

func TestExportSVG(t *testing.T) {
	scene := BuildScene(testGraph(), testPositions(), DefaultStyle(), Highlight{})
	data, err := ExportSVG(scene, 800, 600)
	require.NoError(t, err)

	svg := string(data)
	assert.True(t, strings.HasPrefix(svg, "<svg "))
	assert.Contains(t, svg, `viewBox="0 0 800 600"`)
	assert.Contains(t, svg, "<circle")
	assert.Contains(t, svg, "<line")
	assert.Contains(t, svg, "JFK")
	assert.Contains(t, svg, `marker-end="url(#arrow-evolves_from)"`)
	assert.Contains(t, svg, `<marker id="arrow-evolves_from"`)
}

func TestExportSVGOmitsHiddenElements(t *testing.T) {
	g := testGraph()
	g.Nodes[2].Visible = false
	g.Links[1].Hidden = true

	scene := BuildScene(g, testPositions(), DefaultStyle(), Highlight{})
	data, err := ExportSVG(scene, 800, 600)
	require.NoError(t, err)

	svg := string(data)
	assert.NotContains(t, svg, "BA.2")
	assert.NotContains(t, svg, "arrow-evolves_from")
}

func TestExportSVGEscapesLabels(t *testing.T) {
	g := testGraph()
	g.Nodes[1].Name = `<script>"x"</script>`

	scene := BuildScene(g, testPositions(), DefaultStyle(), Highlight{})
	data, err := ExportSVG(scene, 800, 600)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<script>")
}

func TestExportSVGRejectsBadDimensions(t *testing.T) {
	_, err := ExportSVG(Scene{}, 0, 600)
	assert.Error(t, err)
	_, err = ExportSVG(Scene{}, 800, -1)
	assert.Error(t, err)
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "phylomap_export_20260314_092653.svg", ExportFilename(ts))
}
