package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	grapherr "github.com/phylomap/phylomap/graph/error"
)

const validArtifact = `{
	"nodes": [
		{"id": "airport_0", "type": "airport", "code": "JFK", "city": "New York", "country": "US", "lat": 40.6, "lon": -73.8},
		{"id": "airport_1", "type": "airport", "code": "LHR", "city": "London", "country": "GB", "lat": 51.5, "lon": -0.5},
		{"id": "lineage_0", "type": "lineage", "name": "B.1.1.7", "index": 0}
	],
	"links": [
		{"source": "airport_0", "target": "airport_1", "type": "flight", "weight": 120},
		{"source": "lineage_0", "target": "airport_0", "type": "sampled_at", "weight": 3, "week": 12}
	],
	"metadata": {"num_airports": 2, "num_lineages": 1, "num_edges": 2, "edge_types": ["flight", "sampled_at"], "sampled": true}
}`

func newTestLoader() *Loader {
	return NewLoader(zap.NewNop().Sugar())
}

func TestParseValidArtifact(t *testing.T) {
	g, err := newTestLoader().Parse([]byte(validArtifact))
	require.NoError(t, err)

	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Links, 2)
	assert.Equal(t, 2, g.Meta.Stats.Airports)
	assert.Equal(t, 1, g.Meta.Stats.Lineages)
	assert.Equal(t, 3, g.Meta.Stats.TotalNodes)
	assert.Equal(t, 2, g.Meta.Stats.TotalEdges)
	assert.Equal(t, 0, g.Meta.Stats.DroppedEdges)
	assert.Equal(t, "true", g.Meta.Config["sampled"])

	for _, node := range g.Nodes {
		assert.True(t, node.Visible, "nodes load visible by default")
	}

	require.NotNil(t, g.Links[1].Week)
	assert.Equal(t, 12, *g.Links[1].Week)
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := newTestLoader().Parse([]byte(`{"nodes": [`))
	require.Error(t, err)

	graphErr, ok := err.(*grapherr.GraphError)
	require.True(t, ok)
	assert.Equal(t, grapherr.CategoryLoad, graphErr.Category)
	assert.Equal(t, grapherr.SubcategoryLoadParse, graphErr.Subcategory)
}

func TestParseEmptyArtifact(t *testing.T) {
	_, err := newTestLoader().Parse([]byte(`{"nodes": [], "links": []}`))
	require.Error(t, err)

	graphErr, ok := err.(*grapherr.GraphError)
	require.True(t, ok)
	assert.Equal(t, grapherr.SubcategoryLoadEmpty, graphErr.Subcategory)
}

func TestParseDropsDanglingEdges(t *testing.T) {
	artifact := `{
		"nodes": [{"id": "airport_0", "type": "airport", "code": "JFK", "lat": 1, "lon": 1}],
		"links": [
			{"source": "airport_0", "target": "ghost", "type": "flight", "weight": 1},
			{"source": "ghost", "target": "airport_0", "type": "flight", "weight": 1}
		]
	}`
	g, err := newTestLoader().Parse([]byte(artifact))
	require.NoError(t, err)

	assert.Empty(t, g.Links)
	assert.Equal(t, 2, g.Meta.Stats.DroppedEdges)
}

func TestParseDropsInvalidNodes(t *testing.T) {
	artifact := `{
		"nodes": [
			{"id": "airport_0", "type": "airport", "code": "JFK", "lat": 1, "lon": 1},
			{"id": "", "type": "airport", "code": "XXX"},
			{"id": "lineage_0", "type": "lineage"},
			{"id": "mystery_0", "type": "wormhole"}
		],
		"links": []
	}`
	g, err := newTestLoader().Parse([]byte(artifact))
	require.NoError(t, err)

	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "airport_0", g.Nodes[0].ID)
}

func TestParseKeepsAirportWithoutCoordinates(t *testing.T) {
	artifact := `{
		"nodes": [
			{"id": "airport_0", "type": "airport", "code": "JFK"}
		],
		"links": []
	}`
	g, err := newTestLoader().Parse([]byte(artifact))
	require.NoError(t, err)

	// Absent coordinates decode to 0,0 and cannot be told apart from a real
	// position there, so a coded airport is kept rather than dropped.
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "JFK", g.Nodes[0].Code)
	assert.Zero(t, g.Nodes[0].Lat)
	assert.Zero(t, g.Nodes[0].Lon)
}

func TestParseDropsDuplicateIDs(t *testing.T) {
	artifact := `{
		"nodes": [
			{"id": "airport_0", "type": "airport", "code": "JFK", "lat": 1, "lon": 1},
			{"id": "airport_0", "type": "airport", "code": "LHR", "lat": 2, "lon": 2}
		],
		"links": []
	}`
	g, err := newTestLoader().Parse([]byte(artifact))
	require.NoError(t, err)

	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "JFK", g.Nodes[0].Code, "first occurrence wins")
}

func TestParseSanitizesCoordinatesAndWeights(t *testing.T) {
	artifact := `{
		"nodes": [
			{"id": "airport_0", "type": "airport", "code": "AAA", "lat": 9999, "lon": -9999},
			{"id": "airport_1", "type": "airport", "code": "BBB", "lat": 10, "lon": 10}
		],
		"links": [{"source": "airport_0", "target": "airport_1", "type": "flight", "weight": -5}]
	}`
	g, err := newTestLoader().Parse([]byte(artifact))
	require.NoError(t, err)

	assert.Equal(t, 90.0, g.Nodes[0].Lat)
	assert.Equal(t, -180.0, g.Nodes[0].Lon)
	assert.Equal(t, 0.0, g.Links[0].Weight, "negative weights clamp to zero")
}

func TestParseTypeMetadata(t *testing.T) {
	g, err := newTestLoader().Parse([]byte(validArtifact))
	require.NoError(t, err)

	require.Len(t, g.Meta.NodeTypes, 2)
	assert.Equal(t, NodeAirport, g.Meta.NodeTypes[0].Type, "most common type first")
	assert.Equal(t, 1.2, g.Meta.NodeTypes[0].RadiusScale)

	require.Len(t, g.Meta.EdgeTypes, 2)
	for _, info := range g.Meta.EdgeTypes {
		if info.Type == EdgeSampledAt {
			assert.False(t, info.Arrow, "sampled_at edges are undirected")
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(validArtifact), 0o644))

	g, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := newTestLoader().Load(context.Background(), "/nonexistent/graph.json")
	require.Error(t, err)

	graphErr, ok := err.(*grapherr.GraphError)
	require.True(t, ok)
	assert.Equal(t, grapherr.SubcategoryLoadFetch, graphErr.Subcategory)
}

func TestLoadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validArtifact))
	}))
	defer srv.Close()

	g, err := newTestLoader().Load(context.Background(), srv.URL+"/graph.json")
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
}

func TestLoadFromURLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestLoader().Load(context.Background(), srv.URL+"/graph.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
