package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeTestGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: "airport_0", Type: NodeAirport, Code: "JFK"},
			{ID: "airport_1", Type: NodeAirport, Code: "LHR"},
			{ID: "airport_2", Type: NodeAirport, Code: "CDG"},
			{ID: "lineage_0", Type: NodeLineage, Name: "B.1"},
		},
		Links: []Link{
			{Source: "airport_0", Target: "airport_1", Type: EdgeFlight, Weight: 100},
			{Source: "airport_0", Target: "airport_1", Type: EdgeFlight, Weight: 20},
			{Source: "airport_1", Target: "airport_2", Type: EdgeFlight, Weight: 50},
			{Source: "airport_0", Target: "airport_2", Type: EdgeFlight, Weight: 5},
			{Source: "lineage_0", Target: "airport_0", Type: EdgeSampledAt, Weight: 99},
		},
	}
}

func TestFlightRouteStats(t *testing.T) {
	stats := routeTestGraph().FlightRouteStats(0, 20)

	// Parallel JFK->LHR edges aggregate into one route
	assert.Equal(t, 3, stats.TotalRoutes)
	assert.Equal(t, 175.0, stats.TotalFlights)
	assert.InDelta(t, 175.0/3, stats.AvgPerRoute, 1e-9)
	assert.Equal(t, 50.0, stats.MedianPerRoute)

	require.Len(t, stats.TopRoutes, 3)
	assert.Equal(t, "JFK", stats.TopRoutes[0].Origin)
	assert.Equal(t, "LHR", stats.TopRoutes[0].Destination)
	assert.Equal(t, 120.0, stats.TopRoutes[0].Flights)
	// sorted busiest first
	assert.GreaterOrEqual(t, stats.TopRoutes[0].Flights, stats.TopRoutes[1].Flights)
	assert.GreaterOrEqual(t, stats.TopRoutes[1].Flights, stats.TopRoutes[2].Flights)
}

func TestFlightRouteStatsThreshold(t *testing.T) {
	stats := routeTestGraph().FlightRouteStats(10, 20)

	assert.Equal(t, 2, stats.TotalRoutes, "routes under the threshold are excluded")
	assert.Equal(t, 170.0, stats.TotalFlights)
	assert.Equal(t, 10.0, stats.MinFlights)
}

func TestFlightRouteStatsTopN(t *testing.T) {
	stats := routeTestGraph().FlightRouteStats(0, 1)
	require.Len(t, stats.TopRoutes, 1)
	assert.Equal(t, 120.0, stats.TopRoutes[0].Flights)
	assert.Equal(t, 3, stats.TotalRoutes, "top-n limits the table, not the totals")
}

func TestFlightRouteStatsEmpty(t *testing.T) {
	g := &Graph{Nodes: []Node{{ID: "lineage_0", Type: NodeLineage, Name: "B.1"}}}
	stats := g.FlightRouteStats(0, 20)

	assert.Zero(t, stats.TotalRoutes)
	assert.Zero(t, stats.TotalFlights)
	assert.Zero(t, stats.AvgPerRoute)
	assert.Empty(t, stats.TopRoutes)
}
