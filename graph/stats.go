package graph

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Route aggregates flight edges between an airport pair
type Route struct {
	Origin      string  `json:"origin"`      // airport code
	Destination string  `json:"destination"` // airport code
	Flights     float64 `json:"flights"`     // summed flight-edge weight
}

// RouteStats summarizes the flight network for the routes dashboard
type RouteStats struct {
	TotalRoutes    int     `json:"total_routes"`
	TotalFlights   float64 `json:"total_flights"`
	AvgPerRoute    float64 `json:"avg_per_route"`
	MedianPerRoute float64 `json:"median_per_route"`
	MinFlights     float64 `json:"min_flights"` // threshold applied
	TopRoutes      []Route `json:"top_routes"`
}

// FlightRouteStats aggregates flight edges into route statistics. Routes with
// summed weight below minFlights are excluded. topN limits the busiest-routes
// table (20 matches the original dashboard).
func (g *Graph) FlightRouteStats(minFlights float64, topN int) RouteStats {
	codes := make(map[string]string, len(g.Nodes))
	for _, node := range g.Nodes {
		if node.Type == NodeAirport {
			codes[node.ID] = node.Code
		}
	}

	type pair struct{ origin, destination string }
	byPair := make(map[pair]float64)
	for _, link := range g.Links {
		if link.Type != EdgeFlight {
			continue
		}
		p := pair{codes[link.Source], codes[link.Target]}
		byPair[p] += link.Weight
	}

	routes := make([]Route, 0, len(byPair))
	weights := make([]float64, 0, len(byPair))
	total := 0.0
	for p, flights := range byPair {
		if flights < minFlights {
			continue
		}
		routes = append(routes, Route{Origin: p.origin, Destination: p.destination, Flights: flights})
		weights = append(weights, flights)
		total += flights
	}

	stats := RouteStats{
		TotalRoutes:  len(routes),
		TotalFlights: total,
		MinFlights:   minFlights,
	}
	if len(weights) > 0 {
		stats.AvgPerRoute = stat.Mean(weights, nil)
		sort.Float64s(weights)
		stats.MedianPerRoute = stat.Quantile(0.5, stat.Empirical, weights, nil)
	}

	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Flights > routes[j].Flights
	})
	if topN > 0 && len(routes) > topN {
		routes = routes[:topN]
	}
	stats.TopRoutes = routes

	return stats
}
