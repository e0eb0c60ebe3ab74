package graph

import (
	"time"
)

// Node types present in the artifact
const (
	NodeAirport = "airport"
	NodeLineage = "lineage"
)

// Edge types present in the artifact
const (
	EdgeFlight      = "flight"       // airport -> airport, weight = weekly flight count
	EdgeSampledAt   = "sampled_at"   // lineage -> airport, weight = sample count
	EdgeEvolvesFrom = "evolves_from" // lineage -> lineage, weight = genetic distance
	EdgeTemporal    = "temporal"     // lineage -> lineage, weight = growth rate
)

// Graph represents the complete graph structure for visualization
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
	Meta  Meta   `json:"meta"`
}

// Node represents an entity in the graph: an airport or a viral lineage.
// Airport nodes carry code/lat/lon/city/country; lineage nodes carry name/index.
type Node struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Index   int     `json:"index"`
	Code    string  `json:"code,omitempty"`
	Name    string  `json:"name,omitempty"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
	Visible bool    `json:"visible"` // Backend controls visibility
}

// Label returns the display label: airport code or lineage name
func (n *Node) Label() string {
	if n.Type == NodeAirport {
		return n.Code
	}
	return n.Name
}

// Link represents a typed, weighted relationship between nodes
type Link struct {
	Source    string  `json:"source"` // Node ID
	Target    string  `json:"target"` // Node ID
	Type      string  `json:"type"`
	Weight    float64 `json:"weight"`
	Week      *int    `json:"week,omitempty"`       // sampled_at edges
	TimeStart *int    `json:"time_start,omitempty"` // temporal edges
	TimeEnd   *int    `json:"time_end,omitempty"`   // temporal edges
	Hidden    bool    `json:"hidden,omitempty"` // Server-controlled visibility
}

// Meta contains metadata about the graph
type Meta struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Stats       Stats             `json:"stats"`
	Config      map[string]string `json:"config,omitempty"`
	NodeTypes   []NodeTypeInfo    `json:"node_types"` // Available node types in this graph
	EdgeTypes   []EdgeTypeInfo    `json:"edge_types"` // Available edge types with physics
}

// NodeTypeInfo describes a node type and its visual configuration
type NodeTypeInfo struct {
	Type        string  `json:"type"`  // "airport" or "lineage"
	Label       string  `json:"label"` // Human-readable display name
	Color       string  `json:"color,omitempty"`
	RadiusScale float64 `json:"radius_scale,omitempty"` // Multiplier on base node size
	Count       int     `json:"count,omitempty"`
}

// EdgeTypeInfo describes an edge type with physics and visual configuration
type EdgeTypeInfo struct {
	Type         string   `json:"type"`
	Label        string   `json:"label"`
	Color        string   `json:"color,omitempty"`
	Arrow        bool     `json:"arrow,omitempty"`                   // Draw arrowhead marker
	LinkDistance *float64 `json:"link_distance,omitempty"` // Force rest length override (nil = use default)
	Count        int      `json:"count,omitempty"`
}

// Stats provides graph statistics derived at load time
type Stats struct {
	Airports     int `json:"airports"`
	Lineages     int `json:"lineages"`
	TotalNodes   int `json:"total_nodes"`
	TotalEdges   int `json:"total_edges"`
	DroppedEdges int `json:"dropped_edges,omitempty"` // Edges referencing unknown node ids, dropped at load
}
