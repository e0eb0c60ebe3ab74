package graph

import (
	"sort"
)

// NodeTypeDefinition holds display metadata for a node type
type NodeTypeDefinition struct {
	Label       string
	Color       string
	RadiusScale float64
}

// EdgeTypeDefinition holds physics and display metadata for an edge type
type EdgeTypeDefinition struct {
	Label        string
	Color        string
	Arrow        bool
	LinkDistance *float64
}

func distance(d float64) *float64 { return &d }

// nodeTypeDefinitions is the fixed palette for the two node kinds
var nodeTypeDefinitions = map[string]NodeTypeDefinition{
	NodeAirport: {Label: "Airport", Color: "#4a90d9", RadiusScale: 1.2},
	NodeLineage: {Label: "Lineage", Color: "#d95f4a", RadiusScale: 1.0},
}

// edgeTypeDefinitions carries per-type color, arrow, and rest-length hints.
// sampled_at edges are undirected relationships, so no arrowhead.
var edgeTypeDefinitions = map[string]EdgeTypeDefinition{
	EdgeFlight:      {Label: "Flight", Color: "#6a9fb5", Arrow: true, LinkDistance: distance(80)},
	EdgeSampledAt:   {Label: "Sampled At", Color: "#90a959", Arrow: false, LinkDistance: distance(60)},
	EdgeEvolvesFrom: {Label: "Evolves From", Color: "#aa759f", Arrow: true, LinkDistance: distance(50)},
	EdgeTemporal:    {Label: "Temporal", Color: "#d28445", Arrow: true, LinkDistance: distance(50)},
}

// NodeTypeDef returns the display definition for a node type.
// Unknown types get a neutral fallback rather than an error.
func NodeTypeDef(nodeType string) NodeTypeDefinition {
	if def, ok := nodeTypeDefinitions[nodeType]; ok {
		return def
	}
	return NodeTypeDefinition{Label: nodeType, Color: "#999999", RadiusScale: 1.0}
}

// EdgeTypeDef returns the display definition for an edge type
func EdgeTypeDef(edgeType string) EdgeTypeDefinition {
	if def, ok := edgeTypeDefinitions[edgeType]; ok {
		return def
	}
	return EdgeTypeDefinition{Label: edgeType, Color: "#999999"}
}

// EdgeTypeNames returns the known edge types in a stable order
func EdgeTypeNames() []string {
	return []string{EdgeFlight, EdgeSampledAt, EdgeEvolvesFrom, EdgeTemporal}
}

// collectNodeTypeInfo counts nodes by type and attaches display metadata
func collectNodeTypeInfo(nodes []Node) []NodeTypeInfo {
	counts := make(map[string]int)
	for _, node := range nodes {
		counts[node.Type]++
	}

	var infos []NodeTypeInfo
	for nodeType, count := range counts {
		def := NodeTypeDef(nodeType)
		infos = append(infos, NodeTypeInfo{
			Type:        nodeType,
			Label:       def.Label,
			Color:       def.Color,
			RadiusScale: def.RadiusScale,
			Count:       count,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Count > infos[j].Count
	})
	return infos
}

// collectEdgeTypeInfo counts links by type and attaches physics + display
// metadata. Sorted by count descending so the most common types appear first.
func collectEdgeTypeInfo(links []Link) []EdgeTypeInfo {
	counts := make(map[string]int)
	for _, link := range links {
		counts[link.Type]++
	}

	var infos []EdgeTypeInfo
	for edgeType, count := range counts {
		def := EdgeTypeDef(edgeType)
		infos = append(infos, EdgeTypeInfo{
			Type:         edgeType,
			Label:        def.Label,
			Color:        def.Color,
			Arrow:        def.Arrow,
			LinkDistance: def.LinkDistance,
			Count:        count,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Count > infos[j].Count
	})
	return infos
}
