package graph

// View modes gate node and edge visibility jointly
const (
	ViewAll       = "all"
	ViewAirports  = "airports"
	ViewLineages  = "lineages"
	ViewFlights   = "flights"
	ViewEvolution = "evolution"
)

// EdgeFilterAll disables the single-edge-type restriction
const EdgeFilterAll = "all"

// ViewFilter holds the visibility configuration applied to a graph.
// Filtering hides elements, it never removes them: hidden nodes keep
// participating in the layout simulation.
type ViewFilter struct {
	ViewMode   string // ViewAll, ViewAirports, ...
	EdgeFilter string // EdgeFilterAll or a single edge type; takes precedence over ViewMode edge rules
}

// NewViewFilter returns the default filter showing everything
func NewViewFilter() ViewFilter {
	return ViewFilter{ViewMode: ViewAll, EdgeFilter: EdgeFilterAll}
}

// ValidViewMode reports whether mode is a recognized view mode
func ValidViewMode(mode string) bool {
	switch mode {
	case ViewAll, ViewAirports, ViewLineages, ViewFlights, ViewEvolution:
		return true
	}
	return false
}

// ValidEdgeFilter reports whether filter is "all" or a known edge type
func ValidEdgeFilter(filter string) bool {
	if filter == EdgeFilterAll {
		return true
	}
	switch filter {
	case EdgeFlight, EdgeSampledAt, EdgeEvolvesFrom, EdgeTemporal:
		return true
	}
	return false
}

// nodeVisible applies the view-mode node rule
func (f ViewFilter) nodeVisible(nodeType string) bool {
	switch f.ViewMode {
	case ViewAirports:
		return nodeType == NodeAirport
	case ViewLineages:
		return nodeType == NodeLineage
	default:
		// all, flights, evolution: every node stays visible
		return true
	}
}

// edgeTypeAllowed applies the edge rule table. The single-type edge filter
// takes precedence over the view mode's edge rule.
func (f ViewFilter) edgeTypeAllowed(edgeType string) bool {
	if f.EdgeFilter != EdgeFilterAll {
		return edgeType == f.EdgeFilter
	}

	switch f.ViewMode {
	case ViewAirports, ViewFlights:
		return edgeType == EdgeFlight
	case ViewLineages:
		return edgeType == EdgeEvolvesFrom || edgeType == EdgeTemporal
	case ViewEvolution:
		return edgeType == EdgeEvolvesFrom || edgeType == EdgeTemporal
	default:
		return true
	}
}

// Counts holds the published visible-element counts
type Counts struct {
	VisibleNodes int `json:"visible_nodes"`
	VisibleEdges int `json:"visible_edges"`
	TotalNodes   int `json:"total_nodes"`
	TotalEdges   int `json:"total_edges"`
}

// Apply recomputes Visible/Hidden flags on the graph in place and returns the
// resulting counts. An edge is visible only when its type passes the rule
// table and both endpoints are visible.
func (f ViewFilter) Apply(g *Graph) Counts {
	counts := Counts{TotalNodes: len(g.Nodes), TotalEdges: len(g.Links)}

	visibleNodes := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		node := &g.Nodes[i]
		node.Visible = f.nodeVisible(node.Type)
		if node.Visible {
			visibleNodes[node.ID] = true
			counts.VisibleNodes++
		}
	}

	for i := range g.Links {
		link := &g.Links[i]
		link.Hidden = !f.edgeTypeAllowed(link.Type) ||
			!visibleNodes[link.Source] || !visibleNodes[link.Target]
		if !link.Hidden {
			counts.VisibleEdges++
		}
	}

	return counts
}
