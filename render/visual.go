// Package render derives per-element visual state and serializes scenes.
// Visual state is computed in one place as a pure function of base style,
// filter state, and highlight state, so hover/click/filter handlers never
// fight over the same primitive.
package render

import (
	"math"

	"github.com/phylomap/phylomap/graph"
	"github.com/phylomap/phylomap/layout"
)

// Baseline opacities and scales
const (
	BaselineNodeOpacity = 1.0
	BaselineEdgeOpacity = 0.6
	DimmedOpacity       = 0.1 // non-neighborhood elements during a highlight
	HoverRadiusScale    = 1.5
	labelOffset         = 4.0 // gap between circle edge and label baseline
)

// Style holds the display toggles and base sizing from the config panel
type Style struct {
	NodeSize     float64 `json:"node_size"`
	ShowLabels   bool    `json:"show_labels"`
	ShowArrows   bool    `json:"show_arrows"`
	AnimateEdges bool    `json:"animate_edges"`
}

// DefaultStyle returns the startup display configuration
func DefaultStyle() Style {
	return Style{
		NodeSize:     layout.DefaultNodeSize,
		ShowLabels:   true,
		ShowArrows:   true,
		AnimateEdges: false,
	}
}

// Highlight is a transient one-hop neighborhood emphasis. While active,
// everything outside the neighborhood is dimmed to near-transparent.
type Highlight struct {
	Active  bool
	NodeIDs map[string]bool
	Edges   map[int]bool // indices into Graph.Links
}

// NodeVisual is the computed visual state of one node
type NodeVisual struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Radius       float64 `json:"radius"`
	Color        string  `json:"color"`
	Opacity      float64 `json:"opacity"`
	Label        string  `json:"label"`
	LabelVisible bool    `json:"label_visible"`
	Visible      bool    `json:"visible"`
}

// EdgeVisual is the computed visual state of one edge
type EdgeVisual struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Type     string  `json:"type"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
	Width    float64 `json:"width"`
	Color    string  `json:"color"`
	Opacity  float64 `json:"opacity"`
	Arrow    bool    `json:"arrow"`
	Animated bool    `json:"animated"`
	Visible  bool    `json:"visible"`
}

// Scene is a full visual snapshot: every element with its computed state
type Scene struct {
	Nodes []NodeVisual `json:"nodes"`
	Edges []EdgeVisual `json:"edges"`
}

// NodeRadius applies the per-type radius scale to the base node size.
// Airports render at base × 1.2, everything else at base × 1.
func NodeRadius(nodeType string, base float64) float64 {
	return base * graph.NodeTypeDef(nodeType).RadiusScale
}

// EdgeWidth scales stroke width by the square root of the edge weight
func EdgeWidth(weight float64) float64 {
	if weight <= 0 || math.IsNaN(weight) {
		return 0
	}
	return math.Sqrt(weight) * 0.5
}

// BuildScene derives the visual state of every element from the graph's
// current visibility flags, the latest simulation positions, the display
// style, and the active highlight. Pure: no retained state between calls.
func BuildScene(g *graph.Graph, positions []layout.Position, style Style, hl Highlight) Scene {
	pos := make(map[string]layout.Position, len(positions))
	for _, p := range positions {
		pos[p.ID] = p
	}

	scene := Scene{
		Nodes: make([]NodeVisual, 0, len(g.Nodes)),
		Edges: make([]EdgeVisual, 0, len(g.Links)),
	}

	for i := range g.Nodes {
		node := &g.Nodes[i]
		p := pos[node.ID]

		opacity := BaselineNodeOpacity
		if hl.Active && !hl.NodeIDs[node.ID] {
			opacity = DimmedOpacity
		}

		scene.Nodes = append(scene.Nodes, NodeVisual{
			ID:           node.ID,
			Type:         node.Type,
			X:            p.X,
			Y:            p.Y,
			Radius:       NodeRadius(node.Type, style.NodeSize),
			Color:        graph.NodeTypeDef(node.Type).Color,
			Opacity:      opacity,
			Label:        node.Label(),
			LabelVisible: style.ShowLabels && node.Visible,
			Visible:      node.Visible,
		})
	}

	for i := range g.Links {
		link := &g.Links[i]
		src := pos[link.Source]
		tgt := pos[link.Target]
		def := graph.EdgeTypeDef(link.Type)

		opacity := BaselineEdgeOpacity
		if hl.Active && !hl.Edges[i] {
			opacity = DimmedOpacity
		}

		scene.Edges = append(scene.Edges, EdgeVisual{
			Source:   link.Source,
			Target:   link.Target,
			Type:     link.Type,
			X1:       src.X,
			Y1:       src.Y,
			X2:       tgt.X,
			Y2:       tgt.Y,
			Width:    EdgeWidth(link.Weight),
			Color:    def.Color,
			Opacity:  opacity,
			Arrow:    style.ShowArrows && def.Arrow && !link.Hidden,
			Animated: style.AnimateEdges && !link.Hidden,
			Visible:  !link.Hidden,
		})
	}

	return scene
}
