package render

import (
	"fmt"
	"html"
	"strings"
	"time"

	grapherr "github.com/phylomap/phylomap/graph/error"
	"github.com/phylomap/phylomap/errors"
	"github.com/phylomap/phylomap/graph"
)

const svgBackground = "#1e2326"

// ExportFilename returns the timestamped name for an exported snapshot
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("phylomap_export_%s.svg", t.Format("20060102_150405"))
}

// ExportSVG serializes a scene to a standalone SVG document. This is a
// point-in-time snapshot of the current visual state: hidden elements are
// omitted entirely rather than emitted with zero opacity.
func ExportSVG(scene Scene, width, height float64) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, grapherr.New(
			grapherr.CategoryRender,
			errors.Newf("invalid export dimensions %gx%g", width, height),
			"Export failed: invalid canvas dimensions",
		)
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", svgBackground)

	writeArrowDefs(&b, scene)

	b.WriteString("<g>\n")
	for _, e := range scene.Edges {
		if !e.Visible {
			continue
		}
		marker := ""
		if e.Arrow {
			marker = fmt.Sprintf(` marker-end="url(#arrow-%s)"`, e.Type)
		}
		fmt.Fprintf(&b,
			`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f" stroke-opacity="%.2f"%s/>`+"\n",
			e.X1, e.Y1, e.X2, e.Y2, e.Color, e.Width, e.Opacity, marker)
	}
	b.WriteString("</g>\n<g>\n")
	for _, n := range scene.Nodes {
		if !n.Visible {
			continue
		}
		fmt.Fprintf(&b,
			`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.2f" stroke="#fff" stroke-width="0.5"/>`+"\n",
			n.X, n.Y, n.Radius, n.Color, n.Opacity)
		if n.LabelVisible {
			fmt.Fprintf(&b,
				`<text x="%.2f" y="%.2f" text-anchor="middle" font-size="9" font-family="sans-serif" fill="#d3c6aa" fill-opacity="%.2f">%s</text>`+"\n",
				n.X, n.Y+n.Radius+labelOffset+8, n.Opacity, html.EscapeString(n.Label))
		}
	}
	b.WriteString("</g>\n</svg>\n")

	return []byte(b.String()), nil
}

// writeArrowDefs emits one arrowhead marker per edge type present in the
// scene, tinted to the edge color.
func writeArrowDefs(b *strings.Builder, scene Scene) {
	types := make(map[string]string)
	for _, e := range scene.Edges {
		if e.Arrow && e.Visible {
			types[e.Type] = e.Color
		}
	}
	if len(types) == 0 {
		return
	}

	b.WriteString("<defs>\n")
	for _, edgeType := range graph.EdgeTypeNames() {
		color, ok := types[edgeType]
		if !ok {
			continue
		}
		fmt.Fprintf(b,
			`<marker id="arrow-%s" viewBox="0 -5 10 10" refX="18" refY="0" markerWidth="6" markerHeight="6" orient="auto"><path d="M0,-5L10,0L0,5" fill="%s"/></marker>`+"\n",
			edgeType, color)
	}
	b.WriteString("</defs>\n")
}
