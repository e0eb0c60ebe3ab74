package layout

import (
	"math"

	grapherr "github.com/phylomap/phylomap/graph/error"
	"github.com/phylomap/phylomap/errors"
	"github.com/phylomap/phylomap/graph"
)

func errUnknownMode(m Mode) error {
	return grapherr.New(
		grapherr.CategoryLayout,
		errors.Newf("unknown layout mode %q", string(m)),
		"Unknown layout mode requested",
	).WithSubcategory(grapherr.SubcategoryLayoutUnknownMode).WithContext("mode", string(m))
}

// GeoProject maps latitude/longitude onto canvas coordinates with the
// equirectangular projection used by the geographic layout:
// x spans the canvas over lon in [-180,180], y over lat in [90,-90].
func GeoProject(lat, lon, width, height float64) (x, y float64) {
	x = (lon + 180) / 360 * width
	y = (90 - lat) / 180 * height
	return x, y
}

// applyForcesLocked runs the force set for the active mode, accumulating
// velocities scaled by the current alpha.
func (s *Simulation) applyForcesLocked() {
	s.forceLinks()
	s.forceCharge()
	s.forceCollide()

	switch s.mode {
	case ModeForce:
		s.forceCenter()
	case ModeGeographic:
		s.forceGeographic()
	case ModeRadial:
		s.forceRadial()
	}
}

// forceLinks applies spring forces along edges toward their rest length.
// The correction is split by endpoint degree so hubs move less than leaves,
// and spring stiffness is softened on high-degree endpoints to keep dense
// hubs from oscillating.
func (s *Simulation) forceLinks() {
	for _, l := range s.links {
		src, tgt := &s.nodes[l.source], &s.nodes[l.target]

		dx := tgt.x + tgt.vx - src.x - src.vx
		dy := tgt.y + tgt.vy - src.y - src.vy
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			dx, dy, dist = jiggle(), jiggle(), 1e-6
		}

		strength := 1.0 / float64(min(max(src.degree, 1), max(tgt.degree, 1)))
		k := (dist - l.rest) / dist * s.alpha * strength

		bias := float64(src.degree) / float64(max(src.degree+tgt.degree, 1))
		tgt.vx -= dx * k * bias
		tgt.vy -= dy * k * bias
		src.vx += dx * k * (1 - bias)
		src.vy += dy * k * (1 - bias)
	}
}

// forceCharge applies pairwise many-body repulsion. O(n^2) per tick; the
// export pipeline samples graphs to a size where this holds 30fps comfortably.
func (s *Simulation) forceCharge() {
	strength := s.cfg.ChargeStrength
	if strength == 0 {
		return
	}
	for i := range s.nodes {
		for j := i + 1; j < len(s.nodes); j++ {
			a, b := &s.nodes[i], &s.nodes[j]
			dx := b.x - a.x
			dy := b.y - a.y
			distSq := dx*dx + dy*dy
			if distSq == 0 {
				dx, dy = jiggle(), jiggle()
				distSq = dx*dx + dy*dy
			}
			w := strength * s.alpha / distSq
			a.vx += dx * w
			a.vy += dy * w
			b.vx -= dx * w
			b.vy -= dy * w
		}
	}
}

// forceCollide separates overlapping nodes by their display radii so labels
// and circles stay readable at rest.
func (s *Simulation) forceCollide() {
	for i := range s.nodes {
		for j := i + 1; j < len(s.nodes); j++ {
			a, b := &s.nodes[i], &s.nodes[j]
			r := a.radius + b.radius + 2*collisionMargin
			dx := b.x + b.vx - a.x - a.vx
			dy := b.y + b.vy - a.y - a.vy
			distSq := dx*dx + dy*dy
			if distSq >= r*r {
				continue
			}
			if distSq == 0 {
				dx, dy = jiggle(), jiggle()
				distSq = dx*dx + dy*dy
			}
			dist := math.Sqrt(distSq)
			overlap := (r - dist) / dist
			// split by relative radius: the larger node yields less
			ra := (b.radius + collisionMargin) / r
			a.vx -= dx * overlap * ra
			a.vy -= dy * overlap * ra
			b.vx += dx * overlap * (1 - ra)
			b.vy += dy * overlap * (1 - ra)
		}
	}
}

// forceCenter applies a weak pull toward the canvas center so disconnected
// components stay on screen.
func (s *Simulation) forceCenter() {
	cx, cy := s.cfg.Width/2, s.cfg.Height/2
	for i := range s.nodes {
		n := &s.nodes[i]
		n.vx += (cx - n.x) * centerStrength * s.alpha
		n.vy += (cy - n.y) * centerStrength * s.alpha
	}
}

// forceGeographic pulls airports toward their projected lat/lon position and
// everything else weakly toward the center. Lineages settle near the airports
// they connect to via the link springs.
func (s *Simulation) forceGeographic() {
	cx, cy := s.cfg.Width/2, s.cfg.Height/2
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.typ == graph.NodeAirport {
			tx, ty := GeoProject(n.lat, n.lon, s.cfg.Width, s.cfg.Height)
			n.vx += (tx - n.x) * geoAirportStrength * s.alpha
			n.vy += (ty - n.y) * geoAirportStrength * s.alpha
		} else {
			n.vx += (cx - n.x) * geoOtherStrength * s.alpha
			n.vy += (cy - n.y) * geoOtherStrength * s.alpha
		}
	}
}

// forceRadial arranges node types on concentric rings: airports on an outer
// ring, lineages on an inner ring, with a weak pull toward the center.
func (s *Simulation) forceRadial() {
	cx, cy := s.cfg.Width/2, s.cfg.Height/2
	minDim := math.Min(s.cfg.Width, s.cfg.Height)

	for i := range s.nodes {
		n := &s.nodes[i]

		ring := radialLineageRing * minDim
		if n.typ == graph.NodeAirport {
			ring = radialAirportRing * minDim
		}

		dx := n.x - cx
		dy := n.y - cy
		r := math.Hypot(dx, dy)
		if r == 0 {
			dx, dy, r = jiggle(), jiggle(), 1e-6
		}
		k := (ring - r) * radialRingStrength * s.alpha / r
		n.vx += dx * k
		n.vy += dy * k

		n.vx += (cx - n.x) * radialPullStrength * s.alpha
		n.vy += (cy - n.y) * radialPullStrength * s.alpha
	}
}

// jiggle returns a tiny deterministic offset used to break exact overlaps
var jiggleState uint64 = 0x9e3779b97f4a7c15

func jiggle() float64 {
	jiggleState ^= jiggleState << 13
	jiggleState ^= jiggleState >> 7
	jiggleState ^= jiggleState << 17
	return (float64(jiggleState%2000)/1000 - 1) * 1e-6
}
