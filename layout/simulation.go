// Package layout owns the force-based position-resolution simulation over the
// graph. Annealing follows the d3-force model: an alpha energy value decays
// toward a target each tick, forces accumulate node velocities scaled by
// alpha, and velocities decay so the system settles instead of oscillating.
package layout

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/phylomap/phylomap/graph"
)

// Mode selects the active layout policy. Switching modes never changes the
// node/edge sets, only the force configuration and the annealing energy.
type Mode string

const (
	ModeForce      Mode = "force"
	ModeGeographic Mode = "geographic"
	ModeRadial     Mode = "radial"
)

// ValidMode reports whether m names a layout mode
func ValidMode(m Mode) bool {
	return m == ModeForce || m == ModeGeographic || m == ModeRadial
}

// Tunable defaults exposed through the config panel sliders
const (
	DefaultChargeStrength = -120.0
	DefaultLinkDistance   = 60.0
	DefaultNodeSize       = 6.0
)

// Annealing constants (d3-force defaults)
const (
	alphaMin        = 0.001
	alphaInitial    = 1.0
	velocityRetain  = 0.6 // 1 - velocityDecay
	collisionMargin = 2.0
	dragAlphaTarget = 0.3
	reheatAlpha     = 0.3 // slider changes re-energize to this

	// Geographic/radial pull strengths
	geoAirportStrength = 0.5
	geoOtherStrength   = 0.1
	radialRingStrength = 0.8
	radialPullStrength = 0.1
	radialAirportRing  = 0.4 // fraction of min(W,H)
	radialLineageRing  = 0.2

	centerStrength = 0.05
)

// alphaDecay = 1 - alphaMin^(1/300): ~300 ticks to convergence from cold
var alphaDecay = 1 - math.Pow(alphaMin, 1.0/300.0)

// Config holds the live-tunable simulation parameters
type Config struct {
	Width          float64
	Height         float64
	ChargeStrength float64 // repulsion, negative
	LinkDistance   float64 // target rest length
	NodeSize       float64 // base display radius
}

// DefaultConfig returns simulation defaults for the given canvas
func DefaultConfig(width, height float64) Config {
	return Config{
		Width:          width,
		Height:         height,
		ChargeStrength: DefaultChargeStrength,
		LinkDistance:   DefaultLinkDistance,
		NodeSize:       DefaultNodeSize,
	}
}

// simNode carries the mutable simulation state for one graph node
type simNode struct {
	id      string
	typ     string
	lat     float64
	lon     float64
	radius  float64 // display radius, collision radius = radius + margin
	x, y    float64
	vx, vy  float64
	fx, fy  *float64 // pinned position while dragged
	degree  int
}

// simLink is an edge resolved to node indices
type simLink struct {
	source, target int
	rest           float64 // per-type rest length, rescaled on slider change
	restHint       *float64
}

// Position is a point-in-time node position snapshot
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Simulation resolves node positions under the active layout mode.
// All methods are safe for concurrent use; tick handlers observe the
// configuration as of the most recent mutation.
type Simulation struct {
	mu          sync.Mutex
	cfg         Config
	mode        Mode
	nodes       []simNode
	links       []simLink
	index       map[string]int // node id -> nodes slice index
	alpha       float64
	alphaTarget float64
	dragging    int // count of active drags
	logger      *zap.SugaredLogger
}

// New creates a simulation over the graph with phyllotaxis initial placement
func New(g *graph.Graph, cfg Config, logger *zap.SugaredLogger) *Simulation {
	s := &Simulation{
		cfg:    cfg,
		mode:   ModeForce,
		alpha:  alphaInitial,
		logger: logger,
	}
	s.setGraphLocked(g)
	return s
}

// SetGraph replaces the simulated node/edge sets (artifact reload).
// Positions are reseeded and the simulation restarts from cold.
func (s *Simulation) SetGraph(g *graph.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setGraphLocked(g)
	s.alpha = alphaInitial
	s.alphaTarget = 0
	s.dragging = 0
}

func (s *Simulation) setGraphLocked(g *graph.Graph) {
	degree := g.Degree()

	s.nodes = make([]simNode, len(g.Nodes))
	s.index = make(map[string]int, len(g.Nodes))
	for i := range g.Nodes {
		node := &g.Nodes[i]
		s.nodes[i] = simNode{
			id:     node.ID,
			typ:    node.Type,
			lat:    node.Lat,
			lon:    node.Lon,
			radius: s.cfg.NodeSize * graph.NodeTypeDef(node.Type).RadiusScale,
			degree: degree[node.ID],
		}
		s.index[node.ID] = i
	}
	s.seedPositionsLocked()

	s.links = make([]simLink, 0, len(g.Links))
	for _, link := range g.Links {
		si, ok := s.index[link.Source]
		if !ok {
			continue
		}
		ti, ok := s.index[link.Target]
		if !ok {
			continue
		}
		hint := graph.EdgeTypeDef(link.Type).LinkDistance
		s.links = append(s.links, simLink{
			source:   si,
			target:   ti,
			restHint: hint,
		})
	}
	s.rescaleRestLengthsLocked()
}

// seedPositionsLocked places nodes on a phyllotaxis spiral around the canvas
// center: deterministic and never degenerate (no two nodes coincide).
func (s *Simulation) seedPositionsLocked() {
	const initialRadius = 10.0
	initialAngle := math.Pi * (3 - math.Sqrt(5))

	cx, cy := s.cfg.Width/2, s.cfg.Height/2
	for i := range s.nodes {
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		s.nodes[i].x = cx + r*math.Cos(a)
		s.nodes[i].y = cy + r*math.Sin(a)
		s.nodes[i].vx = 0
		s.nodes[i].vy = 0
		s.nodes[i].fx = nil
		s.nodes[i].fy = nil
	}
}

// rescaleRestLengthsLocked derives per-link rest lengths from the configured
// link distance, preserving per-edge-type proportions.
func (s *Simulation) rescaleRestLengthsLocked() {
	scale := s.cfg.LinkDistance / DefaultLinkDistance
	for i := range s.links {
		if s.links[i].restHint != nil {
			s.links[i].rest = *s.links[i].restHint * scale
		} else {
			s.links[i].rest = s.cfg.LinkDistance
		}
	}
}

// Mode returns the active layout mode
func (s *Simulation) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the layout policy and resets the annealing energy so the
// new forces take effect visibly rather than snapping.
func (s *Simulation) SetMode(m Mode) error {
	if !ValidMode(m) {
		return errUnknownMode(m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	s.alpha = alphaInitial
	return nil
}

// SetCharge applies a new repulsion strength to the live simulation with a
// small re-energization so the effect is visible without a full restart.
func (s *Simulation) SetCharge(strength float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.ChargeStrength = strength
	s.reheatLocked(reheatAlpha)
}

// SetLinkDistance applies a new rest length to the live simulation
func (s *Simulation) SetLinkDistance(distance float64) {
	if distance <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.LinkDistance = distance
	s.rescaleRestLengthsLocked()
	s.reheatLocked(reheatAlpha)
}

// SetNodeSize updates the base display radius, which also drives collision
func (s *Simulation) SetNodeSize(size float64) {
	if size <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.NodeSize = size
	for i := range s.nodes {
		s.nodes[i].radius = size * graph.NodeTypeDef(s.nodes[i].typ).RadiusScale
	}
	s.reheatLocked(reheatAlpha)
}

// Resize updates the canvas dimensions used by centering and projections
func (s *Simulation) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Width = width
	s.cfg.Height = height
	s.reheatLocked(reheatAlpha)
}

// Config returns a snapshot of the live simulation parameters
func (s *Simulation) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// DragStart pins the node at its current position and raises the annealing
// target so the layout keeps responding for the duration of the drag.
func (s *Simulation) DragStart(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[nodeID]
	if !ok {
		return false
	}
	x, y := s.nodes[i].x, s.nodes[i].y
	s.nodes[i].fx = &x
	s.nodes[i].fy = &y
	s.dragging++
	s.alphaTarget = dragAlphaTarget
	s.reheatLocked(dragAlphaTarget)
	return true
}

// DragMove moves a pinned node to follow the pointer
func (s *Simulation) DragMove(nodeID string, x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[nodeID]
	if !ok || s.nodes[i].fx == nil {
		return false
	}
	*s.nodes[i].fx = x
	*s.nodes[i].fy = y
	return true
}

// DragEnd releases the pin; the node resumes free movement under the forces
func (s *Simulation) DragEnd(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[nodeID]
	if !ok {
		return false
	}
	s.nodes[i].fx = nil
	s.nodes[i].fy = nil
	if s.dragging > 0 {
		s.dragging--
	}
	if s.dragging == 0 {
		s.alphaTarget = 0
	}
	return true
}

// Pinned reports whether the node currently has a fixed position
func (s *Simulation) Pinned(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[nodeID]
	return ok && s.nodes[i].fx != nil
}

// Restart clears all positions, velocities, and pins and re-energizes from a
// cold state, producing a fresh layout.
func (s *Simulation) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedPositionsLocked()
	s.dragging = 0
	s.alphaTarget = 0
	s.alpha = alphaInitial
	s.logger.Debugw("Simulation restarted", "nodes", len(s.nodes), "links", len(s.links))
}

// Reheat raises the annealing energy to at least target
func (s *Simulation) Reheat(target float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reheatLocked(target)
}

func (s *Simulation) reheatLocked(target float64) {
	if s.alpha < target {
		s.alpha = target
	}
}

// Alpha returns the current annealing energy
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Converged reports whether the simulation has settled. A simulation with an
// active drag never converges since the target energy stays above alphaMin.
func (s *Simulation) Converged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha < alphaMin && s.alphaTarget < alphaMin
}

// Tick advances the simulation one step. Returns false once converged.
func (s *Simulation) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alpha < alphaMin && s.alphaTarget < alphaMin {
		return false
	}

	s.alpha += (s.alphaTarget - s.alpha) * alphaDecay

	s.applyForcesLocked()

	for i := range s.nodes {
		n := &s.nodes[i]
		if n.fx != nil {
			n.x = *n.fx
			n.vx = 0
		} else {
			n.vx *= velocityRetain
			n.x += n.vx
		}
		if n.fy != nil {
			n.y = *n.fy
			n.vy = 0
		} else {
			n.vy *= velocityRetain
			n.y += n.vy
		}
	}

	s.guardPositionsLocked()
	return true
}

// guardPositionsLocked recenters nodes whose positions became non-finite.
// Malformed weights or coordinates must not silently corrupt the layout.
func (s *Simulation) guardPositionsLocked() {
	cx, cy := s.cfg.Width/2, s.cfg.Height/2
	for i := range s.nodes {
		n := &s.nodes[i]
		if !finite(n.x) || !finite(n.y) || !finite(n.vx) || !finite(n.vy) {
			s.logger.Warnw("Non-finite position clamped",
				"node_id", n.id,
			)
			n.x, n.y = cx, cy
			n.vx, n.vy = 0, 0
		}
	}
}

// Positions returns a snapshot of current node positions
func (s *Simulation) Positions() []Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Position, len(s.nodes))
	for i := range s.nodes {
		out[i] = Position{ID: s.nodes[i].id, X: s.nodes[i].x, Y: s.nodes[i].y}
	}
	return out
}

// Bounds returns the bounding box of all current node positions, padded by
// each node's display radius. Used by the center/fit operation.
func (s *Simulation) Bounds() (minX, minY, maxX, maxY float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.nodes) == 0 {
		return 0, 0, s.cfg.Width, s.cfg.Height
	}

	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for i := range s.nodes {
		n := &s.nodes[i]
		minX = math.Min(minX, n.x-n.radius)
		minY = math.Min(minY, n.y-n.radius)
		maxX = math.Max(maxX, n.x+n.radius)
		maxY = math.Max(maxY, n.y+n.radius)
	}
	return minX, minY, maxX, maxY
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
