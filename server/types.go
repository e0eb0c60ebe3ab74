package server

import (
	"time"

	"github.com/phylomap/phylomap/graph"
	"github.com/phylomap/phylomap/layout"
	"github.com/phylomap/phylomap/render"
)

const (
	// MaxClients is the maximum number of concurrent WebSocket clients
	MaxClients = 100

	// SendQueueSize is the size of per-client outbound message queues.
	// Sized for several seconds of position frames at 30fps.
	SendQueueSize = 256

	// BroadcastQueueSize is the broadcast worker's request queue
	BroadcastQueueSize = 512

	// ShutdownTimeout is how long to wait for graceful shutdown
	ShutdownTimeout = 10 * time.Second

	// HighlightDuration is how long a click highlight lasts before reverting
	HighlightDuration = 3 * time.Second
)

// WebSocket timeout constants following Gorilla best practices
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer; client messages are small controls
	maxMessageSize = 64 * 1024
)

// ServerState represents the server lifecycle state
type ServerState int

const (
	ServerStateRunning  ServerState = iota // Normal operation
	ServerStateDraining                    // Graceful shutdown in progress
	ServerStateStopped                     // Shutdown complete
)

// ClientMessage is a control message from the browser client
type ClientMessage struct {
	Type string `json:"type"` // "config_update", "view_mode", "edge_filter", "layout_mode", "drag_start", "drag_move", "drag_end", "node_click", "restart", "center", "reload", "ping"

	// config_update
	Key   string  `json:"key,omitempty"`   // "charge_strength", "link_distance", "node_size", "show_labels", "animate_edges", "show_arrows"
	Value float64 `json:"value,omitempty"` // numeric value for slider keys
	On    bool    `json:"on,omitempty"`    // boolean value for toggle keys

	// view_mode / edge_filter / layout_mode
	Mode   string `json:"mode,omitempty"`
	Filter string `json:"filter,omitempty"`

	// drag_* / node_click
	NodeID string  `json:"node_id,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

// GraphMessage carries the full graph model to a client, with visibility
// flags already applied for that client's view state.
type GraphMessage struct {
	Type  string       `json:"type"` // "graph"
	Graph *graph.Graph `json:"graph"`
}

// TickMessage is one position frame; broadcast to all clients
type TickMessage struct {
	Type      string            `json:"type"` // "tick"
	Positions []layout.Position `json:"positions"`
	Alpha     float64           `json:"alpha"`
}

// StyleMessage carries a client's current display configuration
type StyleMessage struct {
	Type           string       `json:"type"` // "style"
	Style          render.Style `json:"style"`
	LayoutMode     string       `json:"layout_mode"`
	ViewMode       string       `json:"view_mode"`
	EdgeFilter     string       `json:"edge_filter"`
	ChargeStrength float64      `json:"charge_strength"`
	LinkDistance   float64      `json:"link_distance"`
}

// CountsMessage publishes visible-element counts after a filter change
type CountsMessage struct {
	Type   string       `json:"type"` // "counts"
	Counts graph.Counts `json:"counts"`
}

// HighlightMessage activates or clears a one-hop neighborhood highlight
type HighlightMessage struct {
	Type    string   `json:"type"` // "highlight"
	Active  bool     `json:"active"`
	NodeIDs []string `json:"node_ids,omitempty"`
	Edges   []int    `json:"edges,omitempty"` // indices into the graph's link array
	Seq     uint64   `json:"seq"`
}

// FitMessage asks the client to animate its pan/zoom transform onto a
// bounding box (center/fit operation, 750ms, fill 80% of viewport).
type FitMessage struct {
	Type string  `json:"type"` // "fit"
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// ErrorMessage surfaces a structured error to the UI status line
type ErrorMessage struct {
	Type        string `json:"type"` // "error"
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Message     string `json:"message"`
}

// VersionMessage is sent once on connection
type VersionMessage struct {
	Type    string `json:"type"` // "version"
	Version string `json:"version"`
}
