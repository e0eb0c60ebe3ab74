package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/phylomap/phylomap/graph"
	grapherr "github.com/phylomap/phylomap/graph/error"
	"github.com/phylomap/phylomap/layout"
	"github.com/phylomap/phylomap/logger"
	"github.com/phylomap/phylomap/render"
)

// ViewState encapsulates one client's visibility and display preferences.
// The graph model and simulation are shared; what each client sees is not.
type ViewState struct {
	filter    graph.ViewFilter
	style     render.Style
	highlight render.Highlight
	hlSeq     uint64 // guards the 3s revert timer against a newer highlight
	mu        sync.RWMutex
}

// Client represents a WebSocket client connection
type Client struct {
	server *Server
	conn   *websocket.Conn
	send   chan interface{}
	id     string
	view   *ViewState

	// sendMu guards send against close: highlight revert timers and
	// broadcast requests queued before an unregister can fire after the
	// channel would otherwise be closed.
	sendMu     sync.Mutex
	sendClosed bool
	closeOnce  sync.Once
}

// newViewState returns the default view: everything visible, default style
func newViewState(style render.Style) *ViewState {
	return &ViewState{
		filter: graph.NewViewFilter(),
		style:  style,
	}
}

// Filter returns the client's current view filter
func (v *ViewState) Filter() graph.ViewFilter {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filter
}

// Style returns the client's current display style
func (v *ViewState) Style() render.Style {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.style
}

// Highlight returns the client's active highlight state
func (v *ViewState) Highlight() render.Highlight {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.highlight
}

// ErrorGraph builds an empty graph whose metadata carries a load error.
// Served when the artifact cannot be loaded at startup; clients display the
// error state until a reload succeeds.
func ErrorGraph(err error) *graph.Graph {
	meta := graph.Meta{
		GeneratedAt: time.Now(),
	}

	if graphErr, ok := err.(*grapherr.GraphError); ok {
		meta.Config = graphErr.ToGraphMeta()
	} else {
		meta.Config = map[string]string{
			"error": err.Error(),
		}
	}

	return &graph.Graph{
		Nodes: []graph.Node{},
		Links: []graph.Link{},
		Meta:  meta,
	}
}

// filteredGraph returns a copy of the shared graph with this client's
// visibility rules applied, plus the resulting counts. The shared model is
// never mutated: each client filters its own copy.
func (c *Client) filteredGraph() (*graph.Graph, graph.Counts) {
	src := c.server.Graph()

	g := &graph.Graph{
		Nodes: make([]graph.Node, len(src.Nodes)),
		Links: make([]graph.Link, len(src.Links)),
		Meta:  src.Meta,
	}
	copy(g.Nodes, src.Nodes)
	copy(g.Links, src.Links)

	counts := c.view.Filter().Apply(g)
	return g, counts
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.server.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.server.logger.Debugw("Read pump started", "client_id", c.id)

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.server.logger.Warnw("JSON unmarshal error",
				"error", err.Error(),
				"client_id", c.id,
			)
			continue
		}

		c.routeMessage(&msg)
	}
}

// handleReadError logs unexpected WebSocket read errors.
// Expected closure codes (going away, abnormal, no status) are silently ignored.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		graphErr := grapherr.New(
			grapherr.CategoryWebSocket,
			err,
			"WebSocket connection closed unexpectedly",
		).WithSubcategory(grapherr.SubcategoryWSRead)

		c.server.logger.Warnw("WebSocket read error",
			graphErr.ToLogFields()...,
		)
	}
}

// routeMessage dispatches incoming WebSocket messages to handlers.
// Separated from readPump for testability.
func (c *Client) routeMessage(msg *ClientMessage) {
	if logger.ShouldOutput(c.server.verbosity, logger.OutputMessageFlow) {
		c.server.logger.Debugw("Client message routed",
			"client_id", c.id,
			"type", msg.Type,
		)
	}

	switch msg.Type {
	case "config_update":
		c.handleConfigUpdate(msg)
	case "view_mode":
		c.handleViewMode(msg.Mode)
	case "edge_filter":
		c.handleEdgeFilter(msg.Filter)
	case "layout_mode":
		c.handleLayoutMode(msg.Mode)
	case "drag_start":
		c.server.sim.DragStart(msg.NodeID)
	case "drag_move":
		c.server.sim.DragMove(msg.NodeID, msg.X, msg.Y)
	case "drag_end":
		c.server.sim.DragEnd(msg.NodeID)
	case "node_click":
		c.handleNodeClick(msg.NodeID)
	case "restart":
		c.handleRestart()
	case "center":
		c.handleCenter()
	case "reload":
		c.handleReload()
	case "ping":
		// Deadline refresh is handled by the pong handler
	default:
		c.server.logger.Debugw("Unknown message type",
			"type", msg.Type,
			"client_id", c.id,
		)
	}
}

// writePump writes queued messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	c.server.logger.Debugw("Write pump started", "client_id", c.id)

	for {
		select {
		case <-c.server.ctx.Done():
			c.server.logger.Debugw("Write pump stopping due to server shutdown", "client_id", c.id)
			return
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				graphErr := grapherr.New(
					grapherr.CategoryWebSocket,
					err,
					"Failed to send update to client",
				).WithSubcategory(grapherr.SubcategoryWSWrite)

				c.server.logger.Warnw("Write error",
					append(graphErr.ToLogFields(), "client_id", c.id)...,
				)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues a message unless the client's queue is full. A message for
// an already-closed client is silently dropped and reported as sent, so
// callers never re-evict and never write a closed channel.
func (c *Client) trySend(msg interface{}) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// sendJSON queues a message for this client without blocking
func (c *Client) sendJSON(msg interface{}) {
	if !c.trySend(msg) {
		c.server.frameDrops.Add(1)
		c.server.logger.Warnw("Failed to queue message (channel full)",
			"client_id", c.id,
		)
	}
}

// sendError surfaces a structured error on the client's status line
func (c *Client) sendError(err error) {
	msg := ErrorMessage{Type: "error", Category: string(grapherr.CategoryInternal)}
	if graphErr, ok := err.(*grapherr.GraphError); ok {
		msg.Category = string(graphErr.Category)
		msg.Subcategory = graphErr.Subcategory
		msg.Message = graphErr.ToUIMessage()
	} else {
		msg.Message = err.Error()
	}
	c.sendJSON(msg)
}

// styleSnapshot builds the style message for this client's current state
func (c *Client) styleSnapshot() StyleMessage {
	filter := c.view.Filter()
	simCfg := c.server.sim.Config()
	return StyleMessage{
		Type:           "style",
		Style:          c.view.Style(),
		LayoutMode:     string(c.server.sim.Mode()),
		ViewMode:       filter.ViewMode,
		EdgeFilter:     filter.EdgeFilter,
		ChargeStrength: simCfg.ChargeStrength,
		LinkDistance:   simCfg.LinkDistance,
	}
}

// handleConfigUpdate applies one config-panel mutation. Simulation keys are
// process-wide (there is one simulation); display toggles are per-client.
func (c *Client) handleConfigUpdate(msg *ClientMessage) {
	switch msg.Key {
	case "charge_strength":
		c.server.sim.SetCharge(msg.Value)
	case "link_distance":
		c.server.sim.SetLinkDistance(msg.Value)
	case "node_size":
		if msg.Value <= 0 {
			c.server.logger.Warnw("Invalid node size, ignoring",
				"client_id", c.id,
				"value", msg.Value,
			)
			return
		}
		c.server.sim.SetNodeSize(msg.Value)
		c.view.mu.Lock()
		c.view.style.NodeSize = msg.Value
		c.view.mu.Unlock()
	case "show_labels":
		c.view.mu.Lock()
		c.view.style.ShowLabels = msg.On
		c.view.mu.Unlock()
	case "animate_edges":
		c.view.mu.Lock()
		c.view.style.AnimateEdges = msg.On
		c.view.mu.Unlock()
	case "show_arrows":
		c.view.mu.Lock()
		c.view.style.ShowArrows = msg.On
		c.view.mu.Unlock()
	default:
		c.server.logger.Warnw("Unknown config key",
			"key", msg.Key,
			"client_id", c.id,
		)
		return
	}

	c.server.logger.Debugw("Config updated",
		"client_id", c.id,
		"key", msg.Key,
	)
	c.sendJSON(c.styleSnapshot())
}

// handleViewMode switches the client's view mode and republishes the
// filtered graph and counts.
func (c *Client) handleViewMode(mode string) {
	if !graph.ValidViewMode(mode) {
		c.server.logger.Warnw("Invalid view mode, ignoring",
			"client_id", c.id,
			"mode", mode,
		)
		return
	}

	c.view.mu.Lock()
	c.view.filter.ViewMode = mode
	c.view.mu.Unlock()

	c.server.logger.Infow("View mode changed",
		"client_id", c.id,
		"mode", mode,
	)
	c.server.queueBroadcast(&broadcastRequest{kind: reqGraph, client: c})
}

// handleEdgeFilter restricts visible edges to a single type ("all" clears)
func (c *Client) handleEdgeFilter(filter string) {
	if !graph.ValidEdgeFilter(filter) {
		c.server.logger.Warnw("Invalid edge filter, ignoring",
			"client_id", c.id,
			"filter", filter,
		)
		return
	}

	c.view.mu.Lock()
	c.view.filter.EdgeFilter = filter
	c.view.mu.Unlock()

	c.server.logger.Infow("Edge filter changed",
		"client_id", c.id,
		"filter", filter,
	)
	c.server.queueBroadcast(&broadcastRequest{kind: reqGraph, client: c})
}

// handleLayoutMode switches the shared simulation's layout policy
func (c *Client) handleLayoutMode(mode string) {
	if err := c.server.sim.SetMode(layout.Mode(mode)); err != nil {
		c.sendError(err)
		return
	}

	c.server.logger.Infow("Layout mode changed",
		"client_id", c.id,
		"mode", mode,
	)
	c.sendJSON(c.styleSnapshot())
}

// handleNodeClick computes the one-hop neighborhood and activates a
// highlight that reverts after HighlightDuration. A newer click supersedes
// the pending revert: only the latest timer governs the revert.
func (c *Client) handleNodeClick(nodeID string) {
	g := c.server.Graph()
	if g.NodeByID(nodeID) == nil {
		c.server.logger.Debugw("Click on unknown node",
			"client_id", c.id,
			"node_id", nodeID,
		)
		return
	}

	nbh := g.OneHop(nodeID)

	c.view.mu.Lock()
	c.view.hlSeq++
	seq := c.view.hlSeq
	c.view.highlight = render.Highlight{
		Active:  true,
		NodeIDs: nbh.NodeIDs,
		Edges:   make(map[int]bool, len(nbh.Edges)),
	}
	for _, i := range nbh.Edges {
		c.view.highlight.Edges[i] = true
	}
	c.view.mu.Unlock()

	nodeIDs := make([]string, 0, len(nbh.NodeIDs))
	for id := range nbh.NodeIDs {
		nodeIDs = append(nodeIDs, id)
	}
	c.sendJSON(HighlightMessage{
		Type:    "highlight",
		Active:  true,
		NodeIDs: nodeIDs,
		Edges:   nbh.Edges,
		Seq:     seq,
	})

	time.AfterFunc(HighlightDuration, func() {
		c.view.mu.Lock()
		if c.view.hlSeq != seq {
			// A newer highlight owns the revert now
			c.view.mu.Unlock()
			return
		}
		c.view.highlight = render.Highlight{}
		c.view.mu.Unlock()

		c.sendJSON(HighlightMessage{Type: "highlight", Active: false, Seq: seq})
	})
}

// handleRestart clears all positions, velocities, and pins
func (c *Client) handleRestart() {
	c.server.logger.Infow("Simulation restart requested", "client_id", c.id)
	c.server.sim.Restart()
}

// handleCenter computes the content bounding box for the client's fit animation
func (c *Client) handleCenter() {
	minX, minY, maxX, maxY := c.server.sim.Bounds()
	c.sendJSON(FitMessage{
		Type: "fit",
		MinX: minX,
		MinY: minY,
		MaxX: maxX,
		MaxY: maxY,
	})
}

// handleReload re-fetches the artifact and pushes the new graph to everyone
func (c *Client) handleReload() {
	c.server.logger.Infow("Graph reload requested", "client_id", c.id)
	if err := c.server.ReloadGraph(); err != nil {
		c.server.logger.Errorw("Graph reload failed",
			"client_id", c.id,
			"error", err,
		)
		c.sendError(err)
	}
}

// close safely closes the client's send channel. The sendClosed flag is
// flipped under the same lock trySend holds, so no send can be in flight
// when the channel closes.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.sendMu.Lock()
		defer c.sendMu.Unlock()
		c.sendClosed = true
		if c.send != nil {
			close(c.send)
		}
	})
}
