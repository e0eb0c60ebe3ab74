package server

// The broadcast worker owns every send to client channels. Handlers and the
// frame loop queue requests instead of writing channels directly, so channel
// closes (disconnect, slow-client eviction) never race a send.

import (
	"golang.org/x/time/rate"

	"github.com/phylomap/phylomap/logger"
	"github.com/phylomap/phylomap/version"
)

type requestKind int

const (
	reqFrame requestKind = iota // position frame to all clients
	reqGraph                    // filtered graph + counts to one client
	reqHello                    // initial state to a newly connected client
	reqClose                    // close a disconnecting client's channels
)

type broadcastRequest struct {
	kind   requestKind
	frame  *TickMessage
	client *Client // target for reqGraph/reqHello/reqClose
}

// runBroadcastWorker processes broadcast requests sequentially
func (s *Server) runBroadcastWorker() {
	s.logger.Debugw("Broadcast worker started")

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugw("Broadcast worker stopping due to context cancellation")
			return
		case req := <-s.broadcastReq:
			switch req.kind {
			case reqFrame:
				s.sendFrameToAll(req.frame)
			case reqGraph:
				s.sendGraphToClient(req.client)
			case reqHello:
				s.sendHelloToClient(req.client)
			case reqClose:
				req.client.close()
			}
		}
	}
}

// sendFrameToAll fans a position frame out to every client. A client whose
// queue is full is evicted rather than allowed to stall the stream.
func (s *Server) sendFrameToAll(frame *TickMessage) {
	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	for _, client := range clients {
		if client.trySend(frame) {
			s.metrics.FramesSent.Inc()
		} else {
			s.frameDrops.Add(1)
			s.removeSlowClient(client)
		}
	}
}

// sendGraphToClient sends the graph filtered through the client's view
// state, followed by the resulting counts.
func (s *Server) sendGraphToClient(client *Client) {
	g, counts := client.filteredGraph()

	if !client.trySend(GraphMessage{Type: "graph", Graph: g}) {
		s.frameDrops.Add(1)
		s.removeSlowClient(client)
		return
	}

	if !client.trySend(CountsMessage{Type: "counts", Counts: counts}) {
		s.frameDrops.Add(1)
		s.removeSlowClient(client)
		return
	}

	s.logger.Debugw("Sent graph to client",
		"client_id", client.id,
		"nodes", len(g.Nodes),
		"links", len(g.Links),
	)
}

// sendHelloToClient sends the initial state for a new connection: version,
// graph, style snapshot, current positions.
func (s *Server) sendHelloToClient(client *Client) {
	if !client.trySend(VersionMessage{Type: "version", Version: version.Get().Short()}) {
		s.removeSlowClient(client)
		return
	}

	s.sendGraphToClient(client)

	if !client.trySend(client.styleSnapshot()) {
		s.removeSlowClient(client)
		return
	}

	// Seed positions immediately so the first paint doesn't wait for the
	// next simulation frame.
	frame := &TickMessage{
		Type:      "tick",
		Positions: s.sim.Positions(),
		Alpha:     s.sim.Alpha(),
	}
	if !client.trySend(frame) {
		s.removeSlowClient(client)
	}
}

// runFrameLoop steps the simulation continuously and queues position frames
// at the configured frame rate. When the simulation converges the loop idles
// on the limiter; drags and config changes re-energize it.
func (s *Server) runFrameLoop() {
	limiter := rate.NewLimiter(rate.Limit(s.cfg.Layout.FrameRate), 1)
	s.logger.Infow("Frame loop started", "fps", s.cfg.Layout.FrameRate)

	for {
		if err := limiter.Wait(s.ctx); err != nil {
			s.logger.Debugw("Frame loop stopping", "reason", err.Error())
			return
		}

		if !s.sim.Tick() {
			continue
		}

		s.mu.RLock()
		hasClients := len(s.clients) > 0
		s.mu.RUnlock()
		if !hasClients {
			continue
		}

		frame := &TickMessage{
			Type:      "tick",
			Positions: s.sim.Positions(),
			Alpha:     s.sim.Alpha(),
		}
		if logger.ShouldOutput(s.verbosity, logger.OutputFrameStream) {
			s.logger.Debugw("Frame queued",
				"positions", len(frame.Positions),
				"alpha", frame.Alpha,
			)
		}
		s.queueBroadcast(&broadcastRequest{kind: reqFrame, frame: frame})
	}
}
