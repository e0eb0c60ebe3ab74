// Package server hosts the phylomap visualization service: it owns the graph
// model and the layout simulation, streams position frames to browser clients
// over WebSocket, and applies per-client view state server-side so the
// browser only renders what it is told.
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/phylomap/phylomap/config"
	"github.com/phylomap/phylomap/graph"
	"github.com/phylomap/phylomap/layout"
)

// webFiles is defined in embed_prod.go (production) or embed_stub.go (testing)

// Server provides the live graph visualization over HTTP and WebSocket
type Server struct {
	cfg    *config.Config
	loader *graph.Loader

	// graph model; replaced wholesale on reload
	graph   *graph.Graph
	graphMu sync.RWMutex

	sim *layout.Simulation

	clients      map[*Client]bool
	register     chan *Client
	unregister   chan *Client
	broadcastReq chan *broadcastRequest
	mu           sync.RWMutex

	logger    *zap.SugaredLogger
	verbosity int
	metrics   *Metrics
	watcher   *artifactWatcher

	httpServer *http.Server

	// Lifecycle
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	frameDrops atomic.Int64
	state      atomic.Int32
}

// New creates a server around an already-loaded graph. verbosity gates
// high-volume output categories (message routing, per-frame logs) on top of
// the logger's own level.
func New(cfg *config.Config, g *graph.Graph, verbosity int, logger *zap.SugaredLogger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	simCfg := layout.Config{
		Width:          cfg.Layout.CanvasWidth,
		Height:         cfg.Layout.CanvasHeight,
		ChargeStrength: cfg.Layout.ChargeStrength,
		LinkDistance:   cfg.Layout.LinkDistance,
		NodeSize:       cfg.Layout.NodeSize,
	}

	return &Server{
		cfg:          cfg,
		loader:       graph.NewLoader(logger),
		graph:        g,
		sim:          layout.New(g, simCfg, logger),
		clients:      make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		broadcastReq: make(chan *broadcastRequest, BroadcastQueueSize),
		logger:       logger,
		verbosity:    verbosity,
		metrics:      newMetrics(),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Graph returns the current graph model
func (s *Server) Graph() *graph.Graph {
	s.graphMu.RLock()
	defer s.graphMu.RUnlock()
	return s.graph
}

// ReloadGraph fetches the artifact again and swaps the model in. Every
// connected client receives the new graph, filtered through its own view
// state, and the simulation restarts from cold.
func (s *Server) ReloadGraph() error {
	g, err := s.loader.Load(s.ctx, s.cfg.Data.Source)
	if err != nil {
		s.metrics.ReloadFailures.Inc()
		return err
	}

	s.graphMu.Lock()
	s.graph = g
	s.graphMu.Unlock()

	s.sim.SetGraph(g)
	s.metrics.Reloads.Inc()

	s.logger.Infow("Graph reloaded",
		"source", s.cfg.Data.Source,
		"nodes", len(g.Nodes),
		"links", len(g.Links),
	)

	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	for _, client := range clients {
		s.queueBroadcast(&broadcastRequest{
			kind:   reqGraph,
			client: client,
		})
	}
	return nil
}

// handleClientRegister handles a new client connection
func (s *Server) handleClientRegister(client *Client) {
	s.mu.Lock()
	if len(s.clients) >= MaxClients {
		s.mu.Unlock()
		s.logger.Warnw("Max clients reached, rejecting connection",
			"client_id", client.id,
			"max_clients", MaxClients,
		)
		client.close()
		return
	}
	s.clients[client] = true
	totalClients := len(s.clients)
	s.mu.Unlock()

	s.metrics.ConnectedClients.Set(float64(totalClients))
	s.logger.Infow("Client connected",
		"client_id", client.id,
		"total_clients", totalClients,
	)

	// Initial state: version, graph with this client's visibility applied,
	// style snapshot, counts. All via the broadcast worker.
	s.queueBroadcast(&broadcastRequest{kind: reqHello, client: client})
}

// handleClientUnregister handles a client disconnection
func (s *Server) handleClientUnregister(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, client)
	totalClients := len(s.clients)
	s.mu.Unlock()

	// Signal broadcast worker to close channels (single-writer invariant)
	select {
	case s.broadcastReq <- &broadcastRequest{kind: reqClose, client: client}:
	case <-s.ctx.Done():
		client.close()
	}

	s.metrics.ConnectedClients.Set(float64(totalClients))
	s.logger.Infow("Client disconnected",
		"client_id", client.id,
		"total_clients", totalClients,
	)
}

// removeSlowClient removes a client that can't keep up with frame broadcasts.
// Only called from the broadcast worker, so channel closes are safe here.
func (s *Server) removeSlowClient(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, client)
	total := len(s.clients)
	s.mu.Unlock()

	client.close()
	s.metrics.ConnectedClients.Set(float64(total))
	s.metrics.SlowClientEvictions.Inc()

	s.logger.Warnw("Client send channel full, removing client",
		"client_id", client.id,
		"total_drops", s.frameDrops.Load(),
	)
}

// queueBroadcast hands a request to the broadcast worker without blocking
func (s *Server) queueBroadcast(req *broadcastRequest) {
	select {
	case s.broadcastReq <- req:
	case <-s.ctx.Done():
	default:
		s.frameDrops.Add(1)
		s.logger.Warnw("Broadcast request queue full, dropping update",
			"kind", req.kind,
		)
	}
}

// Run starts the server hub event loop
func (s *Server) Run() {
	// The broadcast worker owns all client channel sends; it must start
	// before any registration is processed.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runBroadcastWorker()
	}()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugw("Server hub stopping due to context cancellation")
			return
		case client := <-s.register:
			s.handleClientRegister(client)
		case client := <-s.unregister:
			s.handleClientUnregister(client)
		}
	}
}
