package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	grapherr "github.com/phylomap/phylomap/graph/error"
	"github.com/phylomap/phylomap/render"
	"github.com/phylomap/phylomap/version"
)

// HandleWebSocket upgrades the connection and starts the client pumps
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.getState() != ServerStateRunning {
		writeError(w, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}

	upgrader := s.newUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		graphErr := grapherr.New(
			grapherr.CategoryWebSocket,
			err,
			"Failed to establish WebSocket connection",
		).WithSubcategory(grapherr.SubcategoryWSUpgrade)
		s.logger.Warnw("WebSocket upgrade failed", graphErr.ToLogFields()...)
		return
	}

	client := &Client{
		server: s,
		conn:   conn,
		send:   make(chan interface{}, SendQueueSize),
		id:     uuid.NewString(),
		view:   newViewState(s.defaultStyle()),
	}

	s.logger.Debugw("WebSocket client connecting", "client_id", shortID(client.id))

	s.register <- client
	go client.writePump()
	go client.readPump()
}

// defaultStyle derives the startup display style from the configuration
func (s *Server) defaultStyle() render.Style {
	style := render.DefaultStyle()
	style.NodeSize = s.sim.Config().NodeSize
	return style
}

// HandleHealth reports server liveness and headline graph stats
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	s.mu.RLock()
	clientCount := len(s.clients)
	s.mu.RUnlock()

	g := s.Graph()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": version.Get(),
		"clients": clientCount,
		"nodes":   len(g.Nodes),
		"links":   len(g.Links),
		"state":   stateString(s.getState()),
	})
}

// HandleGraph serves the unfiltered graph model as JSON
func (s *Server) HandleGraph(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.Graph())
}

// HandleConfig exposes the effective configuration (read-only; live
// mutation happens over the WebSocket control channel).
func (s *Server) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	simCfg := s.sim.Config()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"server": map[string]interface{}{
			"port": s.cfg.Server.Port,
		},
		"data": map[string]interface{}{
			"source": s.cfg.Data.Source,
			"watch":  s.cfg.Data.Watch,
		},
		"layout": map[string]interface{}{
			"mode":            string(s.sim.Mode()),
			"canvas_width":    simCfg.Width,
			"canvas_height":   simCfg.Height,
			"charge_strength": simCfg.ChargeStrength,
			"link_distance":   simCfg.LinkDistance,
			"node_size":       simCfg.NodeSize,
			"frame_rate":      s.cfg.Layout.FrameRate,
		},
	})
}

// HandleRouteStats serves flight-route aggregates.
// Query params: min_flights (default 0), top (default 20).
func (s *Server) HandleRouteStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	minFlights := 0.0
	if v := r.URL.Query().Get("min_flights"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "min_flights must be a non-negative number")
			return
		}
		minFlights = parsed
	}

	topN := 20
	if v := r.URL.Query().Get("top"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		topN = parsed
	}

	writeJSON(w, http.StatusOK, s.Graph().FlightRouteStats(minFlights, topN))
}

// HandleExport serves a point-in-time SVG snapshot of the current layout.
// The scene uses the default style with everything visible; per-client
// transforms live in the browser and are not part of the server snapshot.
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	g := s.Graph()
	scene := render.BuildScene(g, s.sim.Positions(), s.defaultStyle(), render.Highlight{})

	simCfg := s.sim.Config()
	data, err := render.ExportSVG(scene, simCfg.Width, simCfg.Height)
	if err != nil {
		s.logger.Errorw("SVG export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Export failed")
		return
	}

	s.metrics.ExportsTotal.Inc()
	filename := render.ExportFilename(time.Now())
	s.logger.Infow("SVG export served",
		"filename", filename,
		"bytes", len(data),
	)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
