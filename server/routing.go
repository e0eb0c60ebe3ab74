package server

import (
	"io/fs"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupHTTPRoutes configures all HTTP handlers on a dedicated mux
func (s *Server) setupHTTPRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.corsMiddleware(s.HandleWebSocket))
	mux.HandleFunc("/health", s.corsMiddleware(s.HandleHealth))
	mux.HandleFunc("/api/graph", s.corsMiddleware(s.HandleGraph))
	mux.HandleFunc("/api/config", s.corsMiddleware(s.HandleConfig))
	mux.HandleFunc("/api/stats/routes", s.corsMiddleware(s.HandleRouteStats))
	mux.HandleFunc("/api/export", s.corsMiddleware(s.HandleExport))
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", s.corsMiddleware(s.HandleStatic))

	return mux
}

// corsMiddleware adds CORS headers using the same origin validation as
// WebSocket connections (server.allowed_origins config).
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// HandleStatic serves the embedded browser client. In non-prod builds the
// embed is empty and a plain status page is served instead.
func (s *Server) HandleStatic(w http.ResponseWriter, r *http.Request) {
	dist, err := fs.Sub(webFiles, "dist")
	if err == nil {
		if _, statErr := fs.Stat(dist, "index.html"); statErr == nil {
			http.FileServer(http.FS(dist)).ServeHTTP(w, r)
			return
		}
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("phylomap server (no embedded UI in this build)\n"))
}
