package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/phylomap/phylomap/errors"
)

// getState returns the current server state
func (s *Server) getState() ServerState {
	return ServerState(s.state.Load())
}

// setState atomically updates the server state
func (s *Server) setState(newState ServerState) {
	s.state.Store(int32(newState))
	s.logger.Infow("Server state changed", "new_state", stateString(newState))
}

// stateString returns human-readable state name
func stateString(state ServerState) string {
	switch state {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Start starts the server on the configured port, blocking until shutdown.
// openBrowserFunc, when non-nil, is called with the server URL once listening.
func (s *Server) Start(openBrowserFunc func(url string)) error {
	// Hub first: it must be draining register/unregister before the HTTP
	// surface accepts connections.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run()
	}()

	// Frame loop: continuous simulation stepping and position streaming
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runFrameLoop()
	}()

	// Artifact hot-reload for file sources
	if s.cfg.Data.Watch && !strings.HasPrefix(s.cfg.Data.Source, "http") {
		watcher, err := newArtifactWatcher(s.cfg.Data.Source, s.ReloadGraph, s.logger)
		if err != nil {
			s.logger.Warnw("Artifact watcher unavailable, hot reload disabled",
				"source", s.cfg.Data.Source,
				"error", err,
			)
		} else {
			s.watcher = watcher
			s.watcher.Start()
			s.logger.Infow("Artifact watcher started", "source", s.cfg.Data.Source)
		}
	}

	actualPort, err := findAvailablePort(s.cfg.Server.Port)
	if err != nil {
		return errors.Wrap(err, "failed to find available port")
	}
	if actualPort != s.cfg.Server.Port {
		s.logger.Infow("Port in use, using alternative",
			"requested_port", s.cfg.Server.Port,
			"actual_port", actualPort,
		)
		s.cfg.Server.Port = actualPort
	}

	mux := s.setupHTTPRoutes()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", actualPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d", actualPort)
	s.logger.Infow("Server ready",
		"url", url,
		"port", actualPort,
	)

	if openBrowserFunc != nil {
		s.logger.Infow("Opening browser", "url", url)
		openBrowserFunc(url)
	}

	err = s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server and cleans up resources
func (s *Server) Stop() error {
	s.logger.Infow("Initiating server shutdown")
	s.setState(ServerStateDraining)

	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Warnw("Failed to stop artifact watcher", "error", err)
		}
	}

	// Stop accepting HTTP connections
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warnw("HTTP server shutdown error", "error", err)
		}
	}

	// Close client connections BEFORE cancelling context so readPump exits
	// cleanly before the pumps lose their context.
	s.mu.Lock()
	clientsToClose := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clientsToClose = append(clientsToClose, client)
		delete(s.clients, client)
	}
	s.mu.Unlock()

	if len(clientsToClose) > 0 {
		s.logger.Infow("Closing client connections", "count", len(clientsToClose))
		for _, client := range clientsToClose {
			client.conn.Close()
		}
	}

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infow("All goroutines stopped cleanly")
	case <-time.After(ShutdownTimeout):
		s.logger.Warnw("Goroutine shutdown timed out, forcing exit",
			"timeout", ShutdownTimeout,
		)
	}

	s.setState(ServerStateStopped)
	s.logger.Infow("Server shutdown complete",
		"frame_drops", s.frameDrops.Load(),
	)
	return nil
}
