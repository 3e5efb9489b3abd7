// Package server provides the HTTP server for pinchball: settings, session
// log, live state and the rendered stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/pinchball/internal/app"
	"github.com/ayusman/pinchball/internal/server/api"
	"github.com/ayusman/pinchball/internal/store"
)

// shutdownTimeout bounds how long in-flight requests get on shutdown.
const shutdownTimeout = 5 * time.Second

// Config holds the server configuration. Routes whose collaborators are
// nil are not registered.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Hub        *app.Hub
	Controller api.Controller
	Logger     *zap.Logger
}

// Server represents the HTTP server for the pinchball application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	state  *StateHandler
	log    *zap.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    log.Named("server"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Hub != nil && s.config.Controller != nil {
		s.mux.Handle("/api/forces", api.NewForcesHandler(s.config.Hub, s.config.Controller, s.log))
	}

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Hub != nil {
		s.state = NewStateHandler(s.config.Hub, s.log)
		s.mux.Handle("/api/state", s.state)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Hub))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Hub != nil {
		snap := s.config.Hub.Latest()
		response["tick"] = snap.Tick
		if snap.SessionID != "" {
			response["session_id"] = snap.SessionID
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}

// Close stops the state broadcaster and disconnects websocket clients.
func (s *Server) Close() {
	if s.state != nil {
		s.state.Close()
	}
}
