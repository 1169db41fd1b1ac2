// Package server provides the local HTTP status surface of headgaze.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/headgaze/internal/app"
	"github.com/ayusman/headgaze/internal/log"
	"github.com/ayusman/headgaze/internal/server/api"
	"github.com/ayusman/headgaze/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusSource publishes controller loop snapshots.
type StatusSource interface {
	Status() app.Status
}

// FrameSource publishes the latest annotated frame as JPEG with a sequence
// number that grows with every new frame.
type FrameSource interface {
	LatestFrame() ([]byte, uint64)
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Status    StatusSource
	Frames    FrameSource
}

// Server represents the HTTP server for the headgaze application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	cursor *CursorHandler
	stream *StreamHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Status != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)

		s.cursor = NewCursorHandler(s.config.Status)
		s.mux.Handle("/api/cursor", s.cursor)
	}

	if s.config.Frames != nil {
		s.stream = NewStreamHandler(s.config.Frames)
		s.mux.Handle("/api/stream", s.stream)
	}

	// Serve static files if StaticDir is configured
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

	writeJSON(w, response)
}

// handleStatus handles GET requests to /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, s.config.Status.Status())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Close stops background broadcasters and ends open streams.
func (s *Server) Close() {
	if s.cursor != nil {
		s.cursor.Close()
	}
	if s.stream != nil {
		s.stream.Close()
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(log.Fields{"addr": addr}, "status server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
