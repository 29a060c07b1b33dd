// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jeranaias/heartline/internal/config"
	"github.com/jeranaias/heartline/internal/export"
	"github.com/jeranaias/heartline/internal/session"
)

// keepAlive is the interval between comment lines on an idle event stream.
const keepAlive = 15 * time.Second

// Server serves a Live monitor over HTTP.
type Server struct {
	cfg        *config.Config
	live       *Live
	limiter    *RateLimiter
	httpServer *http.Server
	startTime  time.Time

	requests atomic.Uint64
	errors   atomic.Uint64
	streams  atomic.Int64
}

// ServerStats is the request side of /stats.
type ServerStats struct {
	Requests    uint64    `json:"requests"`
	Errors      uint64    `json:"errors"`
	Streams     int64     `json:"streams"`
	Dropped     uint64    `json:"dropped_beats"`
	StartTime   time.Time `json:"start_time"`
	UptimeSecs  float64   `json:"uptime_secs"`
	RateClients int       `json:"rate_clients"`
}

// NewServer creates a server for live using cfg.Serve.
func NewServer(cfg *config.Config, live *Live) *Server {
	s := &Server{
		cfg:       cfg,
		live:      live,
		limiter:   NewRateLimiter(cfg.Serve.RateLimit, cfg.Serve.RateBurst),
		startTime: time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /bpm", s.handleBPM)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /events", s.handleEvents)

	return Chain(
		RecoveryMiddleware(),
		LoggingMiddleware(s.countRequest),
		SecurityHeadersMiddleware(),
		CORSMiddleware(&CORSConfig{AllowedOrigins: ParseOrigins(s.cfg.Serve.CORSOrigins), MaxAge: 600}),
		RateLimitMiddleware(s.limiter),
		AuthMiddleware(s.cfg.Serve.Token),
	)(mux)
}

func (s *Server) countRequest(status int) {
	s.requests.Add(1)
	if status >= http.StatusBadRequest {
		s.errors.Add(1)
	}
}

// Start listens on the configured address. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	log.Printf("SERVER_START | addr=%s auth=%t", ln.Addr(), s.cfg.Serve.Token != "")
	return s.httpServer.Serve(ln)
}

// Shutdown stops the server, waiting for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Printf("SERVER_STOP | requests=%d", s.requests.Load())
	return s.httpServer.Shutdown(ctx)
}

// Stats returns request counters.
func (s *Server) Stats() ServerStats {
	return ServerStats{
		Requests:    s.requests.Load(),
		Errors:      s.errors.Load(),
		Streams:     s.streams.Load(),
		Dropped:     s.live.Dropped(),
		StartTime:   s.startTime,
		UptimeSecs:  time.Since(s.startTime).Seconds(),
		RateClients: s.limiter.Clients(),
	}
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"session_id":  s.live.SessionID(),
		"uptime_secs": time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleBPM(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.live.Reading())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		SessionID string        `json:"session_id"`
		Session   session.Stats `json:"session"`
		Server    ServerStats   `json:"server"`
	}{
		SessionID: s.live.SessionID(),
		Session:   s.live.Stats(),
		Server:    s.Stats(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = s.cfg.Snapshot.Format
	}

	opts := export.DefaultOptions()
	opts.Palette = export.Palette{
		Line:       s.cfg.Palette.Line,
		Background: s.cfg.Palette.Background,
		Baseline:   s.cfg.Palette.Baseline,
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := exporter.Export(s.live.Snapshot())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, export.ErrEmptySnapshot) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", exporter.MimeType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleEvents streams "beat" events until the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	beats, cancel := s.live.Subscribe()
	defer cancel()
	s.streams.Add(1)
	defer s.streams.Add(-1)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case b := <-beats:
			data, err := json.Marshal(b)
			if err != nil {
				log.Printf("SSE_ERROR | error=%v", err)
				continue
			}
			fmt.Fprintf(w, "event: beat\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// ============================================================================
// Helpers
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("HTTP_WRITE_ERROR | error=%v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
