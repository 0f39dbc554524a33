// Package server exposes the running simulation to spectators: a websocket
// stream of views plus a small HTTP control surface.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tcgevolve/tcgsim/internal/game"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Controller is the simulation as seen by spectators.
type Controller interface {
	Snapshot() *game.View
	Replay() *game.Replay
	Subscribe() (<-chan *game.View, func())
	Start(ctx context.Context) error
	NextRound(ctx context.Context) error
	SetInterval(ctx context.Context, d time.Duration) error
	Step(ctx context.Context) error
}

// Config holds the listener settings.
type Config struct {
	Address string
}

// Server serves spectator connections.
type Server struct {
	cfg    Config
	ctrl   Controller
	logger *zap.Logger
	hub    *Hub
	ctx    context.Context
}

// New creates a server for ctrl.
func New(cfg Config, ctrl Controller, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:    cfg,
		ctrl:   ctrl,
		logger: logger,
		hub:    newHub(logger),
		ctx:    context.Background(),
	}
}

// Start launches the hub and the view forwarder. They stop with ctx.
func (s *Server) Start(ctx context.Context) {
	s.ctx = ctx
	go s.hub.run(ctx)
	go s.forward(ctx)
}

func (s *Server) forward(ctx context.Context) {
	views, unsubscribe := s.ctrl.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case view := <-views:
			message, err := encode(TypeState, view)
			if err != nil {
				s.logger.Error("failed to encode view", zap.Error(err))
				continue
			}
			select {
			case s.hub.broadcast <- message:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/replay", s.handleReplay)
	mux.HandleFunc("/api/command", s.handleCommandHTTP)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleReplay serves one recorded frame of the current round, selected by
// the index query parameter (default 0).
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	replay := s.ctrl.Replay()
	if replay == nil {
		writeJSON(w, http.StatusNotFound, errorPayload{Message: ErrReplayUnavailable.Error()})
		return
	}

	index := 0
	if raw := r.URL.Query().Get("index"); raw != "" {
		var err error
		if index, err = strconv.Atoi(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, errorPayload{Message: fmt.Sprintf("invalid index %q", raw)})
			return
		}
	}
	frame, ok := replay.Frame(index)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorPayload{
			Message: fmt.Sprintf("replay frame %d out of range (%d recorded)", index, replay.Len()),
		})
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleCommandHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var msg Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
		return
	}
	if err := s.handleCommand(r.Context(), msg); err != nil {
		status := http.StatusConflict
		if errors.Is(err, ErrUnknownCommand) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorPayload{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Run serves on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.Start(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting spectator server", zap.String("address", s.cfg.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down spectator server")
		return srv.Shutdown(shutdownCtx)
	}
}
