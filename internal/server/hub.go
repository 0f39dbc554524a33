package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tcgevolve/tcgsim/internal/game"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

var (
	// ErrUnknownCommand is reported for control messages the server does not
	// understand.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrReplayUnavailable is reported when no replay frames are recorded.
	ErrReplayUnavailable = errors.New("replay not recorded")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // spectators may be served from any origin
	},
}

// Message is the websocket envelope in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message types.
const (
	TypeState     = "state"
	TypeError     = "error"
	TypeStart     = "start"
	TypeNextRound = "next_round"
	TypeSpeed     = "speed"
	TypeStep      = "step"
	TypeReplay    = "replay"
)

// Replay navigation actions carried in a TypeReplay message.
const (
	ReplayStart    = "start"
	ReplayNext     = "next"
	ReplayPrevious = "previous"
	ReplaySkip     = "skip"
	ReplaySeek     = "seek"
)

type replayRequest struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
	Index  int    `json:"index"`
}

type speedRequest struct {
	IntervalMS int64 `json:"interval_ms"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Client is one spectator connection. Only the hub goroutine sends on or
// closes send; cursor belongs to the client's read goroutine.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	cursor *game.ReplayCursor
}

type directMessage struct {
	client  *Client
	message []byte
}

// Hub fans views out to every connected spectator.
type Hub struct {
	logger     *zap.Logger
	clients    map[*Client]bool
	broadcast  chan []byte
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client
}

func newHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		direct:     make(chan directMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("spectator connected", zap.String("client_id", client.id), zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("spectator disconnected", zap.String("client_id", client.id), zap.Int("clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.logger.Warn("dropping slow spectator", zap.String("client_id", client.id))
					close(client.send)
					delete(h.clients, client)
				}
			}

		case d := <-h.direct:
			if _, ok := h.clients[d.client]; ok {
				select {
				case d.client.send <- d.message:
				default:
					h.logger.Debug("dropping reply to busy spectator", zap.String("client_id", d.client.id))
				}
			}
		}
	}
}

// deliver queues message for one client. Messages for clients that already
// left are dropped.
func (h *Hub) deliver(ctx context.Context, c *Client, message []byte) {
	select {
	case h.direct <- directMessage{client: c, message: message}:
	case <-ctx.Done():
	}
}

func encode(msgType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Data: data})
}

func (s *Server) reply(c *Client, msgType string, payload any) {
	message, err := encode(msgType, payload)
	if err != nil {
		s.logger.Error("failed to encode reply", zap.String("type", msgType), zap.Error(err))
		return
	}
	s.hub.deliver(s.ctx, c, message)
}

func (s *Server) replyError(c *Client, cause error) {
	s.reply(c, TypeError, errorPayload{Message: cause.Error()})
}

func (c *Client) readPump(s *Server) {
	defer func() {
		select {
		case s.hub.unregister <- c:
		case <-s.ctx.Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("spectator read failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("invalid spectator message", zap.String("client_id", c.id), zap.Error(err))
			s.replyError(c, err)
			continue
		}
		if msg.Type == TypeReplay {
			frame, err := c.navigateReplay(s.ctrl.Replay(), msg.Data)
			if err != nil {
				s.replyError(c, err)
				continue
			}
			s.reply(c, TypeReplay, frame)
			continue
		}
		if err := s.handleCommand(s.ctx, msg); err != nil {
			s.replyError(c, err)
			continue
		}
		if msg.Type == TypeState {
			s.reply(c, TypeState, s.ctrl.Snapshot())
		}
	}
}

// navigateReplay moves the client's cursor over replay. A new round's
// recording starts a fresh cursor on its first frame.
func (c *Client) navigateReplay(replay *game.Replay, data json.RawMessage) (game.ReplayFrame, error) {
	if replay == nil {
		return game.ReplayFrame{}, ErrReplayUnavailable
	}
	if c.cursor == nil || c.cursor.Replay() != replay {
		c.cursor = replay.Cursor()
	}

	var req replayRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return game.ReplayFrame{}, fmt.Errorf("decode replay: %w", err)
		}
	}

	var frame game.ReplayFrame
	var ok bool
	switch req.Action {
	case ReplayStart:
		frame, ok = c.cursor.Rewind()
	case ReplayNext:
		frame, ok = c.cursor.Step(1)
	case ReplayPrevious:
		frame, ok = c.cursor.Step(-1)
	case ReplaySkip:
		frame, ok = c.cursor.Step(req.Count)
	case ReplaySeek:
		frame, ok = c.cursor.Seek(req.Index)
	default:
		return game.ReplayFrame{}, fmt.Errorf("%w: replay action %q", ErrUnknownCommand, req.Action)
	}
	if !ok {
		return game.ReplayFrame{}, ErrReplayUnavailable
	}
	return frame, nil
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleCommand applies a control message to the controller.
func (s *Server) handleCommand(ctx context.Context, msg Message) error {
	switch msg.Type {
	case TypeState:
		return nil
	case TypeStart:
		return s.ctrl.Start(ctx)
	case TypeNextRound:
		return s.ctrl.NextRound(ctx)
	case TypeStep:
		return s.ctrl.Step(ctx)
	case TypeSpeed:
		var req speedRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return fmt.Errorf("decode speed: %w", err)
		}
		return s.ctrl.SetInterval(ctx, time.Duration(req.IntervalMS)*time.Millisecond)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, msg.Type)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	select {
	case s.hub.register <- client:
	case <-s.ctx.Done():
		conn.Close()
		return
	}

	s.reply(client, TypeState, s.ctrl.Snapshot())

	go client.writePump()
	go client.readPump(s)
}
