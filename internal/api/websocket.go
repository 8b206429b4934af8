package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/logging"
)

// WebSocket frame types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

// ChannelCameraState carries every camera state message the bridge publishes.
// Subscribing to it replays the cached state of the matching cameras first.
const ChannelCameraState = "camera.state_changed"

// wsSendBufferSize is the per-client outbound frame buffer.
const wsSendBufferSize = 256

// WSMessage is a frame sent to or from a WebSocket client.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload of subscribe and unsubscribe frames.
// Serials narrows a subscription to the listed cameras; empty means all.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
	Serials  []string `json:"serials,omitempty"`
}

// serialFilter is the set of cameras a subscription covers. nil covers all.
type serialFilter map[string]struct{}

func newSerialFilter(serials []string) serialFilter {
	if len(serials) == 0 {
		return nil
	}
	f := make(serialFilter, len(serials))
	for _, s := range serials {
		f[s] = struct{}{}
	}
	return f
}

func (f serialFilter) matches(serial string) bool {
	if f == nil {
		return true
	}
	_, ok := f[serial]
	return ok
}

// Hub tracks WebSocket clients and fans camera events out to them.
type Hub struct {
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// WSClient is one connected WebSocket session.
type WSClient struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	subject string

	// snapshot returns the cached camera states replayed on subscribe.
	snapshot func() []eufy.StateMessage

	mu   sync.RWMutex
	subs map[string]serialFilter
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Access is gated by the single-use ticket.
		return true
	},
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*WSClient]struct{})
	h.mu.Unlock()

	for client := range clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "subject", client.subject, "clients", n)
}

// Unregister removes a client. Only the caller that removes the client from
// the map closes its send channel.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	n := len(h.clients)
	h.mu.Unlock()

	if existed {
		close(client.send)
		h.logger.Debug("websocket client disconnected", "subject", client.subject, "clients", n)
	}
}

// Broadcast delivers an event about one camera to every client subscribed to
// channel for that serial. It never blocks: a client with a full buffer
// misses the event.
func (h *Hub) Broadcast(channel, serial string, payload any) {
	data, err := encodeFrame(WSTypeEvent, "", channel, payload)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		if client.wants(channel, serial) {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.trySend(data)
	}
}

// BroadcastState publishes a camera state message on ChannelCameraState.
func (h *Hub) BroadcastState(msg eufy.StateMessage) {
	h.Broadcast(ChannelCameraState, msg.Serial, msg)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleWebSocket upgrades the connection after redeeming the ticket from
// POST /auth/ws-ticket, so the JWT never appears in a URL.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		writeUnauthorized(w, "ticket query parameter is required")
		return
	}
	subject, ok := s.tickets.redeem(ticket)
	if !ok {
		writeUnauthorized(w, "invalid or expired ticket")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:      s.hub,
		conn:     conn,
		send:     make(chan []byte, wsSendBufferSize),
		subject:  subject,
		snapshot: s.cameras.Cameras,
		subs:     make(map[string]serialFilter),
	}
	s.hub.Register(client)

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)
}

func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	deadline := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	extend := func() error {
		return c.conn.SetReadDeadline(time.Now().Add(deadline))
	}

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	//nolint:errcheck // Best-effort deadline on connection setup
	extend()
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "subject", c.subject, "error", err)
			}
			return
		}
		//nolint:errcheck // Best-effort deadline reset
		extend()
		c.handleMessage(data)
	}
}

func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	writeWait := time.Duration(cfg.PongTimeout) * time.Second
	write := func(kind int, data []byte) error {
		//nolint:errcheck // Best-effort deadline; write error caught by caller
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				//nolint:errcheck // Best-effort close frame
				write(websocket.CloseMessage, nil)
				return
			}
			if write(websocket.TextMessage, data) != nil {
				return
			}
		case <-ticker.C:
			if write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply("", WSTypeError, map[string]string{"message": "invalid JSON message"})
		return
	}

	switch msg.Type {
	case WSTypeSubscribe:
		sub, ok := c.decodeSubscription(msg)
		if !ok {
			return
		}
		filter := newSerialFilter(sub.Serials)
		c.mu.Lock()
		for _, ch := range sub.Channels {
			c.subs[ch] = filter
		}
		c.mu.Unlock()
		c.reply(msg.ID, WSTypeResponse, map[string]any{"subscribed": sub.Channels})
		c.hub.logger.Debug("websocket client subscribed",
			"subject", c.subject,
			"channels", sub.Channels,
			"serials", sub.Serials,
		)
		for _, ch := range sub.Channels {
			if ch == ChannelCameraState {
				c.replayState(filter)
			}
		}

	case WSTypeUnsubscribe:
		sub, ok := c.decodeSubscription(msg)
		if !ok {
			return
		}
		c.mu.Lock()
		for _, ch := range sub.Channels {
			delete(c.subs, ch)
		}
		c.mu.Unlock()
		c.reply(msg.ID, WSTypeResponse, map[string]any{"unsubscribed": sub.Channels})

	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)

	default:
		c.reply(msg.ID, WSTypeError, map[string]string{"message": "unknown message type: " + msg.Type})
	}
}

// decodeSubscription re-decodes the generic payload of a subscribe or
// unsubscribe frame.
func (c *WSClient) decodeSubscription(msg WSMessage) (WSSubscribePayload, bool) {
	var sub WSSubscribePayload
	raw, err := json.Marshal(msg.Payload)
	if err == nil {
		err = json.Unmarshal(raw, &sub)
	}
	if err != nil || len(sub.Channels) == 0 {
		c.reply(msg.ID, WSTypeError, map[string]string{"message": "payload must list channels"})
		return sub, false
	}
	return sub, true
}

// replayState queues the cached state of every camera the filter covers.
func (c *WSClient) replayState(filter serialFilter) {
	if c.snapshot == nil {
		return
	}
	for _, msg := range c.snapshot() {
		if !filter.matches(msg.Serial) {
			continue
		}
		if data, err := encodeFrame(WSTypeEvent, "", ChannelCameraState, msg); err == nil {
			c.trySend(data)
		}
	}
}

func (c *WSClient) wants(channel, serial string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	filter, ok := c.subs[channel]
	return ok && filter.matches(serial)
}

// trySend queues data, dropping it if the buffer is full or the client has
// gone.
func (c *WSClient) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // Absorb send-on-closed-channel panic
	}()

	select {
	case c.send <- data:
	default:
	}
}

func (c *WSClient) reply(id, frameType string, payload any) {
	data, err := encodeFrame(frameType, id, "", payload)
	if err != nil {
		return
	}
	c.trySend(data)
}

func encodeFrame(frameType, id, eventType string, payload any) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      frameType,
		ID:        id,
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
}
