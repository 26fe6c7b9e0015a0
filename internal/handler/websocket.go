package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/gildedrose/internal/model"
)

// WebSocket configuration constants.
const (
	writeWait         = 10 * time.Second
	DefaultPingPeriod = 54 * time.Second
	maxMessageSize    = 512
	closeGracePeriod  = 100 * time.Millisecond
	replyBuffer       = 4
)

// pongWaitFor returns how long a client may stay silent when pinged every
// pingPeriod. It always exceeds pingPeriod.
func pongWaitFor(pingPeriod time.Duration) time.Duration {
	return pingPeriod * 10 / 9
}

// WebSocketHandler streams inventory day reports to WebSocket clients.
// Each client receives a snapshot on connect and then one message per
// daily update.
type WebSocketHandler struct {
	upgrader   websocket.Upgrader
	feed       DayFeed
	logger     *zap.Logger
	pingPeriod time.Duration
	pongWait   time.Duration
	mu         sync.RWMutex
	clients    map[*websocket.Conn]context.CancelFunc
}

// NewWebSocketHandler creates a new WebSocketHandler instance. A zero
// pingPeriod uses DefaultPingPeriod.
func NewWebSocketHandler(feed DayFeed, logger *zap.Logger, pingPeriod time.Duration) *WebSocketHandler {
	if pingPeriod <= 0 {
		pingPeriod = DefaultPingPeriod
	}

	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		feed:       feed,
		logger:     logger,
		pingPeriod: pingPeriod,
		pongWait:   pongWaitFor(pingPeriod),
		clients:    make(map[*websocket.Conn]context.CancelFunc),
	}
}

// RegisterRoutes registers the WebSocket routes with the router.
func (h *WebSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws", h.HandleWebSocket).Methods(http.MethodGet)
}

// HandleWebSocket handles WebSocket connection requests.
//
//nolint:contextcheck // WebSocket connections outlive the HTTP request context
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	// The request context ends when this handler returns; the connection
	// lives until the client leaves or the server shuts down.
	ctx, cancel := context.WithCancel(context.Background())

	reports, unsubscribe := h.feed.Subscribe()
	replies := make(chan model.WebSocketMessage, replyBuffer)

	h.mu.Lock()
	h.clients[conn] = cancel
	h.mu.Unlock()

	h.logger.Info("websocket client connected", zap.String("remote_addr", conn.RemoteAddr().String()))

	go h.writePump(ctx, conn, reports, replies, unsubscribe)
	go h.readPump(ctx, conn, replies, cancel)
}

// readPump drains incoming frames so control messages are processed, and
// queues a pong for every JSON ping the client sends. Replies are written
// by writePump, the connection's only writer.
func (h *WebSocketHandler) readPump(
	ctx context.Context,
	conn *websocket.Conn,
	replies chan<- model.WebSocketMessage,
	cancel context.CancelFunc,
) {
	defer func() {
		cancel()
		h.removeClient(conn)
		if err := conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(h.pongWait)); err != nil {
		h.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Warn("websocket read error", zap.Error(err))
				}
				return
			}
			h.logger.Debug("received message", zap.ByteString("message", message))
			h.handleClientMessage(message, replies)
		}
	}
}

// handleClientMessage answers application level pings. Anything else is
// ignored.
func (h *WebSocketHandler) handleClientMessage(message []byte, replies chan<- model.WebSocketMessage) {
	var msg model.WebSocketMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		h.logger.Debug("ignoring malformed client message", zap.Error(err))
		return
	}

	if msg.Type != model.WSMessageTypePing {
		return
	}

	select {
	case replies <- model.NewPongMessage():
	default:
		h.logger.Debug("dropping pong for busy client")
	}
}

// writePump sends the initial snapshot, then every day report until the
// client goes away or the feed closes.
func (h *WebSocketHandler) writePump(
	ctx context.Context,
	conn *websocket.Conn,
	reports <-chan *model.DayReport,
	replies <-chan model.WebSocketMessage,
	unsubscribe func(),
) {
	pingTicker := time.NewTicker(h.pingPeriod)

	defer func() {
		pingTicker.Stop()
		unsubscribe()
	}()

	if err := h.sendSnapshot(ctx, conn); err != nil {
		h.logger.Debug("failed to send snapshot", zap.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			h.sendCloseMessage(conn)
			return
		case report, ok := <-reports:
			if !ok {
				h.sendCloseMessage(conn)
				return
			}
			if err := h.writeMessage(conn, model.NewDayMessage(model.WSMessageTypeDayAdvanced, report)); err != nil {
				h.logger.Debug("failed to send day report", zap.Error(err))
				return
			}
		case reply := <-replies:
			if err := h.writeMessage(conn, reply); err != nil {
				h.logger.Debug("failed to send reply", zap.Error(err))
				return
			}
		case <-pingTicker.C:
			if err := h.sendPing(conn); err != nil {
				h.logger.Debug("failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

// sendSnapshot writes the current inventory, or an error message if it
// cannot be read.
func (h *WebSocketHandler) sendSnapshot(ctx context.Context, conn *websocket.Conn) error {
	report, err := h.feed.Snapshot(ctx)
	if err != nil {
		h.logger.Error("failed to build snapshot", zap.Error(err))
		return h.writeMessage(conn, model.NewErrorMessage("snapshot unavailable"))
	}

	return h.writeMessage(conn, model.NewDayMessage(model.WSMessageTypeSnapshot, report))
}

// writeMessage writes msg as JSON with a write deadline.
func (h *WebSocketHandler) writeMessage(conn *websocket.Conn, msg model.WebSocketMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.WriteJSON(msg)
}

// sendPing sends a ping message to the connection.
func (h *WebSocketHandler) sendPing(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.PingMessage, nil)
}

// sendCloseMessage sends a close message to the connection.
func (h *WebSocketHandler) sendCloseMessage(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.Debug("failed to set write deadline for close", zap.Error(err))
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		h.logger.Debug("failed to send close message", zap.Error(err))
	}
}

// removeClient removes a client from the clients map.
func (h *WebSocketHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cancel, exists := h.clients[conn]; exists {
		cancel()
		delete(h.clients, conn)
		h.logger.Info("websocket client disconnected", zap.String("remote_addr", conn.RemoteAddr().String()))
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// CloseAllConnections closes all active WebSocket connections.
func (h *WebSocketHandler) CloseAllConnections() {
	h.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(h.clients))
	for _, cancel := range h.clients {
		cancels = append(cancels, cancel)
	}
	h.mu.Unlock()

	// Cancelling lets each writePump send its close frame first.
	for _, cancel := range cancels {
		cancel()
	}

	time.Sleep(closeGracePeriod)

	h.mu.Lock()
	for conn := range h.clients {
		if err := conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	h.logger.Info("all websocket connections closed")
}
