package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/akiii/botforge/internal/chat"
)

// userIDPattern bounds what we accept as a user identifier on the
// query string.
var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// MessageHandler consumes one inbound chat message to completion.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg chat.Message)
}

// WebSocketHandler upgrades chat connections and feeds inbound frames to
// the message handler.
type WebSocketHandler struct {
	conns   *ConnManager
	handler MessageHandler
	isDev   bool
}

// NewWebSocketHandler creates the chat WebSocket endpoint handler.
func NewWebSocketHandler(conns *ConnManager, handler MessageHandler, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{conns: conns, handler: handler, isDev: isDev}
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if !userIDPattern.MatchString(userID) {
		http.Error(w, "invalid or missing user parameter", http.StatusBadRequest)
		return
	}
	slog.Info("Chat connection request", "user_id", userID, "ip", r.RemoteAddr)

	opts := &websocket.AcceptOptions{}
	if h.isDev {
		opts.OriginPatterns = []string{"*"}
	}
	ws, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.conns.Register(userID, ws)
	defer h.conns.Unregister(userID, ws)

	h.readLoop(r.Context(), ws, userID)
}

// readLoop processes frames sequentially: each inbound message is handled
// to completion before the next is read, which preserves per-user arrival
// order through builds and paced sends.
func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, userID string) {
	for {
		msgType, data, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return
			}
			slog.Debug("WebSocket read error", "user_id", userID, "error", err)
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		content, ok, err := decodeInbound(data)
		if err != nil {
			slog.Warn("Dropping malformed frame", "user_id", userID, "error", err)
			continue
		}
		if !ok {
			continue
		}

		h.handler.HandleMessage(ctx, chat.Message{
			ID:        uuid.NewString(),
			AuthorID:  userID,
			ChannelID: userID,
			Content:   content,
		})
	}
}
