package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/akiii/botforge/internal/chat"
)

// Transport delivers outbound messages over the user's WebSocket
// connection. In this adapter every user has exactly one direct channel,
// so the channel identifier is the user identifier.
type Transport struct {
	conns *ConnManager
}

// NewTransport creates a transport over the given connection manager.
func NewTransport(conns *ConnManager) *Transport {
	return &Transport{conns: conns}
}

// Send implements chat.Transport.
func (t *Transport) Send(ctx context.Context, channelID string, opts chat.SendOptions) (*chat.Message, error) {
	conn := t.conns.Get(channelID)
	if conn == nil {
		return nil, fmt.Errorf("no active connection for channel %s", channelID)
	}

	frame, err := encodeOutbound(opts)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return nil, fmt.Errorf("write frame: %w", err)
	}

	return &chat.Message{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		Content:   opts.Content,
	}, nil
}
