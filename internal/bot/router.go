package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/akiii/botforge/internal/chat"
	"github.com/akiii/botforge/internal/session"
)

// Sender delivers outbound messages; satisfied by dispatch.Dispatcher and
// by the transcript-logging wrapper.
type Sender interface {
	Send(ctx context.Context, channelID string, opts chat.SendOptions) (*chat.Message, error)
	SendText(ctx context.Context, channelID, content string) (*chat.Message, error)
}

// Router is the inbound entry point: a message either belongs to an active
// interactive session or is a direct command.
type Router struct {
	prefix     string
	machine    *session.Machine
	builder    *Builder
	sender     Sender
	transcript *Transcript
}

// NewRouter creates the message router. transcript may be nil.
func NewRouter(prefix string, machine *session.Machine, builder *Builder, sender Sender, transcript *Transcript) *Router {
	return &Router{
		prefix:     prefix,
		machine:    machine,
		builder:    builder,
		sender:     sender,
		transcript: transcript,
	}
}

// HandleMessage processes one inbound message to completion, including any
// build it triggers. The gateway calls it synchronously per connection, so
// a user's messages are handled in arrival order.
func (r *Router) HandleMessage(ctx context.Context, msg chat.Message) {
	if msg.AuthorID == "" || strings.TrimSpace(msg.Content) == "" {
		return
	}

	r.transcript.LogInbound(msg)

	handled, err := r.machine.HandleMessage(ctx, msg)
	if err != nil {
		slog.Error("Session handling failed", "user_id", msg.AuthorID, "error", err)
	}
	if handled {
		return
	}

	content := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(content, r.prefix) {
		return
	}

	name, arg := splitCommand(strings.TrimPrefix(content, r.prefix))
	switch name {
	case "ping":
		if _, err := r.sender.SendText(ctx, msg.ChannelID, "pong"); err != nil {
			slog.Error("Failed to answer ping", "user_id", msg.AuthorID, "error", err)
		}
	case "make":
		r.handleMake(ctx, msg, arg)
	default:
		// Unknown commands are not this bot's business.
	}
}

// handleMake starts the interactive flow when called bare, or runs a
// one-shot build from the given free-text specification.
func (r *Router) handleMake(ctx context.Context, msg chat.Message, spec string) {
	if spec == "" {
		if err := r.machine.Start(ctx, msg.AuthorID, msg.ChannelID); err != nil {
			slog.Error("Failed to start session", "user_id", msg.AuthorID, "error", err)
		}
		return
	}

	if err := r.builder.Build(ctx, msg.AuthorID, msg.ChannelID, "", spec); err != nil {
		// Already reported to the user by the builder.
		slog.Error("One-shot build failed", "user_id", msg.AuthorID, "error", err)
	}
}

func splitCommand(s string) (name, arg string) {
	parts := strings.SplitN(s, " ", 2)
	name = strings.ToLower(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return name, arg
}
