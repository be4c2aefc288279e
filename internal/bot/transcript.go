package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/akiii/botforge/internal/chat"
)

// TranscriptConfig controls NDJSON conversation logging.
type TranscriptConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// TranscriptEvent is one logged exchange line.
type TranscriptEvent struct {
	Timestamp string `json:"ts"`
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	Direction string `json:"direction"`
	Kind      string `json:"kind"`
	Content   string `json:"content"`
}

// Transcript appends conversation events as NDJSON, one file per channel,
// through an async queue so chat handling never blocks on disk I/O. Events
// are dropped (and counted in the log) when the queue is full. A nil
// *Transcript is valid and logs nothing.
type Transcript struct {
	dir    string
	queue  chan TranscriptEvent
	done   chan struct{}
	closed sync.Once
}

// NewTranscript creates the transcript logger, or nil when disabled.
func NewTranscript(cfg TranscriptConfig) (*Transcript, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}

	t := &Transcript{
		dir:   cfg.Dir,
		queue: make(chan TranscriptEvent, cfg.QueueSize),
		done:  make(chan struct{}),
	}
	go t.run()
	return t, nil
}

// LogInbound records a user message.
func (t *Transcript) LogInbound(msg chat.Message) {
	t.log(TranscriptEvent{
		UserID:    msg.AuthorID,
		ChannelID: msg.ChannelID,
		Direction: "inbound",
		Kind:      "text",
		Content:   msg.Content,
	})
}

// LogOutbound records a bot reply addressed to a user.
func (t *Transcript) LogOutbound(userID, channelID string, opts chat.SendOptions) {
	ev := TranscriptEvent{
		UserID:    userID,
		ChannelID: channelID,
		Direction: "outbound",
	}
	switch {
	case opts.File != nil:
		ev.Kind = "file"
		ev.Content = opts.File.Name
	case opts.Embed != nil:
		ev.Kind = "embed"
		ev.Content = opts.Embed.Title
	default:
		ev.Kind = "text"
		ev.Content = opts.Content
	}
	t.log(ev)
}

func (t *Transcript) log(ev TranscriptEvent) {
	if t == nil {
		return
	}
	ev.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	select {
	case t.queue <- ev:
	default:
		slog.Warn("Transcript queue full, dropping event", "user_id", ev.UserID)
	}
}

// Close drains the queue and stops the writer goroutine.
func (t *Transcript) Close() {
	if t == nil {
		return
	}
	t.closed.Do(func() {
		close(t.queue)
		<-t.done
	})
}

func (t *Transcript) run() {
	defer close(t.done)
	for ev := range t.queue {
		t.append(ev)
	}
}

func (t *Transcript) append(ev TranscriptEvent) {
	line, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("Failed to marshal transcript event", "error", err)
		return
	}

	name := filepath.Join(t.dir, sanitizeFileKey(ev.ChannelID)+".ndjson")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Warn("Failed to open transcript file", "path", name, "error", err)
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		slog.Warn("Failed to write transcript", "path", name, "error", err)
	}
}

// sanitizeFileKey keeps transcript filenames safe regardless of what the
// platform uses as channel identifiers.
func sanitizeFileKey(key string) string {
	out := []rune(key)
	for i, r := range out {
		switch r {
		case '/', '\\', '.', ':':
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "unknown"
	}
	return string(out)
}

// transcriptSender wraps a Sender so every delivered message is also
// recorded in the transcript. The author of the inbound message being
// answered is not known at this layer, so events are keyed by channel.
type transcriptSender struct {
	inner      Sender
	transcript *Transcript
}

// NewTranscriptSender decorates sender with transcript logging. Returns
// sender unchanged when transcript is nil.
func NewTranscriptSender(sender Sender, transcript *Transcript) Sender {
	if transcript == nil {
		return sender
	}
	return &transcriptSender{inner: sender, transcript: transcript}
}

func (s *transcriptSender) Send(ctx context.Context, channelID string, opts chat.SendOptions) (*chat.Message, error) {
	msg, err := s.inner.Send(ctx, channelID, opts)
	if err == nil {
		s.transcript.LogOutbound("", channelID, opts)
	}
	return msg, err
}

func (s *transcriptSender) SendText(ctx context.Context, channelID, content string) (*chat.Message, error) {
	return s.Send(ctx, channelID, chat.SendOptions{Content: content})
}
