// Package chat defines the platform-neutral chat types the core operates on.
//
// The actual chat platform (gateway adapter) lives at the edge of the
// process; everything under internal/ depends only on the Transport
// interface defined here.
package chat

import (
	"context"
	"fmt"
	"time"
)

// Message is one inbound or delivered chat message.
type Message struct {
	ID        string
	AuthorID  string
	ChannelID string
	Content   string
}

// EmbedField is one named section of an Embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich structured message.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
}

// File is an outbound attachment.
type File struct {
	Name string
	Data []byte
}

// SendOptions carries the optional parts of an outbound message.
// At least one of Content, Embed or File must be set.
type SendOptions struct {
	Content string
	Embed   *Embed
	File    *File
}

// Transport delivers outbound messages to the chat platform.
// Implementations do not need to throttle; pacing and rate-limit
// recovery are the dispatcher's job.
type Transport interface {
	Send(ctx context.Context, channelID string, opts SendOptions) (*Message, error)
}

// RateLimitedError reports a platform rate limit (HTTP 429 equivalent).
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by platform, retry after %s", e.RetryAfter)
	}
	return "rate limited by platform"
}
