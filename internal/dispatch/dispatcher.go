// Package dispatch paces outbound chat messages against platform rate limits.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/akiii/botforge/internal/chat"
)

const (
	// DefaultSendInterval is the minimum spacing between two sends to the
	// same destination.
	DefaultSendInterval = 1000 * time.Millisecond

	// DefaultCooldown is how long to wait before the single retry after
	// the platform reports a rate limit.
	DefaultCooldown = 5 * time.Second

	// pruneAfter is how long an idle destination entry survives in the
	// pacing map. Destination cardinality is bounded by active channels,
	// but the process is long-running, so stale entries are evicted
	// opportunistically.
	pruneAfter = 10 * time.Minute
)

// Error reports a send that could not be delivered.
type Error struct {
	ChannelID string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch to %s failed: %v", e.ChannelID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Dispatcher serializes and paces sends per destination and recovers from
// a single rate-limit signal with one bounded retry.
type Dispatcher struct {
	transport chat.Transport
	interval  time.Duration
	cooldown  time.Duration

	mu       sync.Mutex
	lastSend map[string]time.Time
}

// New creates a dispatcher with the default pacing parameters.
func New(transport chat.Transport) *Dispatcher {
	return NewWithIntervals(transport, DefaultSendInterval, DefaultCooldown)
}

// NewWithIntervals creates a dispatcher with explicit pacing parameters.
func NewWithIntervals(transport chat.Transport, interval, cooldown time.Duration) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		interval:  interval,
		cooldown:  cooldown,
		lastSend:  make(map[string]time.Time),
	}
}

// Send delivers one message to one destination. It waits out the remainder
// of the per-destination spacing floor before calling the transport, and on
// a rate-limit signal waits the fixed cooldown and retries exactly once.
// The last-send timestamp is recorded only after the transport call
// succeeds, so a retry cycle never believes a send already happened.
func (d *Dispatcher) Send(ctx context.Context, channelID string, opts chat.SendOptions) (*chat.Message, error) {
	if wait := d.timeUntilAllowed(channelID); wait > 0 {
		if err := sleepCtx(ctx, wait); err != nil {
			return nil, &Error{ChannelID: channelID, Err: err}
		}
	}

	msg, err := d.transport.Send(ctx, channelID, opts)
	if err != nil {
		var rateErr *chat.RateLimitedError
		if !errors.As(err, &rateErr) {
			return nil, &Error{ChannelID: channelID, Err: err}
		}

		slog.Warn("Rate limited, retrying after cooldown", "channel_id", channelID, "cooldown", d.cooldown)
		if sleepErr := sleepCtx(ctx, d.cooldown); sleepErr != nil {
			return nil, &Error{ChannelID: channelID, Err: sleepErr}
		}

		msg, err = d.transport.Send(ctx, channelID, opts)
		if err != nil {
			return nil, &Error{ChannelID: channelID, Err: err}
		}
	}

	d.recordSend(channelID)
	return msg, nil
}

// SendText is a convenience wrapper for plain text messages.
func (d *Dispatcher) SendText(ctx context.Context, channelID, content string) (*chat.Message, error) {
	return d.Send(ctx, channelID, chat.SendOptions{Content: content})
}

// SendEmbed is a convenience wrapper for rich messages.
func (d *Dispatcher) SendEmbed(ctx context.Context, channelID string, embed *chat.Embed) (*chat.Message, error) {
	return d.Send(ctx, channelID, chat.SendOptions{Embed: embed})
}

func (d *Dispatcher) timeUntilAllowed(channelID string) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.lastSend[channelID]
	if !ok {
		return 0
	}
	elapsed := time.Since(last)
	if elapsed >= d.interval {
		return 0
	}
	return d.interval - elapsed
}

func (d *Dispatcher) recordSend(channelID string) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastSend[channelID] = now
	for id, last := range d.lastSend {
		if now.Sub(last) > pruneAfter {
			delete(d.lastSend, id)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
