package domain

import "time"

// BuildOutcome classifies how a generation attempt ended.
type BuildOutcome string

const (
	// BuildOutcomeDelivered means the archive was packaged and sent.
	BuildOutcomeDelivered BuildOutcome = "delivered"
	// BuildOutcomeNoSource means the model response carried no usable
	// source block.
	BuildOutcomeNoSource BuildOutcome = "no_source"
	// BuildOutcomeFailed means generation or delivery failed.
	BuildOutcomeFailed BuildOutcome = "failed"
)

// BuildRecord is the audit trail of one generation attempt. Sessions are
// never persisted; build records are, so operators can see what the
// service produced after the fact.
type BuildRecord struct {
	BuildID      string
	UserID       string
	ChannelID    string
	BotName      string
	Spec         string
	CommandCount int
	Outcome      BuildOutcome
	Detail       string
	CreatedAt    time.Time
}
