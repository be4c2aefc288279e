// Package session implements the per-user interactive specification flow:
// the session store, the stage state machine and the prompts each stage
// renders.
package session

import (
	"sync"
	"time"
)

// Stage identifies one step of the interactive flow.
type Stage string

const (
	StageBotType      Stage = "bot_type"
	StageBotName      Stage = "bot_name"
	StageBotFeatures  Stage = "bot_features"
	StageBotCommands  Stage = "bot_commands"
	StageConfirmation Stage = "confirmation"
)

// StageOrder is the only legal "back" traversal path. Every stage the
// machine dispatches on must appear here, or it would be reachable but not
// revisitable.
var StageOrder = []Stage{
	StageBotType,
	StageBotName,
	StageBotFeatures,
	StageBotCommands,
	StageConfirmation,
}

// BotInfo holds the fields collected across the flow. Zero values render
// as "未設定" in prompts.
type BotInfo struct {
	Type     string
	Name     string
	Features string
	Commands string
}

// Session is one user's in-memory conversational state. The mutex
// serializes message handling per session: a second message from the same
// user blocks until the first one's handler (including a build it
// triggers) has finished, so BotInfo can never be corrupted by
// interleaving.
type Session struct {
	UserID    string
	ChannelID string
	Stage     Stage
	Info      BotInfo

	mu sync.Mutex

	// UpdatedAt is maintained by the Store under its own lock, for the
	// idle sweeper.
	UpdatedAt time.Time
}

func stageIndex(stage Stage) int {
	for i, s := range StageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}
