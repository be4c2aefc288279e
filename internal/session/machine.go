package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/akiii/botforge/internal/chat"
)

// Sender delivers outbound messages; satisfied by dispatch.Dispatcher.
type Sender interface {
	Send(ctx context.Context, channelID string, opts chat.SendOptions) (*chat.Message, error)
}

// Builder runs the generate-parse-package pipeline once a specification is
// confirmed. The build's own failures are reported to the user by the
// builder; the machine only cares that the session ends afterwards.
type Builder interface {
	Build(ctx context.Context, userID, channelID, botName, spec string) error
}

var botTypeChoiceMap = map[string]string{
	"1": "機能型ボット",
	"2": "管理型ボット",
	"3": "娯楽型ボット",
	"4": "その他のボット",
}

// Machine drives the interactive specification flow for all active
// sessions.
type Machine struct {
	store   *Store
	sender  Sender
	builder Builder
}

// NewMachine creates a state machine over the given store.
func NewMachine(store *Store, sender Sender, builder Builder) *Machine {
	return &Machine{store: store, sender: sender, builder: builder}
}

// Start begins the interactive flow for a user, replacing any session
// state with a fresh one, and sends the first stage's prompt.
func (m *Machine) Start(ctx context.Context, userID, channelID string) error {
	sess := m.store.Create(userID, channelID)
	slog.Info("Interactive session started", "user_id", userID, "channel_id", channelID)

	_, err := m.sender.Send(ctx, channelID, chat.SendOptions{Embed: stageEmbed(StageBotType, sess.Info)})
	return err
}

// HandleMessage processes one inbound message for an active session.
// It returns false when the user has no session, in which case the caller
// treats the message as a fresh command.
//
// Handling is serialized per session: the session's lock is held for the
// entire message, including a build triggered from the confirmation stage.
func (m *Machine) HandleMessage(ctx context.Context, msg chat.Message) (bool, error) {
	sess := m.store.Get(msg.AuthorID)
	if sess == nil {
		return false, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// The session may have been cancelled or completed while this message
	// waited on the lock.
	if !m.store.Contains(sess) {
		return false, nil
	}

	token := strings.ToLower(strings.TrimSpace(msg.Content))

	switch token {
	case "cancel":
		m.store.Delete(sess.UserID)
		slog.Info("Session cancelled", "user_id", sess.UserID, "stage", sess.Stage)
		_, err := m.sender.Send(ctx, sess.ChannelID, chat.SendOptions{Content: "❌ ボット作成をキャンセルしました。"})
		return true, err
	case "back":
		err := m.handleBack(ctx, sess)
		m.store.Touch(sess.UserID)
		return true, err
	}

	var err error
	switch sess.Stage {
	case StageBotType:
		err = m.handleBotType(ctx, sess, msg.Content, token)
	case StageBotName:
		err = m.advance(ctx, sess, StageBotFeatures, func() { sess.Info.Name = msg.Content })
	case StageBotFeatures:
		err = m.advance(ctx, sess, StageBotCommands, func() { sess.Info.Features = msg.Content })
	case StageBotCommands:
		err = m.handleBotCommands(ctx, sess, msg.Content, token)
	case StageConfirmation:
		err = m.handleConfirmation(ctx, sess, token)
	}

	m.store.Touch(sess.UserID)
	return true, err
}

func (m *Machine) handleBack(ctx context.Context, sess *Session) error {
	idx := stageIndex(sess.Stage)
	if idx <= 0 {
		_, err := m.sender.Send(ctx, sess.ChannelID, chat.SendOptions{Content: "⚠️ これ以上戻ることはできません。"})
		return err
	}

	sess.Stage = StageOrder[idx-1]
	_, err := m.sender.Send(ctx, sess.ChannelID, chat.SendOptions{Embed: stageEmbed(sess.Stage, sess.Info)})
	return err
}

// handleBotType maps the numeric choices to fixed category labels and
// stores anything else verbatim as a free-form category.
func (m *Machine) handleBotType(ctx context.Context, sess *Session, raw, token string) error {
	if label, ok := botTypeChoiceMap[token]; ok {
		sess.Info.Type = label
	} else {
		sess.Info.Type = raw
	}
	sess.Stage = StageBotName
	_, err := m.sender.Send(ctx, sess.ChannelID, chat.SendOptions{Embed: stageEmbed(StageBotName, sess.Info)})
	return err
}

func (m *Machine) advance(ctx context.Context, sess *Session, next Stage, store func()) error {
	store()
	sess.Stage = next
	_, err := m.sender.Send(ctx, sess.ChannelID, chat.SendOptions{Embed: stageEmbed(next, sess.Info)})
	return err
}

func (m *Machine) handleBotCommands(ctx context.Context, sess *Session, raw, token string) error {
	if token == "自動で決めて" {
		sess.Info.Commands = "自動生成"
	} else {
		sess.Info.Commands = raw
	}
	sess.Stage = StageConfirmation
	_, err := m.sender.Send(ctx, sess.ChannelID, chat.SendOptions{Embed: confirmationEmbed(sess.Info)})
	return err
}

func (m *Machine) handleConfirmation(ctx context.Context, sess *Session, token string) error {
	switch token {
	case "yes":
		spec := specText(sess.Info)
		slog.Info("Build confirmed", "user_id", sess.UserID, "bot_name", sess.Info.Name)

		if _, err := m.sender.Send(ctx, sess.ChannelID, chat.SendOptions{Content: "🚀 ボットの作成を開始します..."}); err != nil {
			m.store.Delete(sess.UserID)
			return err
		}

		err := m.builder.Build(ctx, sess.UserID, sess.ChannelID, sess.Info.Name, spec)
		// The session ends whether or not the build succeeded.
		m.store.Delete(sess.UserID)
		return err
	case "no":
		sess.Info = BotInfo{}
		sess.Stage = StageBotType
		_, err := m.sender.Send(ctx, sess.ChannelID, chat.SendOptions{Embed: restartEmbed()})
		return err
	default:
		// Anything else at the confirmation stage is silently ignored.
		return nil
	}
}

func specText(info BotInfo) string {
	return fmt.Sprintf("\nボットタイプ: %s\nボット名: %s\n機能: %s\nコマンド: %s\n",
		info.Type, info.Name, info.Features, info.Commands)
}
