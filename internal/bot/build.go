// Package bot routes inbound chat messages to the interactive session flow
// or to direct commands, and runs the build pipeline that turns a
// specification into a delivered bot archive.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akiii/botforge/internal/domain"
	"github.com/akiii/botforge/internal/genbot"
	"github.com/akiii/botforge/internal/store"
)

// ErrNoSource reports a model response that carried no usable code block.
var ErrNoSource = errors.New("model response contained no usable source block")

// Builder runs one generation attempt end to end: announce, generate,
// parse, package, deliver and record. It serves both the interactive flow
// (via session.Builder) and the one-shot command.
type Builder struct {
	generator genbot.Generator
	packager  *genbot.Packager
	sender    Sender
	repo      store.Repository
	prefix    string
}

// NewBuilder wires the build pipeline. repo may be nil to disable build
// history.
func NewBuilder(generator genbot.Generator, packager *genbot.Packager, sender Sender, repo store.Repository, prefix string) *Builder {
	return &Builder{
		generator: generator,
		packager:  packager,
		sender:    sender,
		repo:      repo,
		prefix:    prefix,
	}
}

// Build generates a bot from the given specification and delivers the
// packaged archive to the channel. botName may be empty (one-shot builds);
// the specification text then doubles as the archive base name. All
// user-visible failure reporting happens here; the returned error is for
// logging and history only.
func (b *Builder) Build(ctx context.Context, userID, channelID, botName, spec string) error {
	if _, err := b.sender.SendText(ctx, channelID,
		fmt.Sprintf("「%s」ですね。承知いたしました。Gemini APIに問い合わせて、ボットのコードを生成します...", strings.TrimSpace(spec)),
	); err != nil {
		return err
	}

	raw, err := b.generator.Generate(ctx, genbot.BuildPrompt(spec))
	if err != nil {
		slog.Error("Generation failed", "user_id", userID, "error", err)
		b.record(ctx, userID, channelID, botName, spec, 0, domain.BuildOutcomeFailed, err.Error())
		if _, sendErr := b.sender.SendText(ctx, channelID, fmt.Sprintf("Gemini APIとの通信中にエラーが発生しました: %v", err)); sendErr != nil {
			slog.Error("Failed to report generation error", "error", sendErr)
		}
		return err
	}

	art := genbot.ParseResponse(raw, b.prefix)
	if art.SourceCode == "" {
		slog.Warn("Model response had no source block", "user_id", userID)
		b.record(ctx, userID, channelID, botName, spec, 0, domain.BuildOutcomeNoSource, "")
		if _, sendErr := b.sender.SendText(ctx, channelID, "エラー: Gemini APIから有効なPythonコードを取得できませんでした。"); sendErr != nil {
			slog.Error("Failed to report missing source", "error", sendErr)
		}
		return ErrNoSource
	}

	baseName := botName
	if baseName == "" {
		baseName = spec
	}

	if err := b.packager.Deliver(ctx, channelID, baseName, art); err != nil {
		slog.Error("Packaging failed", "user_id", userID, "error", err)
		b.record(ctx, userID, channelID, botName, spec, len(art.Commands), domain.BuildOutcomeFailed, err.Error())
		if _, sendErr := b.sender.SendText(ctx, channelID, fmt.Sprintf("エラーが発生しました: %v", err)); sendErr != nil {
			slog.Error("Failed to report packaging error", "error", sendErr)
		}
		return err
	}

	slog.Info("Bot delivered", "user_id", userID, "bot_name", baseName, "commands", len(art.Commands))
	b.record(ctx, userID, channelID, botName, spec, len(art.Commands), domain.BuildOutcomeDelivered, "")
	return nil
}

func (b *Builder) record(ctx context.Context, userID, channelID, botName, spec string, commandCount int, outcome domain.BuildOutcome, detail string) {
	if b.repo == nil {
		return
	}
	rec := &domain.BuildRecord{
		BuildID:      uuid.NewString(),
		UserID:       userID,
		ChannelID:    channelID,
		BotName:      botName,
		Spec:         spec,
		CommandCount: commandCount,
		Outcome:      outcome,
		Detail:       detail,
		CreatedAt:    time.Now(),
	}
	if err := b.repo.InsertBuild(ctx, rec); err != nil {
		slog.Warn("Failed to record build history", "build_id", rec.BuildID, "error", err)
	}
}
