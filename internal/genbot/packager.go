package genbot

import (
	"archive/zip"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/akiii/botforge/internal/chat"
)

// Canonical entry names inside every delivered archive.
const (
	ArchiveSourceName       = "main.py"
	ArchiveRequirementsName = "requirements.txt"
	ArchiveEnvExampleName   = ".env.example"
)

// embedFieldLimit is the platform's maximum length of one embed field value.
const embedFieldLimit = 1024

const usageInstructions = "1. ダウンロードしたzipファイルを解凍\n" +
	"2. `.env.example`を`.env`にリネームしてトークンを設定\n" +
	"3. `pip install -r requirements.txt`で依存関係をインストール\n" +
	"4. `python main.py`でボットを起動"

// Sender delivers packaged output; satisfied by dispatch.Dispatcher.
type Sender interface {
	Send(ctx context.Context, channelID string, opts chat.SendOptions) (*chat.Message, error)
}

// Packager writes artifacts to a scratch directory, archives them and
// delivers the archive as a file attachment.
type Packager struct {
	sender Sender
}

// NewPackager creates a packager delivering through the given sender.
func NewPackager(sender Sender) *Packager {
	return &Packager{sender: sender}
}

// Deliver packages one artifact and sends it to the channel, followed by a
// command-summary embed when the artifact declares commands. All scratch
// state, including the archive, is removed before returning, whether or not
// delivery succeeded.
func (p *Packager) Deliver(ctx context.Context, channelID, botName string, art Artifact) error {
	dir, err := os.MkdirTemp("", "botforge-build-")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}

	archiveName := sanitizeBaseName(botName) + "_bot.zip"
	archivePath := filepath.Join(dir, archiveName)
	entries := map[string]string{
		ArchiveSourceName:       art.SourceCode,
		ArchiveRequirementsName: art.Requirements,
		ArchiveEnvExampleName:   art.EnvExample,
	}

	// Cleanup runs exactly once and never aborts partway: a failed removal
	// is logged and the remaining entries are still attempted.
	defer func() {
		for name := range entries {
			removeLogged(filepath.Join(dir, name))
		}
		removeLogged(archivePath)
		if rmErr := os.Remove(dir); rmErr != nil {
			slog.Warn("Failed to remove scratch directory", "dir", dir, "error", rmErr)
		}
	}()

	for name, content := range entries {
		if writeErr := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); writeErr != nil {
			return fmt.Errorf("write scratch file %s: %w", name, writeErr)
		}
	}

	if err := writeArchive(archivePath, entries); err != nil {
		return err
	}

	data, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	_, err = p.sender.Send(ctx, channelID, chat.SendOptions{
		Content: "✅ 新しいボットの準備ができました！",
		File:    &chat.File{Name: archiveName, Data: data},
	})
	if err != nil {
		return fmt.Errorf("deliver archive: %w", err)
	}

	if len(art.Commands) > 0 {
		if _, err := p.sender.Send(ctx, channelID, chat.SendOptions{Embed: commandSummaryEmbed(art.Commands)}); err != nil {
			return fmt.Errorf("deliver command summary: %w", err)
		}
	}

	return nil
}

// commandSummaryEmbed renders the command list, split into numbered fields
// when the joined text exceeds the platform's field limit.
func commandSummaryEmbed(commands []string) *chat.Embed {
	embed := &chat.Embed{
		Title:       "📚 作成されたボットのコマンド一覧",
		Description: "このボットで使用できるコマンドです：",
		Color:       0x00ff00,
	}

	chunks := splitRunes(strings.Join(commands, "\n"), embedFieldLimit)
	for i, chunk := range chunks {
		name := "コマンド一覧"
		if len(chunks) > 1 {
			name = fmt.Sprintf("コマンド一覧 (その%d)", i+1)
		}
		embed.Fields = append(embed.Fields, chat.EmbedField{Name: name, Value: chunk})
	}

	embed.Fields = append(embed.Fields, chat.EmbedField{Name: "使用方法", Value: usageInstructions})
	return embed
}

func writeArchive(archivePath string, entries map[string]string) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	zw := zip.NewWriter(f)
	for _, name := range []string{ArchiveSourceName, ArchiveRequirementsName, ArchiveEnvExampleName} {
		w, zerr := zw.Create(name)
		if zerr == nil {
			_, zerr = w.Write([]byte(entries[name]))
		}
		if zerr != nil {
			_ = zw.Close()
			_ = f.Close()
			return fmt.Errorf("add %s to archive: %w", name, zerr)
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

// sanitizeBaseName makes a user-supplied name safe as a filename component.
func sanitizeBaseName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == os.PathSeparator:
			return '_'
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return '_'
		}
		return r
	}, name)
}

func removeLogged(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove scratch file", "path", path, "error", err)
	}
}

// splitRunes splits s into chunks of at most limit runes, never splitting a
// rune in half.
func splitRunes(s string, limit int) []string {
	runes := []rune(s)
	var chunks []string
	for len(runes) > limit {
		chunks = append(chunks, string(runes[:limit]))
		runes = runes[limit:]
	}
	return append(chunks, string(runes))
}
