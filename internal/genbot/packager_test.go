package genbot

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/akiii/botforge/internal/chat"
)

type captureSender struct {
	sent    []chat.SendOptions
	failAll bool
}

func (c *captureSender) Send(_ context.Context, _ string, opts chat.SendOptions) (*chat.Message, error) {
	if c.failAll {
		return nil, errors.New("transport down")
	}
	c.sent = append(c.sent, opts)
	return &chat.Message{ID: "m"}, nil
}

func testArtifact() Artifact {
	return Artifact{
		SourceCode:   "import discord\nprint('bot')",
		Requirements: DefaultRequirements,
		EnvExample:   DefaultEnvExample,
		Commands: []string{
			"`!echo` - メッセージを繰り返します",
			"`!help` - 組み込みのヘルプコマンド",
		},
	}
}

func TestDeliverPackagesThreeCanonicalEntries(t *testing.T) {
	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	sender := &captureSender{}
	p := NewPackager(sender)

	if err := p.Deliver(context.Background(), "chan-1", "Echo Bot", testArtifact()); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("expected archive send + summary embed, got %d sends", len(sender.sent))
	}

	file := sender.sent[0].File
	if file == nil {
		t.Fatal("first send carries no file attachment")
	}
	if file.Name != "Echo_Bot_bot.zip" {
		t.Errorf("archive name = %q, want sanitized Echo_Bot_bot.zip", file.Name)
	}

	zr, err := zip.NewReader(bytes.NewReader(file.Data), int64(len(file.Data)))
	if err != nil {
		t.Fatalf("attachment is not a valid zip: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	want := []string{ArchiveSourceName, ArchiveRequirementsName, ArchiveEnvExampleName}
	if len(names) != len(want) {
		t.Fatalf("archive entries = %v, want %v", names, want)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("archive entry %d = %q, want %q", i, names[i], name)
		}
	}

	embed := sender.sent[1].Embed
	if embed == nil {
		t.Fatal("second send carries no embed")
	}
	if len(embed.Fields) != 2 {
		t.Fatalf("embed fields = %d, want command list + usage", len(embed.Fields))
	}
	if got := strings.Count(embed.Fields[0].Value, "\n") + 1; got != 2 {
		t.Errorf("command list has %d entries, want 2", got)
	}

	assertNoScratchResidue(t, scratch)
}

func TestDeliverCleansUpWhenTransportFails(t *testing.T) {
	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	p := NewPackager(&captureSender{failAll: true})
	err := p.Deliver(context.Background(), "chan-1", "Echo Bot", testArtifact())
	if err == nil {
		t.Fatal("expected delivery error")
	}

	assertNoScratchResidue(t, scratch)
}

func TestDeliverSkipsSummaryWithoutCommands(t *testing.T) {
	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	art := testArtifact()
	art.Commands = nil

	sender := &captureSender{}
	if err := NewPackager(sender).Deliver(context.Background(), "chan-1", "x", art); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("expected only the archive send, got %d sends", len(sender.sent))
	}
}

func TestCommandSummaryEmbedChunksLongLists(t *testing.T) {
	t.Parallel()

	var commands []string
	for i := 0; i < 40; i++ {
		commands = append(commands, "`!cmd` - "+strings.Repeat("あ", 50))
	}

	embed := commandSummaryEmbed(commands)

	// Last field is the usage instructions; everything before it is the
	// chunked command list.
	listFields := embed.Fields[:len(embed.Fields)-1]
	if len(listFields) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(listFields))
	}
	for i, f := range listFields {
		if n := len([]rune(f.Value)); n > embedFieldLimit {
			t.Errorf("chunk %d is %d runes, limit %d", i, n, embedFieldLimit)
		}
		if !strings.Contains(f.Name, "その") {
			t.Errorf("chunk %d not numbered: %q", i, f.Name)
		}
	}
}

func TestSanitizeBaseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Echo Bot", "Echo_Bot"},
		{"a/b\\c", "a_b_c"},
		{"tabs\tand\nnewlines", "tabs_and_newlines"},
		{"WeatherBot", "WeatherBot"},
	}
	for _, tt := range tests {
		if got := sanitizeBaseName(tt.in); got != tt.want {
			t.Errorf("sanitizeBaseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func assertNoScratchResidue(t *testing.T, scratch string) {
	t.Helper()
	entries, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatalf("read scratch dir: %v", err)
	}
	if len(entries) != 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("scratch residue left behind: %v", names)
	}
}
