package genbot

import (
	"strings"
	"testing"
)

const triBlockResponse = "ここにボットのコードです。\n" +
	"```python\nimport discord\n\nprint(\"hello\")\n```\n" +
	"続いて依存関係です。\n" +
	"```text\npy-cord\npython-dotenv\nrequests\n```\n" +
	"```env\nDISCORD_TOKEN=YOUR_BOT_TOKEN_HERE\nWEATHER_API_KEY=YOUR_KEY\n```\n"

func TestParseResponseExtractsAllBlocks(t *testing.T) {
	t.Parallel()

	art := ParseResponse(triBlockResponse, "!")

	if want := "import discord\n\nprint(\"hello\")"; art.SourceCode != want {
		t.Errorf("SourceCode = %q, want %q", art.SourceCode, want)
	}
	if want := "py-cord\npython-dotenv\nrequests"; art.Requirements != want {
		t.Errorf("Requirements = %q, want %q", art.Requirements, want)
	}
	if want := "DISCORD_TOKEN=YOUR_BOT_TOKEN_HERE\nWEATHER_API_KEY=YOUR_KEY"; art.EnvExample != want {
		t.Errorf("EnvExample = %q, want %q", art.EnvExample, want)
	}
}

func TestParseResponseIdempotent(t *testing.T) {
	t.Parallel()

	first := ParseResponse(triBlockResponse, "!")
	refenced := "```python\n" + first.SourceCode + "\n```"
	second := ParseResponse(refenced, "!")

	if second.SourceCode != first.SourceCode {
		t.Errorf("re-parse changed source:\nfirst:  %q\nsecond: %q", first.SourceCode, second.SourceCode)
	}
}

func TestParseResponseMissingBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		raw              string
		wantSource       string
		wantRequirements string
		wantEnv          string
	}{
		{
			name:             "no source block",
			raw:              "説明だけの応答です。```text\npy-cord\n```",
			wantSource:       "",
			wantRequirements: "py-cord",
			wantEnv:          DefaultEnvExample,
		},
		{
			name:             "missing manifest and env fall back to defaults",
			raw:              "```python\nprint(1)\n```",
			wantSource:       "print(1)",
			wantRequirements: DefaultRequirements,
			wantEnv:          DefaultEnvExample,
		},
		{
			name:             "empty input",
			raw:              "",
			wantSource:       "",
			wantRequirements: DefaultRequirements,
			wantEnv:          DefaultEnvExample,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art := ParseResponse(tt.raw, "!")
			if art.SourceCode != tt.wantSource {
				t.Errorf("SourceCode = %q, want %q", art.SourceCode, tt.wantSource)
			}
			if art.Requirements != tt.wantRequirements {
				t.Errorf("Requirements = %q, want %q", art.Requirements, tt.wantRequirements)
			}
			if art.EnvExample != tt.wantEnv {
				t.Errorf("EnvExample = %q, want %q", art.EnvExample, tt.wantEnv)
			}
		})
	}
}

func TestParseResponseFirstClosingFenceWins(t *testing.T) {
	t.Parallel()

	// The scanner is a heuristic: a closing fence inside the block body
	// terminates extraction there.
	raw := "```python\nprint(\"a\")\n```\nprint(\"b\")\n```\n"
	art := ParseResponse(raw, "!")
	if strings.Contains(art.SourceCode, "b") {
		t.Errorf("expected extraction to stop at first closing fence, got %q", art.SourceCode)
	}
}

func TestParseResponseTakesFirstBlockPerTag(t *testing.T) {
	t.Parallel()

	raw := "```python\nfirst = 1\n```\n```python\nsecond = 2\n```"
	art := ParseResponse(raw, "!")
	if art.SourceCode != "first = 1" {
		t.Errorf("SourceCode = %q, want first block only", art.SourceCode)
	}
}
