// Package genbot turns raw generative-model output into a deliverable bot
// artifact: parsing fenced blocks, extracting a command summary, calling the
// Gemini API and packaging the result as a zip.
package genbot

import (
	"regexp"
	"strings"
)

// Fallbacks used when the model response omits the optional blocks.
const (
	DefaultRequirements = "py-cord\npython-dotenv"
	DefaultEnvExample   = "DISCORD_TOKEN=YOUR_BOT_TOKEN_HERE"
)

// Artifact is the parsed result of one generation request. SourceCode being
// empty means the response contained no usable code block; callers must
// treat that as a hard failure and skip packaging.
type Artifact struct {
	SourceCode   string
	Requirements string
	EnvExample   string
	Commands     []string
}

// Fenced block extraction is a best-effort heuristic over unstructured model
// output, not a markdown grammar: the first opening fence per tag wins and
// the first closing fence terminates it, even if the block interior itself
// contains backticks.
var (
	pythonBlockRe = regexp.MustCompile("(?s)```python\\n(.*?)```")
	textBlockRe   = regexp.MustCompile("(?s)```text\\n(.*?)```")
	envBlockRe    = regexp.MustCompile("(?s)```env\\n(.*?)```")
)

// ParseResponse extracts the three artifact blocks from a raw model
// response and derives the command summary from the source block.
func ParseResponse(raw string, prefix string) Artifact {
	art := Artifact{
		SourceCode:   extractBlock(pythonBlockRe, raw, ""),
		Requirements: extractBlock(textBlockRe, raw, DefaultRequirements),
		EnvExample:   extractBlock(envBlockRe, raw, DefaultEnvExample),
	}
	art.Commands = ExtractCommands(art.SourceCode, prefix)
	return art
}

func extractBlock(re *regexp.Regexp, raw, fallback string) string {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return fallback
	}
	return strings.TrimSpace(m[1])
}
