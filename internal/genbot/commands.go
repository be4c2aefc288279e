package genbot

import (
	"fmt"
	"regexp"
	"strings"
)

// builtinHelpDescription describes the help command py-cord ships with;
// it is appended to every extracted command list.
const builtinHelpDescription = "組み込みのヘルプコマンド"

// Command declaration shapes recognized in generated py-cord source. Pass
// one matches decorators that bind an explicit name parameter; pass two
// matches bare decorators where the function name becomes the command name.
// Both require the function body to open with a docstring, which becomes
// the description.
var (
	namedCommandRe = regexp.MustCompile(`(?s)@bot\.command\([^)]*name\s*=\s*["']([^"']+)["'][^)]*\)\s*\n\s*async def [^(]+\([^)]*\):\s*\n\s*"""(.*?)"""`)
	bareCommandRe  = regexp.MustCompile(`(?s)@bot\.command\(([^)]*)\)\s*\n\s*async def ([^(]+)\([^)]*\):\s*\n\s*"""(.*?)"""`)
	nameBindingRe  = regexp.MustCompile(`name\s*=`)
)

// ExtractCommands scans generated source text for command declarations and
// renders one human-readable entry per match, named-parameter declarations
// first, then bare ones, then the platform's built-in help entry.
//
// This is textual pattern matching, not parsing: no attempt is made to
// verify the commands are unique or reachable.
func ExtractCommands(source, prefix string) []string {
	var out []string

	for _, m := range namedCommandRe.FindAllStringSubmatch(source, -1) {
		out = append(out, formatCommand(prefix, m[1], m[2]))
	}
	for _, m := range bareCommandRe.FindAllStringSubmatch(source, -1) {
		if nameBindingRe.MatchString(m[1]) {
			// Explicitly named declarations belong to the first pass.
			continue
		}
		out = append(out, formatCommand(prefix, m[2], m[3]))
	}

	out = append(out, formatCommand(prefix, "help", builtinHelpDescription))
	return out
}

func formatCommand(prefix, name, description string) string {
	return fmt.Sprintf("`%s%s` - %s", prefix, name, strings.TrimSpace(description))
}
