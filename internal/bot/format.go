package bot

import (
	"regexp"
	"strings"
)

// The generator is asked for sections named Прошлое/Настоящее/Будущее/Общее
// толкование but is inconsistent about markup: sometimes "### Прошлое:",
// sometimes "**Прошлое**:", sometimes a bare "Прошлое:". The pass below
// normalizes all three to HTML bold; unmatched text is left unchanged.

var headerRe = regexp.MustCompile(`(?m)^\s*(?:#{1,6}\s*)?(?:\*\*)?(Прошлое|Настоящее|Будущее|Общее толкование)(?:\*\*)?\s*:`)

var boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)

// FormatInterpretation converts generator output to the HTML the chat
// platform renders: recognized section headers become bold, stray markdown
// bold is converted, leftover heading markers are dropped.
func FormatInterpretation(text string) string {
	out := headerRe.ReplaceAllString(text, "<b>$1</b>:")
	out = boldRe.ReplaceAllString(out, "<b>$1</b>")
	out = strings.ReplaceAll(out, "###", "")
	return strings.TrimSpace(out)
}
