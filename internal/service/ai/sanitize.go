package ai

import (
	"regexp"
	"strings"
)

// Replies are requested unformatted, but models slip Markdown in anyway.
var (
	newlineRunRe  = regexp.MustCompile(`\n+`)
	strongRe      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	emphasisRe    = regexp.MustCompile(`\*(.*?)\*`)
	strongLowRe   = regexp.MustCompile(`__(.*?)__`)
	emphasisLowRe = regexp.MustCompile(`_(.*?)_`)
	inlineCodeRe  = regexp.MustCompile("`(.*?)`")
)

// SanitizeReply collapses blank-line runs and strips the common Markdown
// emphasis and inline-code wrappers from a provider reply before it is
// stored as a turn.
func SanitizeReply(reply string) string {
	out := newlineRunRe.ReplaceAllString(reply, "\n")
	out = strongRe.ReplaceAllString(out, "$1")
	out = emphasisRe.ReplaceAllString(out, "$1")
	out = strongLowRe.ReplaceAllString(out, "$1")
	out = emphasisLowRe.ReplaceAllString(out, "$1")
	out = inlineCodeRe.ReplaceAllString(out, "$1")
	return strings.TrimSpace(out)
}
