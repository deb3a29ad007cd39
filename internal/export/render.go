package export

import (
	"fmt"
	"strings"

	"github.com/andrasd/parlor/internal/reflow"
)

// RenderText renders normalized entries as plain reflowed text. User entries
// are followed by a dash separator sized to the entry's widest realized
// line, assistant entries by a blank line; system entries are suppressed.
func RenderText(entries []Entry, width int) string {
	var b strings.Builder
	for _, e := range entries {
		if e.Kind == KindSystem {
			continue
		}
		wrapped, max := reflow.Wrap(e.Content, width)
		b.WriteString(wrapped)
		b.WriteString("\n")
		if e.Kind == KindUser {
			b.WriteString(strings.Repeat("-", max))
			b.WriteString("\n")
		} else {
			b.WriteString("\n")
		}
	}
	return finalize(b.String())
}

// RenderMarkdown renders normalized entries as Markdown: a bolded
// query/response label per entry, internal newlines turned into hard breaks.
// System entries are skipped.
func RenderMarkdown(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		if e.Kind == KindSystem {
			continue
		}
		role := "response"
		if e.Kind == KindUser {
			role = "query"
		}
		lines := strings.Join(strings.Split(e.Content, "\n"), "  \n")
		fmt.Fprintf(&b, "**%s:** %s\n\n", role, lines)
	}
	return finalize(b.String())
}

func finalize(out string) string {
	return strings.TrimRight(out, " \t\n") + "\n"
}
