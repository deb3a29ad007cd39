// Package reflow implements greedy word-wrapping that preserves per-line
// leading indentation. It is pure text plumbing: it knows nothing about
// turns, roles or sessions.
package reflow

import "strings"

const (
	// DefaultWidth is used when the caller supplies no width.
	DefaultWidth = 60
	// MinWidth and MaxWidth bound caller-supplied widths.
	MinWidth = 40
	MaxWidth = 100
)

// ClampWidth normalizes a caller-supplied width into the allowed range.
// Non-positive widths select the default.
func ClampWidth(width int) int {
	switch {
	case width <= 0:
		return DefaultWidth
	case width < MinWidth:
		return MinWidth
	case width > MaxWidth:
		return MaxWidth
	}
	return width
}

// Wrap reflows text to at most width characters per line, operating
// independently on each newline-delimited source line. It returns the
// wrapped block and the maximum realized line length, which callers use to
// size separators to content. A single word longer than width is emitted
// alone on its own line, never split.
func Wrap(text string, width int) (string, int) {
	var out []string
	max := 0
	for _, line := range strings.Split(text, "\n") {
		wrapped, lineMax := wrapLine(line, width)
		out = append(out, wrapped...)
		if lineMax > max {
			max = lineMax
		}
	}
	return strings.Join(out, "\n"), max
}

func wrapLine(line string, width int) ([]string, int) {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	words := strings.Fields(line)

	current := indent
	max := 0
	var lines []string
	for _, word := range words {
		switch {
		case current == indent:
			current = indent + word
		case len(current)+len(word)+1 > width:
			if len(current) > max {
				max = len(current)
			}
			lines = append(lines, current)
			current = indent + word
		default:
			current += " " + word
		}
	}
	if len(current) > max {
		max = len(current)
	}
	return append(lines, current), max
}
