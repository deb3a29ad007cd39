package reflow_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrasd/parlor/internal/reflow"
)

func TestWrapGreedyPacking(t *testing.T) {
	// Greedy, not optimal: "ccc dddd" would fit two other ways, the greedy
	// rule must produce exactly this split.
	wrapped, max := reflow.Wrap("a bb ccc dddd", 6)
	assert.Equal(t, "a bb\nccc\ndddd", wrapped)
	assert.Equal(t, 4, max)
}

func TestWrapRespectsWidthBound(t *testing.T) {
	input := "the quick brown fox jumps over the lazy dog and keeps on running through the meadow"
	for _, width := range []int{10, 20, 40, 60} {
		wrapped, max := reflow.Wrap(input, width)
		for _, line := range strings.Split(wrapped, "\n") {
			assert.LessOrEqual(t, len(line), width, "width %d, line %q", width, line)
		}
		assert.LessOrEqual(t, max, width)
	}
}

func TestWrapIdempotentOnPrewrappedInput(t *testing.T) {
	input := "one morning, when gregor samsa woke from troubled dreams, he found himself transformed"
	once, _ := reflow.Wrap(input, 30)
	twice, _ := reflow.Wrap(once, 30)
	assert.Equal(t, once, twice)
}

func TestWrapPreservesIndentation(t *testing.T) {
	wrapped, _ := reflow.Wrap("    alpha beta gamma delta", 14)
	lines := strings.Split(wrapped, "\n")
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "    "), "line %q lost its indent", line)
	}
}

func TestWrapEmptyLineKeepsIndent(t *testing.T) {
	wrapped, max := reflow.Wrap("", 40)
	assert.Equal(t, "", wrapped)
	assert.Equal(t, 0, max)

	wrapped, max = reflow.Wrap("  ", 40)
	assert.Equal(t, "  ", wrapped)
	assert.Equal(t, 2, max)
}

func TestWrapOverlongWordEmittedAlone(t *testing.T) {
	wrapped, max := reflow.Wrap("hi supercalifragilistic yes", 10)
	assert.Equal(t, "hi\nsupercalifragilistic\nyes", wrapped)
	assert.Equal(t, len("supercalifragilistic"), max)
}

func TestWrapDoesNotCollapseBlankLines(t *testing.T) {
	wrapped, _ := reflow.Wrap("first\n\n\nsecond", 40)
	assert.Equal(t, "first\n\n\nsecond", wrapped)
}

func TestWrapTracksMaxRealizedWidth(t *testing.T) {
	wrapped, max := reflow.Wrap("aaaa bb\ncc", 60)
	assert.Equal(t, "aaaa bb\ncc", wrapped)
	assert.Equal(t, 7, max)
}

func TestClampWidth(t *testing.T) {
	assert.Equal(t, reflow.DefaultWidth, reflow.ClampWidth(0))
	assert.Equal(t, reflow.DefaultWidth, reflow.ClampWidth(-5))
	assert.Equal(t, reflow.MinWidth, reflow.ClampWidth(12))
	assert.Equal(t, reflow.MaxWidth, reflow.ClampWidth(500))
	assert.Equal(t, 72, reflow.ClampWidth(72))
}
