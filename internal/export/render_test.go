package export_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrasd/parlor/internal/export"
)

func TestRenderTextSeparatorSizedToContent(t *testing.T) {
	entries := []export.Entry{
		{Kind: export.KindUser, Label: "user", Content: "hello there"},
		{Kind: export.KindAssistant, Label: "neutral", Content: "hi"},
	}

	out := export.RenderText(entries, 60)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "hello there", lines[0])
	assert.Equal(t, strings.Repeat("-", len("hello there")), lines[1])
	assert.Equal(t, "hi", lines[2])
}

func TestRenderTextSuppressesSystemEntries(t *testing.T) {
	entries := []export.Entry{
		{Kind: export.KindUser, Label: "user", Content: "hi"},
		{Kind: export.KindSystem, Label: "system", Content: "Sorry, I couldn't process your request."},
		{Kind: export.KindAssistant, Label: "neutral", Content: "hello"},
	}

	out := export.RenderText(entries, 60)
	assert.NotContains(t, out, "Sorry")
	assert.Contains(t, out, "hello")
}

func TestRenderTextEndsWithSingleNewline(t *testing.T) {
	entries := []export.Entry{
		{Kind: export.KindAssistant, Label: "neutral", Content: "done"},
	}
	out := export.RenderText(entries, 60)
	assert.True(t, strings.HasSuffix(out, "done\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
}

func TestRenderTextWrapsAtWidth(t *testing.T) {
	entries := []export.Entry{
		{Kind: export.KindAssistant, Label: "neutral", Content: "one two three four five six seven eight nine ten"},
	}
	out := export.RenderText(entries, 20)
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 20, "line %q", line)
	}
}

func TestRenderMarkdownLabels(t *testing.T) {
	entries := []export.Entry{
		{Kind: export.KindUser, Label: "user", Content: "what is up?"},
		{Kind: export.KindAssistant, Label: "pirate", Content: "the sky\nand the crow's nest"},
		{Kind: export.KindSystem, Label: "system", Content: "hidden"},
	}

	out := export.RenderMarkdown(entries)
	assert.Contains(t, out, "**query:** what is up?")
	assert.Contains(t, out, "**response:** the sky  \nand the crow's nest")
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "pirate")
}

func TestFormatForPath(t *testing.T) {
	for path, want := range map[string]export.Format{
		"out.txt":      export.FormatText,
		"out.md":       export.FormatMarkdown,
		"out.json":     export.FormatRecord,
		"out":          export.FormatText,
		"out.html":     export.FormatText,
		"dir/OUT.JSON": export.FormatRecord,
		"session.Md":   export.FormatMarkdown,
	} {
		assert.Equal(t, want, export.FormatForPath(path), path)
	}
}

func TestParseFormat(t *testing.T) {
	got, err := export.ParseFormat("MD")
	require.NoError(t, err)
	assert.Equal(t, export.FormatMarkdown, got)

	_, err = export.ParseFormat("html")
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
}
