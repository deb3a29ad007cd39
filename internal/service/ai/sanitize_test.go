package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeReplyCollapsesBlankLines(t *testing.T) {
	assert.Equal(t, "one\ntwo", SanitizeReply("one\n\n\ntwo"))
}

func TestSanitizeReplyStripsEmphasis(t *testing.T) {
	assert.Equal(t, "bold and italic", SanitizeReply("**bold** and *italic*"))
	assert.Equal(t, "bold and italic", SanitizeReply("__bold__ and _italic_"))
	assert.Equal(t, "some code here", SanitizeReply("some `code` here"))
}

func TestSanitizeReplyTrimsWhitespace(t *testing.T) {
	assert.Equal(t, "reply", SanitizeReply("  reply \n"))
}

func TestSanitizeReplyLeavesPlainTextAlone(t *testing.T) {
	in := "a plain reply with 2 * 3 = 6 spelled out"
	assert.Equal(t, in, SanitizeReply(in))
}
