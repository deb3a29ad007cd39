package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrasd/parlor/internal/model/chat"
	"github.com/andrasd/parlor/internal/model/persona"
)

func TestBuildSystemPromptOrder(t *testing.T) {
	p := persona.Personality{Key: "pirate", Prompt: "Answer like a pirate."}
	got := BuildSystemPrompt(p, "Keep it short.")

	assert.True(t, strings.HasPrefix(got, BasePrompt))
	base := strings.Index(got, BasePrompt)
	personaIdx := strings.Index(got, "Answer like a pirate.")
	addendumIdx := strings.Index(got, "Keep it short.")
	assert.True(t, base < personaIdx && personaIdx < addendumIdx)
}

func TestBuildSystemPromptEmptyAddendum(t *testing.T) {
	p := persona.Personality{Key: "neutral", Prompt: "Act normally."}
	got := BuildSystemPrompt(p, "")
	assert.Equal(t, BasePrompt+" Act normally.", got)
}

func TestHistoryMessagesKeepsEveryTurn(t *testing.T) {
	turns := []chat.Turn{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleAssistant, Content: "hello"},
		{Role: chat.RoleUser, Content: chat.ContinueSentinel},
		{Role: chat.RoleSystem, Content: "placeholder"},
	}

	messages := historyMessages(turns)
	require.Len(t, messages, 4)
	assert.Equal(t, "hi", messages[0].Content)
	assert.Equal(t, chat.ContinueSentinel, messages[2].Content)
}

func TestHistoryMessagesEmpty(t *testing.T) {
	assert.Nil(t, historyMessages(nil))
}
