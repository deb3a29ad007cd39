package export

import (
	"strings"

	"github.com/andrasd/parlor/internal/model/chat"
)

// EntryKind is the coalesced speaker category of a normalized entry.
type EntryKind string

const (
	KindUser      EntryKind = "user"
	KindAssistant EntryKind = "assistant"
	KindSystem    EntryKind = "system"
)

// Entry is one normalized transcript entry: continuations merged into their
// predecessor, system-category roles coalesced, assistant entries labeled
// with their recorded personality.
type Entry struct {
	Kind    EntryKind `json:"kind"`
	Label   string    `json:"label"`
	Content string    `json:"content"`
}

// closingPunctuation suppresses the inserted space when a continuation
// starts mid-sentence.
const closingPunctuation = ".,!?:;"

// JoinContinuation appends a continuation fragment to prior content,
// inserting a single space unless the fragment opens with closing
// punctuation.
func JoinContinuation(prev, next string) string {
	if next == "" {
		return prev
	}
	if strings.IndexByte(closingPunctuation, next[0]) >= 0 {
		return prev + next
	}
	return prev + " " + next
}

// Normalize projects raw turns into display/export entries. A user turn
// whose content is the continuation sentinel (or empty) emits nothing and
// marks the next turn as a merge target; its content is then joined onto the
// previously emitted entry. The raw store is never mutated by this pass.
func Normalize(turns []chat.Turn) []Entry {
	entries := make([]Entry, 0, len(turns))
	pendingMerge := false
	for _, t := range turns {
		if pendingMerge {
			pendingMerge = false
			if len(entries) > 0 {
				last := &entries[len(entries)-1]
				last.Content = JoinContinuation(last.Content, t.Content)
				continue
			}
			// Nothing to merge into: fall through and emit normally.
		}

		switch t.Role {
		case chat.RoleUser:
			if t.Content == chat.ContinueSentinel || t.Content == "" {
				pendingMerge = true
				continue
			}
			entries = append(entries, Entry{Kind: KindUser, Label: string(KindUser), Content: t.Content})
		case chat.RoleSystem:
			entries = append(entries, Entry{Kind: KindSystem, Label: string(KindSystem), Content: t.Content})
		default:
			label := t.Personality
			if label == "" {
				label = string(KindAssistant)
			}
			entries = append(entries, Entry{Kind: KindAssistant, Label: label, Content: t.Content})
		}
	}
	return entries
}
