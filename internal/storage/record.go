// Package storage persists session state as one JSON document per session
// id. The document layout is the original client's on-disk format: loaders
// tolerate unknown keys and fill absent ones from engine defaults, so old
// records keep loading and new fields never break old readers.
package storage

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/andrasd/parlor/internal/model/chat"
)

// Record is the persisted session document. The key names are load-bearing
// legacy: records written by earlier clients use exactly these.
type Record struct {
	Model        string         `json:"model"`
	MaxTokens    int            `json:"max_tokens"`
	System       string         `json:"system"`
	Personality  string         `json:"personality"`
	AddSystemMsg string         `json:"add_sys_msg"`
	History      []HistoryEntry `json:"history"`
}

// HistoryEntry is one raw turn in the record, continuation sentinels
// included.
type HistoryEntry struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	Personality string `json:"personality,omitempty"`
}

// NewRecord snapshots a session into its persisted document form.
// baseSystem is the engine's fixed instruction text, stored informationally.
func NewRecord(s *chat.Session, baseSystem string) Record {
	turns := s.Turns.Replay()
	history := make([]HistoryEntry, 0, len(turns))
	for _, t := range turns {
		history = append(history, HistoryEntry{
			Role:        string(t.Role),
			Content:     t.Content,
			Personality: t.Personality,
		})
	}
	return Record{
		Model:        s.Params.Model,
		MaxTokens:    s.Params.MaxOutputTokens,
		System:       baseSystem,
		Personality:  s.Params.Personality,
		AddSystemMsg: s.Params.SystemPromptAddendum,
		History:      history,
	}
}

// Encode marshals the record document.
func (r Record) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "encode session record")
	}
	return data, nil
}

// Session rebuilds an in-memory session from the record, filling absent
// fields from defaults. Unknown roles coalesce into the system category so a
// record written by a newer client still loads. The record stores neither
// turn ids nor timestamps; hydrated turns receive fresh ones.
func (r Record) Session(id string, defaults chat.GenerationParams) *chat.Session {
	params := defaults
	if r.Model != "" {
		params.Model = r.Model
	}
	if r.MaxTokens > 0 {
		params.MaxOutputTokens = r.MaxTokens
	}
	if r.Personality != "" {
		params.Personality = r.Personality
	}
	params.SystemPromptAddendum = r.AddSystemMsg

	turns := chat.NewStore()
	for _, entry := range r.History {
		role, err := chat.ParseRole(entry.Role)
		if err != nil {
			role = chat.RoleSystem
		}
		_, _ = turns.Append(role, entry.Content, entry.Personality)
	}

	return &chat.Session{
		ID:     id,
		Params: params,
		Turns:  turns,
	}
}
