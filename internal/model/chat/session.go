package chat

import (
	"regexp"
	"strings"
	"time"
)

// GenerationParams carries the provider knobs persisted with every session.
type GenerationParams struct {
	Model                string `json:"model"`
	MaxOutputTokens      int    `json:"maxOutputTokens"`
	Personality          string `json:"personality"`
	SystemPromptAddendum string `json:"systemPromptAddendum,omitempty"`
}

// Session is one named conversation: its turn store plus generation
// parameters. Temporary sessions are never written to disk.
type Session struct {
	ID        string           `json:"id"`
	Temporary bool             `json:"temporary,omitempty"`
	Params    GenerationParams `json:"params"`
	Turns     *Store           `json:"-"`
	CreatedAt time.Time        `json:"createdAt"`
}

const idTimeLayout = "20060102150405"

// NewSession creates an empty session. The id is the creation timestamp,
// prefixed with a slugified label when one is given.
func NewSession(label string, temporary bool, params GenerationParams, now time.Time) *Session {
	id := now.Format(idTimeLayout)
	if slug := slugLabel(label); slug != "" {
		id = slug + "_" + id
	}
	return &Session{
		ID:        id,
		Temporary: temporary,
		Params:    params,
		Turns:     NewStore(),
		CreatedAt: now,
	}
}

var timestampSuffixRe = regexp.MustCompile(`\d{14}$`)

// RenamedID derives the identifier a rename produces: the new label joined to
// the original creation-timestamp suffix. Identifiers without a recognizable
// timestamp keep their whole id as the suffix.
func RenamedID(id, newLabel string) string {
	suffix := id
	if m := timestampSuffixRe.FindString(id); m != "" {
		suffix = m
	}
	return slugLabel(newLabel) + "_" + suffix
}

// slugLabel normalizes a user-supplied label into an identifier fragment.
// Path separators and leading dots never survive into an id; the label must
// not be able to steer the slot path.
func slugLabel(label string) string {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
	slug = strings.ReplaceAll(slug, "/", "_")
	slug = strings.ReplaceAll(slug, "\\", "_")
	return strings.TrimLeft(slug, ".")
}
