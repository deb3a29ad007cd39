package chat

import (
	"time"

	"github.com/pkg/errors"
)

// ContinueSentinel is the legacy control phrase a user turn carries when the
// previous reply should be extended. Persisted records from older clients
// still contain it, so the normalization layer keeps recognizing it.
const ContinueSentinel = "continue"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole maps a stored role string onto the closed Role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant, RoleSystem:
		return Role(s), nil
	}
	return "", errors.Wrapf(ErrInvalidRole, "%q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Turn is one recorded utterance in a conversation. Personality is only set
// on assistant turns and only drives export labeling, never behavior.
type Turn struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Personality string    `json:"personality,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
