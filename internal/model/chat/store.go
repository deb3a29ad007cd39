package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNoMatch = errors.New("no matching turn")

// Store holds the ordered turn sequence of a session. Insertion order is
// conversation order: it is replayed verbatim as the prompt history. The
// store is not safe for concurrent use; the engine serializes access.
type Store struct {
	turns []Turn
}

// NewStore returns an empty turn store.
func NewStore() *Store {
	return &Store{turns: make([]Turn, 0, 16)}
}

// Append adds a turn to the end of the sequence and returns its id. It fails
// only when the role is not one of the known roles.
func (s *Store) Append(role Role, content, personality string) (string, error) {
	if !role.Valid() {
		return "", errors.Wrapf(ErrInvalidRole, "%q", role)
	}
	t := Turn{
		ID:          uuid.NewString(),
		Role:        role,
		Content:     content,
		Personality: personality,
		CreatedAt:   time.Now().UTC(),
	}
	s.turns = append(s.turns, t)
	return t.ID, nil
}

// RemoveLastMatching scans from the end backward, discarding turns until one
// satisfies pred. The matching turn is removed as well and returned. When the
// store is empty or exhausts without a match, every scanned turn is gone and
// ErrNoMatch is returned.
func (s *Store) RemoveLastMatching(pred func(Turn) bool) (Turn, error) {
	for len(s.turns) > 0 {
		last := s.turns[len(s.turns)-1]
		s.turns = s.turns[:len(s.turns)-1]
		if pred(last) {
			return last, nil
		}
	}
	return Turn{}, ErrNoMatch
}

// Replay returns a stable-order copy of the turn sequence.
func (s *Store) Replay() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of stored turns.
func (s *Store) Len() int {
	return len(s.turns)
}

// Last returns the most recent turn, if any.
func (s *Store) Last() (Turn, bool) {
	if len(s.turns) == 0 {
		return Turn{}, false
	}
	return s.turns[len(s.turns)-1], true
}
