package chat

import "github.com/pkg/errors"

var (
	// ErrNothingToContinue means a continue command arrived on an empty
	// conversation. It is rejected before any provider call is made.
	ErrNothingToContinue = errors.New("no messages to continue")
	// ErrNotContinuable means the last turn's role cannot be extended.
	ErrNotContinuable = errors.New("you cannot continue from this message")
	// ErrNoActiveSession means a session-scoped command arrived while no
	// session is current.
	ErrNoActiveSession = errors.New("no active session")
)
