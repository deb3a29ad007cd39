// Package chat is the conversation session engine: it owns the single
// current session, interprets the send/continue/edit commands, projects the
// normalized transcript and drives persistence. Commands run one at a time;
// the provider call inside a command is blocking, with at most one in
// flight.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/andrasd/parlor/internal/export"
	chatmodel "github.com/andrasd/parlor/internal/model/chat"
	"github.com/andrasd/parlor/internal/model/persona"
	"github.com/andrasd/parlor/internal/reflow"
	"github.com/andrasd/parlor/internal/service/ai"
	"github.com/andrasd/parlor/internal/storage"
)

// providerFailureNotice is stored as a system-category turn when the
// provider call fails; the conversation continues and nothing is retried.
const providerFailureNotice = "Sorry, I couldn't process your request."

// Provider is the completion collaborator. Implemented by ai.Service.
type Provider interface {
	Complete(ctx context.Context, req ai.Request) (string, error)
}

// Observer receives the normalized transcript after every mutation.
type Observer func(sessionID string, entries []export.Entry)

// Service is the conversation session engine.
type Service struct {
	mu        sync.Mutex
	personas  persona.Store
	provider  Provider
	store     *storage.FileStore
	defaults  chatmodel.GenerationParams
	current   *chatmodel.Session
	observers []Observer
}

// NewService wires the engine. provider may be nil (no credentials
// configured); sends then record the failure placeholder instead of a
// reply.
func NewService(personas persona.Store, provider Provider, store *storage.FileStore, defaults chatmodel.GenerationParams) *Service {
	return &Service{
		personas: personas,
		provider: provider,
		store:    store,
		defaults: defaults,
	}
}

// AddObserver registers a transcript observer. Observers are invoked
// synchronously after each mutation and must not block.
func (s *Service) AddObserver(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// NewSession starts a fresh session and makes it current. personalityKey
// may be empty (default personality) or persona.RandomKey.
func (s *Service) NewSession(label, personalityKey string, temporary bool) *chatmodel.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newSessionLocked(label, personalityKey, temporary)
}

func (s *Service) newSessionLocked(label, personalityKey string, temporary bool) *chatmodel.Session {
	p := persona.Pick(s.personas, personalityKey)
	params := s.defaults
	params.Personality = p.Key

	s.current = chatmodel.NewSession(label, temporary, params, time.Now().UTC())
	log.Info().Str("session", s.current.ID).Str("personality", p.Key).
		Bool("temporary", temporary).Msg("session started")
	return s.current
}

// Current returns the current session, if any.
func (s *Service) Current() (*chatmodel.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != nil
}

// SetParams replaces the current session's generation parameters. The
// personality key is resolved against the table so it always points at a
// valid entry when consumed.
func (s *Service) SetParams(params chatmodel.GenerationParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNoActiveSession
	}

	params.Personality = persona.Resolve(s.personas, params.Personality).Key
	if params.Model == "" {
		params.Model = s.defaults.Model
	}
	if params.MaxOutputTokens <= 0 {
		params.MaxOutputTokens = s.defaults.MaxOutputTokens
	}
	s.current.Params = params
	s.autosaveLocked()
	return nil
}

// Send records the user's utterance and the provider's reply as new turns.
// Empty input and the bare continue phrase are redirected to Continue, the
// way the original client treats them.
func (s *Service) Send(ctx context.Context, content string) (chatmodel.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content = strings.TrimSpace(content)
	if content == "" || content == chatmodel.ContinueSentinel {
		return s.continueLocked(ctx)
	}

	if s.current == nil {
		s.newSessionLocked("", "", false)
	}

	if _, err := s.current.Turns.Append(chatmodel.RoleUser, content, ""); err != nil {
		return chatmodel.Turn{}, err
	}

	turn := s.completeLocked(ctx, content, s.current.Turns.Len()-1)
	s.autosaveLocked()
	s.notifyLocked()
	return turn, nil
}

// Continue extends the most recent eligible turn instead of starting a new
// exchange.
func (s *Service) Continue(ctx context.Context) (chatmodel.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.continueLocked(ctx)
}

func (s *Service) continueLocked(ctx context.Context) (chatmodel.Turn, error) {
	if s.current == nil || s.current.Turns.Len() == 0 {
		return chatmodel.Turn{}, ErrNothingToContinue
	}

	last, _ := s.current.Turns.Last()
	historyEnd := s.current.Turns.Len()
	switch last.Role {
	case chatmodel.RoleAssistant:
		// The sentinel is stored so the persisted record replays exactly,
		// and the normalization pass later merges the reply into the prior
		// assistant content. It is not part of the prompt history; the
		// query slot carries it.
		if _, err := s.current.Turns.Append(chatmodel.RoleUser, chatmodel.ContinueSentinel, ""); err != nil {
			return chatmodel.Turn{}, err
		}
	case chatmodel.RoleUser:
		// The trailing user input stands as its own prompt; the reply
		// becomes an ordinary new assistant turn and nothing merges.
	default:
		return chatmodel.Turn{}, ErrNotContinuable
	}

	turn := s.completeLocked(ctx, chatmodel.ContinueSentinel, historyEnd)
	s.autosaveLocked()
	s.notifyLocked()
	return turn, nil
}

// completeLocked performs the blocking provider round-trip and appends the
// outcome: the sanitized assistant reply, or the failure placeholder as a
// system turn. historyEnd bounds the turns replayed as prompt history; the
// query itself is carried separately.
func (s *Service) completeLocked(ctx context.Context, query string, historyEnd int) chatmodel.Turn {
	reply, err := s.complete(ctx, query, historyEnd)
	if err != nil {
		log.Warn().Err(err).Str("session", s.current.ID).Msg("completion failed, recording placeholder")
		return s.appendLocked(chatmodel.RoleSystem, providerFailureNotice, "")
	}
	return s.appendLocked(chatmodel.RoleAssistant, ai.SanitizeReply(reply), s.current.Params.Personality)
}

func (s *Service) complete(ctx context.Context, query string, historyEnd int) (string, error) {
	if s.provider == nil {
		return "", errors.Wrap(ai.ErrProviderFailure, "no provider configured")
	}

	p := persona.Resolve(s.personas, s.current.Params.Personality)
	history := s.current.Turns.Replay()
	if historyEnd < len(history) {
		history = history[:historyEnd]
	}

	return s.provider.Complete(ctx, ai.Request{
		SystemPrompt:    ai.BuildSystemPrompt(p, s.current.Params.SystemPromptAddendum),
		History:         history,
		Query:           query,
		Model:           s.current.Params.Model,
		MaxOutputTokens: s.current.Params.MaxOutputTokens,
	})
}

func (s *Service) appendLocked(role chatmodel.Role, content, personality string) chatmodel.Turn {
	_, _ = s.current.Turns.Append(role, content, personality)
	turn, _ := s.current.Turns.Last()
	return turn
}

// EditLast pops turns back to and including the most recent user turn and
// returns its content, so the caller can put it back into the input box.
func (s *Service) EditLast() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return "", ErrNoActiveSession
	}

	turn, err := s.current.Turns.RemoveLastMatching(func(t chatmodel.Turn) bool {
		return t.Role == chatmodel.RoleUser
	})
	if err != nil {
		return "", err
	}

	s.autosaveLocked()
	s.notifyLocked()
	return turn.Content, nil
}

// Load hydrates a persisted session and makes it current.
func (s *Service) Load(id string) (*chatmodel.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.store.Load(id, s.defaults)
	if err != nil {
		return nil, err
	}

	s.current = loaded
	s.notifyLocked()
	log.Info().Str("session", id).Int("turns", loaded.Turns.Len()).Msg("session loaded")
	return loaded, nil
}

// Save writes the current session to its slot. Temporary sessions succeed
// without touching disk.
func (s *Service) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoActiveSession
	}
	return s.store.Save(s.current)
}

// Rename derives a new identifier from newLabel and moves (or copies) the
// backing slot. On failure the in-memory session keeps its old id and stays
// fully usable.
func (s *Service) Rename(newLabel string, keepOriginal bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return "", ErrNoActiveSession
	}

	newID, err := s.store.Rename(s.current.ID, newLabel, keepOriginal)
	if err != nil {
		return "", err
	}

	s.current.ID = newID
	log.Info().Str("session", newID).Msg("session renamed")
	return newID, nil
}

// Delete removes the current session's slot. The in-memory state is cleared
// only when clearMemory is set; the two steps are independent. A temporary
// session may never have been saved, so a missing slot is not a failure for
// one, mirroring the no-op Save.
func (s *Service) Delete(clearMemory bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoActiveSession
	}

	if err := s.store.Delete(s.current.ID); err != nil {
		if !s.current.Temporary || !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}

	if clearMemory {
		s.current = nil
	}
	s.notifyLocked()
	return nil
}

// ListSessions enumerates the persisted session identifiers.
func (s *Service) ListSessions() ([]string, error) {
	return s.store.List()
}

// Transcript returns the normalized projection of the current conversation:
// continuations merged, system roles coalesced, personality labels applied.
func (s *Service) Transcript() []export.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcriptLocked()
}

func (s *Service) transcriptLocked() []export.Entry {
	if s.current == nil {
		return []export.Entry{}
	}
	return export.Normalize(s.current.Turns.Replay())
}

// ExportExists reports whether the export destination is already taken.
func (s *Service) ExportExists(path string) bool {
	return export.Exists(path)
}

// Export writes the current session to path. An empty format selects the
// variant from the path's extension, defaulting to plain text. An existing
// destination is refused unless the caller passes the user's explicit
// overwrite confirmation.
func (s *Service) Export(path string, format export.Format, width int, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoActiveSession
	}

	if format == "" {
		format = export.FormatForPath(path)
	}
	if export.Exists(path) && !overwrite {
		return errors.Wrapf(export.ErrDestinationExists, "%q", path)
	}

	var data []byte
	switch format {
	case export.FormatRecord:
		encoded, err := s.store.EncodeRecord(s.current)
		if err != nil {
			return err
		}
		data = encoded
	case export.FormatMarkdown:
		data = []byte(export.RenderMarkdown(s.transcriptLocked()))
	default:
		data = []byte(export.RenderText(s.transcriptLocked(), reflow.ClampWidth(width)))
	}

	if err := export.WriteFile(path, data); err != nil {
		return err
	}
	log.Info().Str("session", s.current.ID).Str("path", path).Str("format", string(format)).
		Msg("session exported")
	return nil
}

// autosaveLocked persists the current session after a mutation. Failures
// are logged, never fatal: the in-memory state stays intact and the next
// mutation retries.
func (s *Service) autosaveLocked() {
	if s.current == nil {
		return
	}
	if err := s.store.Save(s.current); err != nil {
		log.Warn().Err(err).Str("session", s.current.ID).Msg("autosave failed, will retry on next mutation")
	}
}

func (s *Service) notifyLocked() {
	if len(s.observers) == 0 {
		return
	}

	id := ""
	if s.current != nil {
		id = s.current.ID
	}
	entries := s.transcriptLocked()
	for _, fn := range s.observers {
		fn(id, entries)
	}
}
