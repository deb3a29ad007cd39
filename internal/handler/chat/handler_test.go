package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/andrasd/parlor/internal/model/chat"
	"github.com/andrasd/parlor/internal/model/persona"
	"github.com/andrasd/parlor/internal/service/ai"
	chatservice "github.com/andrasd/parlor/internal/service/chat"
	"github.com/andrasd/parlor/internal/storage"
)

type providerFunc func(ctx context.Context, req ai.Request) (string, error)

func (f providerFunc) Complete(ctx context.Context, req ai.Request) (string, error) {
	return f(ctx, req)
}

func setupRouter(t *testing.T) (*chi.Mux, *chatservice.Service) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), ai.BasePrompt)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	engine := chatservice.NewService(
		persona.NewMemoryStore(persona.Seed()),
		providerFunc(func(context.Context, ai.Request) (string, error) {
			return "a reply", nil
		}),
		store,
		chatmodel.GenerationParams{Model: "gpt-4o-mini", MaxOutputTokens: 150, Personality: persona.DefaultKey},
	)

	r := chi.NewRouter()
	New(engine).RegisterRoutes(r)
	return r, engine
}

func TestSendReturnsAssistantTurn(t *testing.T) {
	r, _ := setupRouter(t)
	payload, _ := json.Marshal(map[string]string{"content": "hi"})

	req := httptest.NewRequest(http.MethodPost, "/chat/send", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var turn chatmodel.Turn
	if err := json.Unmarshal(resp.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decode turn: %v", err)
	}
	if turn.Role != chatmodel.RoleAssistant || turn.Content != "a reply" {
		t.Fatalf("unexpected turn: %+v", turn)
	}
}

func TestContinueWithoutConversation(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/continue", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestEditWithoutSession(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/edit", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestTranscriptMergesContinuation(t *testing.T) {
	r, engine := setupRouter(t)
	engine.NewSession("", "", true)
	if _, err := engine.Send(context.Background(), "tell me more"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := engine.Continue(context.Background()); err != nil {
		t.Fatalf("continue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/chat/transcript", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var entries []map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 merged entries, got %d", len(entries))
	}
	if entries[1]["content"] != "a reply a reply" {
		t.Fatalf("expected merged assistant content, got %q", entries[1]["content"])
	}
}
