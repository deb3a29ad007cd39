package transcript

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/andrasd/parlor/internal/export"
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

func setupServer(t *testing.T) (*httptest.Server, *Hub, *chatservice.Service) {
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

	hub := NewHub()
	engine.AddObserver(hub.Notify)

	r := chi.NewRouter()
	NewHandler(hub, engine).RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, hub, engine
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/transcript"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestClientGetsSeedFrameOnConnect(t *testing.T) {
	server, _, engine := setupServer(t)
	engine.NewSession("seeded", "", true)
	if _, err := engine.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	conn := dial(t, server)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var frame Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read seed frame: %v", err)
	}
	if frame.Type != "transcript" {
		t.Fatalf("expected transcript frame, got %s", frame.Type)
	}
	if len(frame.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(frame.Entries))
	}
}

func TestMutationPushesFrame(t *testing.T) {
	server, _, engine := setupServer(t)
	engine.NewSession("", "", true)

	conn := dial(t, server)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var seed Frame
	if err := conn.ReadJSON(&seed); err != nil {
		t.Fatalf("read seed frame: %v", err)
	}
	if len(seed.Entries) != 0 {
		t.Fatalf("expected empty seed, got %d entries", len(seed.Entries))
	}

	if _, err := engine.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	var frame Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read push frame: %v", err)
	}
	if len(frame.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(frame.Entries))
	}
	if frame.Entries[1].Kind != export.KindAssistant {
		t.Fatalf("expected assistant entry, got %s", frame.Entries[1].Kind)
	}
}

func TestHubDropsClosedConnections(t *testing.T) {
	server, hub, engine := setupServer(t)
	engine.NewSession("", "", true)

	conn := dial(t, server)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var seed Frame
	if err := conn.ReadJSON(&seed); err != nil {
		t.Fatalf("read seed frame: %v", err)
	}
	if hub.Len() != 1 {
		t.Fatalf("expected 1 connection, got %d", hub.Len())
	}

	conn.Close()

	// The first push after the close fails the write and evicts the peer.
	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() != 0 && time.Now().Before(deadline) {
		hub.Notify("", nil)
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Len() != 0 {
		t.Fatalf("expected closed connection to be dropped")
	}
}
