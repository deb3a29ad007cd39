package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/andrasd/parlor/internal/handler/chat"
	personahandler "github.com/andrasd/parlor/internal/handler/persona"
	sessionhandler "github.com/andrasd/parlor/internal/handler/session"
	"github.com/andrasd/parlor/internal/handler/stream"
	"github.com/andrasd/parlor/internal/handler/transcript"
	middlewarePkg "github.com/andrasd/parlor/internal/middleware"
	personaModel "github.com/andrasd/parlor/internal/model/persona"
	chatservice "github.com/andrasd/parlor/internal/service/chat"
)

// NewRouter wires HTTP routes to the engine. hub may be nil to disable the
// live transcript feed.
func NewRouter(personas personaModel.Store, engine *chatservice.Service, hub *transcript.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := personahandler.New(personas)
	sessionHandler := sessionhandler.New(engine)
	chatHandler := chathandler.New(engine)
	streamHandler := stream.New(engine)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		sessionHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
	})

	if hub != nil {
		transcript.NewHandler(hub, engine).RegisterRoutes(r)
	}

	return r
}
