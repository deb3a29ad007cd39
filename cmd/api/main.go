package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/andrasd/parlor/internal/config"
	"github.com/andrasd/parlor/internal/handler"
	"github.com/andrasd/parlor/internal/handler/transcript"
	"github.com/andrasd/parlor/internal/model/chat"
	"github.com/andrasd/parlor/internal/model/persona"
	"github.com/andrasd/parlor/internal/service/ai"
	chatservice "github.com/andrasd/parlor/internal/service/chat"
	"github.com/andrasd/parlor/internal/storage"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file, using system environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	personalities, defaultKey := persona.LoadFile(cfg.Engine.PersonalitiesFile)
	personas := persona.NewMemoryStore(personalities)

	store, err := storage.NewFileStore(cfg.Engine.SessionsDir, ai.BasePrompt)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open sessions directory")
	}

	var provider chatservice.Provider
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Warn().Err(err).Msg("completion provider unavailable, sends will record the failure placeholder")
		} else {
			provider = aiService
			log.Info().Str("model", cfg.AI.Model).Msg("completion provider ready")
		}
	} else {
		log.Warn().Msg("ark credentials not configured, running without a completion provider")
	}

	engine := chatservice.NewService(personas, provider, store, chat.GenerationParams{
		Model:           cfg.Engine.DefaultModel,
		MaxOutputTokens: cfg.Engine.MaxOutputTokens,
		Personality:     defaultKey,
	})

	hub := transcript.NewHub()
	engine.AddObserver(hub.Notify)

	router := handler.NewRouter(personas, engine, hub)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("parlor api listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
