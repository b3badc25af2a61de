package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/trivia-hub/trivia-hub/internal/api/http"
	"github.com/trivia-hub/trivia-hub/internal/application/auth"
	"github.com/trivia-hub/trivia-hub/internal/application/game"
	"github.com/trivia-hub/trivia-hub/internal/application/gamesession"
	"github.com/trivia-hub/trivia-hub/internal/application/user"
	"github.com/trivia-hub/trivia-hub/internal/config"
	"github.com/trivia-hub/trivia-hub/internal/infrastructure/memory"
	"github.com/trivia-hub/trivia-hub/internal/infrastructure/postgres"
	"github.com/trivia-hub/trivia-hub/internal/infrastructure/timers"
	"github.com/trivia-hub/trivia-hub/internal/infrastructure/ws"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	userRepo := postgres.NewUserRepository(pool)
	authSessionRepo := postgres.NewAuthSessionRepository(pool)
	gameRepo := postgres.NewGameRepository(pool)
	// Game sessions are transient and live in memory only.
	sessionStore := memory.NewGameSessionStore()

	// infrastructure
	hub := ws.NewHub(logger)
	registry := timers.NewRegistry()

	// services
	userSvc := user.NewService(userRepo, logger)
	authSvc := auth.NewService(userRepo, authSessionRepo, cfg.SessionTTL, logger)
	gameSvc := game.NewService(gameRepo, logger)
	sessionSvc := gamesession.NewService(
		sessionStore,
		gameRepo,
		userRepo,
		hub,
		registry,
		cfg.AnswerWindow,
		cfg.FinalRoundWindow,
		logger,
	)

	// API server
	apiServer := httpapi.NewServer(authSvc, userSvc, gameSvc, sessionSvc, hub, cfg.SessionCookieName, cfg.SessionCookieSecure)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// background loops
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			_ = authSvc.PurgeExpired(context.Background())
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
