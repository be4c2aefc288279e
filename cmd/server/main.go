// BotForge - conversational Discord-bot generator server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akiii/botforge/internal/api"
	"github.com/akiii/botforge/internal/bot"
	"github.com/akiii/botforge/internal/config"
	"github.com/akiii/botforge/internal/dispatch"
	"github.com/akiii/botforge/internal/gateway"
	"github.com/akiii/botforge/internal/genbot"
	"github.com/akiii/botforge/internal/middleware"
	"github.com/akiii/botforge/internal/session"
	"github.com/akiii/botforge/internal/store"
	"github.com/akiii/botforge/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

const sweepInterval = time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "model", cfg.GeminiModel)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	transcript, err := bot.NewTranscript(bot.TranscriptConfig{
		Enabled:   cfg.Transcript.Enabled,
		Dir:       cfg.Transcript.Dir,
		QueueSize: cfg.Transcript.QueueSize,
	})
	if err != nil {
		slog.Error("Failed to initialize transcript logger", "error", err)
		os.Exit(1)
	}
	defer transcript.Close()

	// Chat pipeline: WebSocket transport wrapped by the throttled
	// dispatcher, then by transcript logging.
	conns := gateway.NewConnManager()
	defer conns.CloseAll()

	dispatcher := dispatch.NewWithIntervals(gateway.NewTransport(conns), cfg.SendInterval, cfg.RetryCooldown)
	sender := bot.NewTranscriptSender(dispatcher, transcript)

	generator := genbot.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.GeminiModel)
	packager := genbot.NewPackager(sender)
	builder := bot.NewBuilder(generator, packager, sender, repo, cfg.CommandPrefix)

	sessions := session.NewStore()
	machine := session.NewMachine(sessions, sender, builder)
	router := bot.NewRouter(cfg.CommandPrefix, machine, builder, sender, transcript)

	wsHandler := gateway.NewWebSocketHandler(conns, router, cfg.IsDevelopment())
	apiHandler := api.NewHandler(repo)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	apiHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	// Serve embedded chat client (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket connections are long-lived
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Expire abandoned requirement-gathering sessions.
	sessions.StartSweeper(ctx, cfg.SessionTTL, sweepInterval, func(s *session.Session) {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := sender.SendText(notifyCtx, s.ChannelID, "⏰ 一定時間操作がなかったため、ボット作成をキャンセルしました。"); err != nil {
			slog.Warn("Failed to notify session expiry", "user_id", s.UserID, "error", err)
		}
	})
	slog.Info("Session sweeper started", "session_ttl", cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
