package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kanban-board-api/internal/auth"
	"kanban-board-api/internal/board"
	"kanban-board-api/internal/config"
	"kanban-board-api/internal/database"
	"kanban-board-api/internal/docstore"
	"kanban-board-api/internal/handlers"
	"kanban-board-api/internal/notify"
	"kanban-board-api/internal/presence"
	"kanban-board-api/internal/realtime"
	"kanban-board-api/internal/routes"
	"kanban-board-api/internal/session"
	"kanban-board-api/internal/users"

	"gorm.io/gorm/logger"
)

func main() {
	cfg := config.Load()
	slogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := database.Open(cfg.DatabasePath, logger.Warn)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	var presenceStore presence.Store
	if cfg.RedisURL != "" {
		log.Printf("Using Redis for presence")
		redisStore, err := presence.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		presenceStore = redisStore
	} else {
		log.Printf("Using in-memory presence")
		presenceStore = presence.NewMemoryStore()
	}

	hub := realtime.New()
	store := docstore.NewGormStore(db, slogger)
	sessions := session.NewManager(store, session.Options{
		Logger:   slogger,
		OnEvent:  handlers.SessionEvents(hub),
		OnSignal: handlers.Signals(hub),
	})
	userRepo := users.NewRepo(db)
	sink := notify.NewSink(db)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)

	service := board.NewService(board.Deps{
		Store:     store,
		Snapshots: sessions,
		Signals:   sessions,
		Users:     userRepo,
		Notifier:  sink,
		Logger:    slogger,
	})
	api := handlers.NewAPI(handlers.Deps{
		Board:    service,
		Sessions: sessions,
		Users:    userRepo,
		Notes:    sink,
		Presence: presence.NewChannel(presenceStore, cfg.PresenceThrottle, cfg.PresenceIdle),
		Hub:      hub,
		Issuer:   issuer,
		Logger:   slogger,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           routes.SetupRoutes(api, issuer, cfg.CORSOrigin),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Kanban board API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
