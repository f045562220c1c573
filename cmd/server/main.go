package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamehub/internal/config"
	"gamehub/internal/game"
	"gamehub/internal/game/nim"
	"gamehub/internal/logger"
	"gamehub/internal/pubsub"
	"gamehub/internal/server"
	"gamehub/internal/session"
	"gamehub/internal/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx := context.Background()

	store := openStore(ctx, cfg)
	defer store.Close(ctx)

	broker := openBroker(ctx, cfg)

	registry := game.NewRegistry()
	registry.Register(nim.Engine{})

	mgr := session.NewManager(registry, store, broker)
	defer mgr.Close()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.New(registry, mgr, broker),
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) storage.Store {
	if cfg.MongoURI != "" {
		store, err := storage.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Fatal("connect mongodb", "error", err)
		}
		logger.Info("using mongodb store", "db", cfg.MongoDB)
		return store
	}
	store, err := storage.NewSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal("open sqlite store", "path", cfg.DBPath, "error", err)
	}
	logger.Info("using sqlite store", "path", cfg.DBPath)
	return store
}

func openBroker(ctx context.Context, cfg *config.Config) pubsub.Broker {
	if cfg.RedisAddr != "" {
		broker, err := pubsub.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatal("connect redis", "error", err)
		}
		logger.Info("using redis broker", "addr", cfg.RedisAddr)
		return broker
	}
	logger.Info("using in-process event hub")
	return pubsub.NewHub()
}
