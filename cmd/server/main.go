package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/eternalApril/moonkv/internal/config"
	"github.com/eternalApril/moonkv/internal/logger"
	"github.com/eternalApril/moonkv/internal/server"
	"github.com/eternalApril/moonkv/internal/storage"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(".")
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		return 1
	}

	log, level := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync() //nolint:errcheck

	config.WatchLogLevel(level, log)

	log.Info("Moonkv starting",
		zap.String("port", cfg.Server.Port),
		zap.Uint("shards", cfg.Storage.Shards),
		zap.Uint("buckets", cfg.Storage.Buckets),
	)

	db, err := storage.NewKeyspace(storage.Options{
		Shards:  cfg.Storage.Shards,
		Buckets: cfg.Storage.Buckets,
	})
	if err != nil {
		log.Error("cant initialize storage", zap.Error(err))
		return 1
	}

	engine := server.NewEngine(db, cfg, log)

	address := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Error("listener error", zap.Error(err))
		engine.Shutdown()
		return 1
	}
	log.Info("listening on", zap.String("address", address))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(engine, log, cfg.Server.ShutdownTimeout)
	if err := srv.Serve(ctx, listener); err != nil {
		log.Warn("shutdown finished with errors", zap.Error(err))
	}

	log.Info("Moonkv stopped")
	return 0
}
