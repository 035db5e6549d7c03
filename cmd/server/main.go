package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"crowdfund-go/internal/app"
	"crowdfund-go/internal/config"
	"crowdfund-go/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()
	builder := app.NewBuilder(&cfg, zlog,
		app.WithBasePath(cfg.BasePath),
		app.WithEnsureSchema(cfg.EnsureSchema),
	)
	application, err := builder.Build(ctx)
	if err != nil {
		zlog.Fatal("app build error", zap.Error(err))
	}

	serveErrs, err := application.Start()
	if err != nil {
		zlog.Fatal("app start error", zap.Error(err))
	}

	waitForShutdown(application, serveErrs, zlog)
}

func waitForShutdown(application *app.App, serveErrs <-chan error, zlog *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		zlog.Info("shutdown signal received")
	case err, ok := <-serveErrs:
		if ok && err != nil {
			zlog.Error("http server error", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown error", zap.Error(err))
	}
}
