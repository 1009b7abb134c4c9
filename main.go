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

	"content-review-cms/bootstrap"
	"content-review-cms/config"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found", "event", "env_file_missing", "module", "main")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "event", "config_invalid", "module", "main", "error", err.Error())
		os.Exit(1)
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		logger.Error("database unavailable", "event", "db_init_failed", "module", "main", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	app, err := bootstrap.New(ctx, db, cfg, logger, bootstrap.Options{RequestLogging: true})
	if err != nil {
		logger.Error("startup failed", "event", "app_init_failed", "module", "main", "error", err.Error())
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: app.Router,
	}

	go func() {
		logger.Info("server starting", "event", "http_listen", "module", "main", "service", cfg.ServiceName, "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "event", "http_listen_failed", "module", "main", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "event", "http_shutdown_failed", "module", "main", "error", err.Error())
	}
	app.Close()
	logger.Info("server stopped", "event", "http_shutdown", "module", "main")
}
