package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/event-ticketing-api/internal/api"
	"github.com/vietanh2810/event-ticketing-api/internal/config"
	"github.com/vietanh2810/event-ticketing-api/internal/db"
	"github.com/vietanh2810/event-ticketing-api/internal/logger"
	"github.com/vietanh2810/event-ticketing-api/internal/repository/dao"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer logger.Sync()

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL, conf.Postgres)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	defer func() {
		if err := db.Close(postgresDB); err != nil {
			zap.L().Warn("failed to close database", zap.Error(err))
		}
	}()

	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to migrate database -> %w", err)
	}

	// Settings are wired once at startup; edits are only reported.
	if err = config.Watch(configPath, func(_ *config.AppConfig, err error) {
		if err != nil {
			zap.L().Warn("config file changed but is invalid", zap.Error(err))
			return
		}
		zap.L().Info("config file changed; restart to apply")
	}); err != nil {
		zap.L().Warn("config watch disabled", zap.Error(err))
	}

	s := api.NewServer(conf, postgresDB)

	addr := ":" + s.Config.API.Port
	server := &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	srvErr := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", addr))
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err = <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-stopCtx.Done():
		zap.L().Info("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.API.ShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}
	zap.L().Info("server stopped")

	return nil
}
