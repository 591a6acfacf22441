package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/admins"
	"github.com/collegenews/collegenews/backend/go-services/internal/config"
	"github.com/collegenews/collegenews/backend/go-services/internal/tokens"
	"github.com/collegenews/collegenews/backend/go-services/pkg/logger"
	"github.com/collegenews/collegenews/backend/go-services/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: database=%s storage=%s redis=%v", cfg.Database.Driver, cfg.Storage.Driver, cfg.Redis.Host != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open backends: %v", err)
	}
	defer b.Close()

	adminSvc := admins.NewService(b.admins)
	created, err := adminSvc.EnsureSeed(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		logger.Fatalf("failed to seed admin: %v", err)
	}
	if created {
		logger.Infof("seed admin %q created", cfg.Admin.Username)
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := newRouter(cfg, b, adminSvc, tokens.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Server running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}
