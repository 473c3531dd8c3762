// Command camradar serves the traffic-camera discovery API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hclin/camradar/internal/api"
	"github.com/hclin/camradar/internal/cache"
	"github.com/hclin/camradar/internal/config"
	"github.com/hclin/camradar/internal/discovery"
	"github.com/hclin/camradar/internal/logging"
	"github.com/hclin/camradar/internal/metrics"
	"github.com/hclin/camradar/internal/proxy"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	fetcher := proxy.New(proxy.Config{
		RelayHost:  cfg.Relay.Host,
		RelayParam: cfg.Relay.Param,
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    cfg.FetchTimeout(),
	})
	store := cache.New()
	svc := discovery.New(discovery.Config{
		ListURL:             cfg.Origin.ListURL,
		DetailURLTemplate:   cfg.Origin.DetailURL,
		SnapshotURLTemplate: cfg.Origin.SnapshotURL,
		NameSuffix:          cfg.Origin.NameSuffix,
		CoordPrecision:      cfg.Discovery.CoordPrecision,
	}, fetcher, store, logger.Named("discovery"))

	server := api.NewServer(svc, logger.Named("api"))
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("camradar listening",
			zap.Int("port", cfg.Server.Port),
			zap.String("relay", cfg.Relay.Host),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
