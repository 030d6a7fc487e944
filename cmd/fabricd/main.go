package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fabricmux/internal/config"
	"fabricmux/internal/fabricfile"
	"fabricmux/internal/logger"
	zapadapter "fabricmux/internal/logger/zap"
	"fabricmux/internal/server"
	"fabricmux/internal/telemetry"
)

func main() {
	cfgPath := flag.String("config", "/etc/fabricmux/fabricd.yaml", "Path to the daemon config file")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zl, err := zapadapter.New(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	lgr := zapadapter.NewZapAdapter(zl)
	cfg.LogConfig(lgr)

	shutdownTracer := telemetry.InitTracer(cfg.Telemetry, "fabricmux-fabricd", cfg.Daemon.Name)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			lgr.Warn("error shutting down tracer", logger.F("error", err))
		}
	}()

	topo, err := fabricfile.Load(cfg.Fabric.Path, lgr.Named("fabric"))
	if err != nil {
		lgr.Error("failed to load fabric topology", logger.F("error", err), logger.F("path", cfg.Fabric.Path))
		os.Exit(1)
	}
	lgr.Info("loaded fabric topology",
		logger.F("matrices", len(topo.Matrices)),
		logger.F("sources", len(topo.Registry.List())),
	)

	lis, advertise, err := cfg.Daemon.Listen()
	if err != nil {
		lgr.Error("failed to bind listener", logger.F("error", err))
		os.Exit(1)
	}
	lgr.Info("listening",
		logger.F("bind", cfg.Daemon.Bind),
		logger.F("port", cfg.Daemon.Port),
		logger.F("advertise", advertise),
	)

	srv := server.New(lis, topo.Group, topo.Registry, nil, server.WithLogger(lgr.Named("server")))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		lgr.Info("shutdown signal received, stopping gracefully")
		done := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			lgr.Warn("graceful stop timed out, forcing shutdown")
			srv.Stop()
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			lgr.Error("server exited with error", logger.F("error", err))
			os.Exit(1)
		}
	}
}
