package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/letterscan/internal/app"
	"github.com/joseph-ayodele/letterscan/internal/async"
	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/ingest"
	"github.com/joseph-ayodele/letterscan/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	registry := async.NewRegistry(0)
	notifier := async.NewNotifier(cfg.Queue.WebhookTimeout, logger)
	queue := async.NewProcessorQueue(a.Handler, registry, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
		async.WithNotifier(notifier),
	)

	if cfg.Watch.Dir != "" {
		if err := watchFolder(ctx, cfg.Watch, queue, logger); err != nil {
			logger.Error("failed to start watcher", "dir", cfg.Watch.Dir, "error", err)
			os.Exit(1)
		}
	}

	// gRPC health + reflection for grpcurl probes
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: server.New(a.Handler, queue, registry, logger).Router(),
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	logger.Info("letterd listening", "http", cfg.Server.HTTPAddr, "grpc", cfg.Server.GRPCAddr)

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
}

// watchFolder queues every new letter file under the hot folder once per
// content hash.
func watchFolder(ctx context.Context, cfg common.WatchConfig, queue async.Queue, logger *slog.Logger) error {
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Dir},
		InitialScan: cfg.InitialScan,
		Debounce:    cfg.Debounce,
		SkipHidden:  cfg.SkipHidden,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	dedup := ingest.NewDedup()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("watch.error", "error", err)
			case p, ok := <-paths:
				if !ok {
					return
				}
				src, err := ingest.Describe(p)
				if err != nil {
					logger.Debug("watch.skip", "path", p, "error", err)
					continue
				}
				if fresh, first := dedup.Claim(src); !fresh {
					logger.Info("watch.duplicate", "path", p, "first", first)
					continue
				}
				job := async.Job{Path: src.Path, Source: filepath.Base(src.Path)}
				if err := queue.Enqueue(ctx, job); err != nil {
					logger.Warn("watch.enqueue_failed", "path", p, "error", err)
					continue
				}
				logger.Info("watch.queued", "path", p, "sha256", src.HashHex)
			}
		}
	}()
	return nil
}
