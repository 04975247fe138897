// Command freightd watches a directory for freight documents and processes each new
// file through the extraction pipeline, serving gRPC health while it runs.
package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/freightbite/freight-extract/constants"
	"github.com/freightbite/freight-extract/internal/app"
	"github.com/freightbite/freight-extract/internal/async"
	"github.com/freightbite/freight-extract/internal/common"
	"github.com/freightbite/freight-extract/internal/ingest"
	processor "github.com/freightbite/freight-extract/internal/pipeline"
)

// serviceName is the health entry reported for the watcher itself.
const serviceName = "freight.Watcher"

func main() {
	v, err := common.NewViper()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(2)
	}
	cfg := common.LoadConfig(v)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	if err := common.NewValidator().Field("WATCH_DIR", cfg.Server.WatchDir, common.Required).Error(); err != nil {
		logger.Error("missing watch directory", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer a.Close()
	if a.DB != nil {
		if err := a.DB.HealthCheck(ctx, 5*time.Second); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	dedup := ingest.NewDeduper()
	queue := async.NewProcessorQueue(a.Processor, logger,
		async.WithWorkers(cfg.Server.Workers),
		async.WithQueueSize(512),
		async.WithProcessTimeout(5*time.Minute),
		async.WithResultFunc(func(job async.Job, res processor.Result) {
			// let a fixed file be retried on its next write
			if res.Error != nil && job.Hash != "" {
				dedup.Forget(job.Hash)
			}
		}),
	)

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Server.WatchDir},
		InitialScan: cfg.Server.ScanOnStart,
		Debounce:    cfg.Server.Debounce,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "dir", cfg.Server.WatchDir, "error", err)
		os.Exit(1)
	}

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	logger.Info("freightd listening", "addr", addr, "watch_dir", cfg.Server.WatchDir, "workers", cfg.Server.Workers)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	feed(ctx, events, errs, dedup, queue, cfg.UserID, logger)

	logger.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	drainCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	queue.Shutdown(drainCtx)
	grpcServer.GracefulStop()
}

// feed moves watcher paths into the queue, skipping content already processed.
func feed(ctx context.Context, events <-chan string, errs <-chan error, dedup *ingest.Deduper, q async.Queue, userID string, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher error", "error", err)
		case path, ok := <-events:
			if !ok {
				return
			}
			hash, dup, err := dedup.Check(path)
			if err != nil {
				logger.Warn("skipping unreadable file", "path", path, "error", err)
				continue
			}
			if dup {
				logger.Info("skipping duplicate content", "path", path, "sha256", hash)
				continue
			}
			job := async.Job{
				Path:         path,
				UserID:       userID,
				DocumentType: constants.DocumentTypeInvoice,
				TraceID:      uuid.NewString(),
				Hash:         hash,
			}
			if err := q.Enqueue(ctx, job); err != nil {
				logger.Warn("enqueue failed", "path", path, "error", err)
				dedup.Forget(hash)
			}
		}
	}
}
