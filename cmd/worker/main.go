package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pharmlane/rx-pack-advisor/internal/bootstrap"
	"github.com/pharmlane/rx-pack-advisor/internal/config"
	"github.com/pharmlane/rx-pack-advisor/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "worker")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		log.Printf("worker metrics listening on :%s", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeImportRequested(ctx, func(handlerCtx context.Context, objectKey string) error {
		importCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()

		workerMetrics.StartImport()
		start := time.Now()
		imported, importErr := app.ImportProcessUC.ProcessImport(importCtx, objectKey)
		workerMetrics.FinishImport("worker", time.Since(start), importErr)
		if importErr == nil {
			workerMetrics.ObserveImportedRows("worker", imported)
		}
		return importErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
