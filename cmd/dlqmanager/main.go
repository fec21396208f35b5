package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/VK-10/AI-fitness-App/internal/config"
	"github.com/VK-10/AI-fitness-App/internal/outbox"
	httptransport "github.com/VK-10/AI-fitness-App/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	logger := log.New(log.Writer(), "[dlq] ", log.LstdFlags|log.Lmsgprefix)
	manager := outbox.NewDLQManager(pool, cfg.DLQMaxRetries, cfg.DLQBaseDelay, outbox.WithDLQLogger(logger))

	scheduler := cron.New()
	if _, err := manager.Schedule(ctx, scheduler, cfg.DLQSchedule, cfg.DLQBatchSize); err != nil {
		log.Fatalf("schedule dlq manager: %v", err)
	}
	scheduler.Start()
	logger.Printf("DLQ manager started (schedule=%q, maxRetries=%d)", cfg.DLQSchedule, cfg.DLQMaxRetries)

	metricsSrv := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.MetricsAddress), promhttp.Handler())
	if err := httptransport.Run(ctx, metricsSrv, "dlq manager metrics", 10*time.Second); err != nil {
		logger.Printf("metrics server error: %v", err)
	}

	logger.Println("dlq manager received shutdown signal")
	<-scheduler.Stop().Done()
}
