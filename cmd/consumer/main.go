package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"github.com/VK-10/AI-fitness-App/internal/config"
	"github.com/VK-10/AI-fitness-App/internal/consumer"
	persistence "github.com/VK-10/AI-fitness-App/internal/persistence/postgres"
	"github.com/VK-10/AI-fitness-App/internal/recommend"
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

	logger := log.New(log.Writer(), "[consumer] ", log.LstdFlags|log.Lmsgprefix)
	handler := consumer.Chain(
		consumer.NewEventLogHandler(pool),
		consumer.NewRecommendationHandler(recommend.NewGenerator(), persistence.NewRecommendationRepository(pool), logger),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		metricsSrv := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.MetricsAddress), promhttp.Handler())
		if err := httptransport.Run(ctx, metricsSrv, "consumer metrics", 10*time.Second); err != nil {
			log.Printf("metrics server error: %v", err)
		}
	}()

	for _, topic := range cfg.ConsumerTopics {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:         cfg.KafkaBrokers,
			GroupID:         cfg.ConsumerGroupID,
			Topic:           topic,
			MinBytes:        1e3,
			MaxBytes:        10e6,
			CommitInterval:  time.Second,
			RetentionTime:   24 * time.Hour,
			ReadLagInterval: -1,
		})

		proc := consumer.NewProcessor(reader, handler,
			consumer.WithLogger(logger),
			consumer.WithHandlerRetries(cfg.ConsumerMaxAttempts, cfg.ConsumerRetryBackoff),
		)

		wg.Add(1)
		go func(topic string, r *kafka.Reader) {
			defer wg.Done()
			defer r.Close()

			logger.Printf("consumer started (topic=%s, group=%s)", topic, cfg.ConsumerGroupID)
			if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("consumer stopped with error (topic=%s): %v", topic, err)
			}
		}(topic, reader)
	}

	<-ctx.Done()
	logger.Println("consumer shutdown requested")
	wg.Wait()
}
