package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VK-10/AI-fitness-App/internal/api"
	"github.com/VK-10/AI-fitness-App/internal/auth"
	"github.com/VK-10/AI-fitness-App/internal/config"
	"github.com/VK-10/AI-fitness-App/internal/domain"
	"github.com/VK-10/AI-fitness-App/internal/observability"
	"github.com/VK-10/AI-fitness-App/internal/outbox"
	persistence "github.com/VK-10/AI-fitness-App/internal/persistence/postgres"
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

	repo := persistence.NewRepository(pool).WithActivityTopic(cfg.ActivityTopic)
	users := persistence.NewUserDirectory(pool)
	recommendations := persistence.NewRecommendationRepository(pool)

	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
	dispatcher := outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	go dispatcher.Start(ctx)

	handler := api.NewHandler(domain.NewService(repo, users), domain.NewRecommendationService(recommendations))
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(router)

	logger := log.New(log.Writer(), "[api] ", log.LstdFlags|log.Lmsgprefix)
	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), httptransport.Chain(router,
		observability.RequestLogger("api", logger),
		httptransport.CORS(cfg.CORSOrigin),
		authMiddleware.Wrap,
	))

	if err := httptransport.Run(ctx, server, "activity-api", 15*time.Second); err != nil {
		log.Printf("server error: %v", err)
	}
	stop()
	dispatcher.Wait()
}
