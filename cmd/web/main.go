package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VK-10/AI-fitness-App/internal/auth"
	"github.com/VK-10/AI-fitness-App/internal/config"
	httptransport "github.com/VK-10/AI-fitness-App/internal/transport/http"
	"github.com/VK-10/AI-fitness-App/internal/web"
	"github.com/VK-10/AI-fitness-App/internal/web/activityclient"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := activityclient.New(cfg.ActivityAPIURL,
		activityclient.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		activityclient.WithListLimit(cfg.WebListLimit),
	)
	handler := web.NewServer(client).Handler(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.WebAddress), handler)
	if err := httptransport.Run(ctx, server, "web", 10*time.Second); err != nil {
		log.Fatalf("web server error: %v", err)
	}
}
