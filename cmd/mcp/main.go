package main

import (
	"context"
	"log"

	mcpadapter "github.com/pharmlane/rx-pack-advisor/internal/adapters/mcp"
	"github.com/pharmlane/rx-pack-advisor/internal/bootstrap"
	"github.com/pharmlane/rx-pack-advisor/internal/config"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	app, err := bootstrap.New(context.Background(), cfg, "mcp")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	server := mcpadapter.NewServer(app.ParseUC, app.RecommendUC, version)
	if err := server.ServeStdio(); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
