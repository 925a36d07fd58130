package main

import (
	"context"
	"log"

	"energydocs-backend/internal/bootstrap"
	"energydocs-backend/internal/shared/config"
	"energydocs-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()
	app := bootstrap.New(context.Background(), cfg)
	defer app.Close()

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
