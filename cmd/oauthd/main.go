package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/stackfort/oauthd/internal/oauth/app"
)

func main() {
	// Load .env if present; real environments set vars directly.
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
