package main

import (
	"context"
	"log"
	"strings"

	"waypoint-route-service/internal/adapters/repositories"
	"waypoint-route-service/internal/app"
	"waypoint-route-service/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	seedPath := config.Get("SEED_PATH", "data/seeds/waypoints.csv")
	session := config.Get("SEED_SESSION", "demo")
	if strings.TrimSpace(session) == "" {
		log.Fatal("SEED_SESSION is required")
	}

	ctx := context.Background()

	log.Println("Initializing database schema...")
	stores, err := app.OpenStores(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	defer stores.Close()
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	n, err := repositories.SeedFromCSV(ctx, stores.Repo, session, seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding complete. session=%s rows=%d", session, n)
}
