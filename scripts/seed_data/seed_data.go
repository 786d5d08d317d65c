package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/shreya-shukla01/NSUTHackathon/internal/config"
	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
	"github.com/shreya-shukla01/NSUTHackathon/internal/seed"
	"github.com/shreya-shukla01/NSUTHackathon/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config: %v", err)
	}
	if cfg.StoreBackend == "memory" {
		log.Fatal("STORE_BACKEND=memory has nothing to seed; use mongo or timescale")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("Connecting to %s...\n", cfg.StoreBackend)
	st, err := open(ctx, cfg)
	if err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer st.Close(ctx)
	fmt.Println("✓ Connected")

	step1_seed(ctx, st)
	step2_verify(ctx, st)

	fmt.Println("\n✅ Store seeded successfully")
	fmt.Println("   Run next: go run ./cmd/intentguard")
}

func open(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StoreBackend == "timescale" {
		return store.NewTimescaleStore(ctx, cfg.TimescaleURL())
	}
	return store.NewMongoStore(ctx, cfg.MongoURL, cfg.DBName)
}

func step1_seed(ctx context.Context, st store.Store) {
	fmt.Println("\n── Step 1: Seeding sample trains and alerts ────")

	if err := seed.IfEmpty(ctx, st, time.Now(), nil); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

func step2_verify(ctx context.Context, st store.Store) {
	fmt.Println("\n── Step 2: Verification ────────────────────────")

	trains, err := st.FindTrains(ctx, 0)
	if err != nil {
		log.Fatalf("Verification failed: %v", err)
	}
	for _, t := range trains {
		fmt.Printf("  ✓ train %-10s %-8s %s\n", t.TrainID, t.Status, t.Location)
	}

	n, err := st.CountAlerts(ctx, domain.AlertCountFilter{})
	if err != nil {
		log.Fatalf("Verification failed: %v", err)
	}
	fmt.Printf("  ✓ %d alerts in store\n", n)
}
