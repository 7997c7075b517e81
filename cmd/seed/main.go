package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"subscription-cancellation/internal/config"
	"subscription-cancellation/internal/domain/model"
	"subscription-cancellation/internal/domain/ports/repository"
	pg "subscription-cancellation/internal/infra/db/postgres"
)

func main() {
	// ---- Config ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	schemaPath := flag.String("schema", "deploy/postgres/init.sql", "path to the schema file (empty to skip)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// Apply the schema first so seeding works on a fresh database.
	if *schemaPath != "" {
		schema, err := os.ReadFile(*schemaPath)
		if err != nil {
			log.Fatalf("read schema: %v", err)
		}
		if _, err := pool.Exec(ctx, string(schema)); err != nil {
			log.Fatalf("apply schema: %v", err)
		}
		fmt.Printf("schema applied from %s\n", *schemaPath)
	}

	userRepo := pg.NewPostgresUserRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)

	// If users already exist, do nothing
	existing, err := userRepo.List(ctx, repository.NoTX, 0, 1)
	if err != nil {
		log.Fatalf("list users: %v", err)
	}
	if len(existing) > 0 {
		fmt.Println("users already present. No changes.")
		return
	}

	// Sample users with active subscriptions at the two price points the
	// downsell offer discounts from.
	seed := []struct {
		Email      string
		PriceCents int
	}{
		{"maria@example.com", 2500},
		{"daniyar@example.com", 2900},
		{"priya@example.com", 2500},
	}

	for _, s := range seed {
		u, err := model.NewUser(uuid.NewString(), s.Email)
		if err != nil {
			log.Fatalf("new user %q: %v", s.Email, err)
		}
		if err := userRepo.Save(ctx, repository.NoTX, u); err != nil {
			log.Fatalf("save user %q: %v", s.Email, err)
		}
		sub, err := model.NewSubscription(uuid.NewString(), u.ID, s.PriceCents)
		if err != nil {
			log.Fatalf("new subscription for %q: %v", s.Email, err)
		}
		if err := subRepo.Save(ctx, repository.NoTX, sub); err != nil {
			log.Fatalf("save subscription for %q: %v", s.Email, err)
		}
		fmt.Printf("seeded: %s (user=%s, price=%d cents)\n", s.Email, u.ID, s.PriceCents)
	}

	fmt.Println("✅ Seeding complete.")
}
