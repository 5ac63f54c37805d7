package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/agricoop/api/internal/auth"
	"github.com/stwalsh4118/agricoop/api/internal/cache"
	"github.com/stwalsh4118/agricoop/api/internal/config"
	"github.com/stwalsh4118/agricoop/api/internal/database"
	"github.com/stwalsh4118/agricoop/api/internal/logger"
	"github.com/stwalsh4118/agricoop/api/internal/repository"
	"github.com/stwalsh4118/agricoop/api/internal/seed"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

const seedTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Server.Env, cfg.Server.LogLevel).WithComponent("seed")

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	applied, err := database.NewMigrator(db, log).Run(ctx)
	if err != nil {
		log.Fatal("Failed to apply migrations", err, nil)
	}
	log.Info("Migrations up to date", map[string]interface{}{"applied": applied})

	// The whole load commits or rolls back as one unit
	var summary seed.Summary
	err = db.WithTx(ctx, func(tx pgx.Tx) error {
		summary, err = seed.Run(ctx, repository.NewSeedStore(tx), seed.DefaultData(), auth.HashPassword, log)
		return err
	})
	if err != nil {
		log.Fatal("Seeding failed", err, nil)
	}

	// Cached reference listings are stale once new rows exist
	if summary.Total() > 0 {
		store, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Cache unavailable, skipping invalidation", map[string]interface{}{"error": err.Error()})
		} else {
			refs := services.NewReferenceService(repository.NewReferenceRepository(db), store, cfg.Redis.TTL, log)
			if err := refs.Invalidate(ctx); err != nil {
				log.Warn("Failed to invalidate reference cache", map[string]interface{}{"error": err.Error()})
			}
			_ = store.Close()
		}
	}

	fields := summary.Fields()
	fields["total"] = summary.Total()
	log.Info("Seed complete", fields)
}
