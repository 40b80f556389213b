package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"devlink/internal/config"
	"devlink/internal/database/migration"
	dbpostgres "devlink/internal/database/postgres"
	"devlink/internal/database/seeder"
	"devlink/internal/pkg/password"
)

func main() {
	seed := flag.Bool("seed", false, "insert demo accounts and profiles after migrating")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.App.StorageDriver != config.DriverPostgres {
		logger.Fatalf("migrations need STORAGE_DRIVER=postgres, got %q", cfg.App.StorageDriver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, cfg.App.AppName+"-migrate", logger)
	if err != nil {
		logger.Fatalf("failed to connect: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := migration.Default(logger).Run(ctx, db.SQLDB()); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	seeders := []seeder.Seeder{seeder.SchemaCheck{}}
	if *seed {
		seeders = append(seeders, seeder.DemoSeeder{Hasher: password.NewBcryptHasher(cfg.Auth.BcryptCost)})
	}
	if err := (seeder.Runner{Seeders: seeders, Logger: logger}).Run(ctx, db); err != nil {
		logger.Fatalf("seeding failed: %v", err)
	}
	logger.Printf("[Migrate] done")
}
