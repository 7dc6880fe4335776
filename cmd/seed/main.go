package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"time"

	"crm/internal/clock"
	"crm/internal/config"
	"crm/internal/database"
	"crm/internal/logger"
	"crm/internal/repository"
	"crm/internal/seed"
	"crm/internal/service"
	"crm/migrations"

	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", true, "delete existing customers, products and orders first")
	status := flag.Bool("status", false, "print the migration status and exit")
	randSeed := flag.Uint64("rand-seed", uint64(time.Now().UnixNano()), "seed for the random order selection")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer dbService.Close()

	db := dbService.DB()
	if *status {
		if err := database.GetMigrationStatus(db, migrations.FS); err != nil {
			log.Fatal("Failed to read migration status", zap.Error(err))
		}
		return
	}

	if err := database.RunMigrations(db, migrations.FS, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	if *reset {
		log.Info("Clearing existing data")
		if err := database.Truncate(ctx, db); err != nil {
			log.Fatal("Failed to clear data", zap.Error(err))
		}
	}

	customerRepo := repository.NewCustomerRepository()
	productRepo := repository.NewProductRepository()
	orderRepo := repository.NewOrderRepository()
	tx := database.NewTxManager(db)
	clk := clock.System()

	seeder := &seed.Seeder{
		Customers: service.NewCustomerService(tx, db, customerRepo, clk),
		Products:  service.NewProductService(tx, db, productRepo, clk),
		Orders:    service.NewOrderService(tx, db, orderRepo, customerRepo, productRepo, clk),
		Rand:      rand.New(rand.NewPCG(*randSeed, *randSeed)),
		Logger:    log,
	}

	log.Info("Seeding data", zap.Uint64("rand_seed", *randSeed))
	if _, err := seeder.Run(ctx); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
}
