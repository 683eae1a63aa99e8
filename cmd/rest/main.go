package main

import (
	"context"
	"log"

	"biz-assistant-be/internal/bootstrap"
	"biz-assistant-be/internal/config"
	"biz-assistant-be/internal/server"
	"biz-assistant-be/internal/tracer"
	"biz-assistant-be/pkg/database"

	"github.com/robfig/cron/v3"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Startup Recovery: abandon orphaned sessions before taking traffic
	if _, err := container.RecoveryManager.RecoverOnStartup(context.Background()); err != nil {
		log.Panicf("Startup recovery failed: %v", err)
	}

	// 5. Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	c := cron.New()
	if err := container.RecoveryManager.Schedule(c, cfg.Recovery.SweepSpec); err != nil {
		log.Panicf("Unable to schedule recovery sweeps: %v", err)
	}
	c.Start()
	defer c.Stop()

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	log.Fatal(srv.Run())
}
