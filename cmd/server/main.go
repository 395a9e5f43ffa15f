package main

import (
	"fmt"
	"log"

	"ndclink/internal/config"
	"ndclink/internal/handler"
	"ndclink/internal/repository/postgres"
	"ndclink/internal/router"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	crossRefRepo := postgres.NewCrossRefRepo(db)
	runRepo := postgres.NewRunRepo(db)

	// Initialize handlers
	crossRefH := handler.NewCrossRefHandler(crossRefRepo)
	runH := handler.NewRunHandler(runRepo)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(crossRefH, runH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
