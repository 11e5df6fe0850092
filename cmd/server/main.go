package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/nutriplan/backend/config"
	httpDelivery "github.com/nutriplan/backend/internal/delivery/http"
	"github.com/nutriplan/backend/internal/infrastructure/gemini"
	"github.com/nutriplan/backend/internal/infrastructure/storage"
	"github.com/nutriplan/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting NutriPlan Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Model: %s", cfg.Gemini.Model)

	// Initialize infrastructure dependencies
	store := storage.NewMemoryStore()
	foodLogRepo := storage.NewMemoryFoodLog()

	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.RateLimit.GeminiPerMinute)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		geminiClient.SetDebug(true)
		log.Printf("Gemini client debug mode enabled")
	}

	log.Printf("Gemini API configured: %s (key: %s...)", cfg.Gemini.BaseURL, cfg.Gemini.APIKey[:min(8, len(cfg.Gemini.APIKey))])

	// Initialize usecase layer
	session := usecase.NewPlanSession(geminiClient, store, usecase.PlanSessionConfig{
		SnapshotTTL: cfg.Storage.SessionTTL,
	})
	if session.Restore(context.Background()) {
		log.Printf("Restored checkpointed plan session")
	}

	foodLog := usecase.NewFoodLogService(foodLogRepo, geminiClient)
	favorites := usecase.NewFavoritesService(store)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(session, foodLog, favorites)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
