package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nutriplan/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		plans := v1.Group("/plans")
		{
			plans.POST("", handler.GeneratePlan)
			plans.GET("/current", handler.CurrentPlan)
			plans.POST("/swap", handler.SwapMeal)
			plans.DELETE("", handler.ResetPlan)
		}

		foodlog := v1.Group("/foodlog")
		{
			foodlog.POST("", handler.LogFood)
			foodlog.POST("/analyze", handler.AnalyzeFood)
			foodlog.GET("", handler.ListFoodLog)
			foodlog.DELETE("/:id", handler.DeleteFoodLog)
		}

		favorites := v1.Group("/favorites")
		{
			favorites.POST("", handler.AddFavorite)
			favorites.GET("", handler.ListFavorites)
			favorites.DELETE("/:id", handler.RemoveFavorite)
		}
	}

	return router
}
