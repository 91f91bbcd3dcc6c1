package http

import (
	"log/slog"

	"github.com/dietledger/backend/config"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, log *slog.Logger, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		foods := v1.Group("/foods")
		{
			foods.GET("/:id", handler.GetFood)
			foods.POST("/import", handler.ImportFood)
			foods.POST("/search", handler.SearchFood)
		}

		meals := v1.Group("/meals")
		{
			meals.POST("", handler.CreateMeal)
			meals.GET("/:id/nutrients", handler.MealNutrients)
			meals.GET("/:id/foods/nutrients", handler.MealFoodNutrients)
			meals.PUT("/:id/ingredients", handler.ReplaceIngredients)
			meals.POST("/:id/ingredients", handler.AddIngredient)
			meals.DELETE("/:id/ingredients/:ingredientId", handler.RemoveIngredient)
		}

		plans := v1.Group("/plans")
		{
			plans.PUT("/:id", handler.SavePlan)
			plans.GET("/:id/nutrients", handler.PlanNutrients)
			plans.POST("/:id/refresh", handler.RefreshPlan)
		}

		users := v1.Group("/users")
		{
			users.GET("/:id", handler.GetUser)
			users.PUT("/:id/profile", handler.SaveProfile)
			users.GET("/:id/targets", handler.PreviewTargets)
			users.POST("/:id/intakes", handler.CreateIntake)
			users.GET("/:id/intakes/cumulative", handler.CumulativeIntake)
			users.POST("/:id/consumptions", handler.Consume)
			users.GET("/:id/consumptions", handler.ConsumptionHistory)
		}
	}

	return router
}
