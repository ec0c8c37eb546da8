package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/forkcast/backend/config"
	"github.com/forkcast/backend/internal/service"
)

// Deps carries the externally constructed collaborators the handlers
// need. Vision is optional: when nil, the detection route responds 503.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
	Vision *service.VisionService
}

// SetupAPI wires services and handlers onto the router
func SetupAPI(router *gin.Engine, deps Deps) {
	authService := service.NewAuthService(deps.DB, deps.Config.JWTSecret)
	mealdb := service.NewMealDBClient(deps.Config.MealDBAPIURL)
	searchService := service.NewRecipeSearchService(mealdb)
	chatService := service.NewChatService(deps.Config)
	favoriteService := service.NewFavoriteService(deps.DB, deps.Redis)

	authHandler := NewAuthHandler(authService)
	recipeHandler := NewRecipeHandler(searchService, mealdb)
	detectHandler := NewDetectHandler(deps.Vision)
	chatHandler := NewChatHandler(chatService)
	favoriteHandler := NewFavoriteHandler(favoriteService, authService)

	api := router.Group("/api")
	{
		authHandler.RegisterRoutes(api)
		recipeHandler.RegisterRoutes(api)
		detectHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		favoriteHandler.RegisterRoutes(api)
	}
}
