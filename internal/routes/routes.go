package routes

import (
	"github.com/gin-gonic/gin"

	"marketvue_backend/internal/handlers"
	"marketvue_backend/internal/logger"
)

// RegisterRoutes регистрирует все HTTP маршруты API v1.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	guards handlers.Guards,
) {
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, guards)
		appHandlers.ProfileHandler.RegisterRoutes(api, guards)
		appHandlers.UserHandler.RegisterRoutes(api, guards)
		appHandlers.AdminHandler.RegisterRoutes(api, guards)
		appHandlers.PostHandler.RegisterRoutes(api, guards)
		appHandlers.ReviewHandler.RegisterRoutes(api, guards)
		appHandlers.CatalogHandler.RegisterRoutes(api, guards)
		appHandlers.SupportHandler.RegisterRoutes(api, guards)
	}
	logger.Debug("API routes registered", "routes", len(ginRouter.Routes()))
}
