package routes

import (
	_ "portal_backend/docs"
	"portal_backend/internal/handlers"
	"portal_backend/internal/logger"
	"portal_backend/ws"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes mounts the REST API under /api, the relay socket and the API docs.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	requireAuth gin.HandlerFunc,
) {
	api := ginRouter.Group("/api")
	{
		appHandlers.HealthHandler.RegisterRoutes(api)
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.ProfileHandler.RegisterRoutes(api)
		appHandlers.JobHandler.RegisterRoutes(api)
		appHandlers.ApplicationHandler.RegisterRoutes(api)
		appHandlers.FinanceHandler.RegisterRoutes(api)
		appHandlers.QurbanHandler.RegisterRoutes(api)
		appHandlers.ItikafHandler.RegisterRoutes(api)
		appHandlers.UploadHandler.RegisterRoutes(api)
		appHandlers.FileHandler.RegisterRoutes(api)
		appHandlers.OCRHandler.RegisterRoutes(api)
		appHandlers.SearchHandler.RegisterRoutes(api)
	}

	// browsers cannot set headers on an upgrade, AuthMiddleware also reads ?token=
	api.GET("/socket", requireAuth, wsHandler.ServeWS)
	logger.Info("WebSocket route /api/socket registered")

	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
