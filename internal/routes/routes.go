package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"abacus_backend/internal/handlers"
	"abacus_backend/internal/logger"
)

// RegisterRoutes mounts the HTTP API, the websocket endpoint and the health
// check on the router.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers, authMW gin.HandlerFunc) {
	healthCheck := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	ginRouter.GET("/health", healthCheck)

	api := ginRouter.Group("/api/v1")
	{
		api.GET("/health", healthCheck)
		appHandlers.Auth.RegisterRoutes(api, authMW)
		appHandlers.User.RegisterRoutes(api, authMW)
		appHandlers.Brand.RegisterRoutes(api, authMW)
		appHandlers.Calendar.RegisterRoutes(api, authMW)
		appHandlers.Task.RegisterRoutes(api, authMW)
		appHandlers.Notification.RegisterRoutes(api, authMW)
		appHandlers.Activity.RegisterRoutes(api, authMW)
		appHandlers.WS.RegisterRoutes(api, authMW)
	}

	logger.Info("routes registered")
}
