package api

import (
	"github.com/gin-gonic/gin"

	"github.com/vidgrab/vidgrab/api/handlers"
	"github.com/vidgrab/vidgrab/api/middleware"
	"github.com/vidgrab/vidgrab/internal/app"
	"github.com/vidgrab/vidgrab/internal/metrics"
)

// SetupRouter sets up the HTTP router of the local client API
func SetupRouter(application *app.Application) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	log := application.Logger

	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())

	healthHandler := handlers.NewHealthHandler(application)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	if cfg := application.Config.Metrics; cfg.Enabled {
		router.GET(cfg.Path, gin.WrapH(metrics.Handler()))
	}

	shell := application.Shell
	v1 := router.Group("/api/v1")
	{
		screenHandler := handlers.NewScreenHandler(shell, log)
		wsHandler := handlers.NewScreenWebSocketHandler(shell, log)

		v1.GET("/platforms", screenHandler.ListPlatforms)
		v1.GET("/validate", screenHandler.Validate)

		screens := v1.Group("/screens/:platform")
		{
			screens.GET("", screenHandler.GetScreen)
			screens.POST("/preview", screenHandler.Preview)
			screens.POST("/paste", screenHandler.Paste)
			screens.POST("/quick", screenHandler.Quick)
			screens.POST("/open", screenHandler.Open)
			screens.POST("/download", screenHandler.Download)
			screens.POST("/copy", screenHandler.Copy)
			screens.POST("/back", screenHandler.Back)
			screens.GET("/events", screenHandler.Events)
			screens.GET("/ws", wsHandler.HandleWebSocket)
		}

		historyHandler := handlers.NewHistoryHandler(shell, log)
		history := v1.Group("/history")
		{
			history.GET("", historyHandler.ListHistory)
			history.GET("/stats", historyHandler.GetStats)
			history.DELETE("/:id", historyHandler.DeleteHistory)
		}

		v1.GET("/preferences/theme", historyHandler.GetTheme)
		v1.PUT("/preferences/theme", historyHandler.SetTheme)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "not found"})
	})

	return router
}
