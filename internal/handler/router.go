package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "huronportal/api/swagger" // swagger docs
	"huronportal/internal/logger"
	"huronportal/internal/middleware"
	"huronportal/internal/websocket"
)

// RouteRegistrar is implemented by every resource handler.
type RouteRegistrar interface {
	RegisterRoutes(router gin.IRouter, requireSession gin.HandlerFunc)
}

type RouterConfig struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	// Hub serves the change feed on /ws when set.
	Hub *websocket.Hub
}

// NewRouter assembles the HTTP surface: recovery, request logging, CORS,
// health, swagger, the change feed and every registrar's routes at the root.
func NewRouter(cfg RouterConfig, authenticator middleware.Authenticator, registrars ...RouteRegistrar) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}
	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.RequestLogger(log))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = len(cfg.AllowedOrigins) > 0
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "If-Match"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"ETag", "Content-Disposition"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	if cfg.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(cfg.Hub, c, authenticator)
		})
	}

	requireSession := middleware.RequireSession(authenticator)
	for _, r := range registrars {
		r.RegisterRoutes(router.Group(""), requireSession)
	}
	return router
}
