package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-bot/internal/config"
	"github.com/ignatzorin/lostfound-bot/internal/http/handlers"
	"github.com/ignatzorin/lostfound-bot/internal/http/middleware"
)

// SetupRouter собирает админский API. authHandler и wsHandler могут быть nil,
// если вход в API не настроен: тогда доступен только /health.
func SetupRouter(
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	reportHandler *handlers.ReportHandler,
	wsHandler *handlers.WSHandler,
	auth middleware.TokenAuthenticator,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	if authHandler == nil || auth == nil {
		return r
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/login", authHandler.Login)
	}

	if wsHandler != nil {
		api.GET("/ws", wsHandler.Handle)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(auth))
	{
		protected.GET("/reports/pending", reportHandler.ListPending)
		protected.GET("/reports/:id", reportHandler.GetReport)
		protected.POST("/reports/:id/decision", reportHandler.Decide)
	}

	return r
}
