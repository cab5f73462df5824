package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/civicai/backend/internal/config"
	"github.com/civicai/backend/internal/http/handlers"
	"github.com/civicai/backend/internal/http/middleware"
	"github.com/civicai/backend/internal/service"

	_ "github.com/civicai/backend/docs"
)

func Router(cfg config.Config, store service.Store, lifecycle *service.LifecycleService, notifications *service.NotificationService, coins *service.CoinService, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:         store,
		Lifecycle:     lifecycle,
		Notifications: notifications,
		Coins:         coins,
		Validator:     validator.New(),
		Logger:        logger,
		AdminKey:      cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.POST("/reports", h.SubmitReport)
		api.GET("/issues", h.IssuesList)
		api.GET("/issues/:id", h.IssueDetails)
		api.GET("/notifications", h.NotificationsList)
		api.POST("/notifications/clear", h.NotificationsClear)
		api.GET("/coins/leaderboard", h.CoinsLeaderboard)
		api.GET("/coins/:userId/balance", h.CoinsBalance)
		api.POST("/coins/spend", h.CoinsSpend)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/issues/:id/assign", h.AssignIssue)
		admin.POST("/issues/:id/progress", h.StartIssue)
		admin.POST("/issues/:id/resolve", h.ResolveIssue)
		admin.GET("/responders", h.RespondersList)
		admin.POST("/responders", h.ResponderCreate)
		admin.DELETE("/responders/:id", h.ResponderDelete)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
