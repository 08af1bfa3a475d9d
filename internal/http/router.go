package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/crmdash/backend/internal/config"
	"github.com/crmdash/backend/internal/http/handlers"
	"github.com/crmdash/backend/internal/http/middleware"
	"github.com/crmdash/backend/internal/snapshot"

	_ "github.com/crmdash/backend/docs"
)

func Router(cfg config.Config, snapshots *snapshot.Provider, source handlers.Pinger, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
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
		Snapshots: snapshots,
		Source:    source,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/dashboard", h.Dashboard)
		api.GET("/tickets", h.TicketsList)
		api.GET("/tickets/metrics", h.TicketMetrics)
		api.GET("/tickets-calls", h.TicketsCallsList)
		api.GET("/tickets-calls/metrics", h.TicketsCallsMetrics)
		api.GET("/calls/metrics", h.CallMetrics)
		api.GET("/customers", h.CustomersList)
		api.GET("/customers/metrics", h.CustomerMetrics)
		api.GET("/items/metrics", h.ItemMetrics)
		api.GET("/items/actions", h.ItemActions)
		api.GET("/timeseries", h.Timeseries)
		api.GET("/export/:entity", h.Export)
		api.GET("/snapshot", h.SnapshotInfo)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/refresh", h.Refresh)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
