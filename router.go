package main

import (
	"time"

	"caption-relay/api"
	"caption-relay/config"
	"caption-relay/handlers"
	"caption-relay/middleware"
	"caption-relay/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupRouter(cfg *config.Config, captionService *service.CaptionService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())

	// The upload widget runs in a browser on another origin.
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))

	// Raw provider payloads are returned verbatim and compress well.
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.MaxMultipartMemory = cfg.MaxUploadBytes

	captionHandler := handlers.NewCaptionHandler(captionService, cfg)

	router.GET(api.HealthEndpoint, handlers.HealthCheck)
	router.GET(api.VersionEndpoint, handlers.Version)
	router.GET(api.MetricsEndpoint, gin.WrapH(promhttp.Handler()))
	router.POST(api.CaptionEndpoint, captionHandler.GenerateCaption)

	return router
}
