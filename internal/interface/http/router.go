package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heliowatt/heliowatt/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORS.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/refresh", handler.Refresh)
		api.GET("/auth/google/url", handler.GoogleAuthURL)
		api.GET("/auth/google/callback", handler.GoogleCallback)

		protected := api.Group("")
		protected.Use(authMiddleware(handler.authSvc))
		{
			protected.GET("/auth/profile", handler.Profile)
			protected.POST("/auth/logout", handler.Logout)

			protected.POST("/geocode", handler.ResolveLocation)

			protected.GET("/simulations/defaults", handler.SimulationDefaults)
			protected.POST("/simulations", handler.RunSimulation)
			protected.POST("/simulations/chart", handler.MonthlyChart)
			protected.POST("/simulations/export/hourly", handler.ExportHourly)
			protected.POST("/simulations/export/config", handler.ExportConfig)

			protected.GET("/session/inputs", handler.SessionInputs)
			protected.GET("/exports/*key", handler.DownloadExport)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
