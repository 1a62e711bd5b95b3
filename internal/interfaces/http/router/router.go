// Package router wires the gin engine: middleware chain, route table, and
// server lifecycle.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/crs/internal/config"
	"github.com/turtacn/crs/internal/interfaces/http/handlers"
	"github.com/turtacn/crs/pkg/logger"
)

// Router HTTP 路由器
type Router struct {
	engine          *gin.Engine
	config          *config.Config
	log             logger.Logger
	healthHandler   *handlers.HealthHandler
	authHandler     *handlers.AuthHandler
	registryHandler *handlers.RegistryHandler
	scoringHandler  *handlers.ScoringHandler
	authMiddleware  gin.HandlerFunc
	obsMiddleware   gin.HandlerFunc
	server          *http.Server
}

// NewRouter 创建路由器
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	registryHandler *handlers.RegistryHandler,
	scoringHandler *handlers.ScoringHandler,
	authMiddleware gin.HandlerFunc,
	obsMiddleware gin.HandlerFunc,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine:          gin.New(),
		config:          cfg,
		log:             log,
		healthHandler:   healthHandler,
		authHandler:     authHandler,
		registryHandler: registryHandler,
		scoringHandler:  scoringHandler,
		authMiddleware:  authMiddleware,
		obsMiddleware:   obsMiddleware,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(r.obsMiddleware)

	corsConfig := cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	r.engine.Use(cors.New(corsConfig))

	r.engine.GET("/health/live", r.healthHandler.Live)
	r.engine.GET("/health/ready", r.healthHandler.Ready)

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.config.Server.PprofEnabled {
		pprof.Register(r.engine)
	}

	v1 := r.engine.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/token", r.authHandler.IssueToken)
		}

		models := v1.Group("/models")
		models.Use(r.authMiddleware)
		{
			models.POST("/train", r.registryHandler.Train)
			models.POST("/prune", r.registryHandler.Prune)
		}

		services := v1.Group("/services")
		services.Use(r.authMiddleware)
		{
			services.POST("", r.registryHandler.Publish)
			services.GET("", r.registryHandler.List)
			services.GET("/:name/:version", r.registryHandler.Fetch)
			services.GET("/:name/:version/swagger.json", r.registryHandler.Swagger)
			services.PUT("/:name/:version/model", r.registryHandler.UpdateModel)
			services.DELETE("/:name/:version", r.registryHandler.Delete)
			services.POST("/:name/:version/score", r.scoringHandler.Score)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start 启动 HTTP 服务器（阻塞直到服务器退出）
func (r *Router) Start() error {
	r.SetupRoutes()

	r.server = &http.Server{
		Addr:           r.config.Server.Addr(),
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(r.config.Server.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	r.log.Info(context.Background(), "Starting HTTP server", logger.String("address", r.server.Addr))
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.log.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}

// Engine exposes the underlying engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
