package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fleet-service/internal/http/middleware"
)

// HealthFunc pings the persistence boundary for the health endpoint.
type HealthFunc func(ctx context.Context) error

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, health HealthFunc, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/vehicles", handler.listVehicles)
		protected.GET("/vehicles/:id", handler.getVehicle)
		protected.GET("/routes", handler.listRoutes)
		protected.GET("/routes/:id", handler.getRoute)
		protected.GET("/fleet/stats", handler.fleetStats)

		mutating := protected.Group("")
		mutating.Use(middleware.RequireMutator())
		{
			mutating.POST("/vehicles", handler.createVehicle)
			mutating.PUT("/vehicles/:id", handler.updateVehicle)
			mutating.PUT("/vehicles/:id/status", handler.setVehicleStatus)
			mutating.DELETE("/vehicles/:id", handler.deleteVehicle)

			mutating.POST("/routes", handler.createRoute)
			mutating.PUT("/routes/:id", handler.updateRoute)
			mutating.PUT("/routes/:id/vehicle", handler.assignRouteVehicle)
			mutating.POST("/routes/:id/start", handler.startRoute)
			mutating.POST("/routes/:id/complete", handler.completeRoute)
			mutating.POST("/routes/:id/cancel", handler.cancelRoute)
			mutating.DELETE("/routes/:id", handler.deleteRoute)

			mutating.POST("/fleet/reconcile", handler.reconcile)
		}
	}

	return router
}
