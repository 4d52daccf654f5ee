// Package router wires the admin API endpoints onto a gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/packhouse/backend/internal/domain/identity"
	"github.com/packhouse/backend/internal/interfaces/http/handler"
	"github.com/packhouse/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the handlers the router mounts
type Handlers struct {
	System    *handler.SystemHandler
	Alerts    *handler.AlertHandler
	Runs      *handler.RunHandler
	Scheduler *handler.SchedulerHandler
}

// Setup mounts all routes on the engine. System routes are tenant-free;
// everything under /reconciliation requires a resolved tenant.
func Setup(engine *gin.Engine, tenants identity.TenantRepository, h Handlers) {
	api := engine.Group("/api/v1")

	system := api.Group("/system")
	{
		system.GET("/health", h.System.Health)
		system.GET("/info", h.System.GetSystemInfo)
	}

	// Scheduler status and the manual sweep are tenant-free: the sweep spans
	// every active tenant.
	api.GET("/reconciliation/scheduler", h.Scheduler.Status)
	api.POST("/reconciliation/scheduler/sweep", h.Scheduler.TriggerSweep)

	tenanted := api.Group("/reconciliation")
	tenanted.Use(middleware.TenantResolver(tenants))
	{
		tenanted.GET("/alerts", h.Alerts.List)
		tenanted.GET("/alerts/:id", h.Alerts.Get)
		tenanted.PUT("/alerts/:id/status", h.Alerts.UpdateStatus)
		tenanted.POST("/runs", h.Runs.Trigger)
	}
}
