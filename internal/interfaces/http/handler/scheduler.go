package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/packhouse/backend/internal/infrastructure/scheduler"
)

// SchedulerControl is the slice of the scheduler the ops endpoints use
type SchedulerControl interface {
	Status() scheduler.Status
	TriggerNow(ctx context.Context)
}

// SchedulerHandler exposes scheduler status and the manual sweep trigger
type SchedulerHandler struct {
	BaseHandler
	sched SchedulerControl
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(sched SchedulerControl) *SchedulerHandler {
	return &SchedulerHandler{sched: sched}
}

// Status reports the scheduler state and its next daily fire time
func (h *SchedulerHandler) Status(c *gin.Context) {
	h.Success(c, h.sched.Status())
}

// SweepResponse acknowledges a manually requested sweep
type SweepResponse struct {
	Sweep string `json:"sweep"`
}

// TriggerSweep starts one sweep over all active tenants in the background and
// returns immediately. The sweep outlives the request.
func (h *SchedulerHandler) TriggerSweep(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	go h.sched.TriggerNow(ctx)
	h.Accepted(c, SweepResponse{Sweep: "started"})
}
