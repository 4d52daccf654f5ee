package handler

import (
	"github.com/gin-gonic/gin"
	apprecon "github.com/packhouse/backend/internal/application/reconciliation"
	"github.com/packhouse/backend/internal/interfaces/http/middleware"
)

// RunHandler handles the manual reconciliation trigger
type RunHandler struct {
	BaseHandler
	runService *apprecon.RunService
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(runService *apprecon.RunService) *RunHandler {
	return &RunHandler{runService: runService}
}

// Trigger runs one reconciliation pass for the tenant synchronously and
// returns its summary. A run already in flight for the same tenant yields a
// conflict.
func (h *RunHandler) Trigger(c *gin.Context) {
	tc, err := middleware.GetTenantContext(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	summary, err := h.runService.Run(c.Request.Context(), tc)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, summary)
}
