package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apprecon "github.com/packhouse/backend/internal/application/reconciliation"
	"github.com/packhouse/backend/internal/domain/reconciliation"
	"github.com/packhouse/backend/internal/domain/shared"
	"github.com/packhouse/backend/internal/interfaces/http/middleware"
)

// AlertHandler handles reconciliation alert endpoints
type AlertHandler struct {
	BaseHandler
	alertService *apprecon.AlertService
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alertService *apprecon.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// ListAlertsRequest represents alert list query parameters
type ListAlertsRequest struct {
	Type     string `form:"type" binding:"omitempty,oneof=batch_vs_lot_weight grower_intake_vs_payment team_intake_vs_payment export_vs_invoice container_vs_pallet_count labour_hours_vs_cost unpaid_batches"`
	Severity string `form:"severity" binding:"omitempty,oneof=low medium high critical"`
	Status   string `form:"status" binding:"omitempty,oneof=open acknowledged resolved dismissed"`
	RunID    string `form:"run_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at updated_at severity alert_type status variance_pct"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UpdateAlertStatusRequest represents a reviewer transition request
type UpdateAlertStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=acknowledged resolved dismissed"`
	Note   string `json:"note" binding:"max=1000"`
	Actor  string `json:"actor" binding:"omitempty,max=100"`
}

// List returns a page of the tenant's alerts
func (h *AlertHandler) List(c *gin.Context) {
	tc, err := middleware.GetTenantContext(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req ListAlertsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := reconciliation.AlertFilter{Filter: shared.DefaultFilter()}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	if req.Type != "" {
		t := reconciliation.AlertType(req.Type)
		filter.Type = &t
	}
	if req.Severity != "" {
		s := reconciliation.Severity(req.Severity)
		filter.Severity = &s
	}
	if req.Status != "" {
		s := reconciliation.AlertStatus(req.Status)
		filter.Status = &s
	}
	if req.RunID != "" {
		runID, err := uuid.Parse(req.RunID)
		if err != nil {
			h.BadRequest(c, "Invalid run ID format")
			return
		}
		filter.RunID = &runID
	}

	page, err := h.alertService.List(c.Request.Context(), tc, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns one alert by ID
func (h *AlertHandler) Get(c *gin.Context) {
	tc, err := middleware.GetTenantContext(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid alert ID format")
		return
	}

	alert, err := h.alertService.Get(c.Request.Context(), tc, alertID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, alert)
}

// UpdateStatus applies a reviewer transition to an alert
func (h *AlertHandler) UpdateStatus(c *gin.Context) {
	tc, err := middleware.GetTenantContext(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid alert ID format")
		return
	}

	var req UpdateAlertStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actor := req.Actor
	if actor == "" {
		actor = "reviewer"
	}

	alert, err := h.alertService.UpdateStatus(c.Request.Context(), tc, alertID,
		reconciliation.AlertStatus(req.Status), req.Note, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, alert)
}
