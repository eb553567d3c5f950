package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/apiserver/middleware"
	"github.com/taskdesk/taskdesk/pkg/service"
)

// MiscHandler covers the dashboard, escalations and the reference lookups.
type MiscHandler struct {
	dashboard   *service.DashboardService
	escalations *service.EscalationService
	reference   *service.ReferenceService
	logger      *zap.Logger
}

func NewMiscHandler(dashboard *service.DashboardService, escalations *service.EscalationService, reference *service.ReferenceService, logger *zap.Logger) *MiscHandler {
	return &MiscHandler{dashboard: dashboard, escalations: escalations, reference: reference, logger: logger}
}

func (h *MiscHandler) DashboardStats(c *gin.Context) {
	respond(c, h.dashboard.Stats(c.Request.Context(), middleware.Actor(c)))
}

func (h *MiscHandler) EscalateToLeader(c *gin.Context) {
	var req service.EscalationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.escalations.ToLeader(c.Request.Context(), middleware.Actor(c), req))
}

func (h *MiscHandler) EscalateToPMO(c *gin.Context) {
	var req service.EscalationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.escalations.ToPMO(c.Request.Context(), middleware.Actor(c), req))
}

func (h *MiscHandler) Departments(c *gin.Context) {
	respond(c, h.reference.Departments(c.Request.Context()))
}

func (h *MiscHandler) CreateDepartment(c *gin.Context) {
	var req service.CreateDepartmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.reference.CreateDepartment(c.Request.Context(), middleware.Actor(c), req))
}

func (h *MiscHandler) Roles(c *gin.Context) {
	respond(c, h.reference.Roles(c.Request.Context()))
}

func (h *MiscHandler) Labels(c *gin.Context) {
	respond(c, h.reference.Labels(c.Request.Context()))
}

func (h *MiscHandler) MyDepartment(c *gin.Context) {
	respond(c, h.reference.MyDepartment(c.Request.Context(), middleware.Actor(c)))
}
