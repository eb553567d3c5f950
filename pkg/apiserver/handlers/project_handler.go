package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/apiserver/middleware"
	"github.com/taskdesk/taskdesk/pkg/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
	logger   *zap.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.projects.Create(c.Request.Context(), middleware.Actor(c), req))
}

func (h *ProjectHandler) List(c *gin.Context) {
	respond(c, h.projects.List(c.Request.Context(), middleware.Actor(c), c.Query("status")))
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respond(c, h.projects.Get(c.Request.Context(), middleware.Actor(c), id))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.projects.Update(c.Request.Context(), middleware.Actor(c), id, req))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respond(c, h.projects.Delete(c.Request.Context(), middleware.Actor(c), id))
}
