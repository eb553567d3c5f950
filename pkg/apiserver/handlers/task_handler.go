package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/apiserver/middleware"
	"github.com/taskdesk/taskdesk/pkg/service"
)

type TaskHandler struct {
	tasks   *service.TaskService
	items   *service.TaskItemService
	reports *service.TaskReportService
	logger  *zap.Logger
}

func NewTaskHandler(tasks *service.TaskService, items *service.TaskItemService, reports *service.TaskReportService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, items: items, reports: reports, logger: logger}
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req service.CreateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.tasks.Create(c.Request.Context(), middleware.Actor(c), req))
}

func (h *TaskHandler) List(c *gin.Context) {
	projectID, ok := queryUUID(c, "projectId")
	if !ok {
		return
	}
	respond(c, h.tasks.List(c.Request.Context(), middleware.Actor(c), service.ListTasksInput{
		ProjectID:    projectID,
		Status:       c.Query("status"),
		TopLevelOnly: c.Query("topLevel") == "true",
	}))
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respond(c, h.tasks.Get(c.Request.Context(), middleware.Actor(c), id))
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.tasks.Update(c.Request.Context(), middleware.Actor(c), id, req))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respond(c, h.tasks.Delete(c.Request.Context(), middleware.Actor(c), id))
}

// --- checklist ---

func (h *TaskHandler) AddChecklistItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.items.AddChecklistItem(c.Request.Context(), middleware.Actor(c), id, req.Content))
}

func (h *TaskHandler) UpdateChecklistItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}
	var req service.UpdateChecklistInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.items.UpdateChecklistItem(c.Request.Context(), middleware.Actor(c), id, itemID, req))
}

func (h *TaskHandler) DeleteChecklistItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}
	respond(c, h.items.DeleteChecklistItem(c.Request.Context(), middleware.Actor(c), id, itemID))
}

// --- labels ---

func (h *TaskHandler) AttachLabel(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.AttachLabelInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.items.AttachLabel(c.Request.Context(), middleware.Actor(c), id, req))
}

func (h *TaskHandler) DetachLabel(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	labelID, ok := pathUUID(c, "labelId")
	if !ok {
		return
	}
	respond(c, h.items.DetachLabel(c.Request.Context(), middleware.Actor(c), id, labelID))
}

// --- attachments ---

func (h *TaskHandler) AddAttachment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.AddAttachmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.items.AddAttachment(c.Request.Context(), middleware.Actor(c), id, req))
}

func (h *TaskHandler) DeleteAttachment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := pathUUID(c, "attachmentId")
	if !ok {
		return
	}
	respond(c, h.items.DeleteAttachment(c.Request.Context(), middleware.Actor(c), id, attachmentID))
}

// --- comments ---

func (h *TaskHandler) AddComment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.items.AddComment(c.Request.Context(), middleware.Actor(c), id, req.Content))
}

func (h *TaskHandler) UpdateComment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathUUID(c, "commentId")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.items.UpdateComment(c.Request.Context(), middleware.Actor(c), id, commentID, req.Content))
}

func (h *TaskHandler) DeleteComment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathUUID(c, "commentId")
	if !ok {
		return
	}
	respond(c, h.items.DeleteComment(c.Request.Context(), middleware.Actor(c), id, commentID))
}

// --- reports ---

func (h *TaskHandler) CreateReport(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.CreateReportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.reports.Create(c.Request.Context(), middleware.Actor(c), id, req))
}

func (h *TaskHandler) ListReports(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respond(c, h.reports.List(c.Request.Context(), middleware.Actor(c), id))
}

func (h *TaskHandler) UpdateReport(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	reportID, ok := pathUUID(c, "reportId")
	if !ok {
		return
	}
	var req service.UpdateReportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.reports.Update(c.Request.Context(), middleware.Actor(c), id, reportID, req))
}

func (h *TaskHandler) DeleteReport(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	reportID, ok := pathUUID(c, "reportId")
	if !ok {
		return
	}
	respond(c, h.reports.Delete(c.Request.Context(), middleware.Actor(c), id, reportID))
}
