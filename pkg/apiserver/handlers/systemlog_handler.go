package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/apiserver/middleware"
	"github.com/taskdesk/taskdesk/pkg/service"
)

type SystemLogHandler struct {
	logs   *service.SystemLogService
	logger *zap.Logger
}

func NewSystemLogHandler(logs *service.SystemLogService, logger *zap.Logger) *SystemLogHandler {
	return &SystemLogHandler{logs: logs, logger: logger}
}

func (h *SystemLogHandler) List(c *gin.Context) {
	in := service.ListSystemLogsInput{
		Action:     c.Query("action"),
		TargetType: c.Query("targetType"),
		TargetID:   c.Query("targetId"),
		Limit:      parseLimit(c.Query("limit"), 50),
		Offset:     parseOffset(c.Query("offset")),
	}

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "from không hợp lệ, cần định dạng RFC3339")
			return
		}
		in.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "to không hợp lệ, cần định dạng RFC3339")
			return
		}
		in.To = &t
	}
	actorID, ok := queryUUID(c, "actorId")
	if !ok {
		return
	}
	in.ActorID = actorID

	respond(c, h.logs.List(c.Request.Context(), middleware.Actor(c), in))
}

func (h *SystemLogHandler) Actions(c *gin.Context) {
	respond(c, h.logs.Actions(c.Request.Context()))
}
