package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/apiserver/middleware"
	"github.com/taskdesk/taskdesk/pkg/service"
)

type NotificationHandler struct {
	notifications *service.NotificationService
	logger        *zap.Logger
}

func NewNotificationHandler(notifications *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

func (h *NotificationHandler) List(c *gin.Context) {
	respond(c, h.notifications.List(
		c.Request.Context(),
		middleware.Actor(c),
		c.Query("unread") == "true",
		parseLimit(c.Query("limit"), 20),
		parseOffset(c.Query("offset")),
	))
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	respond(c, h.notifications.UnreadCount(c.Request.Context(), middleware.Actor(c)))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respond(c, h.notifications.MarkRead(c.Request.Context(), middleware.Actor(c), id))
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	respond(c, h.notifications.MarkAllRead(c.Request.Context(), middleware.Actor(c)))
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respond(c, h.notifications.Delete(c.Request.Context(), middleware.Actor(c), id))
}
