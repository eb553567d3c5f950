package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/apiserver/middleware"
	"github.com/taskdesk/taskdesk/pkg/service"
)

type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.auth.Login(c.Request.Context(), req.Username, req.Password))
}

func (h *AuthHandler) Me(c *gin.Context) {
	respond(c, h.auth.Me(c.Request.Context(), middleware.Actor(c)))
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.auth.ChangePassword(c.Request.Context(), middleware.Actor(c), req.OldPassword, req.NewPassword))
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.auth.ForgotPassword(c.Request.Context(), req.Email))
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword))
}
