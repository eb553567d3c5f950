package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/apiserver/middleware"
	"github.com/taskdesk/taskdesk/pkg/service"
)

type AccountHandler struct {
	accounts *service.AccountService
	logger   *zap.Logger
}

func NewAccountHandler(accounts *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req service.CreateAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.accounts.Create(c.Request.Context(), middleware.Actor(c), req))
}

func (h *AccountHandler) List(c *gin.Context) {
	roleID, ok := queryUUID(c, "roleId")
	if !ok {
		return
	}
	departmentID, ok := queryUUID(c, "departmentId")
	if !ok {
		return
	}
	respond(c, h.accounts.List(c.Request.Context(), middleware.Actor(c), service.ListAccountsInput{
		Status:       c.Query("status"),
		RoleID:       roleID,
		DepartmentID: departmentID,
		Search:       c.Query("search"),
		Limit:        parseLimit(c.Query("limit"), 50),
		Offset:       parseOffset(c.Query("offset")),
	}))
}

func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respond(c, h.accounts.Get(c.Request.Context(), middleware.Actor(c), id))
}

func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dữ liệu không hợp lệ")
		return
	}
	respond(c, h.accounts.Update(c.Request.Context(), middleware.Actor(c), id, req))
}

func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respond(c, h.accounts.Delete(c.Request.Context(), middleware.Actor(c), id))
}

func (h *AccountHandler) Restore(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	respond(c, h.accounts.Restore(c.Request.Context(), middleware.Actor(c), id))
}
