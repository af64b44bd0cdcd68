package handler

import (
	"github.com/gin-gonic/gin"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/service"
	"tdlma/backend/pkg/response"
)

// GuestHandler 访客餐 HTTP 处理器
type GuestHandler struct {
	guestSvc service.GuestService
}

// NewGuestHandler 创建 GuestHandler
func NewGuestHandler(guestSvc service.GuestService) *GuestHandler {
	return &GuestHandler{guestSvc: guestSvc}
}

// Create 登记访客餐，邀请人为当前用户
// POST /api/v1/guests
func (h *GuestHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.guestSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, result)
}

// List 访客餐列表
// GET /api/v1/guests?user_id=&startDate=&endDate=
func (h *GuestHandler) List(c *gin.Context) {
	var req dto.GuestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "startDate 与 endDate 不能为空")
		return
	}
	target, ok := ResolveTargetUser(c, req.UserID)
	if !ok {
		return
	}
	start, end, ok := bindDateRange(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	result, err := h.guestSvc.List(c.Request.Context(), target, start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}
