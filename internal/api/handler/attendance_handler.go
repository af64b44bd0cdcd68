package handler

import (
	"github.com/gin-gonic/gin"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/service"
	"tdlma/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Mark 本人申报出勤
// PUT /api/v1/attendance
func (h *AttendanceHandler) Mark(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.Mark(c.Request.Context(), userID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}

// SetOpen 开/关餐（管理员）
// PUT /api/v1/attendance/open
func (h *AttendanceHandler) SetOpen(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SetOpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.SetOpen(c.Request.Context(), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}

// List 考勤记录（含实时计算的 remark 与 fine）
// GET /api/v1/attendance?user_id=&startDate=&endDate=
func (h *AttendanceHandler) List(c *gin.Context) {
	var req dto.AttendanceListRequest
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

	result, err := h.attendanceSvc.List(c.Request.Context(), target, start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}
