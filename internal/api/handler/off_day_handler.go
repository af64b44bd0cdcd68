package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/service"
	"tdlma/backend/pkg/response"
)

// OffDayHandler 休息日 HTTP 处理器
type OffDayHandler struct {
	offDaySvc service.OffDayService
}

// NewOffDayHandler 创建 OffDayHandler
func NewOffDayHandler(offDaySvc service.OffDayService) *OffDayHandler {
	return &OffDayHandler{offDaySvc: offDaySvc}
}

// Create 新增休息日（管理员）
// POST /api/v1/off-days
func (h *OffDayHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateOffDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.offDaySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, result)
}

// List 休息日列表
// GET /api/v1/off-days?startDate=&endDate=
func (h *OffDayHandler) List(c *gin.Context) {
	var req dto.OffDayListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "startDate 与 endDate 不能为空")
		return
	}
	start, end, ok := bindDateRange(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	result, err := h.offDaySvc.List(c.Request.Context(), start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除休息日（管理员）
// DELETE /api/v1/off-days/:id
func (h *OffDayHandler) Delete(c *gin.Context) {
	if err := h.offDaySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// Import 从节假日 ICS 文件批量导入休息日（管理员）
// POST /api/v1/off-days/import  (multipart, 字段名 file)
func (h *OffDayHandler) Import(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "文件大小不能超过 2MB")
			return
		}
		response.BadRequest(c, 10001, "请上传 ICS 文件")
		return
	}
	if fileHeader.Size > service.ICSMaxFileSize {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "文件大小不能超过 2MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return
	}
	defer file.Close()

	result, err := h.offDaySvc.ImportICS(c.Request.Context(), file, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}
