package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/service"
	"tdlma/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportReport 导出账务报表
// GET /api/v1/export/reports?startDate=&endDate=
func (h *ExportHandler) ExportReport(c *gin.Context) {
	var req dto.ReportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "startDate 与 endDate 不能为空")
		return
	}
	start, end, ok := bindDateRange(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportReport(c.Request.Context(), start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.PathEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
