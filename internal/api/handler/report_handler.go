package handler

import (
	"github.com/gin-gonic/gin"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/service"
	"tdlma/backend/pkg/response"
)

// ReportHandler 账务报表 HTTP 处理器
type ReportHandler struct {
	duesSvc service.DuesService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(duesSvc service.DuesService) *ReportHandler {
	return &ReportHandler{duesSvc: duesSvc}
}

// GetReport 全员账务报表（管理员）
// GET /api/v1/reports?startDate=&endDate=
// 按 ledger.fine_policy 计算；current 策略下响应带 approximation 说明

func (h *ReportHandler) GetReport(c *gin.Context) {
	var req dto.ReportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "startDate 与 endDate 不能为空")
		return
	}
	start, end, ok := bindDateRange(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	report, err := h.duesSvc.Aggregate(c.Request.Context(), start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, report)
}

// GetUserReport 单个用户账务（管理员或本人）
// GET /api/v1/reports/users/:id?startDate=&endDate=
// 罚款与基础费用固定按各日期当日生效的配置计算（point_in_time）。
// 当 ledger.fine_policy=current 时，全员报表 GET /reports 中同一用户的行按当前配置计算，
// 两者金额可能不同，不应相互对账；以响应中的 fine_policy 字段区分

func (h *ReportHandler) GetUserReport(c *gin.Context) {
	target, ok := ResolveTargetUser(c, c.Param("id"))
	if !ok {
		return
	}

	var req dto.ReportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "startDate 与 endDate 不能为空")
		return
	}
	start, end, ok := bindDateRange(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	result, err := h.duesSvc.Reconcile(c.Request.Context(), target, start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}
