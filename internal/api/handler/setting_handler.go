package handler

import (
	"github.com/gin-gonic/gin"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/service"
	"tdlma/backend/pkg/response"
)

// SettingHandler 配置模块 HTTP 处理器
type SettingHandler struct {
	settingSvc service.SettingService
}

// NewSettingHandler 创建 SettingHandler
func NewSettingHandler(settingSvc service.SettingService) *SettingHandler {
	return &SettingHandler{settingSvc: settingSvc}
}

// GetSettings 获取当前生效的全部配置
// GET /api/v1/settings
func (h *SettingHandler) GetSettings(c *gin.Context) {
	result, err := h.settingSvc.GetCurrentAll(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateField 为单个配置项追加新版本（管理员）
// PATCH /api/v1/settings/field
func (h *SettingHandler) UpdateField(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.settingSvc.SetCurrentValue(c.Request.Context(), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}

// History 配置项版本历史，新版本在前（管理员）
// GET /api/v1/settings/history?settingKey=
func (h *SettingHandler) History(c *gin.Context) {
	key := c.Query("settingKey")
	if key == "" {
		response.BadRequest(c, 10001, "settingKey 不能为空")
		return
	}

	result, err := h.settingSvc.History(c.Request.Context(), key)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}

// ApplyGuestPrice 按当前访客餐单价重算其生效区间内的访客餐（管理员）
// POST /api/v1/settings/guest-price/apply
func (h *SettingHandler) ApplyGuestPrice(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.settingSvc.ApplyGuestPrice(c.Request.Context(), callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, result)
}
