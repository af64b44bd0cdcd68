package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"tdlma/backend/internal/model"
	"tdlma/backend/internal/service"
	"tdlma/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// ResolveTargetUser 确定查询针对的用户。
// 管理员可查询任意用户（requested 为空表示全部）；普通用户只能查询本人，
// 传入他人 ID 时写入 403。
func ResolveTargetUser(c *gin.Context, requested string) (string, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return "", false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return "", false
	}

	if role == model.RoleAdmin {
		return requested, true
	}
	if requested != "" && requested != userID {
		response.Forbidden(c, 10003, "无权限访问")
		return "", false
	}
	return userID, true
}

// bindDateRange 解析 startDate / endDate 查询参数
func bindDateRange(c *gin.Context, startDate, endDate string) (time.Time, time.Time, bool) {
	start, end, err := service.ParseDateRange(startDate, endDate)
	if err != nil {
		response.FromError(c, err)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
