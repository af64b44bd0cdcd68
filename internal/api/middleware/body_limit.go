package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tdlma/backend/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// defaultMax 适用于所有 JSON 接口；overrides 按路由模板（c.FullPath()）放宽上限，
// 例如 ICS 导入需要容纳 2MB 文件加上 multipart 开销
func BodyLimit(defaultMax int64, overrides map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultMax
		if v, ok := overrides[c.FullPath()]; ok {
			limit = v
		}
		if c.Request.Body != nil && limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, e := range c.Errors {
			if IsBodyTooLarge(e.Err) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
				return
			}
		}
	}
}

// IsBodyTooLarge 判断错误是否由 MaxBytesReader 截断引起
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
