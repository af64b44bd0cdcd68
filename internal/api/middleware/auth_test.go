package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tdlma/backend/config"
	"tdlma/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(jwtMgr *jwt.Manager, roles ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{JWTAuth(jwtMgr, nil)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleAuth(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   c.GetString("user_id"),
			"token_jti": c.GetString("token_jti"),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: time.Hour,
	})
	token, err := jwtMgr.GenerateAccessToken("u1", "user")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		roles      []string
		wantStatus int
	}{
		{"有效 Token", "Bearer " + token, nil, http.StatusOK},
		{"缺少认证头", "", nil, http.StatusUnauthorized},
		{"格式错误", "Token " + token, nil, http.StatusUnauthorized},
		{"无效 Token", "Bearer not-a-jwt", nil, http.StatusUnauthorized},
		{"角色不足", "Bearer " + token, []string{"admin"}, http.StatusForbidden},
		{"角色满足", "Bearer " + token, []string{"admin", "user"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(jwtMgr, tt.roles...)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("期望 HTTP %d，实际=%d，body=%s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}
