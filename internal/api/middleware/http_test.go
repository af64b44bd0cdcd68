package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(1024, map[string]int64{"/upload": 4096}))
	read := func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	}
	r.POST("/json", read)
	r.POST("/upload", read)

	tests := []struct {
		name       string
		path       string
		size       int
		wantStatus int
	}{
		{"默认上限内", "/json", 512, http.StatusOK},
		{"超出默认上限", "/json", 2048, http.StatusRequestEntityTooLarge},
		{"路由放宽上限", "/upload", 2048, http.StatusOK},
		{"超出放宽上限", "/upload", 8192, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(strings.Repeat("x", tt.size)))
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("状态码 = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	tests := []struct {
		name     string
		header   string
		wantKeep bool
	}{
		{"沿用调用方 ID", "abc-123", true},
		{"缺失时生成", "", false},
		{"超长时重新生成", strings.Repeat("a", 65), false},
		{"含空白时重新生成", "abc 123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(requestIDHeader, tt.header)
			}
			r.ServeHTTP(w, req)

			got := w.Header().Get(requestIDHeader)
			if got == "" || got != w.Body.String() {
				t.Fatalf("响应头 %q 与上下文 %q 不一致", got, w.Body.String())
			}
			if (got == tt.header) != tt.wantKeep {
				t.Errorf("request id = %q, header = %q, wantKeep = %v", got, tt.header, tt.wantKeep)
			}
		})
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(), CORS([]string{"http://localhost:3000/"}))
	r.GET("/reports/export", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("允许的来源", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reports/export", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if got := w.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "Content-Disposition") {
			t.Errorf("Expose-Headers = %q, 缺少 Content-Disposition", got)
		}
		if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
			t.Errorf("X-Frame-Options = %q", got)
		}
	})

	t.Run("未知来源不回写 CORS 头", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reports/export", nil)
		req.Header.Set("Origin", "http://evil.example")
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("预检请求", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/reports/export", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("状态码 = %d, want 204", w.Code)
		}
	})
}
