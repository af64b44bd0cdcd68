package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tdlma/backend/config"
	"tdlma/backend/internal/api/handler"
	"tdlma/backend/internal/api/middleware"
	"tdlma/backend/internal/model"
	"tdlma/backend/internal/service"
	"tdlma/backend/pkg/jwt"
	"tdlma/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// db 仅用于健康检查，可为 nil
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes, map[string]int64{
		"/api/v1/off-days/import": service.ICSMaxFileSize + 64<<10,
	}))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 配置模块
			settings := authorized.Group("/settings")
			{
				settings.GET("", h.Setting.GetSettings)
				settings.PATCH("/field", admin, h.Setting.UpdateField)
				settings.GET("/history", admin, h.Setting.History)
				settings.POST("/guest-price/apply", admin, h.Setting.ApplyGuestPrice)
			}

			// 账务报表模块
			reports := authorized.Group("/reports")
			{
				reports.GET("", admin, h.Report.GetReport)
				reports.GET("/users/:id", h.Report.GetUserReport) // admin 或本人（Handler 层鉴权）
			}

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.GET("", admin, h.User.ListUsers)
				users.POST("", admin, h.User.CreateUser)
				users.GET("/:id", h.User.GetUser) // admin 或本人
				users.PUT("/:id/status", admin, h.User.SetStatus)
			}

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.PUT("", h.Attendance.Mark)
				attendance.PUT("/open", admin, h.Attendance.SetOpen)
				attendance.GET("", h.Attendance.List)
			}

			// 休息日模块
			offDays := authorized.Group("/off-days")
			{
				offDays.GET("", h.OffDay.List)
				offDays.POST("", admin, h.OffDay.Create)
				offDays.DELETE("/:id", admin, h.OffDay.Delete)
				offDays.POST("/import", admin, h.OffDay.Import)
			}

			// 访客餐模块
			guests := authorized.Group("/guests")
			{
				guests.POST("", h.Guest.Create)
				guests.GET("", h.Guest.List)
			}

			// 交易流水模块
			transactions := authorized.Group("/transactions")
			{
				transactions.POST("", admin, h.Transaction.Record)
				transactions.GET("", h.Transaction.List) // admin 或本人
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/reports", admin, h.Export.ExportReport)
			}
		}
	}

	return r
}
