package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tdlma/backend/config"
	"tdlma/backend/internal/api/handler"
	"tdlma/backend/internal/api/router"
	"tdlma/backend/internal/repository"
	"tdlma/backend/internal/service"
	"tdlma/backend/pkg/database"
	"tdlma/backend/pkg/jwt"
	applogger "tdlma/backend/pkg/logger"
	"tdlma/backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 本地开发时 .env 中的 TDLMA_* 变量参与配置覆盖；文件不存在不报错
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("TDLMA_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("服务异常退出", zap.Error(err))
		os.Exit(1)
	}
}

// run 装配依赖并阻塞到 ctx 取消（收到关闭信号）
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("ledger_timezone", cfg.Ledger.Timezone),
		zap.String("fine_policy", cfg.Ledger.FinePolicy),
		zap.Bool("sunday_off", cfg.Ledger.SundayOff),
	)
	if cfg.Ledger.FinePolicy == config.FinePolicyCurrent {
		logger.Warn("汇总报表罚款按当前配置统一计算，历史罚款调整不会回溯")
	}

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDatabase(db, logger)

	// Redis 可选：不可用时降级运行
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、限流与配置快照缓存将不可用", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	// ── 依赖注入: Repository → Service → Handler ──
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := service.NewService(cfg, repository.NewRepository(db), jwtMgr, rdb, logger)
	engine := router.Setup(cfg, handler.NewHandler(svc), jwtMgr, rdb, db, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// 导出大区间 xlsx 需要更长写超时
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serve(ctx, srv, logger)
}

func openDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	// 迁移失败直接退出：配置版本表的唯一索引是并发写入的最后防线
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return db, nil
}

func closeDatabase(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}
}

// serve 启动 HTTP 服务，ctx 取消后优雅关闭
func serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP 服务器异常: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("收到关闭信号，开始优雅关闭...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务器关闭异常: %w", err)
	}

	logger.Info("服务器已关闭")
	return nil
}
