package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"mesem-yoklama/config"
	"mesem-yoklama/internal/api/handler"
	"mesem-yoklama/internal/api/middleware"
	"mesem-yoklama/internal/api/router"
	"mesem-yoklama/internal/repository"
	"mesem-yoklama/internal/service"
	"mesem-yoklama/pkg/database"
	"mesem-yoklama/pkg/jwt"
	applogger "mesem-yoklama/pkg/logger"
	"mesem-yoklama/pkg/metrics"
	"mesem-yoklama/pkg/redis"
	"mesem-yoklama/pkg/validate"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("MESEM_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("template", cfg.Report.TemplatePath),
	)

	// 模板缺失不阻止启动，报表请求会返回明确错误
	if _, err := os.Stat(cfg.Report.TemplatePath); err != nil {
		logger.Warn("报表模板不可读，可使用 gentemplate 生成", zap.String("path", cfg.Report.TemplatePath), zap.Error(err))
	}

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单不可用，限流退回进程内实现", zap.Error(err))
		rdb = nil
	}
	// 仅在 Redis 可用时传入，避免把 nil 指针包装成非 nil 接口
	var (
		svcBlacklist service.TokenBlacklist
		mwBlacklist  middleware.Blacklist
	)
	if rdb != nil {
		svcBlacklist = rdb
		mwBlacklist = rdb
	}

	// 5. 初始化 JWT 管理器与校验规则
	jwtMgr := jwt.NewManager(&cfg.Auth)
	if err := validate.Register(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}

	// 6. Prometheus 指标
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, svcBlacklist, m, logger)

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Teacher.EnsureAdmin(initCtx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		initCancel()
		logger.Fatal("初始化管理员账号失败", zap.Error(err))
	}
	initCancel()

	h := handler.NewHandler(svc)

	// 8. 初始化路由
	engine := router.Setup(router.Deps{
		Config:    cfg,
		Handler:   h,
		JWT:       jwtMgr,
		Blacklist: mwBlacklist,
		Redis:     rdb,
		DB:        repo,
		Registry:  registry,
		Metrics:   m,
		Logger:    logger,
	})

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
