package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mesem-yoklama/config"
	"mesem-yoklama/internal/api/handler"
	"mesem-yoklama/internal/api/middleware"
	"mesem-yoklama/internal/model"
	"mesem-yoklama/pkg/jwt"
	"mesem-yoklama/pkg/metrics"
	"mesem-yoklama/pkg/redis"
	"mesem-yoklama/pkg/response"
)

// Pinger 健康检查依赖（数据库）
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps 路由层依赖
// Blacklist 为 nil 表示 Redis 不可用：跳过黑名单检查，限流退回进程内实现
type Deps struct {
	Config    *config.Config
	Handler   *handler.Handler
	JWT       *jwt.Manager
	Blacklist middleware.Blacklist
	Redis     *redis.Client
	DB        Pinger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	cfg := d.Config
	h := d.Handler

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.Ping(ctx); err != nil {
			d.Logger.Warn("健康检查失败", zap.Error(err))
			response.ServiceUnavailable(c, 10006, "数据库不可用")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Prometheus ──
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	loginLimit := middleware.RateLimit(d.Redis, cfg.RateLimit.LoginLimit, cfg.RateLimit.Window)
	importLimit := middleware.RateLimit(d.Redis, cfg.RateLimit.ImportLimit, cfg.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", loginLimit, h.Auth.Login)
			auth.POST("/refresh", loginLimit, h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(d.JWT, d.Blacklist, d.Logger))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 教师账号管理（管理员）
			teachers := authorized.Group("/teachers", middleware.RoleAuth(model.RoleAdmin))
			{
				teachers.GET("", h.Teacher.ListTeachers)
				teachers.POST("", h.Teacher.CreateTeacher)
				teachers.PUT("/:id", h.Teacher.UpdateTeacher)
				teachers.DELETE("/:id", h.Teacher.DeleteTeacher)
				teachers.POST("/:id/reset-password", h.Teacher.ResetPassword)
				teachers.POST("/:id/students/import", importLimit, h.Student.ImportStudentsForTeacher)
			}

			// 以下模块仅教师本人可用，数据按 token 中的教师 ID 隔离
			teacherOnly := middleware.RoleAuth(model.RoleTeacher)

			// 学生模块
			students := authorized.Group("/students", teacherOnly)
			{
				students.GET("", h.Student.ListStudents)
				students.GET("/businesses", h.Student.ListBusinesses)
				students.POST("", h.Student.CreateStudent)
				students.PUT("/:id", h.Student.UpdateStudent)
				students.DELETE("/:id", h.Student.DeleteStudent)
				students.POST("/import", importLimit, h.Student.ImportStudents)
			}

			// 考勤模块
			attendance := authorized.Group("/attendance", teacherOnly)
			{
				attendance.POST("", h.Attendance.RecordAttendance)
				attendance.GET("", h.Attendance.ListAttendance)
				attendance.GET("/groups", h.Attendance.GetGroup)
				attendance.PUT("/groups", h.Attendance.ReplaceGroup)
				attendance.DELETE("/groups", h.Attendance.DeleteGroup)
				attendance.DELETE("/:id", h.Attendance.DeleteAttendance)
			}

			// 月度报表
			reports := authorized.Group("/reports", teacherOnly)
			{
				reports.GET("/monthly", h.Report.ExportMonthly)
				reports.GET("/monthly/preview", h.Report.PreviewMonthly)
			}
		}
	}

	return r
}
