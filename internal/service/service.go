package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mesem-yoklama/config"
	"mesem-yoklama/internal/repository"
	"mesem-yoklama/pkg/jwt"
	"mesem-yoklama/pkg/metrics"
)

// TokenBlacklist Token 黑名单存储（Redis 实现见 pkg/redis）
// 为 nil 时注销仅在客户端生效
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Teacher    TeacherService
	Student    StudentService
	Attendance AttendanceService
	Report     ReportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, logger),
		Teacher:    NewTeacherService(repo, logger),
		Student:    NewStudentService(&cfg.Import, repo, m, logger),
		Attendance: NewAttendanceService(cfg.App.Location(), repo, logger),
		Report:     NewReportService(&cfg.Report, repo, m, logger),
	}
}
