package service

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"mesem-yoklama/config"
	"mesem-yoklama/internal/dto"
	"mesem-yoklama/internal/report"
	"mesem-yoklama/internal/repository"
	"mesem-yoklama/pkg/metrics"
)

// ReportService 月度缺勤报表
//
// 每次请求独立执行 读取 → 汇总 → 渲染，无跨请求共享的可变状态；
// 任一阶段失败即整体失败，不返回部分文件，也不重试。
// 返回的错误可用 errors.Is 匹配 report 包中的错误类型
type ReportService interface {
	// ExportMonthly 返回 xlsx 内容与建议文件名
	ExportMonthly(ctx context.Context, teacherID string, req *dto.MonthlyReportRequest) (*bytes.Buffer, string, error)
	// PreviewMonthly 返回与导出一致的汇总结果（不渲染模板）
	PreviewMonthly(ctx context.Context, teacherID string, req *dto.MonthlyReportRequest) (*dto.MonthlyPreviewResponse, error)
}

type reportService struct {
	reader    *report.Reader
	projector *report.Projector
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(cfg *config.ReportConfig, repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) ReportService {
	return &reportService{
		reader:    report.NewReader(repo.Attendance, repo.Student),
		projector: report.NewProjector(cfg),
		metrics:   m,
		logger:    logger,
	}
}

// ════════════════════════════════════════════════════════════
// ExportMonthly 月度缺勤表导出
// ════════════════════════════════════════════════════════════

func (s *reportService) ExportMonthly(ctx context.Context, teacherID string, req *dto.MonthlyReportRequest) (*bytes.Buffer, string, error) {
	start := time.Now()
	business := strings.TrimSpace(req.BusinessName)

	period, rows, err := s.resolve(ctx, teacherID, business, req.Month, req.Year)
	if err != nil {
		s.fail(err, teacherID, business, req, start)
		return nil, "", err
	}

	buf, filename, err := s.projector.Render(business, period, rows)
	if err != nil {
		s.fail(err, teacherID, business, req, start)
		return nil, "", err
	}

	s.metrics.ObserveReport(metrics.ResultSuccess, time.Since(start))
	s.logger.Info("月度报表已生成",
		zap.String("teacher_id", teacherID),
		zap.String("business", business),
		zap.String("period", period.Label()),
		zap.Int("students", len(rows)),
		zap.Int("bytes", buf.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return buf, filename, nil
}

// ════════════════════════════════════════════════════════════
// PreviewMonthly 汇总结果预览
// ════════════════════════════════════════════════════════════

func (s *reportService) PreviewMonthly(ctx context.Context, teacherID string, req *dto.MonthlyReportRequest) (*dto.MonthlyPreviewResponse, error) {
	business := strings.TrimSpace(req.BusinessName)

	period, rows, err := s.resolve(ctx, teacherID, business, req.Month, req.Year)
	if err != nil {
		s.logger.Warn("月度报表预览失败",
			zap.String("teacher_id", teacherID),
			zap.String("business", business),
			zap.Error(err),
		)
		return nil, err
	}

	resp := &dto.MonthlyPreviewResponse{
		BusinessName: business,
		Period:       period.Label(),
		BusinessDays: period.BusinessDays(),
		Rows:         make([]dto.MonthlyRowEntry, 0, len(rows)),
	}
	for _, row := range rows {
		entry := dto.MonthlyRowEntry{
			StudentID:  row.StudentID,
			NationalID: row.NationalID,
			Name:       row.Name,
			Days:       make(map[string]string, len(row.Days)),
			Absent:     row.Count(report.SymbolAbsent),
			Permission: row.Count(report.SymbolPermission),
			Medical:    row.Count(report.SymbolMedical),
		}
		for _, d := range row.Days {
			entry.Days[strconv.Itoa(d.Day)] = string(d.Symbol)
		}
		resp.Rows = append(resp.Rows, entry)
	}
	return resp, nil
}

// resolve 校验月份 → 读取学生与考勤 → 汇总
func (s *reportService) resolve(ctx context.Context, teacherID, business string, month, year int) (report.Period, []report.StudentRow, error) {
	period, err := report.NewPeriod(month, year)
	if err != nil {
		return report.Period{}, nil, err
	}

	students, err := s.reader.FetchStudents(ctx, teacherID, business)
	if err != nil {
		return report.Period{}, nil, err
	}
	records, err := s.reader.FetchMonthRecords(ctx, teacherID, business, period)
	if err != nil {
		return report.Period{}, nil, err
	}

	return period, report.ResolveMonth(students, records, period), nil
}

func (s *reportService) fail(err error, teacherID, business string, req *dto.MonthlyReportRequest, start time.Time) {
	s.metrics.ObserveReport(metrics.ResultFailure, time.Since(start))
	s.logger.Error("月度报表生成失败",
		zap.String("teacher_id", teacherID),
		zap.String("business", business),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
		zap.Error(err),
	)
}
