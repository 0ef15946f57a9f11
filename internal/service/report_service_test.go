package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"mesem-yoklama/config"
	"mesem-yoklama/internal/dto"
	"mesem-yoklama/internal/model"
	"mesem-yoklama/internal/report"
	"mesem-yoklama/pkg/metrics"
)

func setupTestReportService(t *testing.T) (ReportService, *mockStudentRepo, *mockAttendanceRepo, *metrics.Metrics) {
	t.Helper()
	cfg := &config.ReportConfig{
		TemplatePath:    filepath.Join(t.TempDir(), "sablon.xlsx"),
		BusinessCell:    "C3",
		PeriodCell:      "C4",
		FirstRow:        7,
		NameColumn:      "B",
		DayColumnOffset: 2,
		FilenameSuffix:  "_Devamsizlik.xlsx",
	}
	f, err := report.BuildTemplate(report.LayoutFromConfig(cfg))
	if err != nil {
		t.Fatalf("生成模板失败: %v", err)
	}
	if err := f.SaveAs(cfg.TemplatePath); err != nil {
		t.Fatalf("保存模板失败: %v", err)
	}
	_ = f.Close()

	repo, _, students, attendance := newMockRepository()
	m := metrics.New(prometheus.NewRegistry())
	return NewReportService(cfg, repo, m, zap.NewNop()), students, attendance, m
}

func seedAttendance(attendance *mockAttendanceRepo, nid, business string, day int, status model.AttendanceStatus, createdAt time.Time) {
	attendance.records = append(attendance.records, model.AttendanceRecord{
		AttendanceID:   nid + createdAt.Format("150405"),
		TeacherID:      "teacher-1",
		NationalID:     nid,
		BusinessName:   business,
		AttendanceDate: time.Date(2026, 2, day, 0, 0, 0, 0, time.UTC),
		Status:         status,
		CreatedAt:      createdAt,
	})
}

func TestExportMonthly(t *testing.T) {
	svc, students, attendance, m := setupTestReportService(t)
	seedStudent(students, "teacher-1", "s1", "Zeynep Kaya", "10000000278", "ACME")
	seedStudent(students, "teacher-1", "s2", "Ayşe Yılmaz", "10000000146", "ACME")
	seedStudent(students, "teacher-1", "s3", "Başka Firma", "10000000001", "Başka")

	t0 := time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC)
	seedAttendance(attendance, "10000000146", "ACME", 5, model.StatusPresent, t0)
	seedAttendance(attendance, "10000000146", "ACME", 5, model.StatusAbsent, t0.Add(time.Hour))
	seedAttendance(attendance, "10000000278", "ACME", 6, model.StatusExcusedMedical, t0)

	buf, filename, err := svc.ExportMonthly(context.Background(), "teacher-1", &dto.MonthlyReportRequest{
		BusinessName: "ACME", Month: 2, Year: 2026,
	})
	if err != nil {
		t.Fatalf("ExportMonthly 应成功: %v", err)
	}
	if filename != "ACME_Devamsizlik.xlsx" {
		t.Errorf("文件名错误: %s", filename)
	}

	out, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("输出文件无法打开: %v", err)
	}
	defer out.Close()
	sheet := out.GetSheetName(0)

	expect := map[string]string{
		"C3": "ACME",
		"C4": "02 / 2026",
		"B7": "Ayşe Yılmaz",
		"B8": "Zeynep Kaya",
		"G7": "D", // 5 日取最新记录
		"H8": "R",
		"H7": "+",
		"C7": "", // 2 月 1 日为周日
		"D7": "+",
		"B9": "", // 其他企业的学生不出现
	}
	for cell, want := range expect {
		got, err := out.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("读取 %s 失败: %v", cell, err)
		}
		if got != want {
			t.Errorf("%s: 期望 %q，实际 %q", cell, want, got)
		}
	}

	if got := testutil.ToFloat64(m.ReportsGenerated.WithLabelValues(metrics.ResultSuccess)); got != 1 {
		t.Errorf("期望成功计数 1，实际: %v", got)
	}
}

func TestExportMonthly_InvalidPeriod(t *testing.T) {
	svc, _, _, m := setupTestReportService(t)

	_, _, err := svc.ExportMonthly(context.Background(), "teacher-1", &dto.MonthlyReportRequest{
		BusinessName: "ACME", Month: 13, Year: 2026,
	})
	if !errors.Is(err, report.ErrInvalidPeriod) {
		t.Errorf("期望 ErrInvalidPeriod，实际: %v", err)
	}
	if got := testutil.ToFloat64(m.ReportsGenerated.WithLabelValues(metrics.ResultFailure)); got != 1 {
		t.Errorf("期望失败计数 1，实际: %v", got)
	}
}

func TestExportMonthly_StoreUnavailable(t *testing.T) {
	svc, students, attendance, _ := setupTestReportService(t)
	seedStudent(students, "teacher-1", "s1", "Ayşe", "10000000146", "ACME")
	attendance.listErr = errors.New("connection refused")

	_, _, err := svc.ExportMonthly(context.Background(), "teacher-1", &dto.MonthlyReportRequest{
		BusinessName: "ACME", Month: 2, Year: 2026,
	})
	if !errors.Is(err, report.ErrStoreUnavailable) {
		t.Errorf("期望 ErrStoreUnavailable，实际: %v", err)
	}
}

func TestPreviewMonthly(t *testing.T) {
	svc, students, attendance, _ := setupTestReportService(t)
	seedStudent(students, "teacher-1", "s1", "Ayşe", "10000000146", "ACME")

	t0 := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	seedAttendance(attendance, "10000000146", "ACME", 2, model.StatusAbsent, t0)
	seedAttendance(attendance, "10000000146", "ACME", 3, model.StatusExcusedPermission, t0)

	resp, err := svc.PreviewMonthly(context.Background(), "teacher-1", &dto.MonthlyReportRequest{
		BusinessName: "ACME", Month: 2, Year: 2026,
	})
	if err != nil {
		t.Fatalf("PreviewMonthly 应成功: %v", err)
	}
	if resp.Period != "02 / 2026" || len(resp.BusinessDays) != 20 {
		t.Errorf("期望 02 / 2026 且 20 个工作日，实际: %s / %d", resp.Period, len(resp.BusinessDays))
	}
	if len(resp.Rows) != 1 {
		t.Fatalf("期望 1 行，实际: %d", len(resp.Rows))
	}

	row := resp.Rows[0]
	if row.Days["2"] != "D" || row.Days["3"] != "İ" || row.Days["4"] != "+" {
		t.Errorf("逐日符号错误: %v", row.Days)
	}
	if _, ok := row.Days["1"]; ok {
		t.Error("周末不应出现在逐日符号中")
	}
	if row.Absent != 1 || row.Permission != 1 || row.Medical != 0 {
		t.Errorf("汇总计数错误: %+v", row)
	}
}

func TestPreviewMonthly_BusinessRequired(t *testing.T) {
	svc, _, _, _ := setupTestReportService(t)

	_, err := svc.PreviewMonthly(context.Background(), "teacher-1", &dto.MonthlyReportRequest{Month: 2, Year: 2026})
	if !errors.Is(err, report.ErrBusinessRequired) {
		t.Errorf("期望 ErrBusinessRequired，实际: %v", err)
	}
}
