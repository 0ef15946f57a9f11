package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mesem-yoklama/config"
	"mesem-yoklama/internal/dto"
	"mesem-yoklama/internal/model"
	"mesem-yoklama/internal/report"
	"mesem-yoklama/internal/repository"
	"mesem-yoklama/pkg/metrics"
	"mesem-yoklama/pkg/phone"
	"mesem-yoklama/pkg/validate"
)

// ── 学生模块业务错误 ──

var (
	ErrStudentNotFound  = errors.New("学生不存在")
	ErrNationalIDExists = errors.New("该身份证号的学生已存在")
)

// 未填写企业名称时的占位值
const defaultBusinessName = "-"

// StudentService 学生业务接口（所有操作以 teacherID 限定归属）
type StudentService interface {
	List(ctx context.Context, teacherID string, req *dto.StudentListRequest) ([]dto.StudentResponse, error)
	ListBusinesses(ctx context.Context, teacherID string) ([]string, error)
	Create(ctx context.Context, teacherID string, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	Update(ctx context.Context, teacherID, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, teacherID, id string) error
	ParseImportFile(reader io.Reader) ([]ImportStudentRow, error)
	ImportStudents(ctx context.Context, teacherID string, rows []ImportStudentRow, callerID string) (*dto.ImportResponse, error)
}

// ImportStudentRow Excel 导入解析后的单行数据
type ImportStudentRow struct {
	Row          int
	FullName     string
	NationalID   string
	BusinessName string
	Phone        string
}

type studentService struct {
	cfg     *config.ImportConfig
	repo    *repository.Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(cfg *config.ImportConfig, repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) StudentService {
	return &studentService{cfg: cfg, repo: repo, metrics: m, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, teacherID string, req *dto.StudentListRequest) ([]dto.StudentResponse, error) {
	students, err := s.repo.Student.ListByTeacher(ctx, teacherID, strings.TrimSpace(req.BusinessName))
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}

	// 数据库排序不识别土耳其语字母顺序，返回前重新排序
	sorted := report.SortStudents(students)
	list := make([]dto.StudentResponse, 0, len(sorted))
	for i := range sorted {
		list = append(list, toStudentResponse(&sorted[i]))
	}
	return list, nil
}

func (s *studentService) ListBusinesses(ctx context.Context, teacherID string) ([]string, error) {
	names, err := s.repo.Student.ListBusinesses(ctx, teacherID)
	if err != nil {
		s.logger.Error("查询企业列表失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	return names, nil
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, teacherID string, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	nid := strings.TrimSpace(req.NationalID)
	if err := s.checkNationalIDFree(ctx, teacherID, nid, ""); err != nil {
		return nil, err
	}

	student := &model.Student{
		TeacherID:    teacherID,
		FullName:     strings.TrimSpace(req.FullName),
		NationalID:   nid,
		BusinessName: businessOrDefault(req.BusinessName),
		Phone:        phone.Normalize(req.Phone),
	}
	student.CreatedBy = &teacherID

	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}

	resp := toStudentResponse(student)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, teacherID, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.getStudent(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}

	if req.NationalID != nil {
		nid := strings.TrimSpace(*req.NationalID)
		if nid != student.NationalID {
			if err := s.checkNationalIDFree(ctx, teacherID, nid, id); err != nil {
				return nil, err
			}
			student.NationalID = nid
		}
	}
	if req.FullName != nil {
		student.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.BusinessName != nil {
		student.BusinessName = businessOrDefault(*req.BusinessName)
	}
	if req.Phone != nil {
		student.Phone = phone.Normalize(*req.Phone)
	}
	student.Version = req.Version
	student.UpdatedBy = &teacherID

	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Warn("更新学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toStudentResponse(student)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, teacherID, id string) error {
	if err := s.repo.Student.Delete(ctx, teacherID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("删除学生失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

var (
	ErrImportNoData      = errors.New("Excel 文件无数据行（第一行为表头）")
	ErrImportTooManyRows = errors.New("数据行数超过上限")
	ErrImportBadHeader   = errors.New("Excel 表头缺少必要列（adSoyad / tcNo）")
	ErrImportBadFile     = errors.New("无法解析 Excel 文件")
)

// 表头词汇表：固定列名（大小写不敏感），不做模糊匹配
var importHeaders = map[string]string{
	"adsoyad":       "full_name",
	"full_name":     "full_name",
	"tcno":          "national_id",
	"national_id":   "national_id",
	"isletmeadi":    "business_name",
	"business_name": "business_name",
	"telefon":       "phone",
	"phone":         "phone",
}

// ParseImportFile 解析花名册 Excel（第一个工作表，首行为表头）
func (s *studentService) ParseImportFile(reader io.Reader) ([]ImportStudentRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportBadFile, err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportBadFile, err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["full_name"] < 0 || colIndex["national_id"] < 0 {
		return nil, ErrImportBadHeader
	}

	cell := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportStudentRow
	for i := 1; i < len(excelRows); i++ {
		item := ImportStudentRow{
			Row:          i + 1,
			FullName:     cell(excelRows[i], "full_name"),
			NationalID:   cell(excelRows[i], "national_id"),
			BusinessName: cell(excelRows[i], "business_name"),
			Phone:        cell(excelRows[i], "phone"),
		}

		// 跳过全空行
		if item.FullName == "" && item.NationalID == "" && item.BusinessName == "" && item.Phone == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if s.cfg.MaxRows > 0 && len(rows) > s.cfg.MaxRows {
		return nil, fmt.Errorf("%w: %d 行（上限 %d）", ErrImportTooManyRows, len(rows), s.cfg.MaxRows)
	}
	return rows, nil
}

// parseHeaderIndex 解析表头，返回字段 -> 列索引映射（缺失为 -1）
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"full_name":     -1,
		"national_id":   -1,
		"business_name": -1,
		"phone":         -1,
	}
	for i, h := range header {
		if key, ok := importHeaders[strings.ToLower(strings.TrimSpace(h))]; ok && idx[key] < 0 {
			idx[key] = i
		}
	}
	return idx
}

// ────────────────────── ImportStudents ──────────────────────

// ImportStudents 两阶段导入：先逐行校验，再在一个事务中分批写入所有通过校验的行
func (s *studentService) ImportStudents(ctx context.Context, teacherID string, rows []ImportStudentRow, callerID string) (*dto.ImportResponse, error) {
	teacher, err := s.repo.User.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	if teacher.Role != model.RoleTeacher {
		return nil, ErrTeacherNotFound
	}

	existing, err := s.repo.Student.ListNationalIDs(ctx, teacherID)
	if err != nil {
		s.logger.Error("查询已有身份证号失败", zap.Error(err))
		return nil, err
	}
	seen := make(map[string]int, len(existing)+len(rows))
	for _, nid := range existing {
		seen[nid] = 0
	}

	resp := &dto.ImportResponse{Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportError{Row: row, Reason: reason})
	}

	// 第一阶段：逐行校验
	valid := make([]model.Student, 0, len(rows))
	for _, row := range rows {
		if row.FullName == "" || row.NationalID == "" {
			fail(row.Row, "缺少姓名或身份证号")
			continue
		}
		if !validate.IsNationalID(row.NationalID) {
			fail(row.Row, "身份证号格式错误")
			continue
		}
		if first, dup := seen[row.NationalID]; dup {
			if first == 0 {
				fail(row.Row, "身份证号已存在")
			} else {
				fail(row.Row, fmt.Sprintf("与第 %d 行身份证号重复", first))
			}
			continue
		}
		seen[row.NationalID] = row.Row

		st := model.Student{
			TeacherID:    teacherID,
			FullName:     row.FullName,
			NationalID:   row.NationalID,
			BusinessName: businessOrDefault(row.BusinessName),
			Phone:        phone.Normalize(row.Phone),
		}
		st.CreatedBy = &callerID
		valid = append(valid, st)
	}

	// 第二阶段：事务内分批写入
	if len(valid) > 0 {
		if err := s.repo.Student.BatchCreate(ctx, valid, s.cfg.BatchSize); err != nil {
			s.logger.Error("导入学生写入失败，事务回滚",
				zap.String("teacher_id", teacherID), zap.Int("rows", len(valid)), zap.Error(err))
			return nil, fmt.Errorf("写入数据库失败，已回滚全部导入: %w", err)
		}
		resp.Success = len(valid)
		s.metrics.AddImported(len(valid))
	}

	s.logger.Info("花名册导入完成",
		zap.String("teacher_id", teacherID),
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// ── 内部辅助方法 ──

func (s *studentService) getStudent(ctx context.Context, teacherID, id string) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, teacherID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return student, nil
}

func (s *studentService) checkNationalIDFree(ctx context.Context, teacherID, nid, selfID string) error {
	existing, err := s.repo.Student.GetByNationalID(ctx, teacherID, nid)
	if err == nil {
		if existing.StudentID != selfID {
			return ErrNationalIDExists
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func businessOrDefault(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return defaultBusinessName
	}
	return name
}

func toStudentResponse(st *model.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:           st.StudentID,
		FullName:     st.FullName,
		NationalID:   st.NationalID,
		BusinessName: st.BusinessName,
		Phone:        st.Phone,
		Version:      st.Version,
	}
}
