package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"mesem-yoklama/internal/dto"
	"mesem-yoklama/internal/model"
	"mesem-yoklama/internal/report"
	"mesem-yoklama/internal/repository"
	"mesem-yoklama/pkg/phone"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceNotFound = errors.New("考勤记录不存在")
	ErrGroupNotFound      = errors.New("该企业当天没有考勤记录")
	ErrInvalidDate        = errors.New("日期格式错误，应为 YYYY-MM-DD 或 DD.MM.YYYY")
	ErrInvalidLocation    = errors.New("经纬度必须同时提供")
)

// 分组替换的分批写入大小
const groupBatchSize = 500

// AttendanceService 考勤业务接口
//
// 考勤记录写入后不可逐字段修改：编辑即对 (企业, 日期) 分组整体替换
type AttendanceService interface {
	Record(ctx context.Context, teacherID string, req *dto.RecordAttendanceRequest) (*dto.AttendanceResponse, error)
	List(ctx context.Context, teacherID string, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error)
	Delete(ctx context.Context, teacherID, id string) error
	GetGroup(ctx context.Context, teacherID string, key *dto.AttendanceGroupKey) ([]dto.AttendanceResponse, error)
	ReplaceGroup(ctx context.Context, teacherID string, req *dto.ReplaceGroupRequest) ([]dto.AttendanceResponse, error)
	DeleteGroup(ctx context.Context, teacherID string, key *dto.AttendanceGroupKey) (int64, error)
}

type attendanceService struct {
	loc    *time.Location
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例
// loc 为判定“今天”所用的业务时区
func NewAttendanceService(loc *time.Location, repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{loc: loc, repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Record ──────────────────────

// Record 扫码记录：按身份证号找到学生，快照姓名/企业/电话，日期取业务时区的今天
func (s *attendanceService) Record(ctx context.Context, teacherID string, req *dto.RecordAttendanceRequest) (*dto.AttendanceResponse, error) {
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, ErrInvalidLocation
	}

	student, err := s.repo.Student.GetByNationalID(ctx, teacherID, strings.TrimSpace(req.NationalID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}

	status := model.StatusPresent
	if strings.TrimSpace(req.Status) != "" {
		status = model.ParseStatus(req.Status)
	}

	record := &model.AttendanceRecord{
		TeacherID:      teacherID,
		StudentName:    student.FullName,
		NationalID:     student.NationalID,
		BusinessName:   student.BusinessName,
		Phone:          student.Phone,
		AttendanceDate: model.DateOf(s.now(), s.loc),
		Status:         status,
		Note:           strings.TrimSpace(req.Note),
		LocationURL:    mapsLink(req.Latitude, req.Longitude),
		CreatedBy:      &teacherID,
	}

	if err := s.repo.Attendance.Create(ctx, record); err != nil {
		s.logger.Error("记录考勤失败", zap.String("national_id", student.NationalID), zap.Error(err))
		return nil, err
	}

	resp := toAttendanceResponse(record)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *attendanceService) List(ctx context.Context, teacherID string, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error) {
	filter := repository.AttendanceFilter{
		BusinessName: strings.TrimSpace(req.BusinessName),
		Offset:       req.GetOffset(),
		Limit:        req.GetPageSize(),
	}
	if req.From != "" {
		from, err := parseGroupDate(req.From)
		if err != nil {
			return nil, 0, err
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := parseGroupDate(req.To)
		if err != nil {
			return nil, 0, err
		}
		filter.To = &to
	}

	records, total, err := s.repo.Attendance.List(ctx, teacherID, filter)
	if err != nil {
		s.logger.Error("查询考勤列表失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, 0, err
	}
	return toAttendanceResponses(records), total, nil
}

// ────────────────────── Delete ──────────────────────

func (s *attendanceService) Delete(ctx context.Context, teacherID, id string) error {
	if err := s.repo.Attendance.Delete(ctx, teacherID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttendanceNotFound
		}
		s.logger.Error("删除考勤失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Group ──────────────────────

func (s *attendanceService) GetGroup(ctx context.Context, teacherID string, key *dto.AttendanceGroupKey) ([]dto.AttendanceResponse, error) {
	business, date, err := groupKey(key)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListGroup(ctx, teacherID, business, date)
	if err != nil {
		s.logger.Error("查询考勤分组失败", zap.Error(err))
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrGroupNotFound
	}
	return toAttendanceResponses(records), nil
}

// ReplaceGroup 删除整组并写入编辑后的记录集合（单事务）
// 状态文本在此处归一化为枚举，分组键以请求为准覆盖到每条记录
func (s *attendanceService) ReplaceGroup(ctx context.Context, teacherID string, req *dto.ReplaceGroupRequest) ([]dto.AttendanceResponse, error) {
	business, date, err := groupKey(&req.AttendanceGroupKey)
	if err != nil {
		return nil, err
	}

	// 同一批插入的 created_at 按提交顺序递减，同一学生的重复记录以靠前者为准
	now := s.now()
	records := make([]model.AttendanceRecord, 0, len(req.Records))
	for i, e := range req.Records {
		createdAt := now.Add(time.Duration(len(req.Records)-i) * time.Microsecond)
		records = append(records, model.AttendanceRecord{
			TeacherID:      teacherID,
			StudentName:    strings.TrimSpace(e.StudentName),
			NationalID:     strings.TrimSpace(e.NationalID),
			BusinessName:   business,
			Phone:          phone.Normalize(e.Phone),
			AttendanceDate: date,
			Status:         model.ParseStatus(e.Status),
			Note:           strings.TrimSpace(e.Note),
			LocationURL:    e.LocationURL,
			CreatedAt:      createdAt,
			CreatedBy:      &teacherID,
		})
	}

	if err := s.repo.Attendance.ReplaceGroup(ctx, teacherID, business, date, records, groupBatchSize); err != nil {
		s.logger.Error("替换考勤分组失败",
			zap.String("business", business), zap.Time("date", date), zap.Error(err))
		return nil, err
	}

	s.logger.Info("考勤分组已替换",
		zap.String("teacher_id", teacherID),
		zap.String("business", business),
		zap.String("date", date.Format(model.DateKeyLayout)),
		zap.Int("records", len(records)),
	)
	return toAttendanceResponses(records), nil
}

func (s *attendanceService) DeleteGroup(ctx context.Context, teacherID string, key *dto.AttendanceGroupKey) (int64, error) {
	business, date, err := groupKey(key)
	if err != nil {
		return 0, err
	}

	n, err := s.repo.Attendance.DeleteGroup(ctx, teacherID, business, date)
	if err != nil {
		s.logger.Error("删除考勤分组失败", zap.Error(err))
		return 0, err
	}
	if n == 0 {
		return 0, ErrGroupNotFound
	}
	return n, nil
}

// ── 内部辅助方法 ──

func groupKey(key *dto.AttendanceGroupKey) (string, time.Time, error) {
	date, err := parseGroupDate(key.Date)
	if err != nil {
		return "", time.Time{}, err
	}
	business := strings.TrimSpace(key.BusinessName)
	if business == "" {
		return "", time.Time{}, report.ErrBusinessRequired
	}
	return business, date, nil
}

// parseGroupDate 支持 YYYY-MM-DD 与 DD.MM.YYYY 两种写法
func parseGroupDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	if d, err := model.ParseDateKey(s); err == nil {
		return d, nil
	}
	return time.Time{}, ErrInvalidDate
}

// mapsLink 生成 Google Maps 坐标链接
func mapsLink(lat, lng *float64) *string {
	if lat == nil || lng == nil {
		return nil
	}
	link := fmt.Sprintf("https://www.google.com/maps?q=%s,%s",
		strconv.FormatFloat(*lat, 'f', -1, 64),
		strconv.FormatFloat(*lng, 'f', -1, 64),
	)
	return &link
}

func toAttendanceResponse(r *model.AttendanceRecord) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		ID:           r.AttendanceID,
		StudentName:  r.StudentName,
		NationalID:   r.NationalID,
		BusinessName: r.BusinessName,
		Phone:        r.Phone,
		Date:         r.DateKey(),
		Status:       string(r.Status),
		Note:         r.Note,
		LocationURL:  r.LocationURL,
		CreatedAt:    r.CreatedAt,
	}
}

func toAttendanceResponses(records []model.AttendanceRecord) []dto.AttendanceResponse {
	list := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		list = append(list, toAttendanceResponse(&records[i]))
	}
	return list
}
