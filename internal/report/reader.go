package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mesem-yoklama/internal/model"
)

// AttendanceSource 按企业与日期区间读取考勤记录
// 实现方需按 created_at DESC 返回（最新记录在前）
type AttendanceSource interface {
	ListByBusinessAndPeriod(ctx context.Context, teacherID, businessName string, from, to time.Time) ([]model.AttendanceRecord, error)
}

// StudentSource 按企业读取教师名下学生
type StudentSource interface {
	ListByTeacherAndBusiness(ctx context.Context, teacherID, businessName string) ([]model.Student, error)
}

// Reader 报表数据读取（只读，无副作用）
type Reader struct {
	attendance AttendanceSource
	students   StudentSource
}

// NewReader 创建 Reader
func NewReader(attendance AttendanceSource, students StudentSource) *Reader {
	return &Reader{attendance: attendance, students: students}
}

// FetchMonthRecords 读取教师名下某企业在指定月份内的全部考勤记录
// 日期以结构化字段按年月比较，不做字符串子串匹配
func (r *Reader) FetchMonthRecords(ctx context.Context, teacherID, businessName string, p Period) ([]model.AttendanceRecord, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(businessName) == "" {
		return nil, ErrBusinessRequired
	}

	from, to := p.Range()
	records, err := r.attendance.ListByBusinessAndPeriod(ctx, teacherID, businessName, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	// 保持读取顺序，过滤掉越界日期
	out := make([]model.AttendanceRecord, 0, len(records))
	for _, rec := range records {
		if p.Contains(rec.AttendanceDate) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FetchStudents 读取教师名下某企业的学生
func (r *Reader) FetchStudents(ctx context.Context, teacherID, businessName string) ([]model.Student, error) {
	if strings.TrimSpace(businessName) == "" {
		return nil, ErrBusinessRequired
	}
	students, err := r.students.ListByTeacherAndBusiness(ctx, teacherID, businessName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return students, nil
}
