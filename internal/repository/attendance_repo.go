package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"mesem-yoklama/internal/model"
	pkgerrors "mesem-yoklama/pkg/errors"
)

// AttendanceFilter 考勤列表过滤条件
type AttendanceFilter struct {
	BusinessName string
	From         *time.Time // 含
	To           *time.Time // 含
	Offset       int
	Limit        int
}

// AttendanceRepository 考勤记录数据访问接口
//
// 记录写入后不做字段级修改；编辑以 (business_name, attendance_date) 分组整体替换
type AttendanceRepository interface {
	Create(ctx context.Context, record *model.AttendanceRecord) error
	GetByID(ctx context.Context, teacherID, id string) (*model.AttendanceRecord, error)
	List(ctx context.Context, teacherID string, filter AttendanceFilter) ([]model.AttendanceRecord, int64, error)
	ListByBusinessAndPeriod(ctx context.Context, teacherID, businessName string, from, to time.Time) ([]model.AttendanceRecord, error)
	ListGroup(ctx context.Context, teacherID, businessName string, date time.Time) ([]model.AttendanceRecord, error)
	ReplaceGroup(ctx context.Context, teacherID, businessName string, date time.Time, records []model.AttendanceRecord, batchSize int) error
	DeleteGroup(ctx context.Context, teacherID, businessName string, date time.Time) (int64, error)
	Delete(ctx context.Context, teacherID, id string) error
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// 读取顺序：最新在前，同一时间戳按主键倒序，保证结果确定
const attendanceOrder = "created_at DESC, attendance_id DESC"

func (r *attendanceRepo) Create(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, teacherID, id string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("attendance_id = ? AND teacher_id = ?", id, teacherID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List 列出教师的考勤记录
// 已删除学生的记录不返回；没有身份证号的记录保留
func (r *attendanceRepo) List(ctx context.Context, teacherID string, filter AttendanceFilter) ([]model.AttendanceRecord, int64, error) {
	var records []model.AttendanceRecord
	var total int64

	students := r.db.Model(&model.Student{}).
		Select("national_id").
		Where("teacher_id = ?", teacherID)

	db := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("teacher_id = ?", teacherID).
		Where("national_id = '' OR national_id IN (?)", students)
	if filter.BusinessName != "" {
		db = db.Where("business_name = ?", filter.BusinessName)
	}
	if filter.From != nil {
		db = db.Where("attendance_date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("attendance_date <= ?", *filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Order(attendanceOrder)
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListByBusinessAndPeriod 读取 [from, to) 内的记录（报表读取使用）
func (r *attendanceRepo) ListByBusinessAndPeriod(ctx context.Context, teacherID, businessName string, from, to time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND business_name = ?", teacherID, businessName).
		Where("attendance_date >= ? AND attendance_date < ?", from, to).
		Order(attendanceOrder).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepo) ListGroup(ctx context.Context, teacherID, businessName string, date time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND business_name = ? AND attendance_date = ?", teacherID, businessName, date).
		Order(attendanceOrder).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceGroup 在同一事务中删除整组记录并插入新记录集合
// 任一步失败整体回滚，分组不会出现部分删除
func (r *attendanceRepo) ReplaceGroup(ctx context.Context, teacherID, businessName string, date time.Time, records []model.AttendanceRecord, batchSize int) error {
	if len(records) == 0 {
		return pkgerrors.ErrEmptyGroup
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("teacher_id = ? AND business_name = ? AND attendance_date = ?", teacherID, businessName, date).
			Delete(&model.AttendanceRecord{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(&records, batchSize).Error
	})
}

// DeleteGroup 删除整组记录，返回删除条数
func (r *attendanceRepo) DeleteGroup(ctx context.Context, teacherID, businessName string, date time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("teacher_id = ? AND business_name = ? AND attendance_date = ?", teacherID, businessName, date).
		Delete(&model.AttendanceRecord{})
	return result.RowsAffected, result.Error
}

func (r *attendanceRepo) Delete(ctx context.Context, teacherID, id string) error {
	result := r.db.WithContext(ctx).
		Where("attendance_id = ? AND teacher_id = ?", id, teacherID).
		Delete(&model.AttendanceRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
