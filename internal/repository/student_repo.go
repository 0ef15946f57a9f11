package repository

import (
	"context"

	"gorm.io/gorm"

	"mesem-yoklama/internal/model"
	pkgerrors "mesem-yoklama/pkg/errors"
)

// StudentRepository 学生数据访问接口（所有查询均以 teacher_id 限定归属）
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	BatchCreate(ctx context.Context, students []model.Student, batchSize int) error
	GetByID(ctx context.Context, teacherID, id string) (*model.Student, error)
	GetByNationalID(ctx context.Context, teacherID, nationalID string) (*model.Student, error)
	ListByTeacher(ctx context.Context, teacherID, businessName string) ([]model.Student, error)
	ListByTeacherAndBusiness(ctx context.Context, teacherID, businessName string) ([]model.Student, error)
	ListBusinesses(ctx context.Context, teacherID string) ([]string, error)
	ListNationalIDs(ctx context.Context, teacherID string) ([]string, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, teacherID, id string) error
}

// studentRepo StudentRepository 的 GORM 实现
type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// BatchCreate 在同一事务中分批插入，任一批失败全部回滚
// 已处于事务中（WithTx）时 gorm 以 SavePoint 嵌套
func (r *studentRepo) BatchCreate(ctx context.Context, students []model.Student, batchSize int) error {
	if len(students) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&students, batchSize).Error
	})
}

func (r *studentRepo) GetByID(ctx context.Context, teacherID, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND teacher_id = ?", id, teacherID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByNationalID(ctx context.Context, teacherID, nationalID string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND national_id = ?", teacherID, nationalID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// ListByTeacher 列出教师名下学生，businessName 为空时不过滤企业
func (r *studentRepo) ListByTeacher(ctx context.Context, teacherID, businessName string) ([]model.Student, error) {
	var students []model.Student
	db := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID)
	if businessName != "" {
		db = db.Where("business_name = ?", businessName)
	}
	if err := db.Order("full_name ASC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

// ListByTeacherAndBusiness 报表读取使用，企业名称必须精确匹配
func (r *studentRepo) ListByTeacherAndBusiness(ctx context.Context, teacherID, businessName string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND business_name = ?", teacherID, businessName).
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) ListBusinesses(ctx context.Context, teacherID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("teacher_id = ?", teacherID).
		Distinct("business_name").
		Order("business_name ASC").
		Pluck("business_name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *studentRepo) ListNationalIDs(ctx context.Context, teacherID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("teacher_id = ?", teacherID).
		Pluck("national_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Update 基于 version 的乐观锁更新
func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	oldVersion := student.Version
	result := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("student_id = ? AND teacher_id = ? AND version = ?", student.StudentID, student.TeacherID, oldVersion).
		Updates(map[string]interface{}{
			"full_name":     student.FullName,
			"national_id":   student.NationalID,
			"business_name": student.BusinessName,
			"phone":         student.Phone,
			"updated_by":    student.UpdatedBy,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	student.Version = oldVersion + 1
	return nil
}

// Delete 硬删除；其历史考勤记录保留，列表查询时被过滤
func (r *studentRepo) Delete(ctx context.Context, teacherID, id string) error {
	result := r.db.WithContext(ctx).
		Where("student_id = ? AND teacher_id = ?", id, teacherID).
		Delete(&model.Student{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
