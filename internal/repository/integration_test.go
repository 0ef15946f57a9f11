//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mesem-yoklama/internal/model"
	"mesem-yoklama/internal/repository"
	"mesem-yoklama/pkg/database"
	pkgerrors "mesem-yoklama/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=mesem password=mesem_password dbname=mesem_test sslmode=disable TimeZone=Europe/Istanbul"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// setupTeacher 创建测试教师并返回清理函数
func setupTeacher(t *testing.T) (*model.User, func()) {
	t.Helper()
	ctx := context.Background()

	teacher := &model.User{
		Name:         "Test Öğretmen",
		Username:     fmt.Sprintf("teacher%d", time.Now().UnixNano()),
		PasswordHash: "$2a$10$placeholder",
		Role:         model.RoleTeacher,
	}
	if err := testDB.WithContext(ctx).Create(teacher).Error; err != nil {
		t.Fatalf("创建教师失败: %v", err)
	}

	cleanup := func() {
		testDB.Where("teacher_id = ?", teacher.UserID).Delete(&model.AttendanceRecord{})
		testDB.Where("teacher_id = ?", teacher.UserID).Delete(&model.Student{})
		testDB.Unscoped().Where("user_id = ?", teacher.UserID).Delete(&model.User{})
	}
	return teacher, cleanup
}

func newRecord(teacherID, nid string, date time.Time, status model.AttendanceStatus) model.AttendanceRecord {
	return model.AttendanceRecord{
		TeacherID:      teacherID,
		StudentName:    "Ayşe Yılmaz",
		NationalID:     nid,
		BusinessName:   "ACME Ltd",
		AttendanceDate: date,
		Status:         status,
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	teacher, cleanup := setupTeacher(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	students := []model.Student{
		{TeacherID: teacher.UserID, FullName: "Ayşe Yılmaz", NationalID: "10000000146", BusinessName: "ACME Ltd"},
		{TeacherID: teacher.UserID, FullName: "Zeynep Kaya", NationalID: "10000000278", BusinessName: "ACME Ltd"},
	}
	if err := txRepo.Student.BatchCreate(ctx, students, 500); err != nil {
		tx.Rollback()
		t.Fatalf("事务内批量创建学生失败: %v", err)
	}
	tx.Rollback()

	got, err := repo.Student.ListByTeacher(ctx, teacher.UserID, "")
	if err != nil {
		t.Fatalf("查询学生失败: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("期望回滚后无学生，实际: %d", len(got))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Group replace
// ═══════════════════════════════════════════════════════════

func TestAttendance_ReplaceGroup(t *testing.T) {
	teacher, cleanup := setupTeacher(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	other := time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC)

	for _, rec := range []model.AttendanceRecord{
		newRecord(teacher.UserID, "10000000146", date, model.StatusPresent),
		newRecord(teacher.UserID, "10000000278", date, model.StatusPresent),
		newRecord(teacher.UserID, "10000000146", other, model.StatusPresent),
	} {
		rec := rec
		if err := repo.Attendance.Create(ctx, &rec); err != nil {
			t.Fatalf("创建考勤失败: %v", err)
		}
	}

	replacement := []model.AttendanceRecord{newRecord(teacher.UserID, "10000000146", date, model.StatusAbsent)}
	if err := repo.Attendance.ReplaceGroup(ctx, teacher.UserID, "ACME Ltd", date, replacement, 500); err != nil {
		t.Fatalf("替换分组失败: %v", err)
	}

	group, err := repo.Attendance.ListGroup(ctx, teacher.UserID, "ACME Ltd", date)
	if err != nil {
		t.Fatalf("查询分组失败: %v", err)
	}
	if len(group) != 1 || group[0].Status != model.StatusAbsent {
		t.Fatalf("期望分组只剩 1 条缺勤记录，实际: %+v", group)
	}

	untouched, _ := repo.Attendance.ListGroup(ctx, teacher.UserID, "ACME Ltd", other)
	if len(untouched) != 1 {
		t.Errorf("其他日期分组不应受影响，实际: %d", len(untouched))
	}
}

func TestAttendance_ListByBusinessAndPeriod(t *testing.T) {
	teacher, cleanup := setupTeacher(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	for _, d := range []time.Time{
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	} {
		rec := newRecord(teacher.UserID, "10000000146", d, model.StatusPresent)
		if err := repo.Attendance.Create(ctx, &rec); err != nil {
			t.Fatalf("创建考勤失败: %v", err)
		}
	}

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	got, err := repo.Attendance.ListByBusinessAndPeriod(ctx, teacher.UserID, "ACME Ltd", from, from.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("期望 2 条二月记录，实际: %d", len(got))
	}
}

func TestAttendance_ListHidesDeletedStudents(t *testing.T) {
	teacher, cleanup := setupTeacher(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	st := &model.Student{TeacherID: teacher.UserID, FullName: "Ayşe Yılmaz", NationalID: "10000000146", BusinessName: "ACME Ltd"}
	if err := repo.Student.Create(ctx, st); err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	for _, nid := range []string{"10000000146", "99999999990", ""} {
		rec := newRecord(teacher.UserID, nid, date, model.StatusPresent)
		if err := repo.Attendance.Create(ctx, &rec); err != nil {
			t.Fatalf("创建考勤失败: %v", err)
		}
	}

	got, total, err := repo.Attendance.List(ctx, teacher.UserID, repository.AttendanceFilter{})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Errorf("期望 2 条（当前学生 + 无身份证号），实际: total=%d len=%d", total, len(got))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Student_ConflictDetected(t *testing.T) {
	teacher, cleanup := setupTeacher(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	st := &model.Student{TeacherID: teacher.UserID, FullName: "Ayşe Yılmaz", NationalID: "10000000146", BusinessName: "ACME Ltd"}
	if err := repo.Student.Create(ctx, st); err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	copy1, _ := repo.Student.GetByID(ctx, teacher.UserID, st.StudentID)
	copy2, _ := repo.Student.GetByID(ctx, teacher.UserID, st.StudentID)

	copy1.Phone = "905321112233"
	if err := repo.Student.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	copy2.Phone = "905329998877"
	if err := repo.Student.Update(ctx, copy2); err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

func TestStudent_UniqueNationalIDPerTeacher(t *testing.T) {
	teacher, cleanup := setupTeacher(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	first := &model.Student{TeacherID: teacher.UserID, FullName: "Ayşe Yılmaz", NationalID: "10000000146", BusinessName: "ACME Ltd"}
	if err := repo.Student.Create(ctx, first); err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	dup := &model.Student{TeacherID: teacher.UserID, FullName: "Başka Biri", NationalID: "10000000146", BusinessName: "ACME Ltd"}
	if err := repo.Student.Create(ctx, dup); err == nil {
		t.Fatal("期望身份证号重复时创建失败")
	}
}
