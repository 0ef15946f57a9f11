package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mesem-yoklama/internal/model"
	pkgerrors "mesem-yoklama/pkg/errors"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func groupRecords(date time.Time) []model.AttendanceRecord {
	return []model.AttendanceRecord{
		{TeacherID: "t1", StudentName: "Ayşe Yılmaz", NationalID: "10000000146", BusinessName: "ACME Ltd", AttendanceDate: date, Status: model.StatusAbsent},
		{TeacherID: "t1", StudentName: "Zeynep Kaya", NationalID: "10000000278", BusinessName: "ACME Ltd", AttendanceDate: date, Status: model.StatusPresent},
	}
}

func TestAttendanceRepo_ReplaceGroup_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepo(db)
	date := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "attendance_records" WHERE`).
		WithArgs("t1", "ACME Ltd", date).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`INSERT INTO "attendance_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"attendance_id"}).AddRow("a1").AddRow("a2"))
	mock.ExpectCommit()

	err := repo.ReplaceGroup(context.Background(), "t1", "ACME Ltd", date, groupRecords(date), 500)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepo_ReplaceGroup_InsertFailsRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepo(db)
	date := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "attendance_records" WHERE`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`INSERT INTO "attendance_records"`).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := repo.ReplaceGroup(context.Background(), "t1", "ACME Ltd", date, groupRecords(date), 500)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepo_ReplaceGroup_DeleteFailsRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepo(db)
	date := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "attendance_records" WHERE`).
		WillReturnError(errors.New("delete failed"))
	mock.ExpectRollback()

	err := repo.ReplaceGroup(context.Background(), "t1", "ACME Ltd", date, groupRecords(date), 500)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepo_ReplaceGroup_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepo(db)

	err := repo.ReplaceGroup(context.Background(), "t1", "ACME Ltd", time.Now(), nil, 500)
	assert.ErrorIs(t, err, pkgerrors.ErrEmptyGroup)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepo_DeleteGroup(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepo(db)
	date := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "attendance_records" WHERE`).
		WithArgs("t1", "ACME Ltd", date).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	n, err := repo.DeleteGroup(context.Background(), "t1", "ACME Ltd", date)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepo_ListByBusinessAndPeriod_Order(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepo(db)
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	rows := sqlmock.NewRows([]string{"attendance_id", "national_id", "attendance_date", "status"}).
		AddRow("a2", "10000000146", time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), "absent").
		AddRow("a1", "10000000146", time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), "present")
	mock.ExpectQuery(`SELECT \* FROM "attendance_records" WHERE \(teacher_id = \$1 AND business_name = \$2\) AND \(attendance_date >= \$3 AND attendance_date < \$4\) ORDER BY created_at DESC, attendance_id DESC`).
		WithArgs("t1", "ACME Ltd", from, to).
		WillReturnRows(rows)

	got, err := repo.ListByBusinessAndPeriod(context.Background(), "t1", "ACME Ltd", from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].AttendanceID)
	assert.Equal(t, model.StatusAbsent, got[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepo_Update_OptimisticLock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "students" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	st := &model.Student{StudentID: "s1", TeacherID: "t1", FullName: "Ayşe", Version: 3}
	err := repo.Update(context.Background(), st)
	assert.ErrorIs(t, err, pkgerrors.ErrOptimisticLock)
	assert.Equal(t, 3, st.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepo_Update_BumpsVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "students" SET .* WHERE student_id = \$\d+ AND teacher_id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	st := &model.Student{StudentID: "s1", TeacherID: "t1", FullName: "Ayşe", Version: 3}
	require.NoError(t, repo.Update(context.Background(), st))
	assert.Equal(t, 4, st.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Update_OptimisticLock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	u := &model.User{UserID: "u1", Name: "Öğretmen", Username: "ogretmen", VersionedModel: model.VersionedModel{Version: 2}}
	err := repo.Update(context.Background(), u)
	assert.ErrorIs(t, err, pkgerrors.ErrOptimisticLock)
	assert.Equal(t, 2, u.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
