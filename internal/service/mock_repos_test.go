package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"mesem-yoklama/internal/model"
	"mesem-yoklama/internal/repository"
	pkgerrors "mesem-yoklama/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // user_id → user
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	if user.Version == 0 {
		user.Version = 1
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cur, ok := m.users[user.UserID]
	if !ok || cur.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students  map[string]*model.Student // student_id → student
	seq       int
	createErr error
	batches   int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, st *model.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	if st.StudentID == "" {
		m.seq++
		st.StudentID = fmt.Sprintf("stu-%03d", m.seq)
	}
	if st.Version == 0 {
		st.Version = 1
	}
	cp := *st
	m.students[st.StudentID] = &cp
	return nil
}

func (m *mockStudentRepo) BatchCreate(ctx context.Context, students []model.Student, _ int) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.batches++
	for i := range students {
		if err := m.Create(ctx, &students[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, teacherID, id string) (*model.Student, error) {
	if st, ok := m.students[id]; ok && st.TeacherID == teacherID {
		cp := *st
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByNationalID(_ context.Context, teacherID, nid string) (*model.Student, error) {
	for _, st := range m.students {
		if st.TeacherID == teacherID && st.NationalID == nid {
			cp := *st
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListByTeacher(_ context.Context, teacherID, business string) ([]model.Student, error) {
	var result []model.Student
	for _, st := range m.students {
		if st.TeacherID == teacherID && (business == "" || st.BusinessName == business) {
			result = append(result, *st)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) ListByTeacherAndBusiness(ctx context.Context, teacherID, business string) ([]model.Student, error) {
	return m.ListByTeacher(ctx, teacherID, business)
}

func (m *mockStudentRepo) ListBusinesses(_ context.Context, teacherID string) ([]string, error) {
	set := map[string]bool{}
	for _, st := range m.students {
		if st.TeacherID == teacherID {
			set[st.BusinessName] = true
		}
	}
	var names []string
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (m *mockStudentRepo) ListNationalIDs(_ context.Context, teacherID string) ([]string, error) {
	var ids []string
	for _, st := range m.students {
		if st.TeacherID == teacherID {
			ids = append(ids, st.NationalID)
		}
	}
	return ids, nil
}

func (m *mockStudentRepo) Update(_ context.Context, st *model.Student) error {
	cur, ok := m.students[st.StudentID]
	if !ok || cur.TeacherID != st.TeacherID || cur.Version != st.Version {
		return pkgerrors.ErrOptimisticLock
	}
	st.Version++
	cp := *st
	m.students[st.StudentID] = &cp
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, teacherID, id string) error {
	if st, ok := m.students[id]; ok && st.TeacherID == teacherID {
		delete(m.students, id)
		return nil
	}
	return gorm.ErrRecordNotFound
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records []model.AttendanceRecord
	seq     int
	listErr error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{}
}

func (m *mockAttendanceRepo) Create(_ context.Context, r *model.AttendanceRecord) error {
	m.seq++
	if r.AttendanceID == "" {
		r.AttendanceID = fmt.Sprintf("att-%03d", m.seq)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	}
	m.records = append(m.records, *r)
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, teacherID, id string) (*model.AttendanceRecord, error) {
	for i := range m.records {
		if m.records[i].AttendanceID == id && m.records[i].TeacherID == teacherID {
			cp := m.records[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) List(_ context.Context, teacherID string, f repository.AttendanceFilter) ([]model.AttendanceRecord, int64, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.TeacherID != teacherID {
			continue
		}
		if f.BusinessName != "" && r.BusinessName != f.BusinessName {
			continue
		}
		if f.From != nil && r.AttendanceDate.Before(*f.From) {
			continue
		}
		if f.To != nil && r.AttendanceDate.After(*f.To) {
			continue
		}
		result = append(result, r)
	}
	sortNewestFirst(result)
	return result, int64(len(result)), nil
}

func (m *mockAttendanceRepo) ListByBusinessAndPeriod(_ context.Context, teacherID, business string, from, to time.Time) ([]model.AttendanceRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.TeacherID == teacherID && r.BusinessName == business &&
			!r.AttendanceDate.Before(from) && r.AttendanceDate.Before(to) {
			result = append(result, r)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *mockAttendanceRepo) ListGroup(_ context.Context, teacherID, business string, date time.Time) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if inGroup(r, teacherID, business, date) {
			result = append(result, r)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *mockAttendanceRepo) ReplaceGroup(ctx context.Context, teacherID, business string, date time.Time, records []model.AttendanceRecord, _ int) error {
	if len(records) == 0 {
		return pkgerrors.ErrEmptyGroup
	}
	if _, err := m.DeleteGroup(ctx, teacherID, business, date); err != nil {
		return err
	}
	for i := range records {
		if err := m.Create(ctx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockAttendanceRepo) DeleteGroup(_ context.Context, teacherID, business string, date time.Time) (int64, error) {
	kept := m.records[:0]
	var n int64
	for _, r := range m.records {
		if inGroup(r, teacherID, business, date) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return n, nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, teacherID, id string) error {
	for i, r := range m.records {
		if r.AttendanceID == id && r.TeacherID == teacherID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func inGroup(r model.AttendanceRecord, teacherID, business string, date time.Time) bool {
	return r.TeacherID == teacherID && r.BusinessName == business && r.AttendanceDate.Equal(date)
}

func sortNewestFirst(records []model.AttendanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	tokens map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl > 0 {
		m.tokens[jti] = ttl
	}
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.tokens[jti]
	return ok, nil
}

// ── 测试辅助 ──

func newMockRepository() (*repository.Repository, *mockUserRepo, *mockStudentRepo, *mockAttendanceRepo) {
	users := newMockUserRepo()
	students := newMockStudentRepo()
	attendance := newMockAttendanceRepo()
	return &repository.Repository{
		User:       users,
		Student:    students,
		Attendance: attendance,
	}, users, students, attendance
}
