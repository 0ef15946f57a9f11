package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mesem-yoklama/internal/dto"
	"mesem-yoklama/internal/model"
	"mesem-yoklama/internal/repository"
)

// ── 教师账号模块业务错误 ──

var (
	ErrTeacherNotFound = errors.New("教师不存在")
	ErrUsernameExists  = errors.New("用户名已被使用")
	ErrUserSelfDelete  = errors.New("不能删除自己")
)

// TeacherService 教师账号管理（仅管理员）
//
// 不提供邀请、自助注册等账号流程：管理员创建账号并把临时密码线下告知教师，
// 教师首次登录后修改密码
type TeacherService interface {
	Create(ctx context.Context, req *dto.CreateTeacherRequest, callerID string) (*dto.CreateTeacherResponse, error)
	List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, callerID string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	ResetPassword(ctx context.Context, id, callerID string) (*dto.ResetPasswordResponse, error)
	EnsureAdmin(ctx context.Context, username, password string) error
}

type teacherService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeacherService 创建 TeacherService 实例
func NewTeacherService(repo *repository.Repository, logger *zap.Logger) TeacherService {
	return &teacherService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *teacherService) Create(ctx context.Context, req *dto.CreateTeacherRequest, callerID string) (*dto.CreateTeacherResponse, error) {
	if err := s.checkUsernameFree(ctx, req.Username, ""); err != nil {
		return nil, err
	}

	tempPassword, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:               req.Name,
		Username:           req.Username,
		PasswordHash:       string(hash),
		Role:               model.RoleTeacher,
		MustChangePassword: true,
	}
	user.CreatedBy = &callerID

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建教师失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("教师账号已创建", zap.String("id", user.UserID), zap.String("username", user.Username))
	return &dto.CreateTeacherResponse{
		Teacher:      toUserResponse(user),
		TempPassword: tempPassword,
	}, nil
}

// ────────────────────── List ──────────────────────

func (s *teacherService) List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.ListByRole(ctx, model.RoleTeacher, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询教师列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, toUserResponse(&users[i]))
	}
	return list, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *teacherService) Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.getTeacher(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		if err := s.checkUsernameFree(ctx, *req.Username, id); err != nil {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *teacherService) Delete(ctx context.Context, id, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}
	if _, err := s.getTeacher(ctx, id); err != nil {
		return err
	}

	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除教师失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *teacherService) ResetPassword(ctx context.Context, id, callerID string) (*dto.ResetPasswordResponse, error) {
	user, err := s.getTeacher(ctx, id)
	if err != nil {
		return nil, err
	}

	tempPassword, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = true
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &dto.ResetPasswordResponse{TempPassword: tempPassword}, nil
}

// ────────────────────── EnsureAdmin ──────────────────────

// EnsureAdmin 启动时确保初始管理员账号存在；已存在时不修改其密码
func (s *teacherService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" {
		return nil
	}

	if _, err := s.repo.User.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &model.User{
		Name:               "Yönetici",
		Username:           username,
		PasswordHash:       string(hash),
		Role:               model.RoleAdmin,
		MustChangePassword: true,
	}
	if err := s.repo.User.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("已创建初始管理员账号", zap.String("username", username))
	return nil
}

// ── 内部辅助方法 ──

func (s *teacherService) getTeacher(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if user.Role != model.RoleTeacher {
		return nil, ErrTeacherNotFound
	}
	return user, nil
}

func (s *teacherService) checkUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := s.repo.User.GetByUsername(ctx, username)
	if err == nil {
		if existing.UserID != selfID {
			return ErrUsernameExists
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 8 {
		length = 8
	}

	pick := func(set string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return 0, err
		}
		return set[n.Int64()], nil
	}

	result := make([]byte, length)
	var err error
	if result[0], err = pick(letters); err != nil {
		return "", err
	}
	if result[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if result[i], err = pick(all); err != nil {
			return "", err
		}
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}
	return string(result), nil
}
