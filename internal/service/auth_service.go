package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mesem-yoklama/internal/dto"
	"mesem-yoklama/internal/model"
	"mesem-yoklama/internal/repository"
	"mesem-yoklama/pkg/jwt"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials  = errors.New("用户名或密码错误")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrInvalidRefreshToken = errors.New("刷新令牌无效或已过期")
	ErrWrongOldPassword    = errors.New("原密码错误")
	ErrSamePassword        = errors.New("新密码不能与原密码相同")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token 对
	return s.issueTokens(user, req.RememberMe)
}

// ────────────────────── Refresh ──────────────────────

// Refresh 使用 refresh token 换取新的 Token 对，旧 refresh token 作废
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("检查 Token 黑名单失败", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidRefreshToken
		}
	}

	// 账号被删除后 refresh token 失效
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if s.blacklist != nil {
		if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
			s.logger.Warn("作废旧 RefreshToken 失败", zap.Error(err))
		}
	}

	return s.issueTokens(user, claims.RememberMe)
}

// ────────────────────── Logout ──────────────────────

// Logout 将当前 access token 加入黑名单直至其自然过期
func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil {
		s.logger.Warn("Token 黑名单不可用，注销仅在客户端生效", zap.String("user_id", claims.UserID))
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("加入 Token 黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── GetCurrentUser ──────────────────────

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongOldPassword
	}
	if req.OldPassword == req.NewPassword {
		return ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	user.UpdatedBy = &userID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("修改密码失败", zap.String("id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// toUserResponse 将 model.User 转换为 dto.UserResponse
func toUserResponse(user *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:                 user.UserID,
		Name:               user.Name,
		Username:           user.Username,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
	}
	if !user.CreatedAt.IsZero() {
		resp.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
