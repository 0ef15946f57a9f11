package handler

import (
	"github.com/gin-gonic/gin"

	"mesem-yoklama/pkg/jwt"
	"mesem-yoklama/pkg/response"
)

// 认证中间件写入 gin.Context 的键
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxClaims = "claims"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClaims 从 Gin 上下文中提取完整的 JWT 声明（注销时需要 jti 与过期时间）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}
