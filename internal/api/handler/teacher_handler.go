package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mesem-yoklama/internal/dto"
	"mesem-yoklama/internal/service"
	pkgerrors "mesem-yoklama/pkg/errors"
	"mesem-yoklama/pkg/response"
)

// TeacherHandler 教师账号管理 HTTP 处理器（管理员）
type TeacherHandler struct {
	teacherSvc service.TeacherService
}

// NewTeacherHandler 创建 TeacherHandler
func NewTeacherHandler(teacherSvc service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teacherSvc: teacherSvc}
}

// ListTeachers 教师列表
// GET /api/v1/teachers
func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	var req dto.TeacherListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.teacherSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// CreateTeacher 创建教师账号，返回一次性临时密码
// POST /api/v1/teachers
func (h *TeacherHandler) CreateTeacher(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.teacherSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateTeacher 更新教师信息
// PUT /api/v1/teachers/:id
func (h *TeacherHandler) UpdateTeacher(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.teacherSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteTeacher 删除教师账号（软删除）
// DELETE /api/v1/teachers/:id
func (h *TeacherHandler) DeleteTeacher(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.teacherSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, nil)
}

// ResetPassword 重置教师密码
// POST /api/v1/teachers/:id/reset-password
func (h *TeacherHandler) ResetPassword(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.teacherSvc.ResetPassword(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *TeacherHandler) handleTeacherError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 12001, "教师不存在")
	case errors.Is(err, service.ErrUsernameExists):
		response.Conflict(c, 12002, "用户名已被使用")
	case errors.Is(err, service.ErrUserSelfDelete):
		response.BadRequest(c, 12003, "不能删除自己")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12004, "数据已被修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
