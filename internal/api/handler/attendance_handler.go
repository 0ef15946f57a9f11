package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mesem-yoklama/internal/dto"
	"mesem-yoklama/internal/report"
	"mesem-yoklama/internal/service"
	pkgerrors "mesem-yoklama/pkg/errors"
	"mesem-yoklama/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// RecordAttendance 扫码记录考勤
// POST /api/v1/attendance
func (h *AttendanceHandler) RecordAttendance(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.Record(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, result)
}

// ListAttendance 考勤记录列表（最新在前）
// GET /api/v1/attendance?business=&from=&to=&page=&page_size=
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.attendanceSvc.List(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// DeleteAttendance 删除单条考勤
// DELETE /api/v1/attendance/:id
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.attendanceSvc.Delete(c.Request.Context(), teacherID, c.Param("id")); err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetGroup 读取某企业某天的全部记录（编辑前加载）
// GET /api/v1/attendance/groups?business=&date=
func (h *AttendanceHandler) GetGroup(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var key dto.AttendanceGroupKey
	if err := c.ShouldBindQuery(&key); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.attendanceSvc.GetGroup(c.Request.Context(), teacherID, &key)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, list)
}

// ReplaceGroup 分组编辑：整组删除后写入新记录（单事务）
// PUT /api/v1/attendance/groups
func (h *AttendanceHandler) ReplaceGroup(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ReplaceGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.attendanceSvc.ReplaceGroup(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, list)
}

// DeleteGroup 删除整组考勤
// DELETE /api/v1/attendance/groups?business=&date=
func (h *AttendanceHandler) DeleteGroup(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var key dto.AttendanceGroupKey
	if err := c.ShouldBindQuery(&key); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	n, err := h.attendanceSvc.DeleteGroup(c.Request.Context(), teacherID, &key)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, dto.DeleteGroupResponse{Deleted: n})
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 14001, "考勤记录不存在")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 14002, "该企业当天没有考勤记录")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14003, "日期格式错误")
	case errors.Is(err, service.ErrInvalidLocation):
		response.BadRequest(c, 14004, "经纬度必须同时提供")
	case errors.Is(err, report.ErrBusinessRequired):
		response.BadRequest(c, 14005, "企业名称不能为空")
	case errors.Is(err, pkgerrors.ErrEmptyGroup):
		response.BadRequest(c, 14006, "分组记录不能为空")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 14007, "未找到该身份证号对应的学生")
	default:
		response.InternalError(c)
	}
}
