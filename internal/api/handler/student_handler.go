package handler

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"mesem-yoklama/internal/dto"
	"mesem-yoklama/internal/service"
	pkgerrors "mesem-yoklama/pkg/errors"
	"mesem-yoklama/pkg/response"
)

// StudentHandler 学生模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListStudents 学生列表（按土耳其语字母顺序）
// GET /api/v1/students?business=
func (h *StudentHandler) ListStudents(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.studentSvc.List(c.Request.Context(), teacherID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// ListBusinesses 教师名下的企业名称
// GET /api/v1/students/businesses
func (h *StudentHandler) ListBusinesses(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	names, err := h.studentSvc.ListBusinesses(c.Request.Context(), teacherID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, names)
}

// CreateStudent 新增学生
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.studentSvc.Create(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateStudent 更新学生
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.studentSvc.Update(c.Request.Context(), teacherID, c.Param("id"), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteStudent 删除学生
// DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), teacherID, c.Param("id")); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportStudents 教师导入自己的花名册
// POST /api/v1/students/import (multipart, 字段 file)
func (h *StudentHandler) ImportStudents(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	h.importFor(c, teacherID, teacherID)
}

// ImportStudentsForTeacher 管理员为指定教师导入花名册
// POST /api/v1/teachers/:id/students/import
func (h *StudentHandler) ImportStudentsForTeacher(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	h.importFor(c, c.Param("id"), callerID)
}

func (h *StudentHandler) importFor(c *gin.Context, teacherID, callerID string) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 13008, "请上传 Excel 文件")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		response.BadRequest(c, 13007, "仅支持 .xlsx 文件")
		return
	}

	file, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 13007, "无法读取上传文件")
		return
	}
	defer file.Close()

	rows, err := h.studentSvc.ParseImportFile(file)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	result, err := h.studentSvc.ImportStudents(c.Request.Context(), teacherID, rows, callerID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "学生不存在")
	case errors.Is(err, service.ErrNationalIDExists):
		response.Conflict(c, 13002, "该身份证号的学生已存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13003, "数据已被修改，请刷新后重试")
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 13004, "Excel 文件无数据行")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 13005, "数据行数超过上限")
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 13006, "Excel 表头缺少必要列（adSoyad / tcNo）")
	case errors.Is(err, service.ErrImportBadFile):
		response.BadRequest(c, 13007, "无法解析 Excel 文件")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 12001, "教师不存在")
	default:
		response.InternalError(c)
	}
}
