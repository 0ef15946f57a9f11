package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mesem-yoklama/internal/dto"
	"mesem-yoklama/internal/report"
	"mesem-yoklama/internal/service"
	"mesem-yoklama/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler 月度报表 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// ExportMonthly 下载月度缺勤表
// GET /api/v1/reports/monthly?business=&month=&year=
func (h *ReportHandler) ExportMonthly(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MonthlyReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.reportSvc.ExportMonthly(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.File(c, xlsxContentType, filename, buf.Bytes())
}

// PreviewMonthly 报表预览（JSON）
// GET /api/v1/reports/monthly/preview?business=&month=&year=
func (h *ReportHandler) PreviewMonthly(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MonthlyReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reportSvc.PreviewMonthly(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// 报表错误不向客户端暴露底层原因，详情见服务端日志
func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidPeriod):
		response.BadRequest(c, 15001, "无效的报表月份")
	case errors.Is(err, report.ErrBusinessRequired):
		response.BadRequest(c, 15002, "企业名称不能为空")
	case errors.Is(err, report.ErrStoreUnavailable):
		response.ServiceUnavailable(c, 15003, "考勤数据暂时无法读取，请稍后重试")
	case errors.Is(err, report.ErrTemplateMissing):
		response.Error(c, http.StatusInternalServerError, 15004, "报表模板缺失，请联系管理员")
	case errors.Is(err, report.ErrSerializationFailure):
		response.Error(c, http.StatusInternalServerError, 15005, "报表文件生成失败")
	default:
		response.InternalError(c)
	}
}
