package dto

// ── 月度报表 DTO ──

// MonthlyReportRequest 月度缺勤报表查询参数
type MonthlyReportRequest struct {
	BusinessName string `form:"business" binding:"required,max=200"`
	Month        int    `form:"month"    binding:"required,min=1,max=12"`
	Year         int    `form:"year"     binding:"required,min=1000,max=9999"`
}

// MonthlyPreviewResponse 报表预览（与导出使用同一汇总结果）
type MonthlyPreviewResponse struct {
	BusinessName string            `json:"business_name"`
	Period       string            `json:"period"` // MM / YYYY
	BusinessDays []int             `json:"business_days"`
	Rows         []MonthlyRowEntry `json:"rows"`
}

// MonthlyRowEntry 单个学生一行
type MonthlyRowEntry struct {
	StudentID  string            `json:"student_id"`
	NationalID string            `json:"national_id"`
	Name       string            `json:"name"`
	Days       map[string]string `json:"days"` // 日 → 符号
	Absent     int               `json:"absent"`
	Permission int               `json:"permission"`
	Medical    int               `json:"medical"`
}
