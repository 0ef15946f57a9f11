package dto

import "time"

// ── 考勤模块 DTO ──

// RecordAttendanceRequest 扫码记录考勤
// Status 接受自由文本（如 "Geldi"、"Devamsız"），写入前归一化
type RecordAttendanceRequest struct {
	NationalID string   `json:"national_id" binding:"required,tckn"`
	Status     string   `json:"status"      binding:"omitempty,max=50"`
	Note       string   `json:"note"        binding:"omitempty,max=500"`
	Latitude   *float64 `json:"latitude"    binding:"omitempty,latitude"`
	Longitude  *float64 `json:"longitude"   binding:"omitempty,longitude"`
}

// AttendanceListRequest 考勤列表查询参数（日期格式 YYYY-MM-DD）
type AttendanceListRequest struct {
	PaginationRequest
	BusinessName string `form:"business" binding:"omitempty,max=200"`
	From         string `form:"from"     binding:"omitempty,datetime=2006-01-02"`
	To           string `form:"to"       binding:"omitempty,datetime=2006-01-02"`
}

// AttendanceGroupKey 分组键：企业 + 日期
type AttendanceGroupKey struct {
	BusinessName string `json:"business_name" form:"business" binding:"required,max=200"`
	Date         string `json:"date"          form:"date"     binding:"required"` // YYYY-MM-DD 或 DD.MM.YYYY
}

// GroupEntry 分组编辑中的单条记录
type GroupEntry struct {
	StudentName string  `json:"student_name" binding:"required,max=150"`
	NationalID  string  `json:"national_id"  binding:"omitempty,tckn"`
	Phone       string  `json:"phone"        binding:"omitempty,max=20"`
	Status      string  `json:"status"       binding:"required,max=50"`
	Note        string  `json:"note"         binding:"omitempty,max=500"`
	LocationURL *string `json:"location_url" binding:"omitempty,url,max=255"`
}

// ReplaceGroupRequest 分组整体替换
type ReplaceGroupRequest struct {
	AttendanceGroupKey
	Records []GroupEntry `json:"records" binding:"required,min=1,dive"`
}

// AttendanceResponse 考勤记录
type AttendanceResponse struct {
	ID           string    `json:"id"`
	StudentName  string    `json:"student_name"`
	NationalID   string    `json:"national_id"`
	BusinessName string    `json:"business_name"`
	Phone        string    `json:"phone"`
	Date         string    `json:"date"` // DD.MM.YYYY
	Status       string    `json:"status"`
	Note         string    `json:"note"`
	LocationURL  *string   `json:"location_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DeleteGroupResponse 分组删除结果
type DeleteGroupResponse struct {
	Deleted int64 `json:"deleted"`
}
