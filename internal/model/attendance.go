package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AttendanceStatus 考勤状态（封闭枚举）
// 写入边界统一将自由文本归一化为以下取值，报表汇总不再解析原始文本
type AttendanceStatus string

const (
	StatusPresent           AttendanceStatus = "present"
	StatusAbsent            AttendanceStatus = "absent"
	StatusExcusedPermission AttendanceStatus = "excused_permission"
	StatusExcusedMedical    AttendanceStatus = "excused_medical"
)

// Valid 是否为受支持的状态
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusExcusedPermission, StatusExcusedMedical:
		return true
	default:
		return false
	}
}

// 按优先级依次匹配：缺勤 → 请假 → 病假报告，其余一律视为出勤
var statusMarkers = []struct {
	status  AttendanceStatus
	markers []string
}{
	{StatusAbsent, []string{"devamsız", "devamsiz", "gelmedi", "izinsiz", "yok", "absent"}},
	{StatusExcusedPermission, []string{"izin", "permission"}},
	{StatusExcusedMedical, []string{"rapor", "medical"}},
}

var turkishLower = cases.Lower(language.Turkish)

// ParseStatus 将教师提交的自由文本（如 "Devamsız"、"İzinli"、"Raporlu"、"Geldi"）归一化为枚举
// 使用土耳其语大小写规则（İ→i，I→ı），匹配为子串包含
func ParseStatus(raw string) AttendanceStatus {
	if s := AttendanceStatus(strings.TrimSpace(raw)); s.Valid() {
		return s
	}
	text := turkishLower.String(strings.TrimSpace(raw))
	for _, sm := range statusMarkers {
		for _, m := range sm.markers {
			if strings.Contains(text, m) {
				return sm.status
			}
		}
	}
	return StatusPresent
}

// DateKeyLayout 考勤日期的本地化展示格式 DD.MM.YYYY
const DateKeyLayout = "02.01.2006"

// AttendanceRecord 考勤记录表 对应 attendance_records
//
// 除分组“删除后重建”外不做字段级修改；
// (BusinessName, AttendanceDate) 在同一教师下构成分组键
type AttendanceRecord struct {
	AttendanceID   string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	TeacherID      string           `gorm:"type:uuid;not null"                             json:"teacher_id"`
	StudentName    string           `gorm:"type:varchar(150);not null"                     json:"student_name"`
	NationalID     string           `gorm:"type:varchar(11);not null;default:''"           json:"national_id"`
	BusinessName   string           `gorm:"type:varchar(200);not null"                     json:"business_name"`
	Phone          string           `gorm:"type:varchar(20);not null;default:''"           json:"phone"`
	AttendanceDate time.Time        `gorm:"type:date;not null"                             json:"attendance_date"`
	Status         AttendanceStatus `gorm:"type:varchar(30);not null"                      json:"status"`
	Note           string           `gorm:"type:text;not null;default:''"                  json:"note"`
	LocationURL    *string          `gorm:"type:varchar(255)"                              json:"location_url,omitempty"`
	CreatedAt      time.Time        `gorm:"not null"                                       json:"created_at"`
	CreatedBy      *string          `gorm:"type:uuid"                                      json:"created_by,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// DateKey 返回 DD.MM.YYYY 格式的日期键
func (r *AttendanceRecord) DateKey() string {
	return r.AttendanceDate.Format(DateKeyLayout)
}

// ParseDateKey 解析 DD.MM.YYYY（允许带 " HH:MM:SS" 时间后缀，兼容历史本地化时间戳）
// 返回 UTC 零点日期
func ParseDateKey(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " ,"); i > 0 {
		s = s[:i]
	}
	return time.Parse(DateKeyLayout, s)
}

// DateOf 截取 t 在 loc 时区下的日期，返回 UTC 零点
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
