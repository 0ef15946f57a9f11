package dto

// ── 学生模块 DTO ──

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	BusinessName string `form:"business" binding:"omitempty,max=200"`
}

// CreateStudentRequest 新增学生
type CreateStudentRequest struct {
	FullName     string `json:"full_name"     binding:"required,min=2,max=150"`
	NationalID   string `json:"national_id"   binding:"required,tckn"`
	BusinessName string `json:"business_name" binding:"omitempty,max=200"`
	Phone        string `json:"phone"         binding:"omitempty,max=20"`
}

// UpdateStudentRequest 更新学生（version 用于乐观锁）
type UpdateStudentRequest struct {
	FullName     *string `json:"full_name"     binding:"omitempty,min=2,max=150"`
	NationalID   *string `json:"national_id"   binding:"omitempty,tckn"`
	BusinessName *string `json:"business_name" binding:"omitempty,max=200"`
	Phone        *string `json:"phone"         binding:"omitempty,max=20"`
	Version      int     `json:"version"       binding:"required,min=1"`
}

// StudentResponse 学生信息
type StudentResponse struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	NationalID   string `json:"national_id"`
	BusinessName string `json:"business_name"`
	Phone        string `json:"phone"`
	Version      int    `json:"version"`
}
