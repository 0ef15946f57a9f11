package dto

// ── 教师账号管理 DTO（管理员） ──

// TeacherListRequest 教师列表查询参数
type TeacherListRequest struct {
	PaginationRequest
}

// CreateTeacherRequest 创建教师账号
type CreateTeacherRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Username string `json:"username" binding:"required,min=3,max=50,alphanum"`
}

// UpdateTeacherRequest 更新教师信息
type UpdateTeacherRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=2,max=100"`
	Username *string `json:"username" binding:"omitempty,min=3,max=50,alphanum"`
}

// CreateTeacherResponse 创建结果，附带一次性临时密码
type CreateTeacherResponse struct {
	Teacher      UserResponse `json:"teacher"`
	TempPassword string       `json:"temp_password"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}
