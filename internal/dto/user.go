package dto

// ── 用户模块 DTO ──

// RegisterUserRequest 为已认证身份创建档案
type RegisterUserRequest struct {
	Name  string `json:"name"  binding:"required,notblank,max=100"`
	Email string `json:"email" binding:"required,email,max=255"`
}

// UserResponse 用户档案
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}
