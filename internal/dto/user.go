package dto

// ── 用户模块 DTO ──

// CreateUserRequest 管理员创建用户
type CreateUserRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Role     string `json:"role"     binding:"omitempty,oneof=admin user"`
}

// SetUserStatusRequest 切换用户状态；EffectiveDate 为空表示今天
type SetUserStatusRequest struct {
	Status        string `json:"status"         binding:"required,oneof=active inactive"`
	EffectiveDate string `json:"effective_date"`
}
