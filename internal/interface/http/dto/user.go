package dto

// CredentialsRequest 注册/登录
type CredentialsRequest struct {
	Email    string `json:"email" example:"reader@example.com"`
	Password string `json:"password" example:"secret123"`
}

// UpdateUserRequest 修改资料，未提供的字段不变
type UpdateUserRequest struct {
	Email    *string `json:"email" example:"new@example.com"`
	Password *string `json:"password" example:"new-secret"`
}
