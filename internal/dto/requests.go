package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	FullName string `json:"full_name" form:"full_name" binding:"required"`
	Username string `json:"username" form:"username" binding:"required,min=3"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request. Either username or email
// identifies the account; requiring one of the two is enforced in the
// service, not by binding tags.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token presented in the request body,
// for clients that do not use the cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents a password change for the current user
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// UpdateAccountRequest updates mutable account details
type UpdateAccountRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
