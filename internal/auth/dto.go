// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type RegisterRequest struct {
	FirstName   string  `json:"first_name"             validate:"required,min=1,max=100"`
	LastName    string  `json:"last_name"              validate:"required,min=1,max=100"`
	Email       string  `json:"email"                  validate:"required,email,max=255"`
	Password    string  `json:"password"               validate:"required,min=8,max=128"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,min=5,max=32"`
	RoleID      *int64  `json:"role_id,omitempty"      validate:"omitempty,gt=0"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required,max=256"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type UserResponse struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PhoneNumber  *string   `json:"phone_number,omitempty"`
	RoleID       int64     `json:"role_id"`
	AuthProvider string    `json:"auth_provider"`
	CreatedAt    time.Time `json:"created_at"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type MeResponse struct {
	UserResponse
	RoleName    string   `json:"role_name"`
	Permissions []string `json:"permissions"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		RoleID:       u.RoleID,
		AuthProvider: u.AuthProvider,
		CreatedAt:    u.CreatedAt,
	}
}
