package dto

import (
	"time"

	profileDto "kosan_backend/internals/features/tenants/profiles/dto"
	userDto "kosan_backend/internals/features/users/user/dto"
)

type RegisterRequest struct {
	userDto.CreateTenantUserRequest
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	ExpiresAt   time.Time            `json:"expires_at"`
	User        userDto.UserResponse `json:"user"`
}

type MeResponse struct {
	User          userDto.UserResponse              `json:"user"`
	TenantProfile *profileDto.TenantProfileResponse `json:"tenant_profile,omitempty"`
}
