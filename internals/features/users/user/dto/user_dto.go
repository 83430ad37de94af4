package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	profileDto "kosan_backend/internals/features/tenants/profiles/dto"
	"kosan_backend/internals/features/users/user/model"
)

type CreateUserRequest struct {
	UserName string  `json:"user_name" validate:"required,min=3,max=50"`
	FullName string  `json:"full_name" validate:"required,max=150"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Role     string  `json:"role" validate:"required,oneof=admin tenant"`
}

func (r *CreateUserRequest) Normalize() {
	r.UserName = strings.TrimSpace(r.UserName)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if r.Phone != nil {
		p := strings.TrimSpace(*r.Phone)
		if p == "" {
			r.Phone = nil
		} else {
			r.Phone = &p
		}
	}
}

// CreateTenantUserRequest: akun tenant + profil sekaligus.
type CreateTenantUserRequest struct {
	UserName string  `json:"user_name" validate:"required,min=3,max=50"`
	FullName string  `json:"full_name" validate:"required,max=150"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`

	profileDto.ProfileFields
}

func (r CreateTenantUserRequest) UserRequest() CreateUserRequest {
	return CreateUserRequest{
		UserName: r.UserName,
		FullName: r.FullName,
		Email:    r.Email,
		Password: r.Password,
		Phone:    r.Phone,
		Role:     "tenant",
	}
}

type UpdateUserRequest struct {
	UserName *string `json:"user_name" validate:"omitempty,min=3,max=50"`
	FullName *string `json:"full_name" validate:"omitempty,max=150"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}

type ChangeEmailRequest struct {
	NewEmail        string `json:"new_email" validate:"required,email,max=255"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type ListUsersQuery struct {
	Role     string `query:"role" validate:"omitempty,oneof=admin tenant"`
	IsActive *bool  `query:"is_active"`
	Q        string `query:"q"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	UserCode  string    `json:"user_code"`
	UserName  string    `json:"user_name"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromModel(u *model.UserModel) UserResponse {
	return UserResponse{
		ID:        u.ID,
		UserCode:  u.UserCode,
		UserName:  u.UserName,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromModelList(users []model.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, FromModel(&users[i]))
	}
	return out
}

type TenantUserResponse struct {
	User    UserResponse                     `json:"user"`
	Profile profileDto.TenantProfileResponse `json:"tenant_profile"`
}
