package dto

import (
	"time"

	"portal_backend/internal/models"
)

type RegisterRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8,max=72"`
	Name     string          `json:"name" validate:"required,min=2,max=100"`
	Role     models.UserRole `json:"role" validate:"omitempty,oneof=candidate recruiter mosque_admin"`

	// Recruiters and mosque admins either join an existing organization by slug
	// or create one by name.
	OrganizationSlug string `json:"organization_slug,omitempty" validate:"omitempty,max=100"`
	OrganizationName string `json:"organization_name,omitempty" validate:"omitempty,max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserDTO   `json:"user"`
}

type UserDTO struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	Name         string               `json:"name"`
	Role         models.UserRole      `json:"role"`
	Status       models.UserStatus    `json:"status"`
	AvatarURL    string               `json:"avatar_url,omitempty"`
	Organization *models.Organization `json:"organization,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

func NewUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Status:       u.Status,
		AvatarURL:    u.AvatarURL,
		Organization: u.Organization,
		CreatedAt:    u.CreatedAt,
	}
}

type GoogleLoginResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}
