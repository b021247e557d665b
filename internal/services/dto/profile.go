package dto

import "portal_backend/internal/models"

type UpdateProfileRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Phone        *string  `json:"phone" validate:"omitempty,phone"`
	Headline     *string  `json:"headline" validate:"omitempty,max=150"`
	Summary      *string  `json:"summary" validate:"omitempty,max=5000"`
	Location     *string  `json:"location" validate:"omitempty,max=150"`
	Skills       []string `json:"skills" validate:"omitempty,max=50,dive,min=1,max=50"`
	ResumeURL    *string  `json:"resume_url" validate:"omitempty,url"`
	LinkedInURL  *string  `json:"linkedin_url" validate:"omitempty,url"`
	PortfolioURL *string  `json:"portfolio_url" validate:"omitempty,url"`
	AvatarURL    *string  `json:"avatar_url" validate:"omitempty,max=500"`
}

type ProfileResponse struct {
	User    UserDTO         `json:"user"`
	Profile *models.Profile `json:"profile"`
	Skills  []string        `json:"skills"`
}
