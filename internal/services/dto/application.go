package dto

import "portal_backend/internal/models"

type ApplyRequest struct {
	CoverLetter string            `json:"cover_letter" validate:"max=10000"`
	ResumeURL   string            `json:"resume_url" validate:"omitempty,max=500"`
	Answers     map[string]string `json:"answers"`
}

type ListApplicationsRequest struct {
	Status   string `form:"status" validate:"omitempty,max=32"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type UpdateApplicationRequest struct {
	Status *string `json:"status" validate:"omitempty,max=64"`
	Notes  *string `json:"notes" validate:"omitempty,max=10000"`
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

type ApplicationResponse struct {
	*models.Application
	AnswerMap map[string]string `json:"answer_map"`
}

func NewApplicationResponse(a *models.Application) *ApplicationResponse {
	if a.Candidate != nil {
		a.Candidate.Organization = nil
	}
	return &ApplicationResponse{Application: a, AnswerMap: a.GetAnswers()}
}

type JobApplicationStats struct {
	JobID    string           `json:"job_id"`
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}
