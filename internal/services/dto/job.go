package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"portal_backend/internal/models"
)

type JobSearchRequest struct {
	Query          string `form:"q" validate:"omitempty,max=100"`
	Location       string `form:"location" validate:"omitempty,max=100"`
	EmploymentType string `form:"employment_type" validate:"omitempty,is-employment-type"`
	Remote         *bool  `form:"remote"`
	Status         string `form:"status" validate:"omitempty,is-job-status"`
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
}

type CreateJobRequest struct {
	Title          string                `json:"title" validate:"required,min=3,max=200"`
	Description    string                `json:"description" validate:"required,min=10"`
	Requirements   string                `json:"requirements"`
	Location       string                `json:"location" validate:"max=150"`
	EmploymentType models.EmploymentType `json:"employment_type" validate:"required,is-employment-type"`
	Remote         bool                  `json:"remote"`
	SalaryMin      *decimal.Decimal      `json:"salary_min"`
	SalaryMax      *decimal.Decimal      `json:"salary_max"`
	Currency       string                `json:"currency" validate:"omitempty,len=3"`
	Status         models.JobStatus      `json:"status" validate:"omitempty,is-job-status"`
	Deadline       *time.Time            `json:"deadline"`
	Fields         []CreateFieldRequest  `json:"fields" validate:"omitempty,max=50,dive"`
}

type UpdateJobRequest struct {
	Title          *string                `json:"title" validate:"omitempty,min=3,max=200"`
	Description    *string                `json:"description" validate:"omitempty,min=10"`
	Requirements   *string                `json:"requirements"`
	Location       *string                `json:"location" validate:"omitempty,max=150"`
	EmploymentType *models.EmploymentType `json:"employment_type" validate:"omitempty,is-employment-type"`
	Remote         *bool                  `json:"remote"`
	SalaryMin      *decimal.Decimal       `json:"salary_min"`
	SalaryMax      *decimal.Decimal       `json:"salary_max"`
	Currency       *string                `json:"currency" validate:"omitempty,len=3"`
	Deadline       *time.Time             `json:"deadline"`
	ClearDeadline  bool                   `json:"clear_deadline"`
}

type ChangeJobStatusRequest struct {
	Status models.JobStatus `json:"status" validate:"required,is-job-status"`
}

type CreateFieldRequest struct {
	Label       string           `json:"label" validate:"required,min=1,max=150"`
	Name        string           `json:"name" validate:"omitempty,max=64"`
	Type        models.FieldType `json:"type" validate:"required,is-field-type"`
	Required    bool             `json:"required"`
	Options     []string         `json:"options" validate:"omitempty,max=100,dive,min=1,max=200"`
	Placeholder string           `json:"placeholder" validate:"max=200"`
}

type UpdateFieldRequest struct {
	Label       *string           `json:"label" validate:"omitempty,min=1,max=150"`
	Name        *string           `json:"name" validate:"omitempty,min=1,max=64"`
	Type        *models.FieldType `json:"type" validate:"omitempty,is-field-type"`
	Required    *bool             `json:"required"`
	Options     []string          `json:"options" validate:"omitempty,max=100,dive,min=1,max=200"`
	Placeholder *string           `json:"placeholder" validate:"omitempty,max=200"`
}

type ReorderFieldsRequest struct {
	FieldIDs []string `json:"field_ids" validate:"required,min=1,dive,required"`
}

type JobResponse struct {
	*models.Job
	ApplicationCount int64 `json:"application_count,omitempty"`
	IsOwner          bool  `json:"is_owner"`
}
