package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Job struct {
	BaseModelWithDeleted
	OrganizationID string          `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	PostedByID     string          `gorm:"type:varchar(36);not null" json:"posted_by_id"`
	Title          string          `gorm:"not null" json:"title"`
	Slug           string          `gorm:"uniqueIndex;not null" json:"slug"`
	Description    string          `gorm:"type:text" json:"description"`
	Requirements   string          `gorm:"type:text" json:"requirements"`
	Location       string          `gorm:"index" json:"location"`
	EmploymentType EmploymentType  `gorm:"type:varchar(20);not null" json:"employment_type"`
	Remote         bool            `gorm:"default:false" json:"remote"`
	SalaryMin      decimal.Decimal `gorm:"type:decimal(14,2)" json:"salary_min"`
	SalaryMax      decimal.Decimal `gorm:"type:decimal(14,2)" json:"salary_max"`
	Currency       string          `gorm:"type:varchar(3);default:'IDR'" json:"currency"`
	Status         JobStatus       `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	Deadline       *time.Time      `json:"deadline,omitempty"`
	Views          int             `gorm:"default:0" json:"views"`

	Organization *Organization          `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Fields       []ApplicationFormField `gorm:"foreignKey:JobID" json:"fields,omitempty"`
}

func (j *Job) TenantID() string { return j.OrganizationID }

func (j *Job) IsOpen(now time.Time) bool {
	if j.Status != JobStatusOpen {
		return false
	}
	return j.Deadline == nil || now.Before(*j.Deadline)
}

type ApplicationFormField struct {
	BaseModel
	JobID       string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_field_job_name" json:"job_id"`
	Label       string         `gorm:"not null" json:"label"`
	Name        string         `gorm:"not null;uniqueIndex:idx_field_job_name" json:"name"`
	Type        FieldType      `gorm:"type:varchar(20);not null" json:"type"`
	Required    bool           `gorm:"default:false" json:"required"`
	Options     datatypes.JSON `json:"options"`
	Placeholder string         `json:"placeholder,omitempty"`
	Position    int            `gorm:"default:0" json:"position"`
}

func (f *ApplicationFormField) GetOptions() []string {
	return decodeStrings(f.Options)
}

func (f *ApplicationFormField) SetOptions(options []string) {
	f.Options = encodeStrings(options)
}
