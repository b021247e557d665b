package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type Application struct {
	BaseModel
	JobID       string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_application_job_candidate" json:"job_id"`
	CandidateID string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_application_job_candidate;index" json:"candidate_id"`
	Status      string         `gorm:"type:varchar(32);not null;default:'applied';index" json:"status"`
	CoverLetter string         `gorm:"type:text" json:"cover_letter"`
	ResumeURL   string         `json:"resume_url"`
	Answers     datatypes.JSON `json:"answers"`
	Notes       string         `gorm:"type:text" json:"notes,omitempty"`
	Rating      *int           `json:"rating,omitempty"`

	Job       *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Candidate *User `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
}

func (a *Application) GetAnswers() map[string]string {
	out := map[string]string{}
	if len(a.Answers) > 0 {
		_ = json.Unmarshal(a.Answers, &out)
	}
	return out
}

func (a *Application) SetAnswers(answers map[string]string) {
	if answers == nil {
		answers = map[string]string{}
	}
	data, _ := json.Marshal(answers)
	a.Answers = datatypes.JSON(data)
}
