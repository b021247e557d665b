package models

import "gorm.io/datatypes"

type Profile struct {
	BaseModel
	UserID       string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	Phone        string         `json:"phone"`
	Headline     string         `json:"headline"`
	Summary      string         `json:"summary"`
	Location     string         `json:"location"`
	Skills       datatypes.JSON `json:"skills"`
	ResumeURL    string         `json:"resume_url"`
	LinkedInURL  string         `json:"linkedin_url"`
	PortfolioURL string         `json:"portfolio_url"`
}

func (p *Profile) GetSkills() []string {
	return decodeStrings(p.Skills)
}

func (p *Profile) SetSkills(skills []string) {
	p.Skills = encodeStrings(skills)
}
