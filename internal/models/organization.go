package models

type Organization struct {
	BaseModel
	Name    string           `gorm:"not null" json:"name"`
	Slug    string           `gorm:"uniqueIndex;not null" json:"slug"`
	Kind    OrganizationKind `gorm:"type:varchar(20);not null" json:"kind"`
	Address string           `json:"address,omitempty"`
}
