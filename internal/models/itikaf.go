package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type ItikafEvent struct {
	BaseModel
	OrganizationID string    `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	Name           string    `gorm:"not null" json:"name"`
	StartDate      time.Time `gorm:"not null" json:"start_date"`
	EndDate        time.Time `gorm:"not null" json:"end_date"`
	Capacity       int       `json:"capacity"`
	SheetName      string    `json:"sheet_name"`
}

func (e *ItikafEvent) TenantID() string { return e.OrganizationID }

// Nights is the number of nights between start and end, inclusive.
func (e *ItikafEvent) Nights() int {
	start := e.StartDate.Truncate(24 * time.Hour)
	end := e.EndDate.Truncate(24 * time.Hour)
	n := int(end.Sub(start).Hours()/24) + 1
	if n < 1 {
		return 1
	}
	return n
}

type ItikafParticipant struct {
	BaseModel
	EventID string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_participant_event_code" json:"event_id"`
	Code    string         `gorm:"not null;uniqueIndex:idx_participant_event_code" json:"code"`
	Name    string         `gorm:"not null" json:"name"`
	Phone   string         `json:"phone"`
	Gender  string         `gorm:"type:varchar(1)" json:"gender"`
	Age     int            `json:"age"`
	Nights  datatypes.JSON `json:"nights"`
	Synced  bool           `gorm:"default:false" json:"synced"`
}

func (p *ItikafParticipant) GetNights() []int {
	var out []int
	if len(p.Nights) > 0 {
		_ = json.Unmarshal(p.Nights, &out)
	}
	if out == nil {
		out = []int{}
	}
	return out
}

func (p *ItikafParticipant) SetNights(nights []int) {
	if nights == nil {
		nights = []int{}
	}
	data, _ := json.Marshal(nights)
	p.Nights = datatypes.JSON(data)
}
