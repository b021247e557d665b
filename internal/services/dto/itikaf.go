package dto

import (
	"time"

	"portal_backend/internal/models"
)

type ItikafEventRequest struct {
	Name      string    `json:"name" validate:"required,min=3,max=150"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Capacity  int       `json:"capacity" validate:"gte=0"`
	SheetName string    `json:"sheet_name" validate:"omitempty,max=100"`
}

type RegisterParticipantRequest struct {
	Code   string `json:"code" validate:"omitempty,max=20"`
	Name   string `json:"name" validate:"required,min=2,max=100"`
	Phone  string `json:"phone" validate:"omitempty,phone"`
	Gender string `json:"gender" validate:"omitempty,oneof=L P"`
	Age    int    `json:"age" validate:"gte=0,lte=120"`
	Nights []int  `json:"nights" validate:"omitempty,dive,min=1"`
}

type CheckInRequest struct {
	Code  string `json:"code" validate:"required,max=20"`
	Night int    `json:"night" validate:"omitempty,min=1"`
}

type CheckInResponse struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Night int    `json:"night"`
	Row   int    `json:"row"`
}

type AttendanceRow struct {
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Attended map[int]bool `json:"attended"`
	Total    int          `json:"total"`
}

type AttendanceResponse struct {
	Event   *models.ItikafEvent `json:"event"`
	Nights  int                 `json:"nights"`
	Rows    []AttendanceRow     `json:"rows"`
	ByNight map[int]int         `json:"by_night"`
}

type SyncResponse struct {
	EventID string `json:"event_id"`
	Synced  int    `json:"synced"`
}
