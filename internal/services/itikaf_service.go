package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/internal/sheets"
	"portal_backend/pkg/apperrors"
)

// Attendance sheet layout: fixed participant columns followed by one column per night.
var itikafFixedHeader = []string{"Kode", "Nama", "HP", "L/P", "Usia"}

const attendanceMark = "✓"

// maxEventNights bounds the attendance sheet width.
const maxEventNights = 30

type ItikafService interface {
	ListEvents(db *gorm.DB, orgID string) ([]models.ItikafEvent, error)
	GetEvent(db *gorm.DB, orgID, id string) (*models.ItikafEvent, error)
	CreateEvent(ctx context.Context, db *gorm.DB, orgID string, req *dto.ItikafEventRequest) (*models.ItikafEvent, error)
	UpdateEvent(ctx context.Context, db *gorm.DB, orgID, id string, req *dto.ItikafEventRequest) (*models.ItikafEvent, error)
	DeleteEvent(db *gorm.DB, orgID, id string) error

	ListParticipants(db *gorm.DB, orgID, eventID string) ([]models.ItikafParticipant, error)
	RegisterParticipant(ctx context.Context, db *gorm.DB, orgID, eventID string, req *dto.RegisterParticipantRequest) (*models.ItikafParticipant, error)
	DeleteParticipant(db *gorm.DB, orgID, eventID, id string) error

	// CheckIn marks the participant's night column in the event's attendance sheet.
	CheckIn(ctx context.Context, db *gorm.DB, orgID, eventID string, req *dto.CheckInRequest) (*dto.CheckInResponse, error)
	Attendance(ctx context.Context, db *gorm.DB, orgID, eventID string) (*dto.AttendanceResponse, error)
	// Sync appends participants not yet present in the sheet.
	Sync(ctx context.Context, db *gorm.DB, orgID, eventID string) (*dto.SyncResponse, error)
	SyncAll(ctx context.Context, db *gorm.DB) (int, error)
}

type ItikafServiceImpl struct {
	itikafRepo    repositories.ItikafRepository
	sheets        sheets.Store
	spreadsheetID string
	now           func() time.Time
}

func NewItikafService(itikafRepo repositories.ItikafRepository, store sheets.Store, spreadsheetID string) ItikafService {
	return &ItikafServiceImpl{
		itikafRepo:    itikafRepo,
		sheets:        store,
		spreadsheetID: spreadsheetID,
		now:           time.Now,
	}
}

// Events

func (s *ItikafServiceImpl) ListEvents(db *gorm.DB, orgID string) ([]models.ItikafEvent, error) {
	list, err := s.itikafRepo.ListEvents(db, orgID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if list == nil {
		list = []models.ItikafEvent{}
	}
	return list, nil
}

func (s *ItikafServiceImpl) GetEvent(db *gorm.DB, orgID, id string) (*models.ItikafEvent, error) {
	e, err := s.itikafRepo.FindEvent(db, orgID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrItikafEventNotFound) {
			return nil, apperrors.ErrItikafEventNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return e, nil
}

func (s *ItikafServiceImpl) CreateEvent(ctx context.Context, db *gorm.DB, orgID string, req *dto.ItikafEventRequest) (*models.ItikafEvent, error) {
	if err := checkEventSpan(req); err != nil {
		return nil, err
	}
	e := &models.ItikafEvent{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		StartDate:      req.StartDate.UTC(),
		EndDate:        req.EndDate.UTC(),
		Capacity:       req.Capacity,
	}
	// The id is needed up front: it keys the event's tab in the shared spreadsheet.
	e.ID = uuid.NewString()
	e.SheetName = sheetTitle(req.SheetName, req.Name, e.ID)
	if err := s.itikafRepo.CreateEvent(db, e); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if s.sheetsConfigured() {
		if err := s.prepareSheet(ctx, e); err != nil {
			logger.CtxWithError(ctx, "Failed to prepare attendance sheet", err, "event_id", e.ID)
		}
	}
	return e, nil
}

func (s *ItikafServiceImpl) UpdateEvent(ctx context.Context, db *gorm.DB, orgID, id string, req *dto.ItikafEventRequest) (*models.ItikafEvent, error) {
	if err := checkEventSpan(req); err != nil {
		return nil, err
	}
	e, err := s.GetEvent(db, orgID, id)
	if err != nil {
		return nil, err
	}
	if req.Capacity > 0 {
		count, err := s.itikafRepo.CountParticipants(db, e.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if int64(req.Capacity) < count {
			return nil, apperrors.ErrInvalidOperation("itikaf", "Capacity is below the number of registered participants")
		}
	}

	e.Name = strings.TrimSpace(req.Name)
	e.StartDate = req.StartDate.UTC()
	e.EndDate = req.EndDate.UTC()
	e.Capacity = req.Capacity
	if req.SheetName != "" {
		e.SheetName = sheetTitle(req.SheetName, req.Name, e.ID)
	}
	if err := s.itikafRepo.UpdateEvent(db, e); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if s.sheetsConfigured() {
		if err := s.prepareSheet(ctx, e); err != nil {
			logger.CtxWithError(ctx, "Failed to prepare attendance sheet", err, "event_id", e.ID)
		}
	}
	return e, nil
}

func (s *ItikafServiceImpl) DeleteEvent(db *gorm.DB, orgID, id string) error {
	if err := s.itikafRepo.DeleteEvent(db, orgID, id); err != nil {
		if errors.Is(err, repositories.ErrItikafEventNotFound) {
			return apperrors.ErrItikafEventNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// Participants

func (s *ItikafServiceImpl) ListParticipants(db *gorm.DB, orgID, eventID string) ([]models.ItikafParticipant, error) {
	if _, err := s.GetEvent(db, orgID, eventID); err != nil {
		return nil, err
	}
	list, err := s.itikafRepo.ListParticipants(db, eventID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if list == nil {
		list = []models.ItikafParticipant{}
	}
	return list, nil
}

// RegisterParticipant stores the participant and appends them to the attendance
// sheet. A failed sheet write leaves the participant unsynced for the sync worker.
func (s *ItikafServiceImpl) RegisterParticipant(ctx context.Context, db *gorm.DB, orgID, eventID string, req *dto.RegisterParticipantRequest) (*models.ItikafParticipant, error) {
	tx := db.Begin()
	defer tx.Rollback()

	e, err := s.GetEvent(tx, orgID, eventID)
	if err != nil {
		return nil, err
	}
	if e.Capacity > 0 {
		count, err := s.itikafRepo.CountParticipants(tx, e.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if count >= int64(e.Capacity) {
			return nil, apperrors.ErrEventFull
		}
	}

	nights, err := checkNights(e, req.Nights)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		code = newParticipantCode()
	}
	p := &models.ItikafParticipant{
		EventID: e.ID,
		Code:    code,
		Name:    strings.TrimSpace(req.Name),
		Phone:   req.Phone,
		Gender:  req.Gender,
		Age:     req.Age,
	}
	p.SetNights(nights)
	if err := s.itikafRepo.CreateParticipant(tx, p); err != nil {
		if errors.Is(err, repositories.ErrParticipantCodeUsed) {
			return nil, apperrors.ErrConflict(err, "itikaf", "Participant code already used")
		}
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	if s.sheetsConfigured() {
		if err := s.appendParticipant(ctx, e, p); err != nil {
			logger.CtxWithError(ctx, "Participant not written to sheet, will retry on sync", err,
				"event_id", e.ID, "code", p.Code)
			return p, nil
		}
		if err := s.itikafRepo.MarkSynced(db, []string{p.ID}); err != nil {
			return nil, apperrors.InternalError(err)
		}
		p.Synced = true
	}
	return p, nil
}

func (s *ItikafServiceImpl) DeleteParticipant(db *gorm.DB, orgID, eventID, id string) error {
	if _, err := s.GetEvent(db, orgID, eventID); err != nil {
		return err
	}
	if err := s.itikafRepo.DeleteParticipant(db, eventID, id); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return apperrors.ErrParticipantNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// Attendance

func (s *ItikafServiceImpl) CheckIn(ctx context.Context, db *gorm.DB, orgID, eventID string, req *dto.CheckInRequest) (*dto.CheckInResponse, error) {
	if !s.sheetsConfigured() {
		return nil, apperrors.ErrSheetsNotConfigured
	}
	e, err := s.GetEvent(db, orgID, eventID)
	if err != nil {
		return nil, err
	}

	night := req.Night
	if night == 0 {
		night = nightOf(e, s.now())
	}
	if night < 1 || night > e.Nights() {
		return nil, apperrors.ErrNightOutOfRange
	}

	p, err := s.itikafRepo.FindParticipantByCode(db, e.ID, strings.ToUpper(strings.TrimSpace(req.Code)))
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, apperrors.ErrParticipantNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if registered := p.GetNights(); len(registered) > 0 && !containsInt(registered, night) {
		return nil, apperrors.ErrInvalidOperation("itikaf", "Participant is not registered for this night")
	}

	row, err := s.locateRow(ctx, db, e, p)
	if err != nil {
		return nil, err
	}
	col := len(itikafFixedHeader) + night
	if err := s.sheets.UpdateCell(ctx, s.spreadsheetID, e.SheetName, row, col, attendanceMark); err != nil {
		return nil, apperrors.ExternalError(err, "sheets", "Failed to record attendance")
	}

	logger.CtxInfo(ctx, "Itikaf check-in", "event_id", e.ID, "code", p.Code, "night", night)
	return &dto.CheckInResponse{Code: p.Code, Name: p.Name, Night: night, Row: row}, nil
}

// locateRow finds the participant's sheet row, appending it first when the
// participant never made it to the sheet.
func (s *ItikafServiceImpl) locateRow(ctx context.Context, db *gorm.DB, e *models.ItikafEvent, p *models.ItikafParticipant) (int, error) {
	row, _, err := s.sheets.FindRow(ctx, s.spreadsheetID, e.SheetName, 1, p.Code)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, sheets.ErrRowNotFound) && !errors.Is(err, sheets.ErrSheetNotFound) {
		return 0, apperrors.ExternalError(err, "sheets", "Failed to read attendance sheet")
	}

	if err := s.appendParticipant(ctx, e, p); err != nil {
		return 0, apperrors.ExternalError(err, "sheets", "Failed to write attendance sheet")
	}
	if err := s.itikafRepo.MarkSynced(db, []string{p.ID}); err != nil {
		return 0, apperrors.InternalError(err)
	}
	row, _, err = s.sheets.FindRow(ctx, s.spreadsheetID, e.SheetName, 1, p.Code)
	if err != nil {
		return 0, apperrors.ExternalError(err, "sheets", "Failed to read attendance sheet")
	}
	return row, nil
}

func (s *ItikafServiceImpl) Attendance(ctx context.Context, db *gorm.DB, orgID, eventID string) (*dto.AttendanceResponse, error) {
	if !s.sheetsConfigured() {
		return nil, apperrors.ErrSheetsNotConfigured
	}
	e, err := s.GetEvent(db, orgID, eventID)
	if err != nil {
		return nil, err
	}

	nights := e.Nights()
	resp := &dto.AttendanceResponse{
		Event:   e,
		Nights:  nights,
		Rows:    []dto.AttendanceRow{},
		ByNight: make(map[int]int, nights),
	}
	for n := 1; n <= nights; n++ {
		resp.ByNight[n] = 0
	}

	rows, err := s.sheets.ReadRows(ctx, s.spreadsheetID, e.SheetName)
	if err != nil {
		if errors.Is(err, sheets.ErrSheetNotFound) {
			return resp, nil
		}
		return nil, apperrors.ExternalError(err, "sheets", "Failed to read attendance sheet")
	}

	fixed := len(itikafFixedHeader)
	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		ar := dto.AttendanceRow{Code: strings.TrimSpace(row[0]), Attended: make(map[int]bool, nights)}
		if len(row) > 1 {
			ar.Name = row[1]
		}
		for n := 1; n <= nights; n++ {
			idx := fixed + n - 1
			attended := idx < len(row) && strings.TrimSpace(row[idx]) != ""
			ar.Attended[n] = attended
			if attended {
				ar.Total++
				resp.ByNight[n]++
			}
		}
		resp.Rows = append(resp.Rows, ar)
	}
	return resp, nil
}

func (s *ItikafServiceImpl) Sync(ctx context.Context, db *gorm.DB, orgID, eventID string) (*dto.SyncResponse, error) {
	if !s.sheetsConfigured() {
		return nil, apperrors.ErrSheetsNotConfigured
	}
	e, err := s.GetEvent(db, orgID, eventID)
	if err != nil {
		return nil, err
	}
	n, err := s.syncEvent(ctx, db, e)
	if err != nil {
		return nil, err
	}
	return &dto.SyncResponse{EventID: e.ID, Synced: n}, nil
}

// SyncAll runs Sync over every event, logging failures and continuing.
func (s *ItikafServiceImpl) SyncAll(ctx context.Context, db *gorm.DB) (int, error) {
	if !s.sheetsConfigured() {
		return 0, nil
	}
	events, err := s.itikafRepo.ListAllEvents(db)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	total := 0
	for i := range events {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		n, err := s.syncEvent(ctx, db, &events[i])
		if err != nil {
			logger.CtxWithError(ctx, "Itikaf sync failed", err, "event_id", events[i].ID)
			continue
		}
		total += n
	}
	return total, nil
}

func (s *ItikafServiceImpl) syncEvent(ctx context.Context, db *gorm.DB, e *models.ItikafEvent) (int, error) {
	pending, err := s.itikafRepo.ListUnsynced(db, e.ID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	if err := s.prepareSheet(ctx, e); err != nil {
		return 0, apperrors.ExternalError(err, "sheets", "Failed to prepare attendance sheet")
	}

	var synced []string
	var appendErr error
	for i := range pending {
		if err := s.sheets.AppendRow(ctx, s.spreadsheetID, e.SheetName, participantRow(e, &pending[i])); err != nil {
			appendErr = err
			break
		}
		synced = append(synced, pending[i].ID)
	}
	if err := s.itikafRepo.MarkSynced(db, synced); err != nil {
		return 0, apperrors.InternalError(err)
	}
	if appendErr != nil {
		return len(synced), apperrors.ExternalError(appendErr, "sheets", "Failed to write attendance sheet")
	}
	return len(synced), nil
}

func (s *ItikafServiceImpl) appendParticipant(ctx context.Context, e *models.ItikafEvent, p *models.ItikafParticipant) error {
	if err := s.prepareSheet(ctx, e); err != nil {
		return err
	}
	return s.sheets.AppendRow(ctx, s.spreadsheetID, e.SheetName, participantRow(e, p))
}

// prepareSheet creates the event's tab and writes the header when it is empty.
func (s *ItikafServiceImpl) prepareSheet(ctx context.Context, e *models.ItikafEvent) error {
	if err := s.sheets.EnsureSheet(ctx, s.spreadsheetID, e.SheetName); err != nil {
		return err
	}
	rows, err := s.sheets.ReadRows(ctx, s.spreadsheetID, e.SheetName)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}
	return s.sheets.AppendRow(ctx, s.spreadsheetID, e.SheetName, attendanceHeader(e))
}

func (s *ItikafServiceImpl) sheetsConfigured() bool {
	return s.sheets != nil && s.spreadsheetID != ""
}

func attendanceHeader(e *models.ItikafEvent) []string {
	header := append([]string(nil), itikafFixedHeader...)
	for n := 1; n <= e.Nights(); n++ {
		header = append(header, "Malam "+strconv.Itoa(n))
	}
	return header
}

func participantRow(e *models.ItikafEvent, p *models.ItikafParticipant) []string {
	age := ""
	if p.Age > 0 {
		age = strconv.Itoa(p.Age)
	}
	row := []string{p.Code, p.Name, p.Phone, p.Gender, age}
	for n := 1; n <= e.Nights(); n++ {
		row = append(row, "")
	}
	return row
}

// nightOf returns the 1-based night of the event that now falls on.
func nightOf(e *models.ItikafEvent, now time.Time) int {
	start := e.StartDate.UTC().Truncate(24 * time.Hour)
	day := now.UTC().Truncate(24 * time.Hour)
	if day.Before(start) {
		return 0
	}
	return int(day.Sub(start).Hours()/24) + 1
}

func checkNights(e *models.ItikafEvent, nights []int) ([]int, error) {
	max := e.Nights()
	seen := make(map[int]bool, len(nights))
	out := make([]int, 0, len(nights))
	for _, n := range nights {
		if n < 1 || n > max {
			return nil, apperrors.ErrNightOutOfRange
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out, nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func newParticipantCode() string {
	return "ITK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

// sheetTitle builds the event's tab name. Every tenant shares one spreadsheet,
// so the name always ends with the event id prefix; the rest is stripped of
// characters Google Sheets rejects in tab names.
func sheetTitle(requested, fallback, eventID string) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = strings.TrimSpace(fallback)
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '*', '?', '/', '\\', ':', '#':
			return -1
		}
		return r
	}, name)
	suffix := " #" + truncate(eventID, 8)
	name = strings.TrimSpace(truncate(name, 100-len(suffix)))
	if name == "" {
		name = "Itikaf"
	}
	return name + suffix
}

func checkEventSpan(req *dto.ItikafEventRequest) error {
	if req.EndDate.Before(req.StartDate) {
		return apperrors.ValidationError(map[string]string{"end_date": "Must not be before start_date"})
	}
	e := models.ItikafEvent{StartDate: req.StartDate.UTC(), EndDate: req.EndDate.UTC()}
	if e.Nights() > maxEventNights {
		return apperrors.ValidationError(map[string]string{
			"end_date": "Event must not span more than " + strconv.Itoa(maxEventNights) + " nights",
		})
	}
	return nil
}
