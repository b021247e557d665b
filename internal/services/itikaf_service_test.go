package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/internal/sheets"
	"portal_backend/internal/testutil"
	"portal_backend/pkg/apperrors"
)

// flakyStore fails appends until healed.
type flakyStore struct {
	*sheets.MemoryStore
	broken bool
}

func (s *flakyStore) AppendRow(ctx context.Context, id, sheet string, values []string) error {
	if s.broken {
		return errors.New("sheets unavailable")
	}
	return s.MemoryStore.AppendRow(ctx, id, sheet, values)
}

type itikafFixture struct {
	db    *gorm.DB
	svc   *ItikafServiceImpl
	store *flakyStore
	org   *models.Organization
	event *models.ItikafEvent
}

func newItikafFixture(t *testing.T, capacity int) *itikafFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := &flakyStore{MemoryStore: sheets.NewMemoryStore()}
	svc := NewItikafService(repositories.NewItikafRepository(), store, testSpreadsheet).(*ItikafServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 3, 11, 21, 0, 0, 0, time.UTC) }
	org := testutil.CreateOrganization(t, db, models.OrganizationKindMosque)

	event, err := svc.CreateEvent(context.Background(), db, org.ID, &dto.ItikafEventRequest{
		Name:      "Itikaf 10 Malam Terakhir: 1447H",
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC),
		Capacity:  capacity,
	})
	require.NoError(t, err)
	return &itikafFixture{db: db, svc: svc, store: store, org: org, event: event}
}

func TestItikafService_CreateEventPreparesSheet(t *testing.T) {
	f := newItikafFixture(t, 0)

	assert.Equal(t, "Itikaf 10 Malam Terakhir 1447H #"+f.event.ID[:8], f.event.SheetName)
	assert.Equal(t, 10, f.event.Nights())

	rows, err := f.store.ReadRows(context.Background(), testSpreadsheet, f.event.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Kode", "Nama", "HP", "L/P", "Usia", "Malam 1"}, rows[0][:6])
	assert.Equal(t, "Malam 10", rows[0][len(rows[0])-1])
}

func TestItikafService_RegisterParticipant(t *testing.T) {
	f := newItikafFixture(t, 2)
	ctx := context.Background()

	p, err := f.svc.RegisterParticipant(ctx, f.db, f.org.ID, f.event.ID, &dto.RegisterParticipantRequest{
		Code: "a01", Name: "Hasan", Gender: "L", Age: 30, Nights: []int{1, 2, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "A01", p.Code)
	assert.Equal(t, []int{1, 2}, p.GetNights())
	assert.True(t, p.Synced)

	_, err = f.svc.RegisterParticipant(ctx, f.db, f.org.ID, f.event.ID, &dto.RegisterParticipantRequest{Code: "A01", Name: "Husein"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	_, err = f.svc.RegisterParticipant(ctx, f.db, f.org.ID, f.event.ID, &dto.RegisterParticipantRequest{Name: "Husein", Nights: []int{11}})
	assert.ErrorIs(t, err, apperrors.ErrNightOutOfRange)

	auto, err := f.svc.RegisterParticipant(ctx, f.db, f.org.ID, f.event.ID, &dto.RegisterParticipantRequest{Name: "Husein"})
	require.NoError(t, err)
	assert.Regexp(t, `^ITK-[0-9A-F]{6}$`, auto.Code)

	_, err = f.svc.RegisterParticipant(ctx, f.db, f.org.ID, f.event.ID, &dto.RegisterParticipantRequest{Name: "Ali"})
	assert.ErrorIs(t, err, apperrors.ErrEventFull)

	rows, err := f.store.ReadRows(ctx, testSpreadsheet, f.event.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"A01", "Hasan", "", "L", "30"}, rows[1][:5])
}

func TestItikafService_CheckInAndAttendance(t *testing.T) {
	f := newItikafFixture(t, 0)
	ctx := context.Background()

	_, err := f.svc.RegisterParticipant(ctx, f.db, f.org.ID, f.event.ID, &dto.RegisterParticipantRequest{Code: "A01", Name: "Hasan"})
	require.NoError(t, err)
	_, err = f.svc.RegisterParticipant(ctx, f.db, f.org.ID, f.event.ID, &dto.RegisterParticipantRequest{Code: "A02", Name: "Husein", Nights: []int{5}})
	require.NoError(t, err)

	// now is the second day of the event
	res, err := f.svc.CheckIn(ctx, f.db, f.org.ID, f.event.ID, &dto.CheckInRequest{Code: "a01"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Night)
	assert.Equal(t, 2, res.Row)

	_, err = f.svc.CheckIn(ctx, f.db, f.org.ID, f.event.ID, &dto.CheckInRequest{Code: "A01", Night: 3})
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, f.db, f.org.ID, f.event.ID, &dto.CheckInRequest{Code: "A02", Night: 2})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)

	_, err = f.svc.CheckIn(ctx, f.db, f.org.ID, f.event.ID, &dto.CheckInRequest{Code: "A02", Night: 5})
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, f.db, f.org.ID, f.event.ID, &dto.CheckInRequest{Code: "A01", Night: 11})
	assert.ErrorIs(t, err, apperrors.ErrNightOutOfRange)

	_, err = f.svc.CheckIn(ctx, f.db, f.org.ID, f.event.ID, &dto.CheckInRequest{Code: "ZZZ", Night: 1})
	assert.ErrorIs(t, err, apperrors.ErrParticipantNotFound)

	att, err := f.svc.Attendance(ctx, f.db, f.org.ID, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, att.Nights)
	require.Len(t, att.Rows, 2)
	assert.Equal(t, 2, att.Rows[0].Total)
	assert.True(t, att.Rows[0].Attended[2])
	assert.True(t, att.Rows[0].Attended[3])
	assert.False(t, att.Rows[0].Attended[1])
	assert.Equal(t, 1, att.ByNight[2])
	assert.Equal(t, 1, att.ByNight[5])
	assert.Equal(t, 0, att.ByNight[10])
}

func TestItikafService_SyncAfterSheetOutage(t *testing.T) {
	f := newItikafFixture(t, 0)
	ctx := context.Background()

	f.store.broken = true
	p, err := f.svc.RegisterParticipant(ctx, f.db, f.org.ID, f.event.ID, &dto.RegisterParticipantRequest{Code: "B01", Name: "Umar"})
	require.NoError(t, err, "sheet failures do not block registration")
	assert.False(t, p.Synced)

	_, err = f.svc.Sync(ctx, f.db, f.org.ID, f.event.ID)
	assert.Error(t, err)

	f.store.broken = false
	n, err := f.svc.SyncAll(ctx, f.db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	again, err := f.svc.Sync(ctx, f.db, f.org.ID, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Synced)

	row, _, err := f.store.FindRow(ctx, testSpreadsheet, f.event.SheetName, 1, "B01")
	require.NoError(t, err)
	assert.Equal(t, 2, row)
}

func TestItikafService_SheetsNotConfigured(t *testing.T) {
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, models.OrganizationKindMosque)
	svc := NewItikafService(repositories.NewItikafRepository(), nil, "")
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, db, org.ID, &dto.ItikafEventRequest{
		Name:      "Itikaf Ramadhan",
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	p, err := svc.RegisterParticipant(ctx, db, org.ID, event.ID, &dto.RegisterParticipantRequest{Name: "Umar"})
	require.NoError(t, err)
	assert.False(t, p.Synced)

	_, err = svc.CheckIn(ctx, db, org.ID, event.ID, &dto.CheckInRequest{Code: p.Code, Night: 1})
	assert.ErrorIs(t, err, apperrors.ErrSheetsNotConfigured)

	n, err := svc.SyncAll(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestItikafService_SameEventNameAcrossTenants(t *testing.T) {
	f := newItikafFixture(t, 0)
	ctx := context.Background()
	orgB := testutil.CreateOrganization(t, f.db, models.OrganizationKindMosque)

	req := func() *dto.ItikafEventRequest {
		return &dto.ItikafEventRequest{
			Name:      "Itikaf Ramadhan",
			StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		}
	}
	eventA, err := f.svc.CreateEvent(ctx, f.db, f.org.ID, req())
	require.NoError(t, err)
	eventB, err := f.svc.CreateEvent(ctx, f.db, orgB.ID, req())
	require.NoError(t, err)
	assert.NotEqual(t, eventA.SheetName, eventB.SheetName)

	_, err = f.svc.RegisterParticipant(ctx, f.db, orgB.ID, eventB.ID, &dto.RegisterParticipantRequest{Code: "P1", Name: "Secret B Person"})
	require.NoError(t, err)
	_, err = f.svc.RegisterParticipant(ctx, f.db, f.org.ID, eventA.ID, &dto.RegisterParticipantRequest{Code: "P1", Name: "Peserta A"})
	require.NoError(t, err)

	att, err := f.svc.Attendance(ctx, f.db, f.org.ID, eventA.ID)
	require.NoError(t, err)
	require.Len(t, att.Rows, 1)
	assert.Equal(t, "Peserta A", att.Rows[0].Name)

	// checking in org A's P1 must leave org B's sheet untouched
	_, err = f.svc.CheckIn(ctx, f.db, f.org.ID, eventA.ID, &dto.CheckInRequest{Code: "P1", Night: 1})
	require.NoError(t, err)

	attB, err := f.svc.Attendance(ctx, f.db, orgB.ID, eventB.ID)
	require.NoError(t, err)
	require.Len(t, attB.Rows, 1)
	assert.Equal(t, "Secret B Person", attB.Rows[0].Name)
	assert.Zero(t, attB.Rows[0].Total)

	// renaming keeps the tab unique
	renamed := req()
	renamed.SheetName = "Itikaf Ramadhan"
	updated, err := f.svc.UpdateEvent(ctx, f.db, f.org.ID, eventA.ID, renamed)
	require.NoError(t, err)
	assert.NotEqual(t, eventB.SheetName, updated.SheetName)
	assert.Equal(t, "Itikaf Ramadhan #"+eventA.ID[:8], updated.SheetName)
}

func TestItikafService_EventSpanIsBounded(t *testing.T) {
	f := newItikafFixture(t, 0)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		end     time.Time
		wantErr bool
	}{
		{"single night", start, false},
		{"thirty nights", start.AddDate(0, 0, 29), false},
		{"thirty one nights", start.AddDate(0, 0, 30), true},
		{"centuries", start.AddDate(200, 0, 0), true},
		{"end before start", start.AddDate(0, 0, -1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &dto.ItikafEventRequest{Name: "Itikaf " + tt.name, StartDate: start, EndDate: tt.end}

			_, err := f.svc.CreateEvent(ctx, f.db, f.org.ID, req)
			_, updErr := f.svc.UpdateEvent(ctx, f.db, f.org.ID, f.event.ID, req)
			if !tt.wantErr {
				require.NoError(t, err)
				require.NoError(t, updErr)
				return
			}
			for _, e := range []error{err, updErr} {
				appErr, ok := apperrors.AsAppError(e)
				require.True(t, ok)
				assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
			}
		})
	}
}
