package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal_backend/internal/auth"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/internal/testutil"
	"portal_backend/pkg/apperrors"
)

func TestFormFieldService_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, models.OrganizationKindCompany)
	other := testutil.CreateOrganization(t, db, models.OrganizationKindCompany)
	recruiter := testutil.CreateUser(t, db, models.UserRoleRecruiter, org)

	job := &models.Job{
		OrganizationID: org.ID,
		PostedByID:     recruiter.ID,
		Title:          "Guru Ngaji",
		Slug:           "guru-ngaji-fields",
		EmploymentType: models.EmploymentVolunteer,
		Status:         models.JobStatusDraft,
	}
	require.NoError(t, db.Create(job).Error)

	svc := NewFormFieldService(repositories.NewJobRepository())

	phone, err := svc.Create(db, org.ID, job.ID, &dto.CreateFieldRequest{Label: "Nomor WhatsApp", Type: models.FieldTypePhone, Required: true})
	require.NoError(t, err)
	assert.Equal(t, "nomor_whatsapp", phone.Name)

	// same label gets a suffixed name
	again, err := svc.Create(db, org.ID, job.ID, &dto.CreateFieldRequest{Label: "Nomor WhatsApp", Type: models.FieldTypeText})
	require.NoError(t, err)
	assert.Equal(t, "nomor_whatsapp_2", again.Name)

	_, err = svc.Create(db, org.ID, job.ID, &dto.CreateFieldRequest{Label: "Lain", Name: "nomor_whatsapp", Type: models.FieldTypeText})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateFieldName)

	_, err = svc.Create(db, org.ID, job.ID, &dto.CreateFieldRequest{Label: "Jadwal", Type: models.FieldTypeSelect, Options: []string{" ", ""}})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	shift, err := svc.Create(db, org.ID, job.ID, &dto.CreateFieldRequest{Label: "Jadwal", Type: models.FieldTypeSelect, Options: []string{"Pagi", " Pagi ", "Sore"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pagi", "Sore"}, shift.GetOptions())

	// another tenant cannot touch the job
	_, err = svc.Create(db, other.ID, job.ID, &dto.CreateFieldRequest{Label: "X", Type: models.FieldTypeText})
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)

	label := "WhatsApp aktif"
	updated, err := svc.Update(db, org.ID, job.ID, again.ID, &dto.UpdateFieldRequest{Label: &label})
	require.NoError(t, err)
	assert.Equal(t, "WhatsApp aktif", updated.Label)
	assert.Equal(t, "nomor_whatsapp_2", updated.Name)

	reordered, err := svc.Reorder(db, org.ID, job.ID, []string{shift.ID, phone.ID, again.ID})
	require.NoError(t, err)
	require.Len(t, reordered, 3)
	assert.Equal(t, shift.ID, reordered[0].ID)
	assert.Equal(t, phone.ID, reordered[1].ID)
	assert.Equal(t, again.ID, reordered[2].ID)

	_, err = svc.Reorder(db, org.ID, job.ID, []string{shift.ID, phone.ID})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	_, err = svc.Reorder(db, org.ID, job.ID, []string{shift.ID, shift.ID, phone.ID})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	require.NoError(t, svc.Delete(db, org.ID, job.ID, again.ID))
	assert.ErrorIs(t, svc.Delete(db, org.ID, job.ID, again.ID), apperrors.ErrFieldNotFound)

	// draft jobs only show their fields to the owning tenant
	_, err = svc.List(db, nil, job.ID)
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)

	fields, err := svc.List(db, &auth.Claims{UserID: recruiter.ID, Role: models.UserRoleRecruiter, OrganizationID: org.ID}, job.ID)
	require.NoError(t, err)
	assert.Len(t, fields, 2)
}
