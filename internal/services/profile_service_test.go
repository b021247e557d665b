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

func newProfileService() ProfileService {
	return NewProfileService(
		repositories.NewUserRepository(),
		repositories.NewProfileRepository(),
		repositories.NewApplicationRepository(),
	)
}

func strPtr(s string) *string { return &s }

func TestProfileService_UpdateOwn(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, models.UserRoleCandidate, nil)
	svc := newProfileService()

	// no row yet: an empty profile is returned
	resp, err := svc.GetOwn(db, user.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Skills)
	assert.Equal(t, user.Email, resp.User.Email)

	resp, err = svc.UpdateOwn(db, user.ID, &dto.UpdateProfileRequest{
		Name:     strPtr("  Dewi Lestari "),
		Headline: strPtr("Akuntan"),
		Skills:   []string{" Excel ", "excel", "", "Pajak"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dewi Lestari", resp.User.Name)
	assert.Equal(t, []string{"Excel", "Pajak"}, resp.Skills)

	// fields left nil are kept
	resp, err = svc.UpdateOwn(db, user.ID, &dto.UpdateProfileRequest{Location: strPtr("Bandung")})
	require.NoError(t, err)
	assert.Equal(t, "Akuntan", resp.Profile.Headline)
	assert.Equal(t, "Bandung", resp.Profile.Location)
	assert.Equal(t, []string{"Excel", "Pajak"}, resp.Skills)

	_, err = svc.GetOwn(db, "missing-user")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestProfileService_GetCandidateProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newProfileService()

	company := testutil.CreateOrganization(t, db, models.OrganizationKindCompany)
	other := testutil.CreateOrganization(t, db, models.OrganizationKindCompany)
	recruiter := testutil.CreateUser(t, db, models.UserRoleRecruiter, company)
	outsider := testutil.CreateUser(t, db, models.UserRoleRecruiter, other)
	candidate := testutil.CreateUser(t, db, models.UserRoleCandidate, nil)

	job := &models.Job{
		OrganizationID: company.ID,
		PostedByID:     recruiter.ID,
		Title:          "Kasir",
		Slug:           "kasir-profile-test",
		EmploymentType: models.EmploymentPartTime,
		Status:         models.JobStatusOpen,
	}
	require.NoError(t, db.Create(job).Error)
	require.NoError(t, db.Create(&models.Application{JobID: job.ID, CandidateID: candidate.ID, Status: models.ApplicationStatusApplied}).Error)

	claimsFor := func(u *models.User) *auth.Claims {
		c := &auth.Claims{UserID: u.ID, Role: u.Role}
		if u.OrganizationID != nil {
			c.OrganizationID = *u.OrganizationID
		}
		return c
	}

	resp, err := svc.GetCandidateProfile(db, claimsFor(recruiter), candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, candidate.ID, resp.User.ID)

	_, err = svc.GetCandidateProfile(db, claimsFor(candidate), candidate.ID)
	require.NoError(t, err)

	_, err = svc.GetCandidateProfile(db, claimsFor(outsider), candidate.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	_, err = svc.GetCandidateProfile(db, &auth.Claims{UserID: "root", Role: models.UserRoleAdmin}, candidate.ID)
	require.NoError(t, err)

	// recruiters are not candidates
	_, err = svc.GetCandidateProfile(db, claimsFor(recruiter), outsider.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
