package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal_backend/internal/models"
	"portal_backend/internal/testutil"
)

func TestUserRepository_FindByID_DatabaseError(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewUserRepository()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FindByID(db, "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewUserRepository()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := repo.FindByID(db, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestQurbanRepository_Distribute(t *testing.T) {
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, models.OrganizationKindMosque)
	repo := NewQurbanRepository()

	product := &models.Product{OrganizationID: org.ID, Name: "Daging 1kg", Unit: "pack", Stock: 5}
	require.NoError(t, repo.CreateProduct(db, product))

	require.NoError(t, repo.Distribute(db, org.ID, product.ID, 3))
	assert.ErrorIs(t, repo.Distribute(db, org.ID, product.ID, 3), ErrInsufficientStock)
	assert.ErrorIs(t, repo.Distribute(db, org.ID, "nope", 1), ErrProductNotFound)

	got, err := repo.FindProduct(db, org.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
	assert.Equal(t, 3, got.Distributed)
}

func TestQurbanRepository_CountHewanByStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, models.OrganizationKindMosque)
	other := testutil.CreateOrganization(t, db, models.OrganizationKindMosque)
	repo := NewQurbanRepository()

	for i, st := range []models.HewanStatus{models.HewanStatusRegistered, models.HewanStatusRegistered, models.HewanStatusPaid} {
		h := &models.Hewan{OrganizationID: org.ID, Code: string(rune('A' + i)), Type: models.HewanKambing, Status: st}
		require.NoError(t, repo.CreateHewan(db, h))
	}
	require.NoError(t, repo.CreateHewan(db, &models.Hewan{OrganizationID: other.ID, Code: "A", Type: models.HewanSapi, Status: models.HewanStatusPaid}))

	assert.ErrorIs(t, repo.CreateHewan(db, &models.Hewan{OrganizationID: org.ID, Code: "A", Type: models.HewanSapi}), ErrHewanCodeTaken)

	counts, err := repo.CountHewanByStatus(db, org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.HewanStatusRegistered])
	assert.Equal(t, int64(1), counts[models.HewanStatusPaid])
	assert.Equal(t, int64(0), counts[models.HewanStatusSlaughtered])

	all, err := repo.CountHewanByStatus(db, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), all[models.HewanStatusPaid])
}

func TestJobRepository_CloseExpiredAndSearch(t *testing.T) {
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, models.OrganizationKindCompany)
	recruiter := testutil.CreateUser(t, db, models.UserRoleRecruiter, org)
	repo := NewJobRepository()

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	expired := &models.Job{OrganizationID: org.ID, PostedByID: recruiter.ID, Title: "Go Engineer", Slug: "go-engineer",
		EmploymentType: models.EmploymentFullTime, Status: models.JobStatusOpen, Deadline: &past}
	live := &models.Job{OrganizationID: org.ID, PostedByID: recruiter.ID, Title: "Imam Assistant", Slug: "imam-assistant",
		Location: "Bandung", EmploymentType: models.EmploymentVolunteer, Status: models.JobStatusOpen, Deadline: &future}
	require.NoError(t, repo.Create(db, expired))
	require.NoError(t, repo.Create(db, live))

	jobs, total, err := repo.Search(db, JobFilter{OpenOnly: true, Now: now, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, live.ID, jobs[0].ID)

	n, err := repo.CloseExpired(db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.FindByID(db, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusClosed, got.Status)

	jobs, _, err = repo.Search(db, JobFilter{Query: "IMAM", Location: "bandung", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
}
