package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/gorm"

	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services"
	"portal_backend/internal/testutil"
)

func createJob(t *testing.T, db *gorm.DB, org *models.Organization, user *models.User, slug string, status models.JobStatus, deadline *time.Time) *models.Job {
	t.Helper()
	job := &models.Job{
		OrganizationID: org.ID,
		PostedByID:     user.ID,
		Title:          "Staf Administrasi",
		Slug:           slug,
		EmploymentType: models.EmploymentFullTime,
		Status:         status,
		Deadline:       deadline,
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

func TestJobWorker_ClosesExpiredJobs(t *testing.T) {
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, models.OrganizationKindCompany)
	user := testutil.CreateUser(t, db, models.UserRoleRecruiter, org)

	past := time.Now().UTC().Add(-48 * time.Hour)
	future := time.Now().UTC().Add(48 * time.Hour)
	expired := createJob(t, db, org, user, "expired", models.JobStatusOpen, &past)
	running := createJob(t, db, org, user, "running", models.JobStatusOpen, &future)
	noDeadline := createJob(t, db, org, user, "no-deadline", models.JobStatusOpen, nil)
	draft := createJob(t, db, org, user, "draft", models.JobStatusDraft, &past)

	jobService := services.NewJobService(repositories.NewJobRepository(), repositories.NewApplicationRepository())
	w := NewJobWorker(db, jobService, time.Hour)

	assert.Equal(t, int64(1), w.RunOnce(context.Background()))
	assert.Equal(t, int64(0), w.RunOnce(context.Background()))

	for _, tc := range []struct {
		job  *models.Job
		want models.JobStatus
	}{
		{expired, models.JobStatusClosed},
		{running, models.JobStatusOpen},
		{noDeadline, models.JobStatusOpen},
		{draft, models.JobStatusDraft},
	} {
		var got models.Job
		require.NoError(t, db.First(&got, "id = ?", tc.job.ID).Error)
		assert.Equal(t, tc.want, got.Status, tc.job.Slug)
	}
}

func TestWorkers_StopOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))

	db := testutil.NewTestDB(t)
	jobService := services.NewJobService(repositories.NewJobRepository(), repositories.NewApplicationRepository())
	itikafService := services.NewItikafService(repositories.NewItikafRepository(), nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	jobDone := NewJobWorker(db, jobService, time.Millisecond).Start(ctx)
	syncDone := NewItikafSyncWorker(db, itikafService, time.Millisecond).Start(ctx)

	time.Sleep(20 * time.Millisecond)
	cancel()

	for _, done := range []<-chan struct{}{jobDone, syncDone} {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
		}
	}
}
