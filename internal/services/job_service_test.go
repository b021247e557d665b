package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/internal/testutil"
)

type jobSeed struct {
	title, location string
	kind            models.EmploymentType
	remote          bool
	status          models.JobStatus
	deadline        *time.Time
	org             *models.Organization
}

func seedJobs(t *testing.T, db *gorm.DB, poster *models.User, seeds []jobSeed) {
	t.Helper()
	for i, s := range seeds {
		job := &models.Job{
			OrganizationID: s.org.ID,
			PostedByID:     poster.ID,
			Title:          s.title,
			Slug:           slugify(s.title, '-') + "-" + string(rune('a'+i)),
			Description:    "Lowongan " + s.title,
			Location:       s.location,
			EmploymentType: s.kind,
			Remote:         s.remote,
			Status:         s.status,
			Deadline:       s.deadline,
		}
		require.NoError(t, db.Create(job).Error)
	}
}

func titles(t *testing.T, resp *dto.PaginatedResponse) []string {
	t.Helper()
	jobs, ok := resp.Data.([]models.Job)
	require.True(t, ok, "data is %T", resp.Data)
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Title)
	}
	return out
}

func TestJobService_SearchAndListOrgFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, models.OrganizationKindCompany)
	other := testutil.CreateOrganization(t, db, models.OrganizationKindCompany)
	poster := testutil.CreateUser(t, db, models.UserRoleRecruiter, org)

	past := time.Now().UTC().Add(-24 * time.Hour)
	seedJobs(t, db, poster, []jobSeed{
		{title: "Backend Engineer", location: "Bandung", kind: models.EmploymentFullTime, remote: true, status: models.JobStatusOpen, org: org},
		{title: "Frontend Engineer", location: "Jakarta", kind: models.EmploymentFullTime, status: models.JobStatusOpen, org: org},
		{title: "Kasir Paruh Waktu", location: "Bandung", kind: models.EmploymentPartTime, status: models.JobStatusOpen, org: other},
		{title: "Data Engineer", location: "Bandung", kind: models.EmploymentContract, status: models.JobStatusDraft, org: org},
		{title: "Expired Engineer", location: "Bandung", kind: models.EmploymentFullTime, status: models.JobStatusOpen, deadline: &past, org: org},
		{title: "Closed Engineer", location: "Surabaya", kind: models.EmploymentFullTime, status: models.JobStatusClosed, org: org},
	})

	svc := NewJobService(repositories.NewJobRepository(), repositories.NewApplicationRepository())
	yes, no := true, false

	tests := []struct {
		name string
		req  dto.JobSearchRequest
		want []string
	}{
		{"public shows open and unexpired only", dto.JobSearchRequest{}, []string{"Backend Engineer", "Frontend Engineer", "Kasir Paruh Waktu"}},
		{"query matches title case-insensitively", dto.JobSearchRequest{Query: "ENGINEER"}, []string{"Backend Engineer", "Frontend Engineer"}},
		{"location", dto.JobSearchRequest{Location: "bandung"}, []string{"Backend Engineer", "Kasir Paruh Waktu"}},
		{"employment type", dto.JobSearchRequest{EmploymentType: "part_time"}, []string{"Kasir Paruh Waktu"}},
		{"remote only", dto.JobSearchRequest{Remote: &yes}, []string{"Backend Engineer"}},
		{"on site only", dto.JobSearchRequest{Remote: &no}, []string{"Frontend Engineer", "Kasir Paruh Waktu"}},
		{"status filter is ignored publicly", dto.JobSearchRequest{Status: "draft"}, []string{"Backend Engineer", "Frontend Engineer", "Kasir Paruh Waktu"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			resp, err := svc.Search(db, &req)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, titles(t, resp))
			assert.EqualValues(t, len(tt.want), resp.Total)
		})
	}

	t.Run("pagination", func(t *testing.T) {
		first, err := svc.Search(db, &dto.JobSearchRequest{Page: 1, PageSize: 2})
		require.NoError(t, err)
		second, err := svc.Search(db, &dto.JobSearchRequest{Page: 2, PageSize: 2})
		require.NoError(t, err)

		assert.EqualValues(t, 3, first.Total)
		assert.Len(t, titles(t, first), 2)
		assert.Len(t, titles(t, second), 1)
		assert.Equal(t, 2, first.TotalPages)
		assert.True(t, first.HasMore)
		assert.False(t, second.HasMore)
		assert.NotContains(t, titles(t, first), titles(t, second)[0])
	})

	orgTests := []struct {
		name string
		req  dto.JobSearchRequest
		want []string
	}{
		{"all statuses of own org", dto.JobSearchRequest{}, []string{"Backend Engineer", "Frontend Engineer", "Data Engineer", "Expired Engineer", "Closed Engineer"}},
		{"status draft", dto.JobSearchRequest{Status: "draft"}, []string{"Data Engineer"}},
		{"status with type", dto.JobSearchRequest{Status: "open", EmploymentType: "full_time"}, []string{"Backend Engineer", "Frontend Engineer", "Expired Engineer"}},
		{"location and query", dto.JobSearchRequest{Location: "surabaya", Query: "closed"}, []string{"Closed Engineer"}},
	}
	for _, tt := range orgTests {
		t.Run("org "+tt.name, func(t *testing.T) {
			req := tt.req
			resp, err := svc.ListOrg(db, org.ID, &req)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, titles(t, resp))
		})
	}
}
