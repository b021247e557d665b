package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal_backend/internal/cache"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/internal/testutil"
	"portal_backend/pkg/apperrors"
)

type publishedEvent struct {
	orgID string
	event string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, orgID, event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{orgID: orgID, event: event})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.event)
	}
	return out
}

func TestQurbanService_HewanShares(t *testing.T) {
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, models.OrganizationKindMosque)
	pub := &recordingPublisher{}
	svc := NewQurbanService(repositories.NewQurbanRepository(), cache.NewMemoryCache(), pub)
	ctx := context.Background()

	_, err := svc.CreateHewan(ctx, db, org.ID, &dto.CreateHewanRequest{
		Code: "K-1", Type: models.HewanKambing, Shohibul: []string{"Ahmad", "Budi"},
	})
	assert.ErrorIs(t, err, apperrors.ErrSharesFull)

	sapi, err := svc.CreateHewan(ctx, db, org.ID, &dto.CreateHewanRequest{
		Code: " s-01 ", Type: models.HewanSapi, Price: decimal.NewFromInt(21000000),
		Shohibul: []string{"Ahmad", " ", "Budi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "S-01", sapi.Code)
	assert.Equal(t, 7, sapi.MaxShares)
	assert.Equal(t, []string{"Ahmad", "Budi"}, sapi.ShohibulNames)
	assert.Equal(t, 5, sapi.SharesLeft)

	_, err = svc.CreateHewan(ctx, db, org.ID, &dto.CreateHewanRequest{Code: "S-01", Type: models.HewanKambing})
	assert.ErrorIs(t, err, apperrors.ErrHewanCodeTaken)

	for _, name := range []string{"Citra", "Dewi", "Eko", "Fajar", "Gita"} {
		_, err = svc.AddShohibul(ctx, db, org.ID, sapi.ID, name)
		require.NoError(t, err)
	}
	_, err = svc.AddShohibul(ctx, db, org.ID, sapi.ID, "Hadi")
	assert.ErrorIs(t, err, apperrors.ErrSharesFull)

	resp, err := svc.RemoveShohibul(ctx, db, org.ID, sapi.ID, 1)
	require.NoError(t, err)
	assert.NotContains(t, resp.ShohibulNames, "Budi")
	assert.Equal(t, 1, resp.SharesLeft)

	got, err := svc.GetHewan(db, org.ID, sapi.ID)
	require.NoError(t, err)
	assert.Len(t, got.ShohibulNames, 6)

	other := testutil.CreateOrganization(t, db, models.OrganizationKindMosque)
	_, err = svc.GetHewan(db, other.ID, sapi.ID)
	assert.ErrorIs(t, err, apperrors.ErrHewanNotFound)

	for _, e := range pub.names() {
		assert.Equal(t, EventUpdateHewan, e)
	}
	assert.Len(t, pub.names(), 7)
}

func TestQurbanService_UpdateHewanCode(t *testing.T) {
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, models.OrganizationKindMosque)
	svc := NewQurbanService(repositories.NewQurbanRepository(), nil, nil)
	ctx := context.Background()

	a, err := svc.CreateHewan(ctx, db, org.ID, &dto.CreateHewanRequest{Code: "A", Type: models.HewanDomba})
	require.NoError(t, err)
	_, err = svc.CreateHewan(ctx, db, org.ID, &dto.CreateHewanRequest{Code: "B", Type: models.HewanDomba})
	require.NoError(t, err)

	taken := "b"
	_, err = svc.UpdateHewan(ctx, db, org.ID, a.ID, &dto.UpdateHewanRequest{Code: &taken})
	assert.ErrorIs(t, err, apperrors.ErrHewanCodeTaken)

	fresh := "c"
	_, err = svc.UpdateHewan(ctx, db, org.ID, a.ID, &dto.UpdateHewanRequest{Code: &fresh})
	require.NoError(t, err)

	got, err := svc.GetHewan(db, org.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "C", got.Code)
}

func TestQurbanService_DashboardCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	org := testutil.CreateOrganization(t, db, models.OrganizationKindMosque)
	repo := repositories.NewQurbanRepository()
	pub := &recordingPublisher{}
	svc := NewQurbanService(repo, cache.NewMemoryCache(), pub)
	ctx := context.Background()

	_, err := svc.CreateHewan(ctx, db, org.ID, &dto.CreateHewanRequest{
		Code: "S-1", Type: models.HewanSapi, Price: decimal.NewFromInt(20000000), Shohibul: []string{"A", "B"},
	})
	require.NoError(t, err)
	product, err := svc.CreateProduct(ctx, db, org.ID, &dto.ProductRequest{Name: "Daging 1kg", Unit: "pack", Stock: 40})
	require.NoError(t, err)

	first, err := svc.Dashboard(ctx, db, org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TotalHewan)
	assert.Equal(t, 2, first.TotalShohibul)
	assert.Equal(t, 40, first.TotalStock)
	assert.Equal(t, int64(1), first.ByStatus[models.HewanStatusRegistered])

	// written behind the service's back, so the cached figures stay
	require.NoError(t, repo.CreateHewan(db, &models.Hewan{OrganizationID: org.ID, Code: "K-1", Type: models.HewanKambing, MaxShares: 1}))
	cached, err := svc.Dashboard(ctx, db, org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.TotalHewan)

	_, err = svc.Distribute(ctx, db, org.ID, product.ID, 15)
	require.NoError(t, err)
	_, err = svc.Distribute(ctx, db, org.ID, product.ID, 30)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	fresh, err := svc.Dashboard(ctx, db, org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.TotalHewan)
	assert.Equal(t, 25, fresh.TotalStock)
	assert.Equal(t, 15, fresh.TotalDistributed)
	assert.True(t, decimal.NewFromInt(20000000).Equal(fresh.TotalValue))

	assert.Equal(t, []string{EventUpdateHewan, EventUpdateProduct, EventUpdateProduct}, pub.names())
}
