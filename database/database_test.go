package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal_backend/internal/config"
	"portal_backend/internal/models"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.Env = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "file::memory:"

	db, err := Open(cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db))

	org := models.Organization{Name: "Masjid Al-Ikhlas", Slug: "al-ikhlas", Kind: models.OrganizationKindMosque}
	require.NoError(t, db.Create(&org).Error)
	assert.Len(t, org.ID, 36, "id is assigned before insert")

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := config.Defaults()
	cfg.Database.Driver = "oracle"
	_, err := Open(cfg)
	assert.Error(t, err)
}
