package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"portal_backend/database"
	"portal_backend/internal/config"
	"portal_backend/internal/models"
)

// DefaultPassword is the plain password of every user created by CreateUser.
const DefaultPassword = "password123"

var seq atomic.Int64

// TestConfig returns defaults suitable for an in-memory sqlite run.
func TestConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Server.Env = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = ":memory:"
	cfg.JWT.Secret = "test-secret"
	return cfg
}

// NewTestDB opens a fresh migrated sqlite database that is closed with the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(TestConfig())
	require.NoError(t, err, "open test database")
	require.NoError(t, database.AutoMigrate(db), "migrate test database")

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

func next() int64 {
	return seq.Add(1)
}

// CreateOrganization inserts an organization with a unique slug.
func CreateOrganization(t *testing.T, db *gorm.DB, kind models.OrganizationKind) *models.Organization {
	t.Helper()
	n := next()
	org := &models.Organization{
		Name: fmt.Sprintf("Org %d", n),
		Slug: fmt.Sprintf("org-%d", n),
		Kind: kind,
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

// CreateUser inserts an active user whose password is DefaultPassword.
func CreateUser(t *testing.T, db *gorm.DB, role models.UserRole, org *models.Organization) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	require.NoError(t, err)

	n := next()
	user := &models.User{
		Email:        fmt.Sprintf("%s_%d@test.local", role, n),
		PasswordHash: string(hash),
		Name:         fmt.Sprintf("User %d", n),
		Role:         role,
		Status:       models.UserStatusActive,
	}
	if org != nil {
		user.OrganizationID = &org.ID
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
