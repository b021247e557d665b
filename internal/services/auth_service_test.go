package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"portal_backend/internal/auth"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/internal/testutil"
	"portal_backend/pkg/apperrors"
)

func newAuthService(t *testing.T) (AuthService, *gorm.DB, *auth.JWTService, *auth.InMemoryTokenBlacklist) {
	t.Helper()
	db := testutil.NewTestDB(t)
	jwtService := auth.NewJWTService(testutil.TestConfig().JWT)
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := NewAuthService(
		repositories.NewUserRepository(),
		repositories.NewProfileRepository(),
		repositories.NewRefreshTokenRepository(),
		jwtService,
		blacklist,
		nil,
	)
	return svc, db, jwtService, blacklist
}

func TestAuthService_RegisterCandidate(t *testing.T) {
	svc, db, jwtService, _ := newAuthService(t)

	resp, err := svc.Register(db, &dto.RegisterRequest{
		Email:    "  Alice@Example.com ",
		Password: "supersecret",
		Name:     "Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, models.UserRoleCandidate, resp.User.Role)
	assert.Nil(t, resp.User.Organization)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := jwtService.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	profile, err := repositories.NewProfileRepository().FindByUserID(db, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, profile.UserID)

	_, err = svc.Register(db, &dto.RegisterRequest{Email: "alice@example.com", Password: "supersecret", Name: "Alice 2"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestAuthService_RegisterRejectsAdminAndWeakPassword(t *testing.T) {
	svc, db, _, _ := newAuthService(t)

	_, err := svc.Register(db, &dto.RegisterRequest{Email: "root@example.com", Password: "supersecret", Name: "Root", Role: models.UserRoleAdmin})
	assert.ErrorIs(t, err, apperrors.ErrInvalidUserRole)

	_, err = svc.Register(db, &dto.RegisterRequest{Email: "weak@example.com", Password: "short", Name: "Weak"})
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)
}

func TestAuthService_RegisterRecruiterCreatesAndJoinsOrganization(t *testing.T) {
	svc, db, _, _ := newAuthService(t)

	first, err := svc.Register(db, &dto.RegisterRequest{
		Email: "hr@acme.id", Password: "supersecret", Name: "HR",
		Role: models.UserRoleRecruiter, OrganizationName: "Acme Kreatif",
	})
	require.NoError(t, err)
	require.NotNil(t, first.User.Organization)
	assert.Equal(t, "acme-kreatif", first.User.Organization.Slug)
	assert.Equal(t, models.OrganizationKindCompany, first.User.Organization.Kind)

	second, err := svc.Register(db, &dto.RegisterRequest{
		Email: "hr2@acme.id", Password: "supersecret", Name: "HR 2",
		Role: models.UserRoleRecruiter, OrganizationName: "Acme Kreatif",
	})
	require.NoError(t, err)
	assert.Equal(t, "acme-kreatif-2", second.User.Organization.Slug)

	joined, err := svc.Register(db, &dto.RegisterRequest{
		Email: "hr3@acme.id", Password: "supersecret", Name: "HR 3",
		Role: models.UserRoleRecruiter, OrganizationSlug: "acme-kreatif",
	})
	require.NoError(t, err)
	assert.Equal(t, first.User.Organization.ID, joined.User.Organization.ID)

	_, err = svc.Register(db, &dto.RegisterRequest{
		Email: "takmir@acme.id", Password: "supersecret", Name: "Takmir",
		Role: models.UserRoleMosqueAdmin, OrganizationSlug: "acme-kreatif",
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)

	_, err = svc.Register(db, &dto.RegisterRequest{
		Email: "lonely@acme.id", Password: "supersecret", Name: "Lonely", Role: models.UserRoleRecruiter,
	})
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}

func TestAuthService_Login(t *testing.T) {
	svc, db, _, _ := newAuthService(t)
	user := testutil.CreateUser(t, db, models.UserRoleCandidate, nil)

	resp, err := svc.Login(db, &dto.LoginRequest{Email: user.Email, Password: testutil.DefaultPassword})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)

	_, err = svc.Login(db, &dto.LoginRequest{Email: user.Email, Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(db, &dto.LoginRequest{Email: "nobody@test.local", Password: testutil.DefaultPassword})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("status", models.UserStatusSuspended).Error)
	_, err = svc.Login(db, &dto.LoginRequest{Email: user.Email, Password: testutil.DefaultPassword})
	assert.ErrorIs(t, err, apperrors.ErrUserSuspended)
}

func TestAuthService_RefreshRotatesAndDetectsReuse(t *testing.T) {
	svc, db, _, _ := newAuthService(t)
	user := testutil.CreateUser(t, db, models.UserRoleCandidate, nil)

	login, err := svc.Login(db, &dto.LoginRequest{Email: user.Email, Password: testutil.DefaultPassword})
	require.NoError(t, err)

	rotated, err := svc.Refresh(db, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// the first token was revoked by the rotation; presenting it again kills every session
	_, err = svc.Refresh(db, login.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = svc.Refresh(db, rotated.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = svc.Refresh(db, "never-issued")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAuthService_LogoutBlacklistsAccessToken(t *testing.T) {
	svc, db, jwtService, blacklist := newAuthService(t)
	user := testutil.CreateUser(t, db, models.UserRoleCandidate, nil)
	ctx := context.Background()

	login, err := svc.Login(db, &dto.LoginRequest{Email: user.Email, Password: testutil.DefaultPassword})
	require.NoError(t, err)
	claims, err := jwtService.ParseToken(login.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, db, claims, login.RefreshToken))

	listed, err := blacklist.IsBlacklisted(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, listed)

	_, err = svc.Refresh(db, login.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAuthService_SeedAdmin(t *testing.T) {
	svc, db, _, _ := newAuthService(t)

	created, err := svc.SeedAdmin(db, "admin@portal.local", "supersecret")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.SeedAdmin(db, "other@portal.local", "supersecret")
	require.NoError(t, err)
	assert.False(t, created)

	resp, err := svc.Login(db, &dto.LoginRequest{Email: "admin@portal.local", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, resp.User.Role)
}
