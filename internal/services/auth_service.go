package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"portal_backend/internal/auth"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/pkg/apperrors"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, db *gorm.DB, claims *auth.Claims, refreshToken string) error
	Me(db *gorm.DB, userID string) (*dto.UserDTO, error)
	GoogleLoginURL() (*dto.GoogleLoginResponse, error)
	GoogleCallback(ctx context.Context, db *gorm.DB, state, code string) (*dto.AuthResponse, error)
	// SeedAdmin creates the first platform admin. It is a no-op once any admin exists.
	SeedAdmin(db *gorm.DB, email, password string) (bool, error)
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	profileRepo      repositories.ProfileRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	jwt              *auth.JWTService
	blacklist        auth.TokenBlacklist
	google           *auth.GoogleOAuth
	now              func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	google *auth.GoogleOAuth,
) AuthService {
	return &AuthServiceImpl{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwt:              jwtService,
		blacklist:        blacklist,
		google:           google,
		now:              time.Now,
	}
}

func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = models.UserRoleCandidate
	}
	if !auth.CanSelfRegister(role) {
		return nil, apperrors.ErrInvalidUserRole
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	tx := db.Begin()
	defer tx.Rollback()

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		Status:       models.UserStatusActive,
	}

	var org *models.Organization
	if kind, ok := auth.OrganizationKindFor(role); ok {
		org, err = s.resolveOrganization(tx, kind, req)
		if err != nil {
			return nil, err
		}
		user.OrganizationID = &org.ID
	}

	if err := s.userRepo.Create(tx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}
	user.Organization = org

	if role == models.UserRoleCandidate {
		if err := s.profileRepo.Save(tx, &models.Profile{UserID: user.ID}); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("User registered", "user_id", user.ID, "role", user.Role)
	return resp, nil
}

// resolveOrganization joins an existing organization by slug or creates one by name.
func (s *AuthServiceImpl) resolveOrganization(tx *gorm.DB, kind models.OrganizationKind, req *dto.RegisterRequest) (*models.Organization, error) {
	if slug := strings.TrimSpace(req.OrganizationSlug); slug != "" {
		org, err := s.userRepo.FindOrganizationBySlug(tx, strings.ToLower(slug))
		if err != nil {
			if errors.Is(err, repositories.ErrOrganizationNotFound) {
				return nil, apperrors.NotFound("organization", "Organization not found")
			}
			return nil, apperrors.InternalError(err)
		}
		if org.Kind != kind {
			return nil, apperrors.ErrInvalidOperation("organization", "Organization kind does not match the requested role")
		}
		return org, nil
	}

	name := strings.TrimSpace(req.OrganizationName)
	if name == "" {
		return nil, apperrors.ValidationError(map[string]string{
			"organization_name": "organization_name or organization_slug is required for this role",
		})
	}
	slug, err := s.uniqueOrganizationSlug(tx, name)
	if err != nil {
		return nil, err
	}
	org := &models.Organization{Name: name, Slug: slug, Kind: kind}
	if err := s.userRepo.CreateOrganization(tx, org); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return org, nil
}

func (s *AuthServiceImpl) uniqueOrganizationSlug(tx *gorm.DB, name string) (string, error) {
	base := slugify(name, '-')
	if base == "" {
		base = "org"
	}
	slug := base
	for i := 2; ; i++ {
		_, err := s.userRepo.FindOrganizationBySlug(tx, slug)
		if errors.Is(err, repositories.ErrOrganizationNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", apperrors.InternalError(err)
		}
		slug = base + "-" + strconv.Itoa(i)
	}
}

func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}
	if user.PasswordHash == "" || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, apperrors.ErrUserSuspended
	}

	tx := db.Begin()
	defer tx.Rollback()

	now := s.now()
	if err := s.userRepo.UpdateFields(tx, user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		return nil, apperrors.InternalError(err)
	}
	user.LastLoginAt = &now

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

// Refresh rotates a refresh token. Presenting an already revoked token revokes
// every session of its owner.
func (s *AuthServiceImpl) Refresh(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.refreshTokenRepo.FindByHash(db, auth.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	now := s.now()
	if stored.RevokedAt != nil {
		logger.Warn("Revoked refresh token reused", "user_id", stored.UserID)
		if err := s.refreshTokenRepo.RevokeAllForUser(db, stored.UserID, now); err != nil {
			return nil, apperrors.InternalError(err)
		}
		return nil, apperrors.ErrInvalidToken
	}
	if !stored.Valid(now) {
		return nil, apperrors.ErrInvalidToken
	}

	tx := db.Begin()
	defer tx.Rollback()

	if err := s.refreshTokenRepo.Revoke(tx, stored.ID, now); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(tx, stored.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if !user.IsActive() {
		return nil, apperrors.ErrUserSuspended
	}

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, db *gorm.DB, claims *auth.Claims, refreshToken string) error {
	now := s.now()
	if claims != nil && claims.ID != "" && s.blacklist != nil {
		if ttl := claims.RemainingTTL(now); ttl > 0 {
			if err := s.blacklist.Add(ctx, claims.ID, ttl); err != nil {
				return apperrors.InternalError(err)
			}
		}
	}

	if refreshToken == "" {
		return nil
	}
	stored, err := s.refreshTokenRepo.FindByHash(db, auth.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}
	if claims != nil && stored.UserID != claims.UserID {
		return nil
	}
	if err := s.refreshTokenRepo.Revoke(db, stored.ID, now); err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) Me(db *gorm.DB, userID string) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFound("user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	out := dto.NewUserDTO(user)
	return &out, nil
}

func (s *AuthServiceImpl) GoogleLoginURL() (*dto.GoogleLoginResponse, error) {
	if s.google == nil {
		return nil, apperrors.ErrInvalidOperation("auth", "Google sign-in is not configured")
	}
	url, state, err := s.google.AuthCodeURL()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.GoogleLoginResponse{URL: url, State: state}, nil
}

// GoogleCallback signs in the Google account, linking it to an existing user
// with the same email or creating a new candidate.
func (s *AuthServiceImpl) GoogleCallback(ctx context.Context, db *gorm.DB, state, code string) (*dto.AuthResponse, error) {
	if s.google == nil {
		return nil, apperrors.ErrInvalidOperation("auth", "Google sign-in is not configured")
	}
	gu, err := s.google.Exchange(ctx, state, code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidState) {
			return nil, apperrors.NewUnauthorizedError("Invalid OAuth state")
		}
		return nil, apperrors.ExternalError(err, "auth", "Google sign-in failed")
	}

	tx := db.Begin()
	defer tx.Rollback()

	user, err := s.userRepo.FindByGoogleID(tx, gu.ID)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrUserNotFound):
		user, err = s.linkOrCreateGoogleUser(tx, gu)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.InternalError(err)
	}

	if !user.IsActive() {
		return nil, apperrors.ErrUserSuspended
	}

	now := s.now()
	if err := s.userRepo.UpdateFields(tx, user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		return nil, apperrors.InternalError(err)
	}
	user.LastLoginAt = &now

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

func (s *AuthServiceImpl) linkOrCreateGoogleUser(tx *gorm.DB, gu *auth.GoogleUser) (*models.User, error) {
	if !gu.VerifiedEmail {
		return nil, apperrors.NewUnauthorizedError("Google account email is not verified")
	}

	googleID := gu.ID
	user, err := s.userRepo.FindByEmail(tx, gu.Email)
	if err == nil {
		fields := map[string]interface{}{"google_id": googleID}
		if user.AvatarURL == "" && gu.Picture != "" {
			fields["avatar_url"] = gu.Picture
			user.AvatarURL = gu.Picture
		}
		if err := s.userRepo.UpdateFields(tx, user.ID, fields); err != nil {
			return nil, apperrors.InternalError(err)
		}
		user.GoogleID = &googleID
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	name := strings.TrimSpace(gu.Name)
	if name == "" {
		name = strings.SplitN(gu.Email, "@", 2)[0]
	}
	user = &models.User{
		Email:     strings.ToLower(gu.Email),
		Name:      name,
		Role:      models.UserRoleCandidate,
		Status:    models.UserStatusActive,
		GoogleID:  &googleID,
		AvatarURL: gu.Picture,
	}
	if err := s.userRepo.Create(tx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}
	if err := s.profileRepo.Save(tx, &models.Profile{UserID: user.ID}); err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.Info("User registered via Google", "user_id", user.ID)
	return user, nil
}

func (s *AuthServiceImpl) SeedAdmin(db *gorm.DB, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	count, err := s.userRepo.CountByRole(db, models.UserRoleAdmin)
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	if count > 0 {
		return false, nil
	}
	if err := auth.ValidatePassword(password); err != nil {
		return false, apperrors.ErrWeakPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, apperrors.InternalError(err)
	}

	existing, err := s.userRepo.FindByEmail(db, email)
	switch {
	case err == nil:
		err = s.userRepo.UpdateFields(db, existing.ID, map[string]interface{}{
			"role":          models.UserRoleAdmin,
			"password_hash": hash,
			"status":        models.UserStatusActive,
		})
	case errors.Is(err, repositories.ErrUserNotFound):
		err = s.userRepo.Create(db, &models.User{
			Email:        strings.ToLower(strings.TrimSpace(email)),
			PasswordHash: hash,
			Name:         "Administrator",
			Role:         models.UserRoleAdmin,
			Status:       models.UserStatusActive,
		})
	}
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	logger.Info("Seeded first admin", "email", email)
	return true, nil
}

func (s *AuthServiceImpl) issueTokens(tx *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	access, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	raw, err := auth.NewRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.refreshTokenRepo.Create(tx, &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: auth.HashToken(raw),
		ExpiresAt: s.now().Add(s.jwt.RefreshTTL()),
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if user.Organization == nil && user.OrganizationID != nil {
		if org, err := s.userRepo.FindOrganizationByID(tx, *user.OrganizationID); err == nil {
			user.Organization = org
		}
	}

	return &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: raw,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
		User:         dto.NewUserDTO(user),
	}, nil
}
