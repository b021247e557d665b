package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"portal_backend/internal/auth"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/pkg/apperrors"
)

type ProfileService interface {
	GetOwn(db *gorm.DB, userID string) (*dto.ProfileResponse, error)
	UpdateOwn(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	// GetCandidateProfile is open to the candidate, admins and recruiters of an
	// organization the candidate applied to.
	GetCandidateProfile(db *gorm.DB, viewer *auth.Claims, candidateID string) (*dto.ProfileResponse, error)
}

type ProfileServiceImpl struct {
	userRepo        repositories.UserRepository
	profileRepo     repositories.ProfileRepository
	applicationRepo repositories.ApplicationRepository
}

func NewProfileService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	applicationRepo repositories.ApplicationRepository,
) ProfileService {
	return &ProfileServiceImpl{
		userRepo:        userRepo,
		profileRepo:     profileRepo,
		applicationRepo: applicationRepo,
	}
}

func (s *ProfileServiceImpl) GetOwn(db *gorm.DB, userID string) (*dto.ProfileResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.findOrEmpty(db, userID)
	if err != nil {
		return nil, err
	}
	return newProfileResponse(user, profile), nil
}

func (s *ProfileServiceImpl) UpdateOwn(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	tx := db.Begin()
	defer tx.Rollback()

	user, err := s.findUser(tx, userID)
	if err != nil {
		return nil, err
	}

	userFields := map[string]interface{}{}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
		userFields["name"] = user.Name
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
		userFields["avatar_url"] = user.AvatarURL
	}
	if len(userFields) > 0 {
		if err := s.userRepo.UpdateFields(tx, userID, userFields); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	profile, err := s.findOrEmpty(tx, userID)
	if err != nil {
		return nil, err
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Headline != nil {
		profile.Headline = *req.Headline
	}
	if req.Summary != nil {
		profile.Summary = *req.Summary
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}
	if req.Skills != nil {
		profile.SetSkills(normalizeSkills(req.Skills))
	}
	if req.ResumeURL != nil {
		profile.ResumeURL = *req.ResumeURL
	}
	if req.LinkedInURL != nil {
		profile.LinkedInURL = *req.LinkedInURL
	}
	if req.PortfolioURL != nil {
		profile.PortfolioURL = *req.PortfolioURL
	}
	if err := s.profileRepo.Save(tx, profile); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return newProfileResponse(user, profile), nil
}

func (s *ProfileServiceImpl) GetCandidateProfile(db *gorm.DB, viewer *auth.Claims, candidateID string) (*dto.ProfileResponse, error) {
	user, err := s.findUser(db, candidateID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.UserRoleCandidate {
		return nil, apperrors.NotFound("profile", "Candidate not found")
	}

	if viewer == nil {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if viewer.UserID != candidateID && !auth.IsAdmin(viewer) {
		if viewer.OrganizationID == "" {
			return nil, apperrors.ErrInsufficientPermissions
		}
		applied, err := s.applicationRepo.CandidateAppliedToOrganization(db, candidateID, viewer.OrganizationID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if !applied {
			return nil, apperrors.ErrInsufficientPermissions
		}
	}

	profile, err := s.findOrEmpty(db, candidateID)
	if err != nil {
		return nil, err
	}
	return newProfileResponse(user, profile), nil
}

func (s *ProfileServiceImpl) findUser(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFound("user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func (s *ProfileServiceImpl) findOrEmpty(db *gorm.DB, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return &models.Profile{UserID: userID}, nil
		}
		return nil, apperrors.InternalError(err)
	}
	return profile, nil
}

// normalizeSkills trims entries and drops empty and case-insensitive duplicates.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, sk := range skills {
		sk = strings.TrimSpace(sk)
		key := strings.ToLower(sk)
		if sk == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sk)
	}
	return out
}

func newProfileResponse(user *models.User, profile *models.Profile) *dto.ProfileResponse {
	skills := profile.GetSkills()
	if skills == nil {
		skills = []string{}
	}
	return &dto.ProfileResponse{
		User:    dto.NewUserDTO(user),
		Profile: profile,
		Skills:  skills,
	}
}
