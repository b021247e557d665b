package auth

import (
	"portal_backend/internal/models"
)

// Roles that act inside an organization.
var tenantRoles = map[models.UserRole]models.OrganizationKind{
	models.UserRoleRecruiter:   models.OrganizationKindCompany,
	models.UserRoleMosqueAdmin: models.OrganizationKindMosque,
}

// IsAdmin reports whether the claims belong to a platform administrator.
func IsAdmin(claims *Claims) bool {
	return claims != nil && claims.Role == models.UserRoleAdmin
}

// HasRole reports whether the claims carry one of roles. Admins pass every check.
func HasRole(claims *Claims, roles ...models.UserRole) bool {
	if claims == nil {
		return false
	}
	if claims.Role == models.UserRoleAdmin {
		return true
	}
	for _, r := range roles {
		if claims.Role == r {
			return true
		}
	}
	return false
}

// OrganizationKindFor returns the organization kind a role may belong to.
func OrganizationKindFor(role models.UserRole) (models.OrganizationKind, bool) {
	kind, ok := tenantRoles[role]
	return kind, ok
}

// CanSelfRegister lists the roles open to public registration.
func CanSelfRegister(role models.UserRole) bool {
	switch role {
	case models.UserRoleCandidate, models.UserRoleRecruiter, models.UserRoleMosqueAdmin:
		return true
	default:
		return false
	}
}

// CanAccessTenant reports whether claims may act on resources of orgID.
func CanAccessTenant(claims *Claims, orgID string) bool {
	if claims == nil {
		return false
	}
	if IsAdmin(claims) {
		return true
	}
	return claims.OrganizationID != "" && claims.OrganizationID == orgID
}
