package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portal_backend/internal/auth"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/pkg/apperrors"
	"portal_backend/pkg/contextkeys"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
	orgIDKey  = "organizationID"
)

// AuthMiddleware validates the bearer token and stores its claims in the gin context.
func AuthMiddleware(jwtService *auth.JWTService, blacklist auth.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := jwtService.ParseToken(tokenStr)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				apperrors.HandleError(c, apperrors.New(apperrors.CodeTokenExpired, "auth", "Token has expired", http.StatusUnauthorized))
				return
			}
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		if blacklist != nil && claims.ID != "" {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// a revoked token must not slip through while the store is down
				logger.CtxWithError(c.Request.Context(), "Token blacklist lookup failed", err)
				apperrors.HandleError(c, apperrors.New(apperrors.CodeExternalServiceError, "auth", "Token revocation check unavailable", http.StatusServiceUnavailable))
				return
			}
			if revoked {
				apperrors.HandleError(c, apperrors.New(apperrors.CodeInvalidToken, "auth", "Token has been revoked", http.StatusUnauthorized))
				return
			}
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets claims when a valid token is present and never rejects.
func OptionalAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := bearerToken(c); tokenStr != "" {
			if claims, err := jwtService.ParseToken(tokenStr); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	// Browsers cannot set headers on websocket upgrades.
	if c.Request.Header.Get("Upgrade") == "websocket" {
		return c.Query("token")
	}
	return ""
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(string(contextkeys.ClaimsKey), claims)
	c.Set(userIDKey, claims.UserID)
	c.Set(roleKey, claims.Role)
	if claims.OrganizationID != "" {
		c.Set(orgIDKey, claims.OrganizationID)
	}

	ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
	if claims.OrganizationID != "" {
		ctx = logger.WithTenantID(ctx, claims.OrganizationID)
	}
	c.Request = c.Request.WithContext(ctx)
}

// RequireRoles lets admins and the listed roles through.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}
		if !auth.HasRole(claims, roles...) {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// TenantMiddleware requires an organization claim. Admins may pick a tenant with
// the X-Organization-ID header.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}

		orgID := claims.OrganizationID
		if auth.IsAdmin(claims) {
			if h := c.GetHeader("X-Organization-ID"); h != "" {
				orgID = h
			}
		}
		if orgID == "" {
			apperrors.HandleError(c, apperrors.ErrNoOrganization)
			return
		}

		c.Set(orgIDKey, orgID)
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), orgID))
		c.Next()
	}
}

func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(string(contextkeys.ClaimsKey))
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func GetOrganizationID(c *gin.Context) string {
	return c.GetString(orgIDKey)
}

func GetRole(c *gin.Context) models.UserRole {
	v, ok := c.Get(roleKey)
	if !ok {
		return ""
	}
	role, _ := v.(models.UserRole)
	return role
}
