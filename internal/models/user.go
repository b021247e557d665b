package models

import "time"

type User struct {
	BaseModel
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string     `json:"-"`
	Name           string     `gorm:"not null" json:"name"`
	Role           UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status         UserStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	OrganizationID *string    `gorm:"type:varchar(36);index" json:"organization_id,omitempty"`
	GoogleID       *string    `gorm:"uniqueIndex" json:"-"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`

	Organization  *Organization  `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Profile       *Profile       `gorm:"foreignKey:UserID" json:"-"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

func (u *User) OrgID() string {
	if u.OrganizationID == nil {
		return ""
	}
	return *u.OrganizationID
}

// RefreshToken stores the SHA-256 hash of an issued refresh token.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"type:varchar(36);not null;index"`
	TokenHash string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	RevokedAt *time.Time
}

func (t *RefreshToken) Valid(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
