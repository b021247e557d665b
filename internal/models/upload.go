package models

type Upload struct {
	BaseModel
	UserID          string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	EntityType      string `json:"entity_type,omitempty"`
	EntityID        string `json:"entity_id,omitempty"`
	Usage           string `gorm:"type:varchar(20);not null" json:"usage"` // resume, avatar, hewan_photo, receipt
	Path            string `gorm:"not null" json:"-"`
	URL             string `json:"url"`
	ThumbnailPath   string `json:"-"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	MimeType        string `json:"mime_type"`
	Size            int64  `json:"size"`
	OriginalName    string `json:"original_name"`
	StorageProvider string `gorm:"default:'local'" json:"storage_provider"`
}

const (
	UsageResume     = "resume"
	UsageAvatar     = "avatar"
	UsageHewanPhoto = "hewan_photo"
	UsageReceipt    = "receipt"
)

var UploadUsages = []string{UsageResume, UsageAvatar, UsageHewanPhoto, UsageReceipt}

func (u *Upload) IsImage() bool {
	switch u.MimeType {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
		return true
	}
	return false
}
