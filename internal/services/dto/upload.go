package dto

import (
	"mime/multipart"
)

type UploadRequest struct {
	Usage      string `form:"usage" validate:"required,oneof=resume avatar hewan_photo receipt"`
	EntityType string `form:"entity_type" validate:"omitempty,max=50"`
	EntityID   string `form:"entity_id" validate:"omitempty,max=36"`

	File *multipart.FileHeader `form:"-" json:"-"`
}
