package usecase

import (
	"fmt"

	"civicalert/pkg/errors"
)

const MaxPhotoSize = 5 * 1024 * 1024

// Photo is an image attached to a report or used as an avatar.
type Photo struct {
	Data        []byte
	ContentType string
	Filename    string
}

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func validatePhoto(p *Photo) error {
	if len(p.Data) == 0 {
		return errors.Validation("Photo is empty")
	}
	if len(p.Data) > MaxPhotoSize {
		return errors.Validation(fmt.Sprintf("Photo exceeds maximum allowed size (%dMB)", MaxPhotoSize/(1024*1024)))
	}
	if !allowedPhotoTypes[p.ContentType] {
		return errors.Validation("Photo must be a JPEG, PNG, GIF or WebP image")
	}
	return nil
}
