package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"civicalert/internal/usecase"
	"civicalert/pkg/errors"
	"civicalert/pkg/logger"
)

// readPhoto returns the optional image uploaded under field, or nil when
// the request carries none.
func readPhoto(c echo.Context, field string) (*usecase.Photo, error) {
	file, err := c.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, errors.BadRequest("Missing or invalid file", err)
	}

	logger.Debug("Received photo: %s, size: %d bytes, type: %s", file.Filename, file.Size, file.Header.Get("Content-Type"))

	if file.Size > usecase.MaxPhotoSize {
		return nil, errors.Validation(fmt.Sprintf("Photo exceeds maximum allowed size (%dMB)", usecase.MaxPhotoSize/(1024*1024)))
	}

	src, err := file.Open()
	if err != nil {
		return nil, errors.BadRequest("Failed to read file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, usecase.MaxPhotoSize+1))
	if err != nil {
		return nil, errors.BadRequest("Failed to read file", err)
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &usecase.Photo{
		Data:        data,
		ContentType: contentType,
		Filename:    file.Filename,
	}, nil
}
