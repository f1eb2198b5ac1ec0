package service

import (
	"context"
	"io"
)

type FileUploadService interface {
	// UploadFile stores file under folder with a fresh random name and
	// returns its retrieval URL.
	UploadFile(ctx context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error)
	// UploadNamed stores file at a fixed object name, replacing any previous object.
	UploadNamed(ctx context.Context, file io.Reader, fileType, objectName string, isPublic bool) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	Close() error
}
