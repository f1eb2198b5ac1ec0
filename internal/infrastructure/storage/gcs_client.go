package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"civicalert/pkg/logger"
)

const publicURLPrefix = "https://storage.googleapis.com/"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	storageClient := &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}

	if err := storageClient.setBucketCORS(ctx); err != nil {
		logger.Warn("Failed to set CORS configuration: %v", err)
	}

	return storageClient, nil
}

// setBucketCORS lets the browser load report photos straight from the bucket.
func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)

	corsConfig := storage.CORS{
		MaxAge:          3600,
		Methods:         []string{"GET", "HEAD", "OPTIONS"},
		Origins:         []string{"*"},
		ResponseHeaders: []string{"Content-Type"},
	}

	bucketAttrs, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %v", err)
	}

	if len(bucketAttrs.CORS) == 0 {
		_, err := bucket.Update(ctx, storage.BucketAttrsToUpdate{CORS: []storage.CORS{corsConfig}})
		if err != nil {
			return fmt.Errorf("failed to update bucket CORS: %v", err)
		}
	}

	return nil
}

// UploadFile stores file under a fresh random name inside folder.
func (c *CloudStorageClient) UploadFile(ctx context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error) {
	name := fmt.Sprintf("%s/%s-%s%s", visibilityFolder(folder, isPublic), uuid.New().String(), time.Now().Format("20060102150405"), extensionFor(fileType))
	return c.write(ctx, file, fileType, name, isPublic, "public, max-age=86400")
}

// UploadNamed stores file under a fixed object name, replacing any previous
// object. Caching is short since the URL does not change.
func (c *CloudStorageClient) UploadNamed(ctx context.Context, file io.Reader, fileType, objectName string, isPublic bool) (string, error) {
	return c.write(ctx, file, fileType, visibilityFolder(objectName, isPublic), isPublic, "public, max-age=60")
}

func (c *CloudStorageClient) write(ctx context.Context, file io.Reader, fileType, name string, isPublic bool, cacheControl string) (string, error) {
	obj := c.client.Bucket(c.bucketName).Object(name)
	wc := obj.NewWriter(ctx)
	wc.ContentType = fileType
	wc.CacheControl = cacheControl

	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy file to GCS: %v", err)
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}

	if isPublic {
		if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
			return "", fmt.Errorf("failed to set ACL: %v", err)
		}
	}

	logger.Debug("Stored object %s (%s)", name, fileType)
	return PublicURL(c.bucketName, name), nil
}

func (c *CloudStorageClient) DeleteFile(ctx context.Context, fileURL string) error {
	objectName, err := ObjectName(c.bucketName, fileURL)
	if err != nil {
		return err
	}

	if err := c.client.Bucket(c.bucketName).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

func PublicURL(bucket, objectName string) string {
	return publicURLPrefix + bucket + "/" + objectName
}

// ObjectName extracts the object path from a public URL of bucket.
func ObjectName(bucket, fileURL string) (string, error) {
	if !strings.HasPrefix(fileURL, publicURLPrefix) {
		return "", fmt.Errorf("invalid GCS URL format")
	}

	parts := strings.SplitN(strings.TrimPrefix(fileURL, publicURLPrefix), "/", 2)
	if len(parts) != 2 || parts[0] != bucket || parts[1] == "" {
		return "", fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}
	return parts[1], nil
}

func visibilityFolder(path string, isPublic bool) string {
	if strings.HasPrefix(path, "public/") || strings.HasPrefix(path, "private/") {
		return path
	}
	if isPublic {
		return "public/" + path
	}
	return "private/" + path
}

func extensionFor(fileType string) string {
	switch fileType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
