package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"invois/internal/config"
	"invois/internal/domain"
	"invois/internal/port"
)

// ImageKind distinguishes the two image slots a document can carry.
type ImageKind string

const (
	ImageKindLogo   ImageKind = "logo"
	ImageKindQRCode ImageKind = "qrcode"
)

// UploadImageInput is the DTO for logo/QR image upload requests.
type UploadImageInput struct {
	OwnerID uuid.UUID
	Kind    ImageKind
	File    multipart.File
	Header  *multipart.FileHeader
}

// UploadedImage describes a stored image: the opaque key persisted on
// documents plus a presigned URL for immediate display.
type UploadedImage struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// FileService defines the image storage contract.
type FileService interface {
	UploadImage(ctx context.Context, input UploadImageInput) (*UploadedImage, error)
	GetPresignedURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type fileService struct {
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// NewFileService creates a new FileService implementation.
func NewFileService(storage port.ObjectStorage, cfg *config.S3Config) FileService {
	return &fileService{storage: storage, cfg: cfg}
}

func (s *fileService) UploadImage(ctx context.Context, input UploadImageInput) (*UploadedImage, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	if _, ok := domain.AllowedImageExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic-byte sniff: the extension alone is not trusted.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])
	if _, ok := domain.AllowedImageContentTypes[detectedType]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	key := fmt.Sprintf("users/%s/%s/%s.%s", input.OwnerID, input.Kind, uuid.New(), ext)

	log.Printf("fileService.UploadImage: uploading %s (%s, %d bytes) for user %s",
		input.Header.Filename, detectedType, input.Header.Size, input.OwnerID)

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        input.File,
		ContentType: detectedType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("fileService.UploadImage: upload failed for key %s: %v", key, err)
		return nil, domain.ErrUploadFailed
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presigning %s: %w", key, err)
	}

	return &UploadedImage{Key: key, URL: url}, nil
}

func (s *fileService) GetPresignedURL(ctx context.Context, key string) (string, error) {
	return s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
}

func (s *fileService) Delete(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, s.cfg.Bucket, key)
}
