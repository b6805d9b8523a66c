package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// StorageService stores user-supplied media and hands back a public URL.
type StorageService interface {
	// UploadImage stores file under folder/publicID, replacing any previous upload.
	// file may be a local path, a URL or an io.Reader.
	UploadImage(ctx context.Context, file any, folder, publicID string) (*UploadResult, error)
	DeleteFile(ctx context.Context, publicID string) error
}

type UploadResult struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
}

// CloudinaryStorage implements StorageService on Cloudinary's upload API.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	logger *zap.Logger
}

// NewCloudinaryStorage builds the client from account credentials.
func NewCloudinaryStorage(cloudName, apiKey, apiSecret string, logger *zap.Logger) (*CloudinaryStorage, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to initialize Cloudinary: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudinaryStorage{cld: cld, logger: logger}, nil
}

func (s *CloudinaryStorage) UploadImage(ctx context.Context, file any, folder, publicID string) (*UploadResult, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("storage: cloudinary rejected upload: %s", result.Error.Message)
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("storage: no public ID returned")
	}
	s.logger.Info("Uploaded image", zap.String("public_id", result.PublicID))
	return &UploadResult{PublicID: result.PublicID, URL: result.SecureURL}, nil
}

func (s *CloudinaryStorage) DeleteFile(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("storage: failed to delete file: %w", err)
	}
	return nil
}
