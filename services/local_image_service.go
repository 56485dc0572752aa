package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/petcode/petcode-api/utils"
)

// LocalImageService implements ImageService on the local filesystem. It
// is the fallback used when no S3 bucket is configured, so development
// environments work without cloud credentials. Files are served back
// through the uploads endpoint.
type LocalImageService struct {
	uploadDir string
}

// NewLocalImageService creates a local image service storing files under dir
func NewLocalImageService(dir string) *LocalImageService {
	if dir == "" {
		dir = utils.UploadDir
	}
	return &LocalImageService{uploadDir: dir}
}

// UploadImage validates and saves a photo to the local upload directory
func (s *LocalImageService) UploadImage(fileHeader *multipart.FileHeader) (*ImageUploadResult, error) {
	// Validate the image file
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return nil, err
	}

	filename, err := utils.SaveUploadedFile(fileHeader, s.uploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	url := utils.GetLocalImageURL(filename)

	// No resize pipeline locally; the raw file stands in for the thumbnail
	return &ImageUploadResult{
		Key:          filename,
		URL:          url,
		OptimizedURL: url,
	}, nil
}

// GetImageURL returns the serving path for a locally stored photo
func (s *LocalImageService) GetImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}
	return utils.GetLocalImageURL(imageKey), nil
}

// DeleteImage removes a photo from the local upload directory
func (s *LocalImageService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	fullPath := filepath.Join(s.uploadDir, filepath.Base(imageKey))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
