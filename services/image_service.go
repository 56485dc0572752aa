package services

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/petcode/petcode-api/config"
	"github.com/petcode/petcode-api/utils"
)

// ImageUploadResult holds the outcome of a photo upload: the storage key,
// the canonical URL and a display-optimized (400x400) variant.
type ImageUploadResult struct {
	Key          string
	URL          string
	OptimizedURL string
}

// ImageService handles all photo operations for pet profiles
type ImageService interface {
	// UploadImage validates and uploads a photo, returning its URLs
	UploadImage(fileHeader *multipart.FileHeader) (*ImageUploadResult, error)

	// GetImageURL generates a URL for accessing an uploaded photo
	GetImageURL(imageKey string) (string, error)

	// DeleteImage removes a photo from storage
	DeleteImage(imageKey string) error
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service  S3Interface
	cdnBaseURL string
}

var imageServiceInstance ImageService

// InitImageService initializes the image service with S3 backend
func InitImageService(s3Service S3Interface) ImageService {
	cdnBaseURL := ""
	if cfg := config.GetConfig(); cfg != nil {
		cdnBaseURL = cfg.ImageCDNBaseURL
	}

	imageServiceInstance = &S3ImageService{
		s3Service:  s3Service,
		cdnBaseURL: cdnBaseURL,
	}
	return imageServiceInstance
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// UploadImage validates and uploads a photo to S3
func (s *S3ImageService) UploadImage(fileHeader *multipart.FileHeader) (*ImageUploadResult, error) {
	// Validate the image file
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return nil, err
	}

	// Upload to S3
	s3Key, err := s.s3Service.UploadFile(fileHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	url, err := s.s3Service.GetPresignedURL(s3Key)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image URL: %w", err)
	}

	return &ImageUploadResult{
		Key:          s3Key,
		URL:          url,
		OptimizedURL: s.optimizedURL(s3Key, url),
	}, nil
}

// optimizedURL builds the thumbnail URL for a stored photo. When an image
// CDN is configured the 400x400 resize happens at the edge; otherwise the
// raw URL is served as-is.
func (s *S3ImageService) optimizedURL(s3Key, rawURL string) string {
	if s.cdnBaseURL == "" {
		return rawURL
	}
	return fmt.Sprintf("%s/fit-in/400x400/%s", strings.TrimRight(s.cdnBaseURL, "/"), s3Key)
}

// GetImageURL generates a presigned URL for accessing a photo
func (s *S3ImageService) GetImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}

	return url, nil
}

// DeleteImage deletes a photo from S3
func (s *S3ImageService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
