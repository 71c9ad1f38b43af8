package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ikkim/storybook-backend/config"
)

const (
	StoryImageFolder = "stories"
	presignExpiry    = 15 * time.Minute
)

var ErrContentTypeNotAllowed = errors.New("content type is not allowed")

// imageTypes maps the accepted story image types to the extension used when
// the uploaded filename has none.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PresignedUpload is where the admin browser PUTs the file, and the public
// URL to store in Story.image_url afterwards.
type PresignedUpload struct {
	UploadURL string    `json:"upload_url"`
	FileURL   string    `json:"file_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	region  string
	baseURL string
}

// NewS3Storage builds the client from static keys when both are set and from
// the default AWS credential chain otherwise.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	if !cfg.Configured() {
		return nil, errors.New("s3 bucket is not configured")
	}

	var awsCfg aws.Config
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region:      cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		}
	} else {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = loaded
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// PresignImageUpload signs a PUT for a new story image under a fresh key.
func (s *S3Storage) PresignImageUpload(ctx context.Context, filename, contentType string) (*PresignedUpload, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if err := ValidateImageContentType(contentType); err != nil {
		return nil, err
	}

	key := ObjectKey(StoryImageFolder, filename, contentType)
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		FileURL:   s.FileURL(key),
		Key:       key,
		ExpiresAt: time.Now().Add(presignExpiry).UTC(),
	}, nil
}

// FileURL is the public address of an object, through BaseURL (CloudFront or
// a custom domain) when one is configured.
func (s *S3Storage) FileURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// ObjectKey is folder/<uuid><ext>. The client filename only contributes its
// extension.
func ObjectKey(folder, filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 6 {
		ext = imageTypes[contentType]
	}
	return fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)
}

// ValidateImageContentType accepts only the story image types.
func ValidateImageContentType(contentType string) error {
	if _, ok := imageTypes[contentType]; !ok {
		return fmt.Errorf("%w: %s", ErrContentTypeNotAllowed, contentType)
	}
	return nil
}
