package media

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/glowbook/booking-api/internal/config"
)

// Uploader stores portfolio images in S3. Images are normalized to webp
// before upload (see process.go).
type Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewUploader returns nil when the S3 bucket or credentials are not
// configured; callers treat a nil uploader as a disabled feature.
func NewUploader(cfg *config.Config) *Uploader {
	if cfg.S3Bucket == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil
	}

	awsCfg := aws.Config{
		Region: cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		),
	}

	baseURL := cfg.S3BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}

	return &Uploader{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.S3Bucket,
		baseURL: baseURL,
	}
}

func (u *Uploader) Enabled() bool {
	return u != nil
}

// UploadPortfolioImage converts the image to webp and uploads it under a
// per-specialist key. Returns the public URL.
func (u *Uploader) UploadPortfolioImage(
	ctx context.Context,
	specialistID uint,
	r io.Reader,
) (string, error) {

	webpData, err := ToWebp(r)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("portfolio/%d/%s.webp", specialistID, uuid.NewString())

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(webpData),
		ContentType: aws.String("image/webp"),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", u.baseURL, key), nil
}
