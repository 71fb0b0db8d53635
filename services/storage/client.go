package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/vidcourse/api/config"
)

const (
	// VideoURLExpiry is how long a playback link stays valid
	VideoURLExpiry = 1 * time.Hour
	// ReceiptURLExpiry is how long a receipt review link stays valid
	ReceiptURLExpiry = 5 * time.Minute
)

// Client handles object storage operations against an S3-compatible bucket.
// Objects are private; reads go through presigned URLs only.
type Client struct {
	s3Client *s3.S3
	bucket   string
}

// Config holds configuration for the storage client
type Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

// NewClient creates a new storage client
func NewClient(cfg Config) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return &Client{
		s3Client: s3.New(sess),
		bucket:   cfg.Bucket,
	}, nil
}

// NewClientFromEnv creates a storage client from environment configuration
func NewClientFromEnv() (*Client, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	if getEnv.STORAGE_ACCESS_KEY == "" || getEnv.STORAGE_SECRET_KEY == "" || getEnv.STORAGE_BUCKET == "" {
		return nil, fmt.Errorf("storage credentials are not configured")
	}

	return NewClient(Config{
		AccessKey: getEnv.STORAGE_ACCESS_KEY,
		SecretKey: getEnv.STORAGE_SECRET_KEY,
		Bucket:    getEnv.STORAGE_BUCKET,
		Region:    getEnv.STORAGE_REGION,
		Endpoint:  getEnv.STORAGE_ENDPOINT,
	})
}

// UploadFile uploads a file to the bucket under the given key
func (c *Client) UploadFile(ctx context.Context, key string, data io.Reader, contentType string) error {
	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(data),
		ACL:         aws.String("private"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

// UploadMultipart uploads a multipart form file to the bucket
func (c *Client) UploadMultipart(ctx context.Context, key string, fileHeader *multipart.FileHeader) error {
	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	return c.UploadFile(ctx, key, file, GetContentType(fileHeader.Filename))
}

// DeleteFile deletes a file from the bucket
func (c *Client) DeleteFile(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetPresignedURL generates a presigned URL for temporary read access
func (c *Client) GetPresignedURL(key string, expiration time.Duration) (string, error) {
	req, _ := c.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return url, nil
}

// VideoKey generates a storage key for an uploaded video file
func VideoKey(filename string) string {
	return generateKey("videos", filename)
}

// ReceiptKey generates a per-user storage key for a payment receipt
func ReceiptKey(userID uint, filename string) string {
	return generateKey(fmt.Sprintf("receipts/%d", userID), filename)
}

func generateKey(prefix, filename string) string {
	timestamp := time.Now().Unix()
	ext := strings.ToLower(filepath.Ext(filename))
	base := filename[:len(filename)-len(ext)]

	return fmt.Sprintf("%s/%d_%s%s", prefix, timestamp, sanitizeKeyPart(base), ext)
}

// sanitizeKeyPart keeps object keys URL-safe; everything outside a small
// allowed set becomes an underscore.
func sanitizeKeyPart(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// GetContentType returns the content type for a filename
func GetContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
