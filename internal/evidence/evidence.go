// Package evidence stores completion photos attached to task completions.
// Files land on local disk first; when S3 credentials are configured a copy
// is uploaded offsite as well so the manager can review evidence after a
// device is lost.
package evidence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// maxPhotoBytes caps a single evidence upload.
const maxPhotoBytes = 10 << 20 // 10 MiB

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds evidence storage configuration.
type Config struct {
	Dir string
	S3  S3Config
}

// Store saves and retrieves completion photos.
type Store struct {
	cfg    Config
	client s3Client
	logger *slog.Logger
}

// NewStore creates an evidence store rooted at cfg.Dir. The S3 copy is
// enabled only when bucket and credentials are all set.
func NewStore(cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Dir == "" {
		cfg.Dir = "evidence"
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create evidence dir: %w", err)
	}

	st := &Store{cfg: cfg, logger: logger}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		st.client = newS3Client(cfg.S3)
	}
	return st, nil
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// validExt maps accepted photo extensions to their content types.
var validExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Save stores a photo and returns the key under which it can be retrieved.
// Keys look like "2026/09/01/<uuid>.jpg".
func (s *Store) Save(ctx context.Context, r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := validExt[ext]
	if !ok {
		return "", fmt.Errorf("unsupported photo type %q", ext)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return "", fmt.Errorf("photo exceeds %d bytes", maxPhotoBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty photo")
	}

	key := fmt.Sprintf("%s/%s%s", time.Now().UTC().Format("2006/01/02"), uuid.NewString(), ext)

	localPath := filepath.Join(s.cfg.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("create photo dir: %w", err)
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}

	if s.client != nil {
		if err := s.upload(ctx, key, data, contentType); err != nil {
			// Local copy is the source of truth; offsite failure is not fatal.
			s.logger.Error("offsite evidence upload failed", "key", key, "error", err)
		}
	}

	return key, nil
}

// upload pushes a photo to S3, retrying transient failures with backoff.
func (s *Store) upload(ctx context.Context, key string, data []byte, contentType string) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.cfg.S3.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
			ContentType:   aws.String(contentType),
		})
		if err != nil {
			return retry.RetryableError(fmt.Errorf("put object: %w", err))
		}
		return nil
	})
}

// Open returns a reader for a stored photo along with its content type.
// Falls back to the offsite copy when the local file is missing.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	contentType, ok := validExt[strings.ToLower(filepath.Ext(key))]
	if !ok {
		return nil, "", fmt.Errorf("unsupported photo type in key %q", key)
	}

	localPath := filepath.Join(s.cfg.Dir, filepath.FromSlash(key))
	if !strings.HasPrefix(filepath.Clean(localPath), filepath.Clean(s.cfg.Dir)) {
		return nil, "", fmt.Errorf("invalid photo key %q", key)
	}

	f, err := os.Open(localPath)
	if err == nil {
		return f, contentType, nil
	}
	if !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("open photo: %w", err)
	}

	if s.client == nil {
		return nil, "", fmt.Errorf("photo %q not found", key)
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.S3.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("fetch offsite photo: %w", err)
	}
	return result.Body, contentType, nil
}

// Delete removes a photo locally and, when configured, offsite.
func (s *Store) Delete(ctx context.Context, key string) error {
	localPath := filepath.Join(s.cfg.Dir, filepath.FromSlash(key))
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove photo: %w", err)
	}

	if s.client != nil {
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.S3.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			s.logger.Error("offsite evidence delete failed", "key", key, "error", err)
		}
	}
	return nil
}
