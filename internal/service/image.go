package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/kuechenzettel/backend/config"
)

// allowedImageExtensions is the upload allowlist, keyed by lowercase
// extension including the dot.
var allowedImageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// ErrUnsupportedImageType is returned for uploads outside the allowlist.
var ErrUnsupportedImageType = fmt.Errorf("unsupported image type (allowed: png, jpg, jpeg, gif)")

// ImageStore persists recipe image artifacts. The store hands back an opaque
// reference string; only that reference is kept on the recipe row. Artifacts
// are saved before the referencing row is committed, and callers delete the
// artifact again when the commit fails.
type ImageStore interface {
	Save(ctx context.Context, data []byte, filename string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// LocalImageStore keeps artifacts on the local filesystem under a single
// upload directory, each under a fresh random name.
type LocalImageStore struct {
	dir string
}

// NewLocalImageStore creates the upload directory if needed.
func NewLocalImageStore(dir string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalImageStore{dir: dir}, nil
}

func (s *LocalImageStore) Save(ctx context.Context, data []byte, filename string) (string, error) {
	ext, err := imageExtension(filename)
	if err != nil {
		return "", err
	}

	ref := strings.ReplaceAll(uuid.New().String(), "-", "") + ext
	if err := os.WriteFile(filepath.Join(s.dir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return ref, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, ref string) error {
	// The reference is store-generated, but never trust it as a path.
	if ref == "" || ref != filepath.Base(ref) {
		return fmt.Errorf("invalid image reference %q", ref)
	}
	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// S3ImageStore keeps artifacts in an S3 bucket under recipe-images/.
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Save(ctx context.Context, data []byte, filename string) (string, error) {
	ext, err := imageExtension(filename)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("recipe-images/%s%s", uuid.New().String(), ext)
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(allowedImageExtensions[ext]),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return key, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, ref string) error {
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func imageExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return "", ErrUnsupportedImageType
	}
	return ext, nil
}
