package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// StorageService stores resumes inside the applications bucket, addressed by
// a relative path such as "resumes/<id>.pdf".
type StorageService interface {
	Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) error
	Download(ctx context.Context, objectPath string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectPath string) error
	PublicURL(objectPath string) string
}

type localStorageService struct {
	root      string
	bucket    string
	publicURL string
}

// NewLocalStorageService keeps objects under uploadPath/bucket on disk.
func NewLocalStorageService(uploadPath, bucket, publicURL string) (StorageService, error) {
	root := filepath.Join(uploadPath, bucket)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &localStorageService{
		root:      root,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *localStorageService) Upload(ctx context.Context, objectPath string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}

func (s *localStorageService) Download(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(objectPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", objectPath, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *localStorageService) Delete(ctx context.Context, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *localStorageService) PublicURL(objectPath string) string {
	return buildPublicURL(s.publicURL, s.bucket, objectPath)
}

func (s *localStorageService) resolve(objectPath string) (string, error) {
	clean, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func cleanObjectPath(objectPath string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(objectPath))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return clean, nil
}

func buildPublicURL(base, bucket, objectPath string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, strings.TrimLeft(objectPath, "/"))
}

// ResolveStoragePath extracts the object path from a resume reference. For a
// URL it is whatever follows "/<bucket>/" in the URL path; anything else is
// taken as a path already.
func ResolveStoragePath(resumeURL, bucket string) (string, error) {
	ref := strings.TrimSpace(resumeURL)
	if ref == "" {
		return "", fmt.Errorf("empty resume reference")
	}

	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("invalid resume url: %w", err)
		}
		marker := "/" + bucket + "/"
		_, after, found := strings.Cut(u.Path, marker)
		if !found || after == "" {
			return "", fmt.Errorf("resume url has no %q segment", marker)
		}
		decoded, err := url.PathUnescape(after)
		if err != nil {
			return "", fmt.Errorf("invalid resume path: %w", err)
		}
		return cleanObjectPath(decoded)
	}

	return cleanObjectPath(ref)
}
