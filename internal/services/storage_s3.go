package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3StorageService struct {
	client    *s3.Client
	s3Bucket  string
	prefix    string
	bucket    string
	publicURL string
}

// NewS3StorageService stores the applications bucket in an S3 bucket, under
// an optional key prefix.
func NewS3StorageService(ctx context.Context, region, s3Bucket, prefix, bucket, publicURL string) (StorageService, error) {
	if s3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &s3StorageService{
		client:    s3.NewFromConfig(cfg),
		s3Bucket:  s3Bucket,
		prefix:    strings.Trim(strings.TrimSpace(prefix), "/"),
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *s3StorageService) Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) error {
	key, err := s.key(objectPath)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:               aws.String(s.s3Bucket),
		Key:                  aws.String(key),
		Body:                 r,
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.s3Bucket, key, err)
	}
	return nil
}

func (s *s3StorageService) Download(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	key, err := s.key(objectPath)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.s3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", objectPath, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.s3Bucket, key, err)
	}
	return out.Body, nil
}

func (s *s3StorageService) Delete(ctx context.Context, objectPath string) error {
	key, err := s.key(objectPath)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.s3Bucket, key, err)
	}
	return nil
}

func (s *s3StorageService) PublicURL(objectPath string) string {
	return buildPublicURL(s.publicURL, s.bucket, objectPath)
}

func (s *s3StorageService) key(objectPath string) (string, error) {
	clean, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}
	return applyPrefix(s.prefix, clean), nil
}

func applyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}
