// Package storage provides BlobStore implementations for letter
// attachments: an S3-compatible store for production and an in-memory
// store for tests.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/letterdesk/backend/internal/domain/letters"
	infraconfig "github.com/letterdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// folderMarker is the zero-byte object that pins an otherwise empty
// folder prefix.
const folderMarker = ".keep"

// Ensure S3BlobStore implements BlobStore
var _ letters.BlobStore = (*S3BlobStore)(nil)

// S3BlobStore implements letters.BlobStore on any S3-compatible backend
// (AWS S3, MinIO, RustFS, ...). Folders are key prefixes; view URLs are
// presigned GETs.
type S3BlobStore struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3BlobStoreOption is a functional option for configuring S3BlobStore
type S3BlobStoreOption func(*S3BlobStore)

// WithLogger sets a custom logger for S3BlobStore
func WithLogger(logger *zap.Logger) S3BlobStoreOption {
	return func(s *S3BlobStore) {
		s.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3BlobStoreOption {
	return func(s *S3BlobStore) {
		s.presignExpiration = d
	}
}

// NewS3BlobStore creates a blob store from configuration.
func NewS3BlobStore(cfg *infraconfig.StorageConfig, opts ...S3BlobStoreOption) (*S3BlobStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	store := &S3BlobStore{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.presignExpiration == 0 {
		store.presignExpiration = 15 * time.Minute
	}
	return store, nil
}

// EnsureBucket creates the bucket if it doesn't exist. Call during
// startup.
func (s *S3BlobStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// EnsureFolder pins the folder prefix with a marker object so empty
// company folders survive listings. Idempotent.
func (s *S3BlobStore) EnsureFolder(ctx context.Context, folder string) error {
	key := strings.TrimSuffix(folder, "/") + "/" + folderMarker
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return fmt.Errorf("failed to ensure folder %s: %w", folder, err)
	}
	return nil
}

// Put stores a blob and returns its info with a fresh view URL.
func (s *S3BlobStore) Put(ctx context.Context, blobPath string, data []byte, contentType string) (letters.BlobInfo, error) {
	if blobPath == "" {
		return letters.BlobInfo{}, errors.New("blob path is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(blobPath),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return letters.BlobInfo{}, fmt.Errorf("failed to upload blob: %w", err)
	}

	viewURL, err := s.ViewURL(ctx, blobPath)
	if err != nil {
		// The upload succeeded; the URL can be issued again later.
		s.logger.Warn("Failed to presign uploaded blob",
			zap.String("path", blobPath), zap.Error(err))
		viewURL = ""
	}

	return letters.BlobInfo{
		Name:         path.Base(blobPath),
		Path:         blobPath,
		Size:         int64(len(data)),
		ContentType:  contentType,
		ViewURL:      viewURL,
		LastModified: time.Now(),
	}, nil
}

// List returns the blobs directly under a folder prefix, marker objects
// excluded.
func (s *S3BlobStore) List(ctx context.Context, folder string) ([]letters.BlobInfo, error) {
	prefix := strings.TrimSuffix(folder, "/") + "/"

	var blobs []letters.BlobInfo
	var continuation *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list folder %s: %w", folder, err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			name := path.Base(key)
			if name == folderMarker {
				continue
			}
			info := letters.BlobInfo{
				Name: name,
				Path: key,
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			if url, err := s.ViewURL(ctx, key); err == nil {
				info.ViewURL = url
			}
			blobs = append(blobs, info)
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuation = out.NextContinuationToken
	}
	return blobs, nil
}

// ViewURL issues a presigned GET URL for a blob.
func (s *S3BlobStore) ViewURL(ctx context.Context, blobPath string) (string, error) {
	if blobPath == "" {
		return "", errors.New("blob path is required")
	}
	presignReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(blobPath),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign blob URL: %w", err)
	}
	return presignReq.URL, nil
}

// Delete removes a blob. S3 deletes are idempotent, so a missing blob
// is not an error.
func (s *S3BlobStore) Delete(ctx context.Context, blobPath string) error {
	if blobPath == "" {
		return errors.New("blob path is required")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(blobPath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
