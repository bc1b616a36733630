// Package minio adapts any S3-compatible endpoint to the ObjectStore
// contract through the MinIO client. It is the driver for self-hosted MinIO
// deployments and for third-party services speaking the S3 protocol on a
// custom host and port.
package minio

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/internal/contenttype"
	"github.com/perigee-io/bucketsync/internal/validation"
	"github.com/perigee-io/bucketsync/synctypes"
)

// Store implements synctypes.ObjectStore against one bucket of an
// S3-compatible endpoint.
type Store struct {
	client *minio.Client
	bucket string
	region string
	logger zerolog.Logger
}

// New connects to the endpoint described by cfg. The configured host (and
// optional port) is required; TLS is on unless cfg.DisableSSL is set.
func New(cfg synctypes.StorageConfig, logger zerolog.Logger) (*Store, error) {
	endpoint := cfg.Endpoint()
	if endpoint == "" {
		return nil, bserrors.NewValidationError("minio provider requires a host")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Key, cfg.Secret.Reveal(), ""),
		Secure: !cfg.DisableSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, bserrors.NewBucketError("connect", cfg.Bucket, err)
	}
	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient wraps an existing MinIO client. Useful for tests and for
// callers that need client-level settings New does not expose.
func NewWithClient(client *minio.Client, cfg synctypes.StorageConfig, logger zerolog.Logger) *Store {
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
	}
}

// ListObjects returns every object whose name starts with path, recursively.
func (s *Store) ListObjects(ctx context.Context, path string) ([]synctypes.RemoteObject, error) {
	opts := minio.ListObjectsOptions{
		Prefix:       path,
		Recursive:    true,
		WithMetadata: true,
	}

	var objects []synctypes.RemoteObject
	for info := range s.client.ListObjects(ctx, s.bucket, opts) {
		if info.Err != nil {
			return nil, bserrors.NewPathError("list", s.bucket, path, translate(info.Err))
		}
		objects = append(objects, s.objectFromInfo(info))
	}
	return objects, nil
}

// GetObject returns the object stored at exactly path.
func (s *Store) GetObject(ctx context.Context, path string) (synctypes.RemoteObject, error) {
	info, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		return nil, bserrors.NewPathError("get", s.bucket, path, translate(err))
	}
	return s.objectFromInfo(info), nil
}

// UploadObject uploads the local file to remotePath with sniffed content
// type and the given user metadata, and returns the stored object.
func (s *Store) UploadObject(
	ctx context.Context,
	localPath, remotePath string,
	extra map[string]string,
) (synctypes.RemoteObject, error) {
	if err := validation.ValidateRemotePath(remotePath); err != nil {
		return nil, err
	}
	metadata := validation.SanitizeMetadata(extra)
	if err := validation.ValidateMetadata(metadata); err != nil {
		return nil, err
	}

	info, err := s.client.FPutObject(ctx, s.bucket, remotePath, localPath, minio.PutObjectOptions{
		ContentType:  contenttype.Detect(localPath),
		UserMetadata: metadata,
	})
	if err != nil {
		return nil, bserrors.NewPathError("upload", s.bucket, remotePath, translate(err))
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("object", info.Key).
		Int64("size", info.Size).
		Msg("object uploaded")
	return &object{
		store:    s,
		key:      info.Key,
		size:     info.Size,
		etag:     info.ETag,
		metadata: normalizeMetadata(metadata),
	}, nil
}

// DeleteObject removes the given object.
func (s *Store) DeleteObject(ctx context.Context, obj synctypes.RemoteObject) error {
	if err := s.client.RemoveObject(ctx, s.bucket, obj.Name(), minio.RemoveObjectOptions{}); err != nil {
		return bserrors.NewPathError("delete", s.bucket, obj.Name(), translate(err))
	}
	return nil
}

// CreateBucket creates the named bucket in the configured region. The name
// is validated locally first so malformed names fail with
// errors.ErrInvalidBucketName rather than a backend rejection.
func (s *Store) CreateBucket(ctx context.Context, name string) error {
	if err := validation.ValidateBucketName(name); err != nil {
		return err
	}
	if err := s.client.MakeBucket(ctx, name, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return bserrors.NewBucketError("createBucket", name, translate(err))
	}
	return nil
}

// objectFromInfo builds a RemoteObject from a listing or stat result.
func (s *Store) objectFromInfo(info minio.ObjectInfo) *object {
	return &object{
		store:    s,
		key:      info.Key,
		size:     info.Size,
		etag:     info.ETag,
		metadata: normalizeMetadata(info.UserMetadata),
	}
}

// translate maps backend error codes onto the sentinel errors of the errors
// package. Unrecognized failures pass through unchanged.
func translate(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey":
		return bserrors.ErrObjectNotFound
	case "NoSuchBucket":
		return bserrors.ErrBucketNotFound
	case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
		return bserrors.ErrBucketAlreadyExists
	case "InvalidBucketName":
		return bserrors.ErrInvalidBucketName
	case "AccessDenied":
		return bserrors.ErrAccessDenied
	default:
		return err
	}
}
