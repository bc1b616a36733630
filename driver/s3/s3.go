// Package s3 adapts Amazon S3 to the ObjectStore contract through the AWS
// SDK. It is the driver for buckets hosted on AWS itself; when the
// configuration names a host, the driver targets that endpoint with
// path-style addressing instead, which covers LocalStack and other
// emulators speaking the AWS wire protocol.
package s3

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/internal/contenttype"
	"github.com/perigee-io/bucketsync/internal/validation"
	"github.com/perigee-io/bucketsync/synctypes"
)

// listPageSize caps how many keys one ListObjectsV2 page returns.
const listPageSize = 1000

// Store implements synctypes.ObjectStore against one S3 bucket.
type Store struct {
	client API
	bucket string
	region string
	logger zerolog.Logger
}

// New builds a Store from cfg. When cfg carries an access key the driver
// uses it as a static credential, otherwise the AWS default chain applies.
// A configured host becomes a custom endpoint honoring cfg.DisableSSL.
func New(cfg synctypes.StorageConfig, logger zerolog.Logger) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Key != "" {
		key, secret := cfg.Key, cfg.Secret.Reveal()
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     key,
					SecretAccessKey: secret,
				}, nil
			})))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, bserrors.NewBucketError("connect", cfg.Bucket, err)
	}

	var clientOpts []func(*s3.Options)
	if endpoint := cfg.Endpoint(); endpoint != "" {
		scheme := "https"
		if cfg.DisableSSL {
			scheme = "http"
		}
		url := fmt.Sprintf("%s://%s", scheme, endpoint)
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(url)
			o.UsePathStyle = true
		})
	}

	return NewWithAPI(s3.NewFromConfig(awsCfg, clientOpts...), cfg, logger), nil
}

// NewWithAPI wraps an existing S3 client. Useful for tests and for callers
// that need SDK-level settings New does not expose.
func NewWithAPI(client API, cfg synctypes.StorageConfig, logger zerolog.Logger) *Store {
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
	}
}

// ListObjects returns every object whose key starts with path, walking all
// result pages. Listing results carry no user metadata; fetch a single
// object with GetObject when its metadata matters.
func (s *Store) ListObjects(ctx context.Context, path string) ([]synctypes.RemoteObject, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int32(listPageSize),
	}
	if path != "" {
		input.Prefix = aws.String(path)
	}

	var objects []synctypes.RemoteObject
	for {
		output, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, bserrors.NewPathError("list", s.bucket, path, translate(err))
		}
		for _, item := range output.Contents {
			objects = append(objects, &object{
				store: s,
				key:   aws.ToString(item.Key),
				size:  aws.ToInt64(item.Size),
				etag:  aws.ToString(item.ETag),
			})
		}
		if !aws.ToBool(output.IsTruncated) {
			return objects, nil
		}
		input.ContinuationToken = output.NextContinuationToken
	}
}

// GetObject returns the object stored at exactly path. The lookup is a
// HeadObject call, so the returned object carries its user metadata.
func (s *Store) GetObject(ctx context.Context, path string) (synctypes.RemoteObject, error) {
	output, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, bserrors.NewPathError("get", s.bucket, path, translate(err))
	}
	return &object{
		store:    s,
		key:      path,
		size:     aws.ToInt64(output.ContentLength),
		etag:     aws.ToString(output.ETag),
		metadata: normalizeMetadata(output.Metadata),
	}, nil
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

	f, err := os.Open(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, bserrors.NewError("upload", bserrors.ErrFileNotFound).WithPath(localPath)
		}
		return nil, bserrors.NewError("upload", err).WithPath(localPath)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, bserrors.NewError("upload", err).WithPath(localPath)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(remotePath),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contenttype.Detect(localPath)),
	}
	if len(metadata) > 0 {
		input.Metadata = metadata
	}

	output, err := s.client.PutObject(ctx, input)
	if err != nil {
		return nil, bserrors.NewPathError("upload", s.bucket, remotePath, translate(err))
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("object", remotePath).
		Int64("size", info.Size()).
		Msg("object uploaded")
	return &object{
		store:    s,
		key:      remotePath,
		size:     info.Size(),
		etag:     aws.ToString(output.ETag),
		metadata: normalizeMetadata(metadata),
	}, nil
}

// DeleteObject removes the given object.
func (s *Store) DeleteObject(ctx context.Context, obj synctypes.RemoteObject) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(obj.Name()),
	})
	if err != nil {
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

	input := &s3.CreateBucketInput{
		Bucket: aws.String(name),
	}
	// us-east-1 is the API default region and rejects an explicit
	// location constraint.
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return bserrors.NewBucketError("createBucket", name, translate(err))
	}
	return nil
}

// translate maps AWS SDK failures onto the sentinel errors of the errors
// package. Unrecognized failures pass through unchanged.
func translate(err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return bserrors.ErrObjectNotFound
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return bserrors.ErrObjectNotFound
	}
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return bserrors.ErrBucketNotFound
	}
	var ownedByYou *types.BucketAlreadyOwnedByYou
	if errors.As(err, &ownedByYou) {
		return bserrors.ErrBucketAlreadyExists
	}
	var alreadyExists *types.BucketAlreadyExists
	if errors.As(err, &alreadyExists) {
		return bserrors.ErrBucketAlreadyExists
	}

	// HeadObject reports a missing key as a bare 404 without a typed
	// error, so fall back to matching the code in the message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NoSuchKey"), strings.Contains(msg, "NotFound"):
		return bserrors.ErrObjectNotFound
	case strings.Contains(msg, "NoSuchBucket"):
		return bserrors.ErrBucketNotFound
	case strings.Contains(msg, "BucketAlreadyOwnedByYou"), strings.Contains(msg, "BucketAlreadyExists"):
		return bserrors.ErrBucketAlreadyExists
	case strings.Contains(msg, "AccessDenied"):
		return bserrors.ErrAccessDenied
	}
	return err
}
