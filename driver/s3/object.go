package s3

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/internal/pool"
	"github.com/perigee-io/bucketsync/synctypes"
)

// object implements synctypes.RemoteObject over one stored S3 object.
type object struct {
	store    *Store
	key      string
	size     int64
	etag     string
	metadata map[string]string
}

// Name returns the full key of the object.
func (o *object) Name() string { return o.key }

// Size returns the object size in bytes.
func (o *object) Size() int64 { return o.size }

// Hash returns the ETag without surrounding quotes.
func (o *object) Hash() string { return strings.Trim(o.etag, "\"") }

// Metadata returns the user metadata of the object. Objects from listings
// carry none.
func (o *object) Metadata() map[string]string { return o.metadata }

// Provider identifies the backend that produced this object.
func (o *object) Provider() string { return synctypes.ProviderS3 }

// plainWriter hides the ReadFrom of *os.File so io.CopyBuffer uses the
// pooled buffer instead of delegating.
type plainWriter struct {
	io.Writer
}

// Download streams the object body to destPath. Without overwrite an
// existing destination fails with errors.ErrTargetExists before any
// backend call.
func (o *object) Download(ctx context.Context, destPath string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(destPath); err == nil {
			return bserrors.NewError("download", bserrors.ErrTargetExists).WithPath(destPath)
		}
	}

	output, err := o.store.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.store.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		return bserrors.NewPathError("download", o.store.bucket, o.key, translate(err))
	}
	defer output.Body.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return bserrors.NewError("download", err).WithPath(destPath)
	}

	buf := pool.GetCopyBuffer()
	defer pool.PutCopyBuffer(buf)

	_, copyErr := io.CopyBuffer(plainWriter{f}, output.Body, buf)
	closeErr := f.Close()
	if copyErr != nil {
		return bserrors.NewPathError("download", o.store.bucket, o.key, copyErr)
	}
	if closeErr != nil {
		return bserrors.NewError("download", closeErr).WithPath(destPath)
	}
	return nil
}

// normalizeMetadata lowercases metadata keys and strips the amz metadata
// header prefix, so one key shape reaches callers no matter which API
// produced the object.
func normalizeMetadata(raw map[string]string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	metadata := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.TrimPrefix(strings.ToLower(k), "x-amz-meta-")
		metadata[key] = v
	}
	return metadata
}
