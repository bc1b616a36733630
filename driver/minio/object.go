package minio

import (
	"context"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/synctypes"
)

// object implements synctypes.RemoteObject over one stored MinIO object.
type object struct {
	store    *Store
	key      string
	size     int64
	etag     string
	metadata map[string]string
}

// Name returns the full backend path of the object.
func (o *object) Name() string { return o.key }

// Size returns the object size in bytes.
func (o *object) Size() int64 { return o.size }

// Hash returns the ETag without surrounding quotes.
func (o *object) Hash() string { return strings.Trim(o.etag, "\"") }

// Metadata returns the normalized user metadata of the object.
func (o *object) Metadata() map[string]string { return o.metadata }

// Provider identifies the backend that produced this object.
func (o *object) Provider() string { return synctypes.ProviderMinIO }

// Download writes the object to destPath. Without overwrite an existing
// destination fails with errors.ErrTargetExists before any backend call.
func (o *object) Download(ctx context.Context, destPath string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(destPath); err == nil {
			return bserrors.NewError("download", bserrors.ErrTargetExists).WithPath(destPath)
		}
	}
	if err := o.store.client.FGetObject(ctx, o.store.bucket, o.key, destPath, minio.GetObjectOptions{}); err != nil {
		return bserrors.NewPathError("download", o.store.bucket, o.key, translate(err))
	}
	return nil
}

// normalizeMetadata lowercases metadata keys and strips the amz metadata
// header prefix listings attach, so one key shape reaches callers no matter
// which API produced the object.
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
