package testutil

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/internal/validation"
	"github.com/perigee-io/bucketsync/synctypes"
)

// FakeProvider is the provider tag FakeStore objects report.
const FakeProvider = "fake"

// FakeStore is an in-memory synctypes.ObjectStore. Objects live in a map
// keyed by their full remote path and report hex MD5 hashes the way real
// backends do for plain uploads. All methods are safe for concurrent use.
type FakeStore struct {
	mu      sync.Mutex
	objects map[string]*FakeObject
	buckets map[string]bool

	// Uploads and Deleted record the remote paths passed to UploadObject
	// and DeleteObject, in call order.
	Uploads []string
	Deleted []string
}

// NewFakeStore creates an empty store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		objects: make(map[string]*FakeObject),
		buckets: make(map[string]bool),
	}
}

// Seed inserts an object without going through UploadObject and returns
// it for further tweaking.
func (f *FakeStore) Seed(path, content string, metadata map[string]string) *FakeObject {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj := &FakeObject{
		Key:     path,
		Content: []byte(content),
		Meta:    metadata,
	}
	f.objects[path] = obj
	return obj
}

// Object returns the stored object at path, or nil.
func (f *FakeStore) Object(path string) *FakeObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[path]
}

// ListObjects returns every object whose path starts with path, sorted by
// name like real backends list them.
func (f *FakeStore) ListObjects(_ context.Context, path string) ([]synctypes.RemoteObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var objects []synctypes.RemoteObject
	for key, obj := range f.objects {
		if strings.HasPrefix(key, path) {
			objects = append(objects, obj)
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name() < objects[j].Name() })
	return objects, nil
}

// GetObject returns the object stored at exactly path.
func (f *FakeStore) GetObject(_ context.Context, path string) (synctypes.RemoteObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj, ok := f.objects[path]
	if !ok {
		return nil, bserrors.NewPathError("get", "fake", path, bserrors.ErrObjectNotFound)
	}
	return obj, nil
}

// UploadObject stores the content of the local file under remotePath.
func (f *FakeStore) UploadObject(
	_ context.Context,
	localPath, remotePath string,
	extra map[string]string,
) (synctypes.RemoteObject, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return nil, bserrors.NewError("upload", bserrors.ErrFileNotFound).WithPath(localPath)
	}

	var metadata map[string]string
	if len(extra) > 0 {
		metadata = make(map[string]string, len(extra))
		for k, v := range extra {
			metadata[strings.ToLower(k)] = v
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	obj := &FakeObject{
		Key:     remotePath,
		Content: content,
		Meta:    metadata,
	}
	f.objects[remotePath] = obj
	f.Uploads = append(f.Uploads, remotePath)
	return obj, nil
}

// DeleteObject removes the given object.
func (f *FakeStore) DeleteObject(_ context.Context, obj synctypes.RemoteObject) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := obj.Name()
	if _, ok := f.objects[name]; !ok {
		return bserrors.NewPathError("delete", "fake", name, bserrors.ErrObjectNotFound)
	}
	delete(f.objects, name)
	f.Deleted = append(f.Deleted, name)
	return nil
}

// CreateBucket records the bucket. Creating the same bucket twice fails
// with errors.ErrBucketAlreadyExists like real backends.
func (f *FakeStore) CreateBucket(_ context.Context, name string) error {
	if err := validation.ValidateBucketName(name); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.buckets[name] {
		return bserrors.NewBucketError("createBucket", name, bserrors.ErrBucketAlreadyExists)
	}
	f.buckets[name] = true
	return nil
}

// HasBucket reports whether CreateBucket recorded name.
func (f *FakeStore) HasBucket(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buckets[name]
}

// FakeObject implements synctypes.RemoteObject over in-memory content.
type FakeObject struct {
	Key     string
	Content []byte
	Meta    map[string]string

	// HashValue overrides the computed MD5 when set.
	HashValue string
	// DownloadErr makes Download fail when set.
	DownloadErr error
}

// Name returns the full remote path of the object.
func (o *FakeObject) Name() string { return o.Key }

// Size returns the content length in bytes.
func (o *FakeObject) Size() int64 { return int64(len(o.Content)) }

// Hash returns the hex MD5 of the content unless HashValue overrides it.
func (o *FakeObject) Hash() string {
	if o.HashValue != "" {
		return o.HashValue
	}
	return fmt.Sprintf("%x", md5.Sum(o.Content))
}

// Metadata returns the metadata the object was stored with.
func (o *FakeObject) Metadata() map[string]string { return o.Meta }

// Provider identifies the fake backend.
func (o *FakeObject) Provider() string { return FakeProvider }

// Download writes the content to destPath. Without overwrite an existing
// destination fails with errors.ErrTargetExists.
func (o *FakeObject) Download(_ context.Context, destPath string, overwrite bool) error {
	if o.DownloadErr != nil {
		return o.DownloadErr
	}
	if !overwrite {
		if _, err := os.Stat(destPath); err == nil {
			return bserrors.NewError("download", bserrors.ErrTargetExists).WithPath(destPath)
		}
	}
	if err := os.WriteFile(destPath, o.Content, 0o644); err != nil {
		return bserrors.NewError("download", err).WithPath(destPath)
	}
	return nil
}
