package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/synctypes"
)

func TestFakeStore_SeedAndList(t *testing.T) {
	store := NewFakeStore()
	store.Seed("base/b.txt", "bee", nil)
	store.Seed("base/a.txt", "ay", nil)
	store.Seed("other/c.txt", "sea", nil)

	objects, err := store.ListObjects(context.Background(), "base/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "base/a.txt", objects[0].Name())
	assert.Equal(t, "base/b.txt", objects[1].Name())
	assert.Equal(t, MD5Hex("ay"), objects[0].Hash())
}

func TestFakeStore_GetObjectMissing(t *testing.T) {
	store := NewFakeStore()

	_, err := store.GetObject(context.Background(), "absent")
	require.Error(t, err)
	assert.True(t, bserrors.IsNotFound(err))
}

func TestFakeStore_UploadRoundTrip(t *testing.T) {
	store := NewFakeStore()
	local := WriteLocalFile(t, t.TempDir(), "up.txt", "payload")

	obj, err := store.UploadObject(context.Background(), local, "dest/up.txt", map[string]string{"Trace": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "dest/up.txt", obj.Name())
	assert.Equal(t, int64(len("payload")), obj.Size())
	assert.Equal(t, "abc", obj.Metadata()["trace"])
	assert.Equal(t, []string{"dest/up.txt"}, store.Uploads)

	got, err := store.GetObject(context.Background(), "dest/up.txt")
	require.NoError(t, err)
	assert.Equal(t, MD5Hex("payload"), got.Hash())
}

func TestFakeStore_UploadMissingFile(t *testing.T) {
	store := NewFakeStore()

	_, err := store.UploadObject(context.Background(), filepath.Join(t.TempDir(), "nope"), "dest", nil)
	require.Error(t, err)
	assert.True(t, bserrors.IsNotFound(err))
}

func TestFakeStore_DeleteObject(t *testing.T) {
	store := NewFakeStore()
	obj := store.Seed("gone.txt", "x", nil)

	require.NoError(t, store.DeleteObject(context.Background(), obj))
	assert.Equal(t, []string{"gone.txt"}, store.Deleted)

	err := store.DeleteObject(context.Background(), obj)
	require.Error(t, err)
	assert.True(t, bserrors.IsNotFound(err))
}

func TestFakeStore_CreateBucket(t *testing.T) {
	store := NewFakeStore()

	require.NoError(t, store.CreateBucket(context.Background(), "fresh-bucket"))
	assert.True(t, store.HasBucket("fresh-bucket"))

	err := store.CreateBucket(context.Background(), "fresh-bucket")
	require.Error(t, err)
	assert.ErrorIs(t, err, bserrors.ErrBucketAlreadyExists)
}

func TestFakeObject_Download(t *testing.T) {
	obj := &FakeObject{Key: "file.txt", Content: []byte("content")}
	dest := filepath.Join(t.TempDir(), "file.txt")

	require.NoError(t, obj.Download(context.Background(), dest, false))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	err = obj.Download(context.Background(), dest, false)
	require.Error(t, err)
	assert.True(t, bserrors.IsTargetExists(err))

	require.NoError(t, obj.Download(context.Background(), dest, true))
}

func TestFakeObject_HashOverride(t *testing.T) {
	obj := &FakeObject{Key: "file.txt", Content: []byte("content"), HashValue: "pinned"}
	assert.Equal(t, "pinned", obj.Hash())
}

func TestTempTree(t *testing.T) {
	dir := TempTree(t, map[string]string{
		"a.txt":        "a",
		"nested/b.txt": "b",
	})

	data, err := os.ReadFile(filepath.Join(dir, "nested", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestRecordingTracker(t *testing.T) {
	tracker := &RecordingTracker{}
	tracker.Update(5, 10)
	tracker.Update(10, 10)
	tracker.Complete()

	updates := tracker.Updates()
	require.Len(t, updates, 2)
	assert.Equal(t, ProgressUpdate{Transferred: 10, Total: 10}, updates[1])
	assert.True(t, tracker.Completed())
	assert.NoError(t, tracker.Err())
}

// Compile-time checks that the fakes satisfy the storage contracts.
var (
	_ synctypes.ObjectStore  = (*FakeStore)(nil)
	_ synctypes.ObjectStore  = (*MockObjectStore)(nil)
	_ synctypes.RemoteObject = (*FakeObject)(nil)
)
