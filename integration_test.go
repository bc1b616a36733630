//go:build integration
// +build integration

package bucketsync_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perigee-io/bucketsync"
	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/internal/testutil"
	"github.com/perigee-io/bucketsync/synctypes"
)

// TestIntegrationRoundTrip pushes, pulls, and deletes against a MinIO
// container, once per shipped driver.
func TestIntegrationRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testutil.NewMinIOContainer(ctx, t)
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	for _, provider := range []string{synctypes.ProviderMinIO, synctypes.ProviderS3} {
		t.Run(provider, func(t *testing.T) {
			cfg := container.StorageConfig(provider, fmt.Sprintf("roundtrip-%s", provider))
			cfg.BasePath = "it"

			storage, err := bucketsync.New(cfg)
			require.NoError(t, err)
			require.NoError(t, storage.CreateBucket(ctx))

			src := testutil.TempTree(t, map[string]string{
				"data/sample.txt":      "sample content",
				"data/nested/deep.bin": "deep content",
			})

			summary, err := storage.Push(ctx, "data", bucketsync.WithPrefix(src))
			require.NoError(t, err)
			assert.Len(t, summary.SyncedFiles, 2)

			// A second push finds everything up to date.
			summary, err = storage.Push(ctx, "data", bucketsync.WithPrefix(src))
			require.NoError(t, err)
			assert.Empty(t, summary.FilesToSync())
			assert.Len(t, summary.OnTargetEqualHash, 2)

			dst := t.TempDir()
			summary, err = storage.Pull(ctx, "data", dst)
			require.NoError(t, err)
			assert.Len(t, summary.SyncedFiles, 2)

			for name, expected := range map[string]string{
				"data/sample.txt":      "sample content",
				"data/nested/deep.bin": "deep content",
			} {
				content, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(name)))
				require.NoError(t, err)
				assert.Equal(t, expected, string(content))
			}

			deleted, err := storage.Delete(ctx, "data")
			require.NoError(t, err)
			assert.Len(t, deleted, 2)

			remaining, err := storage.ListObjects(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, remaining)
		})
	}
}

// TestIntegrationForce verifies that diverged remote content is only
// overwritten when forced.
func TestIntegrationForce(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testutil.NewMinIOContainer(ctx, t)
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	cfg := container.StorageConfig(synctypes.ProviderMinIO, "force-test")
	storage, err := bucketsync.New(cfg)
	require.NoError(t, err)
	require.NoError(t, storage.CreateBucket(ctx))

	dir := t.TempDir()
	path := testutil.WriteLocalFile(t, dir, "state.json", `{"rev": 1}`)

	_, err = storage.Push(ctx, path, bucketsync.WithPrefix(dir))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"rev": 2}`), 0o644))

	_, err = storage.Push(ctx, path, bucketsync.WithPrefix(dir))
	require.Error(t, err)
	assert.True(t, bserrors.IsTargetExists(err))

	summary, err := storage.Push(ctx, path, bucketsync.WithPrefix(dir), bucketsync.WithForce(true))
	require.NoError(t, err)
	require.Len(t, summary.SyncedFiles, 1)

	dst := t.TempDir()
	_, err = storage.Pull(ctx, "state.json", dst)
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(dst, "state.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"rev": 2}`, string(content))
}
