package synctypes_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perigee-io/bucketsync/internal/testutil"
	"github.com/perigee-io/bucketsync/synctypes"
)

func TestSecret_NeverRendered(t *testing.T) {
	secret := synctypes.Secret("hunter2")

	assert.Equal(t, "hunter2", secret.Reveal())
	assert.NotContains(t, fmt.Sprintf("%s", secret), "hunter2")
	assert.NotContains(t, fmt.Sprintf("%v", secret), "hunter2")
	assert.NotContains(t, fmt.Sprintf("%#v", secret), "hunter2")

	cfg := synctypes.StorageConfig{
		Provider: synctypes.ProviderMinIO,
		Key:      "access",
		Secret:   secret,
		Bucket:   "b",
	}
	assert.NotContains(t, fmt.Sprintf("%+v", cfg), "hunter2")

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
}

func TestSecret_JSONRoundTrip(t *testing.T) {
	var secret synctypes.Secret
	require.NoError(t, json.Unmarshal([]byte(`"from-config-file"`), &secret))
	assert.Equal(t, "from-config-file", secret.Reveal())

	// Empty secrets render empty, not redacted.
	assert.Equal(t, "", synctypes.Secret("").String())
}

func TestStorageConfig_Endpoint(t *testing.T) {
	assert.Equal(t, "", synctypes.StorageConfig{}.Endpoint())
	assert.Equal(t, "minio.local", synctypes.StorageConfig{Host: "minio.local"}.Endpoint())
	assert.Equal(t, "minio.local:9000",
		synctypes.StorageConfig{Host: "minio.local", Port: 9000}.Endpoint())
}

func TestStorageConfig_Validate(t *testing.T) {
	valid := synctypes.StorageConfig{Provider: synctypes.ProviderS3, Bucket: "b"}
	require.NoError(t, valid.Validate())

	assert.Error(t, synctypes.StorageConfig{Bucket: "b"}.Validate())
	assert.Error(t, synctypes.StorageConfig{Provider: synctypes.ProviderS3}.Validate())
}

func TestDirection_Valid(t *testing.T) {
	assert.True(t, synctypes.Push.Valid())
	assert.True(t, synctypes.Pull.Valid())
	assert.False(t, synctypes.Direction("sideways").Valid())
}

func TestCollision_String(t *testing.T) {
	local := synctypes.Collision{LocalDir: "/data/conf.json"}
	assert.Equal(t, "local directory /data/conf.json", local.String())

	store := testutil.NewFakeStore()
	remote := synctypes.Collision{RemoteObjects: []synctypes.RemoteObject{
		store.Seed("a/b", "x", nil),
		store.Seed("a/c", "y", nil),
	}}
	assert.Equal(t, "remote objects [a/b, a/c]", remote.String())
}
