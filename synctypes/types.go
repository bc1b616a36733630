// Package synctypes provides shared type definitions for the bucketsync module:
// the backend capability contract, the connection configuration, and the
// sync-status model (SyncEntry, TransactionSummary) returned to callers for
// introspection before and after push/pull transactions.
package synctypes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/perigee-io/bucketsync/progress"
)

// Direction identifies which side of a transaction is the source.
type Direction string

// Transfer directions
const (
	// Push transfers from the local filesystem to remote storage
	Push Direction = "push"

	// Pull transfers from remote storage to the local filesystem
	Pull Direction = "pull"
)

// Valid reports whether d is one of the two defined directions.
func (d Direction) Valid() bool {
	return d == Push || d == Pull
}

// RemoteObject is the capability contract over a backend-provided object.
// It is the minimal surface the sync engine needs: identity, size, a content
// hash comparable to a local MD5 digest, and a download operation.
//
// Implementations are provided by the driver packages; the engine never
// depends on a concrete backend type.
type RemoteObject interface {
	// Name returns the full backend path of the object, posix style.
	Name() string

	// Size returns the object size in bytes.
	Size() int64

	// Hash returns the content digest of the object. For the shipped drivers
	// this is the MD5-based ETag without surrounding quotes; it is opaque to
	// the engine beyond equality comparison.
	Hash() string

	// Metadata returns the user metadata stored with the object, keys
	// lowercased and stripped of backend prefixes. May be empty for
	// backends whose listings omit metadata.
	Metadata() map[string]string

	// Provider identifies the backend that produced this object.
	Provider() string

	// Download writes the object to destPath. When overwrite is false and
	// destPath already exists, it fails with errors.ErrTargetExists.
	Download(ctx context.Context, destPath string, overwrite bool) error
}

// ObjectStore is the backend capability surface consumed by the sync engine.
// One adapter per storage provider implements it; all adapters translate
// backend failures into the sentinel errors of the errors package where a
// sentinel applies and propagate everything else unmodified (no retries).
type ObjectStore interface {
	// ListObjects returns every object whose name starts with path. Due to
	// prefix-matching semantics of real backends the result may include
	// objects that merely share the string prefix; callers filter those.
	ListObjects(ctx context.Context, path string) ([]RemoteObject, error)

	// GetObject returns the object stored at exactly path.
	// Fails with errors.ErrObjectNotFound if it does not exist.
	GetObject(ctx context.Context, path string) (RemoteObject, error)

	// UploadObject uploads the local file to remotePath and returns the
	// resulting object. extra carries backend metadata (may be nil).
	UploadObject(ctx context.Context, localPath, remotePath string, extra map[string]string) (RemoteObject, error)

	// DeleteObject removes the given object.
	DeleteObject(ctx context.Context, obj RemoteObject) error

	// CreateBucket creates the named bucket. Fails with
	// errors.ErrBucketAlreadyExists or errors.ErrInvalidBucketName where the
	// backend reports those conditions distinguishably.
	CreateBucket(ctx context.Context, name string) error
}

// Secret holds a credential that must never appear in logs, formatted output,
// or serialized form. All rendering paths produce a redacted placeholder; use
// Reveal to obtain the actual value when constructing a backend client.
type Secret string

// redacted is the placeholder every rendering of a non-empty Secret produces.
const redacted = "****"

// Reveal returns the underlying credential value.
func (s Secret) Reveal() string { return string(s) }

// String implements fmt.Stringer with a redacted placeholder.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// GoString implements fmt.GoStringer so %#v is redacted as well.
func (s Secret) GoString() string {
	return fmt.Sprintf("synctypes.Secret(%q)", s.String())
}

// MarshalJSON serializes the redacted placeholder, never the value.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a plain string credential.
func (s *Secret) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Secret(v)
	return nil
}

// Providers with a shipped driver.
const (
	// ProviderMinIO selects the MinIO driver (any S3-compatible endpoint)
	ProviderMinIO = "minio"

	// ProviderS3 selects the AWS SDK driver
	ProviderS3 = "s3"
)

// StorageConfig contains everything needed to establish a connection to a
// bucket within remote storage, plus the base path scoping all operations.
// It is read-only for the lifetime of a RemoteStorage instance; only the base
// path can be rebased afterwards through the facade's explicit setter.
//
// The boolean fields are phrased so the zero value matches the defaults:
// TLS on, progress reporting on.
type StorageConfig struct {
	// Provider selects the driver (ProviderMinIO or ProviderS3)
	Provider string `json:"provider" mapstructure:"provider"`

	// Key is the access key / account identifier
	Key string `json:"key" mapstructure:"key"`

	// Secret is the access secret; redacted in all output
	Secret Secret `json:"secret" mapstructure:"secret"`

	// Bucket is the bucket (container) all operations run against
	Bucket string `json:"bucket" mapstructure:"bucket"`

	// Region is the backend region, where applicable
	Region string `json:"region,omitempty" mapstructure:"region"`

	// Host is a custom endpoint host for S3-compatible services
	Host string `json:"host,omitempty" mapstructure:"host"`

	// Port is the custom endpoint port (0 = provider default)
	Port int `json:"port,omitempty" mapstructure:"port"`

	// BasePath is the prefix under which all remote operations are scoped;
	// empty means bucket root. Leading separators are stripped on use.
	BasePath string `json:"base_path,omitempty" mapstructure:"base_path"`

	// DisableSSL turns off TLS for the connection. Only for local testing
	// or endpoints without TLS support.
	DisableSSL bool `json:"disable_ssl,omitempty" mapstructure:"disable_ssl"`

	// DisableProgress suppresses byte-progress reporting during transfers;
	// progress is then emitted through the configured logger instead.
	DisableProgress bool `json:"disable_progress,omitempty" mapstructure:"disable_progress"`
}

// Endpoint returns "host" or "host:port" for custom-endpoint providers, or
// the empty string when no custom host is configured.
func (c StorageConfig) Endpoint() string {
	if c.Host == "" {
		return ""
	}
	if c.Port == 0 {
		return c.Host
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks that the configuration identifies a provider and a bucket.
func (c StorageConfig) Validate() error {
	if strings.TrimSpace(c.Provider) == "" {
		return fmt.Errorf("storage config: provider must not be empty")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("storage config: bucket must not be empty")
	}
	return nil
}

// Collision records what a requested logical path collided with: either
// multiple remote objects sharing the path as a prefix (a remote directory
// where the local side has a file) or an existing local directory occupying
// a pull destination.
type Collision struct {
	// RemoteObjects are the true prefix matches when more than one remote
	// object answered a single-file path (push side)
	RemoteObjects []RemoteObject

	// LocalDir is the existing local directory at the destination (pull side)
	LocalDir string
}

// String renders the colliding side for error messages and logs.
func (c Collision) String() string {
	if c.LocalDir != "" {
		return fmt.Sprintf("local directory %s", c.LocalDir)
	}
	names := make([]string, len(c.RemoteObjects))
	for i, obj := range c.RemoteObjects {
		names[i] = obj.Name()
	}
	return fmt.Sprintf("remote objects [%s]", strings.Join(names, ", "))
}

// UploadExtraFunc produces backend metadata to attach to an upload, given the
// entry about to be pushed. Useful for storing the local content hash on
// backends whose chunked uploads change the stored hash.
type UploadExtraFunc func(entry *SyncEntry) map[string]string

// HashOverrideFunc extracts the authoritative content hash from a remote
// object, overriding the hash the backend reports. Needed for backends whose
// chunked uploads mutate the stored digest.
type HashOverrideFunc func(obj RemoteObject) string

// Configuration types for functional options

// ClientConfig holds configuration for the RemoteStorage facade.
type ClientConfig struct {
	Logger       zerolog.Logger
	Tracker      progress.Tracker
	UploadExtra  UploadExtraFunc
	HashOverride HashOverrideFunc
}

// PushOptionConfig holds configuration for push operations via functional options.
type PushOptionConfig struct {
	Prefix         string
	Force          bool
	DryRun         bool
	IncludePattern string
	ExcludePattern string
	Parallelism    int
	Tracker        progress.Tracker
}

// PullOptionConfig holds configuration for pull operations via functional options.
type PullOptionConfig struct {
	Force             bool
	DryRun            bool
	IncludePattern    string
	ExcludePattern    string
	ConvertToSlash    bool
	StripPrefix       string
	StripLocalBaseDir bool
	ZeroByteObjects   bool
	Parallelism       int
	Tracker           progress.Tracker
}

// DeleteOptionConfig holds configuration for delete operations via functional options.
type DeleteOptionConfig struct {
	IncludePattern string
	ExcludePattern string
}

// BucketOptionConfig holds configuration for bucket creation via functional options.
type BucketOptionConfig struct {
	ExistOK bool
}

// Option is a functional option for configuring the RemoteStorage facade.
type Option func(*ClientConfig)

// PushOption configures a single push operation.
type PushOption interface {
	ApplyPush(*PushOptionConfig)
}

// PullOption configures a single pull operation.
type PullOption interface {
	ApplyPull(*PullOptionConfig)
}

// DeleteOption configures a single delete operation.
type DeleteOption interface {
	ApplyDelete(*DeleteOptionConfig)
}

// BucketOption configures bucket creation.
type BucketOption interface {
	ApplyBucket(*BucketOptionConfig)
}

// SyncOption configures both push and pull operations.
type SyncOption interface {
	PushOption
	PullOption
}

// FilterOption configures every operation that accepts include and
// exclude patterns.
type FilterOption interface {
	PushOption
	PullOption
	DeleteOption
}
