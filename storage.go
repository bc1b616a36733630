package bucketsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	driverminio "github.com/perigee-io/bucketsync/driver/minio"
	drivers3 "github.com/perigee-io/bucketsync/driver/s3"
	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/internal/remotepath"
	"github.com/perigee-io/bucketsync/internal/sync/executor"
	"github.com/perigee-io/bucketsync/internal/sync/planner"
	"github.com/perigee-io/bucketsync/progress"
	"github.com/perigee-io/bucketsync/synctypes"
)

// RemoteStorage is the facade over one bucket of a storage backend. Every
// remote operation is scoped under the configured base path.
//
// A RemoteStorage is safe for concurrent use as long as SetRemoteBasePath
// is not called concurrently with operations.
type RemoteStorage struct {
	store    synctypes.ObjectStore
	cfg      synctypes.StorageConfig
	basePath string
	logger   zerolog.Logger
	tracker  progress.Tracker

	planner  *planner.Planner
	executor *executor.Executor
}

// New connects to the backend selected by cfg.Provider and returns a
// facade scoped to cfg.Bucket under cfg.BasePath.
//
// Returns an error if:
//   - The configuration is missing its provider or bucket
//   - The provider is not synctypes.ProviderMinIO or synctypes.ProviderS3
//   - The driver cannot be constructed
//
// Example:
//
//	storage, err := bucketsync.New(cfg, bucketsync.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	summary, err := storage.Push(ctx, "data/**/*.json", bucketsync.WithPrefix("data"))
func New(cfg synctypes.StorageConfig, opts ...synctypes.Option) (*RemoteStorage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientCfg := newClientConfig(opts)
	store, err := openStore(cfg, clientCfg.Logger)
	if err != nil {
		return nil, err
	}
	return newStorage(store, cfg, clientCfg), nil
}

// NewWithStore wraps an existing ObjectStore. Useful for tests and for
// backends without a bundled driver.
func NewWithStore(
	store synctypes.ObjectStore,
	cfg synctypes.StorageConfig,
	opts ...synctypes.Option,
) *RemoteStorage {
	return newStorage(store, cfg, newClientConfig(opts))
}

func newClientConfig(opts []synctypes.Option) synctypes.ClientConfig {
	cfg := synctypes.ClientConfig{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func openStore(cfg synctypes.StorageConfig, logger zerolog.Logger) (synctypes.ObjectStore, error) {
	switch cfg.Provider {
	case synctypes.ProviderMinIO:
		return driverminio.New(cfg, logger)
	case synctypes.ProviderS3:
		return drivers3.New(cfg, logger)
	default:
		return nil, bserrors.NewValidationError(fmt.Sprintf("unsupported storage provider %q", cfg.Provider))
	}
}

func newStorage(
	store synctypes.ObjectStore,
	cfg synctypes.StorageConfig,
	clientCfg synctypes.ClientConfig,
) *RemoteStorage {
	return &RemoteStorage{
		store:    store,
		cfg:      cfg,
		basePath: normalizeBasePath(cfg.BasePath),
		logger:   clientCfg.Logger,
		tracker:  clientCfg.Tracker,
		planner:  planner.New(store, clientCfg.Logger, clientCfg.HashOverride),
		executor: executor.New(store, clientCfg.Logger, clientCfg.UploadExtra, clientCfg.HashOverride),
	}
}

// RemoteBasePath returns the base path remote operations are scoped under.
// An empty string means the bucket root.
func (s *RemoteStorage) RemoteBasePath() string {
	return s.basePath
}

// SetRemoteBasePath rescopes the facade to the given base path. The path
// is stored with outer whitespace and leading separators stripped; it
// affects subsequent operations only.
func (s *RemoteStorage) SetRemoteBasePath(path string) {
	s.basePath = normalizeBasePath(path)
}

// ListObjects returns the raw backend listing under remotePath joined to
// the base path. No prefix-match filtering is applied; this is the
// introspection primitive the sync operations build on.
func (s *RemoteStorage) ListObjects(ctx context.Context, remotePath string) ([]synctypes.RemoteObject, error) {
	return s.store.ListObjects(ctx, remotepath.Full(s.basePath, remotePath))
}

// CreateBucket creates the configured bucket.
//
// By default an already existing bucket is tolerated and logged instead of
// reported, as is a pre-existing bucket whose legacy name fails local
// validation; pass WithExistOK(false) to surface both. Other failures are
// always returned.
func (s *RemoteStorage) CreateBucket(ctx context.Context, opts ...synctypes.BucketOption) error {
	cfg := synctypes.BucketOptionConfig{
		ExistOK: true,
	}
	for _, opt := range opts {
		opt.ApplyBucket(&cfg)
	}

	err := s.store.CreateBucket(ctx, s.cfg.Bucket)
	if err == nil {
		s.logger.Info().Str("bucket", s.cfg.Bucket).Msg("bucket created")
		return nil
	}
	if cfg.ExistOK && (errors.Is(err, bserrors.ErrBucketAlreadyExists) || errors.Is(err, bserrors.ErrInvalidBucketName)) {
		s.logger.Info().
			Str("bucket", s.cfg.Bucket).
			AnErr("reason", err).
			Msg("bucket not created, tolerated")
		return nil
	}
	return err
}

// Delete removes every object under remotePath joined to the base path,
// except prefix-only listing matches and objects excluded by the filter
// patterns, and returns the deleted objects.
//
// An empty initial listing logs a warning and deletes nothing. A backend
// failure mid-way aborts; objects deleted up to that point stay deleted.
func (s *RemoteStorage) Delete(
	ctx context.Context,
	remotePath string,
	opts ...synctypes.DeleteOption,
) ([]synctypes.RemoteObject, error) {
	cfg := synctypes.DeleteOptionConfig{}
	for _, opt := range opts {
		opt.ApplyDelete(&cfg)
	}

	filt, err := planner.NewFilter(cfg.IncludePattern, cfg.ExcludePattern)
	if err != nil {
		return nil, err
	}

	fullRemotePath := remotepath.Full(s.basePath, remotePath)
	objects, err := s.store.ListObjects(ctx, fullRemotePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects at %q: %w", fullRemotePath, err)
	}
	if len(objects) == 0 {
		s.logger.Warn().
			Str("path", fullRemotePath).
			Msg("no such remote file or directory, not deleting anything")
		return nil, nil
	}

	var deleted []synctypes.RemoteObject
	for _, obj := range objects {
		if remotepath.FalsePositive(fullRemotePath, obj.Name()) {
			s.logger.Debug().
				Str("object", obj.Name()).
				Str("path", fullRemotePath).
				Msg("ignoring prefix-only listing match")
			continue
		}
		if filt.Skip(remotepath.Relative(s.basePath, obj.Name())) {
			continue
		}
		if err := s.store.DeleteObject(ctx, obj); err != nil {
			return nil, err
		}
		s.logger.Debug().Str("object", obj.Name()).Msg("object deleted")
		deleted = append(deleted, obj)
	}
	s.logger.Info().
		Str("path", fullRemotePath).
		Int("objects", len(deleted)).
		Msg("delete complete")
	return deleted, nil
}

// resolveTracker picks the tracker for one transaction: the per-operation
// override first, then the facade-level tracker, then a default derived
// from the configuration.
func (s *RemoteStorage) resolveTracker(override progress.Tracker) progress.Tracker {
	if override != nil {
		return override
	}
	if s.tracker != nil {
		return s.tracker
	}
	if s.cfg.DisableProgress {
		return progress.NullTracker{}
	}
	return progress.NewLogTracker(s.logger, zerolog.InfoLevel)
}

// normalizeBasePath strips outer whitespace and leading separators so the
// stored base path is always bucket-relative.
func normalizeBasePath(path string) string {
	return strings.TrimLeft(strings.TrimSpace(path), "/")
}
