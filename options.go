package bucketsync

import (
	"github.com/rs/zerolog"

	"github.com/perigee-io/bucketsync/progress"
	"github.com/perigee-io/bucketsync/synctypes"
)

// Facade options, applied once at construction.

// WithLogger sets the logger used by the facade, the sync engine, and the
// driver. The default discards all log output.
func WithLogger(logger zerolog.Logger) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithTracker sets the progress tracker every transfer reports to, unless
// a single operation overrides it with WithProgress. Without one, progress
// goes to the logger, or nowhere when the storage config disables it.
func WithTracker(tracker progress.Tracker) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Tracker = tracker
	}
}

// WithUploadExtra sets a callback producing backend metadata for every
// uploaded entry. Use it to store the local content hash on backends whose
// chunked uploads change the reported one.
func WithUploadExtra(fn synctypes.UploadExtraFunc) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.UploadExtra = fn
	}
}

// WithRemoteHashOverride sets a callback extracting the authoritative
// content hash from a remote object in place of the hash the backend
// reports. The counterpart of WithUploadExtra for the comparison side.
func WithRemoteHashOverride(fn synctypes.HashOverrideFunc) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.HashOverride = fn
	}
}

// Per-operation options. Each option type applies itself to the config of
// every operation kind it is valid for, so a shared option like WithForce
// can be passed to Push and Pull alike.

type forceOption bool

func (o forceOption) ApplyPush(cfg *synctypes.PushOptionConfig) { cfg.Force = bool(o) }
func (o forceOption) ApplyPull(cfg *synctypes.PullOptionConfig) { cfg.Force = bool(o) }

// WithForce lets the transaction overwrite targets that exist with
// differing content instead of aborting. Defaults to false.
func WithForce(force bool) synctypes.SyncOption {
	return forceOption(force)
}

type dryRunOption bool

func (o dryRunOption) ApplyPush(cfg *synctypes.PushOptionConfig) { cfg.DryRun = bool(o) }
func (o dryRunOption) ApplyPull(cfg *synctypes.PullOptionConfig) { cfg.DryRun = bool(o) }

// WithDryRun plans and classifies the transaction but transfers nothing.
// The returned summary shows what a real run would do. Defaults to false.
func WithDryRun(dryRun bool) synctypes.SyncOption {
	return dryRunOption(dryRun)
}

type parallelismOption int

func (o parallelismOption) ApplyPush(cfg *synctypes.PushOptionConfig) { cfg.Parallelism = int(o) }
func (o parallelismOption) ApplyPull(cfg *synctypes.PullOptionConfig) { cfg.Parallelism = int(o) }

// WithParallelism transfers up to n files concurrently. Values below 2
// keep the default sequential execution.
func WithParallelism(n int) synctypes.SyncOption {
	return parallelismOption(n)
}

type progressOption struct {
	tracker progress.Tracker
}

func (o progressOption) ApplyPush(cfg *synctypes.PushOptionConfig) { cfg.Tracker = o.tracker }
func (o progressOption) ApplyPull(cfg *synctypes.PullOptionConfig) { cfg.Tracker = o.tracker }

// WithProgress overrides the progress tracker for this operation only,
// taking precedence over a facade-level WithTracker.
func WithProgress(tracker progress.Tracker) synctypes.SyncOption {
	return progressOption{tracker: tracker}
}

type includeOption string

func (o includeOption) ApplyPush(cfg *synctypes.PushOptionConfig) { cfg.IncludePattern = string(o) }
func (o includeOption) ApplyPull(cfg *synctypes.PullOptionConfig) { cfg.IncludePattern = string(o) }
func (o includeOption) ApplyDelete(cfg *synctypes.DeleteOptionConfig) {
	cfg.IncludePattern = string(o)
}

// WithIncludePattern restricts the operation to paths matching the regular
// expression. The pattern is matched against the path relative to the scan
// root and is anchored at the start: "sample.*txt" matches "sample_2.txt"
// but not "dir/sample.txt". When a path matches both the include and the
// exclude pattern, exclude wins.
func WithIncludePattern(pattern string) synctypes.FilterOption {
	return includeOption(pattern)
}

type excludeOption string

func (o excludeOption) ApplyPush(cfg *synctypes.PushOptionConfig) { cfg.ExcludePattern = string(o) }
func (o excludeOption) ApplyPull(cfg *synctypes.PullOptionConfig) { cfg.ExcludePattern = string(o) }
func (o excludeOption) ApplyDelete(cfg *synctypes.DeleteOptionConfig) {
	cfg.ExcludePattern = string(o)
}

// WithExcludePattern drops paths matching the regular expression from the
// operation. Matching follows the same anchored semantics as
// WithIncludePattern and takes precedence over it.
func WithExcludePattern(pattern string) synctypes.FilterOption {
	return excludeOption(pattern)
}

type prefixOption string

func (o prefixOption) ApplyPush(cfg *synctypes.PushOptionConfig) { cfg.Prefix = string(o) }

// WithPrefix resolves the push path against the given directory and
// derives remote paths from the local layout relative to it. An absolute
// push path must then point below the prefix.
func WithPrefix(prefix string) synctypes.PushOption {
	return prefixOption(prefix)
}

type slashConversionOption bool

func (o slashConversionOption) ApplyPull(cfg *synctypes.PullOptionConfig) {
	cfg.ConvertToSlash = bool(o)
}

// WithSlashConversion controls whether backslashes in the remote path are
// rewritten to forward slashes before listing, so a Windows-style path
// addresses the posix-style remote layout. Disable it only to pull an
// object with a literal backslash in its name. Defaults to true.
func WithSlashConversion(enabled bool) synctypes.PullOption {
	return slashConversionOption(enabled)
}

type stripPrefixOption string

func (o stripPrefixOption) ApplyPull(cfg *synctypes.PullOptionConfig) { cfg.StripPrefix = string(o) }

// WithStripPrefix strips the given prefix from an absolute remote path
// before resolving it against the remote base. Cannot be combined with the
// default stripping of the local base dir; disable that with
// WithStripLocalBaseDir(false) first.
func WithStripPrefix(prefix string) synctypes.PullOption {
	return stripPrefixOption(prefix)
}

type stripLocalBaseDirOption bool

func (o stripLocalBaseDirOption) ApplyPull(cfg *synctypes.PullOptionConfig) {
	cfg.StripLocalBaseDir = bool(o)
}

// WithStripLocalBaseDir controls whether an absolute local base dir doubles
// as the strip prefix for absolute remote paths, which round-trips paths
// pushed with that directory as their prefix. Defaults to true.
func WithStripLocalBaseDir(enabled bool) synctypes.PullOption {
	return stripLocalBaseDirOption(enabled)
}

type zeroByteObjectsOption bool

func (o zeroByteObjectsOption) ApplyPull(cfg *synctypes.PullOptionConfig) {
	cfg.ZeroByteObjects = bool(o)
}

// WithZeroByteObjects pulls zero-byte objects as empty files instead of
// skipping them as directory placeholders. Defaults to false.
func WithZeroByteObjects(enabled bool) synctypes.PullOption {
	return zeroByteObjectsOption(enabled)
}

type existOKOption bool

func (o existOKOption) ApplyBucket(cfg *synctypes.BucketOptionConfig) { cfg.ExistOK = bool(o) }

// WithExistOK controls whether CreateBucket tolerates a bucket that
// already exists. Defaults to true.
func WithExistOK(ok bool) synctypes.BucketOption {
	return existOKOption(ok)
}
