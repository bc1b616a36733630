package bucketsync

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/internal/remotepath"
	"github.com/perigee-io/bucketsync/internal/sync/executor"
	"github.com/perigee-io/bucketsync/synctypes"
)

// Pull downloads the remote objects under remotePath into localBaseDir,
// reproducing the remote layout relative to the remote base, and returns
// the transaction summary with every downloaded entry in SyncedFiles.
//
// remotePath may also be an absolute local path. A strip prefix then peels
// the absolute part off before the remote side is consulted: by default an
// absolute localBaseDir serves as that prefix, or pass one explicitly with
// WithStripPrefix (combining both is an error). Pushing with
// WithPrefix(dir) and pulling into dir therefore round-trips the same
// absolute paths. Include and exclude patterns match against the path
// relative to the remote base, anchored at the start.
//
// Zero-byte objects and prefix-only listing matches are ignored. When the
// listing produced no entries at all a warning is logged and the summary
// is empty. Execution aborts before any transfer when a destination
// already exists as a directory or when differing local files exist
// without WithForce. WithDryRun(true) returns the classified summary
// without transferring anything.
//
// Returns an error if:
//   - The strip prefix options conflict or do not cover an absolute
//     remote path (errors.ErrInvalidInput)
//   - A filter pattern does not compile (errors.ErrInvalidInput)
//   - The transaction would collide (errors.ErrUnresolvableCollision)
//   - The transaction would overwrite without force (errors.ErrTargetExists)
//   - The backend fails
//
// Example:
//
//	summary, err := storage.Pull(ctx, "datasets/2024", "/var/data",
//	    bucketsync.WithIncludePattern(`2024.*\.parquet`),
//	)
func (s *RemoteStorage) Pull(
	ctx context.Context,
	remotePath string,
	localBaseDir string,
	opts ...synctypes.PullOption,
) (*synctypes.TransactionSummary, error) {
	cfg := synctypes.PullOptionConfig{
		ConvertToSlash:    true,
		StripLocalBaseDir: true,
	}
	for _, opt := range opts {
		opt.ApplyPull(&cfg)
	}

	effectiveRemotePath, err := resolvePullPath(remotePath, localBaseDir, cfg)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("path", effectiveRemotePath).
		Str("dir", localBaseDir).
		Msg("pulling from remote storage")

	summary, err := s.planner.PlanPull(ctx, s.basePath, effectiveRemotePath, localBaseDir, cfg)
	if err != nil {
		return nil, err
	}
	if len(summary.AllFilesAnalyzed()) == 0 {
		s.logger.Warn().
			Str("path", remotepath.Full(s.basePath, effectiveRemotePath)).
			Msg("no files found in remote storage under path, not doing anything")
	}
	return s.executor.Execute(ctx, summary, executor.Options{
		Force:       cfg.Force,
		DryRun:      cfg.DryRun,
		Parallelism: cfg.Parallelism,
		Tracker:     s.resolveTracker(cfg.Tracker),
	})
}

// resolvePullPath turns the caller's remote path into a path relative to
// the remote base. A relative path passes through unchanged. An absolute
// path must be covered by the strip prefix, either the one supplied
// explicitly or the absolute local base directory when the default strip
// behavior is active; the remainder after the prefix and its separator is
// the effective relative path.
func resolvePullPath(remotePath, localBaseDir string, cfg synctypes.PullOptionConfig) (string, error) {
	stripPrefix := cfg.StripPrefix
	if cfg.StripLocalBaseDir && filepath.IsAbs(localBaseDir) {
		if stripPrefix != "" {
			return "", bserrors.NewValidationError(
				"an explicit strip prefix cannot be combined with stripping the local base dir")
		}
		stripPrefix = localBaseDir
	}

	if !strings.HasPrefix(remotePath, "/") && !filepath.IsAbs(remotePath) {
		return remotePath, nil
	}
	if stripPrefix == "" {
		return "", bserrors.NewValidationError(
			fmt.Sprintf("pulling the absolute remote path %q requires a strip prefix", remotePath))
	}

	remote := strings.ReplaceAll(remotePath, "\\", "/")
	prefix := strings.TrimRight(strings.ReplaceAll(stripPrefix, "\\", "/"), "/")
	if !strings.HasPrefix(remote, prefix) {
		return "", bserrors.NewValidationError(
			fmt.Sprintf("remote path %q does not start with the strip prefix %q", remote, prefix))
	}
	return strings.TrimPrefix(remote[len(prefix):], "/"), nil
}
