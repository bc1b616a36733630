package bucketsync

import (
	"context"

	"github.com/perigee-io/bucketsync/internal/sync/executor"
	"github.com/perigee-io/bucketsync/synctypes"
)

// Push uploads local files to remote storage and returns the transaction
// summary with every uploaded entry in SyncedFiles.
//
// localPath may name a single file, a directory (collected recursively),
// or a glob pattern in doublestar syntax. With WithPrefix the path is
// resolved against that directory and remote paths mirror the local
// layout relative to it, so pushing an absolute path under the prefix and
// later pulling it into the same directory round-trips; include and
// exclude patterns match against the same relative paths, anchored at
// the start. Without a prefix the path is taken as is, leading
// separators stripped.
//
// Execution aborts before any transfer when planning found a name
// collision or when differing targets exist without WithForce.
// WithDryRun(true) returns the classified summary without transferring
// anything.
//
// Returns an error if:
//   - No candidate files match localPath at all (errors.ErrFileNotFound)
//   - A filter pattern does not compile (errors.ErrInvalidInput)
//   - The transaction would collide (errors.ErrUnresolvableCollision)
//   - The transaction would overwrite without force (errors.ErrTargetExists)
//   - The backend fails
//
// Example:
//
//	summary, err := storage.Push(ctx, "artifacts",
//	    bucketsync.WithPrefix("artifacts"),
//	    bucketsync.WithExcludePattern(`.*\.tmp`),
//	)
func (s *RemoteStorage) Push(
	ctx context.Context,
	localPath string,
	opts ...synctypes.PushOption,
) (*synctypes.TransactionSummary, error) {
	cfg := synctypes.PushOptionConfig{}
	for _, opt := range opts {
		opt.ApplyPush(&cfg)
	}

	s.logger.Info().
		Str("path", localPath).
		Str("prefix", cfg.Prefix).
		Msg("pushing to remote storage")

	summary, err := s.planner.PlanPush(ctx, s.basePath, localPath, cfg)
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, summary, executor.Options{
		Force:       cfg.Force,
		DryRun:      cfg.DryRun,
		Parallelism: cfg.Parallelism,
		Tracker:     s.resolveTracker(cfg.Tracker),
	})
}
