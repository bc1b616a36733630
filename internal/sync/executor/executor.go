package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/progress"
	"github.com/perigee-io/bucketsync/synctypes"
)

// Executor validates a planned transaction and performs its transfers.
type Executor struct {
	store        synctypes.ObjectStore
	logger       zerolog.Logger
	uploadExtra  synctypes.UploadExtraFunc
	hashOverride synctypes.HashOverrideFunc
}

// New creates an executor over the given store. uploadExtra and hashOverride
// may be nil.
func New(
	store synctypes.ObjectStore,
	logger zerolog.Logger,
	uploadExtra synctypes.UploadExtraFunc,
	hashOverride synctypes.HashOverrideFunc,
) *Executor {
	return &Executor{
		store:        store,
		logger:       logger,
		uploadExtra:  uploadExtra,
		hashOverride: hashOverride,
	}
}

// Options control a single Execute call.
type Options struct {
	// Force permits overwriting targets whose content differs
	Force bool

	// DryRun reports what would happen without transferring anything
	DryRun bool

	// Parallelism is the number of concurrent transfers; values below 2
	// execute sequentially
	Parallelism int

	// Tracker receives byte-progress updates; nil disables reporting
	Tracker progress.Tracker
}

// Execute runs the transaction described by summary.
//
// With DryRun set, nothing is transferred; conditions that would abort the
// transaction are logged and the summary is returned unchanged. Otherwise
// the whole transaction aborts before any transfer when the summary holds
// unresolvable collisions (errors.ErrUnresolvableCollision) or when it
// requires force and Force is not set (errors.ErrTargetExists). Each
// transferred file appends its refreshed entry to summary.SyncedFiles.
func (e *Executor) Execute(
	ctx context.Context,
	summary *synctypes.TransactionSummary,
	opts Options,
) (*synctypes.TransactionSummary, error) {
	op := string(summary.Direction)

	if opts.DryRun {
		e.reportDryRun(summary, opts)
		return summary, nil
	}

	if summary.HasUnresolvableCollisions() {
		return nil, bserrors.NewError(op, bserrors.ErrUnresolvableCollision).
			WithMessage(fmt.Sprintf("found name collisions between files and directories, affected names: %s",
				strings.Join(summary.CollisionNames(), ", ")))
	}
	if summary.RequiresForce() && !opts.Force {
		return nil, bserrors.NewError(op, bserrors.ErrTargetExists).
			WithMessage(fmt.Sprintf("%d files already exist on the target with different content, set force to overwrite, affected names: %s",
				len(summary.OnTargetDifferentHash),
				strings.Join(entryNames(summary.OnTargetDifferentHash), ", ")))
	}

	files := summary.FilesToSync()
	if len(files) == 0 {
		e.logger.Warn().Msg("no files to be updated, not doing anything")
		return summary, nil
	}

	totalBytes, err := summary.TotalBytesToSync()
	if err != nil {
		return nil, err
	}

	tracker := opts.Tracker
	if tracker == nil {
		tracker = progress.NullTracker{}
	}

	if opts.Parallelism > 1 {
		err = e.executeParallel(ctx, summary, files, opts, tracker, totalBytes)
	} else {
		err = e.executeSequential(ctx, summary, files, opts, tracker, totalBytes)
	}
	if err != nil {
		tracker.Error(err)
		return nil, err
	}

	tracker.Complete()
	e.logger.Info().
		Int("files", len(summary.SyncedFiles)).
		Str("bytes", progress.FormatBytes(totalBytes)).
		Msg("transaction complete")
	return summary, nil
}

// reportDryRun logs the conditions a real run would hit.
func (e *Executor) reportDryRun(summary *synctypes.TransactionSummary, opts Options) {
	e.logger.Info().
		Str("overview", summary.Overview()).
		Msg("dry run, no files transferred")

	if summary.HasUnresolvableCollisions() {
		e.logger.Warn().
			Strs("names", summary.CollisionNames()).
			Msg("transaction would abort: name collisions between files and directories")
	} else if summary.RequiresForce() && !opts.Force {
		e.logger.Warn().
			Strs("names", entryNames(summary.OnTargetDifferentHash)).
			Msg("transaction would abort: existing target files require force")
	}
	for _, entry := range summary.FilesToSync() {
		e.logger.Debug().Stringer("entry", entry).Msg("would transfer")
	}
}

func (e *Executor) executeSequential(
	ctx context.Context,
	summary *synctypes.TransactionSummary,
	files []*synctypes.SyncEntry,
	opts Options,
	tracker progress.Tracker,
	totalBytes int64,
) error {
	var transferred int64
	for _, entry := range files {
		synced, err := e.syncEntry(ctx, entry, opts.Force)
		if err != nil {
			return err
		}
		transferred += synced.LocalSize
		tracker.Update(transferred, totalBytes)
		summary.SyncedFiles = append(summary.SyncedFiles, synced)
		e.logger.Debug().Stringer("entry", synced).Msg("transferred")
	}
	return nil
}

// executeParallel runs the transfers on a bounded goroutine pool. The
// progress counter and the synced list are guarded by one mutex; reporting
// happens inside the critical section so updates stay monotonic.
func (e *Executor) executeParallel(
	ctx context.Context,
	summary *synctypes.TransactionSummary,
	files []*synctypes.SyncEntry,
	opts Options,
	tracker progress.Tracker,
	totalBytes int64,
) error {
	var mu sync.Mutex
	var transferred int64

	p := pool.New().WithMaxGoroutines(opts.Parallelism).WithContext(ctx).WithCancelOnError()
	for _, entry := range files {
		p.Go(func(ctx context.Context) error {
			synced, err := e.syncEntry(ctx, entry, opts.Force)
			if err != nil {
				return err
			}
			mu.Lock()
			transferred += synced.LocalSize
			summary.SyncedFiles = append(summary.SyncedFiles, synced)
			tracker.Update(transferred, totalBytes)
			mu.Unlock()
			e.logger.Debug().Stringer("entry", synced).Msg("transferred")
			return nil
		})
	}
	return p.Wait()
}

// syncEntry transfers a single entry and returns a fresh entry reflecting
// the post-transfer state. Entries whose hashes already match are returned
// unchanged without a backend call; this re-check exists because planning
// and execution may be separated in time.
func (e *Executor) syncEntry(
	ctx context.Context,
	entry *synctypes.SyncEntry,
	force bool,
) (*synctypes.SyncEntry, error) {
	if entry.ContentMatches() {
		e.logger.Debug().Stringer("entry", entry).Msg("content already equal, skipping transfer")
		return entry, nil
	}
	if entry.ExistsOnTarget() && !force {
		// Defensive re-check against concurrent external changes; the
		// summary-level validation normally catches this.
		return nil, bserrors.NewError(string(entry.Direction), bserrors.ErrTargetExists).
			WithPath(entry.Name()).
			WithMessage("target exists with different content and force is not set")
	}

	switch entry.Direction {
	case synctypes.Push:
		return e.pushEntry(ctx, entry)
	case synctypes.Pull:
		return e.pullEntry(ctx, entry, force)
	default:
		return nil, bserrors.NewValidationError(fmt.Sprintf("unknown sync direction %q", entry.Direction))
	}
}

func (e *Executor) pushEntry(ctx context.Context, entry *synctypes.SyncEntry) (*synctypes.SyncEntry, error) {
	if !entry.ExistsLocally {
		return nil, bserrors.NewError("push", bserrors.ErrFileNotFound).WithPath(entry.LocalPath)
	}

	var extra map[string]string
	if e.uploadExtra != nil {
		extra = e.uploadExtra(entry)
	}
	obj, err := e.store.UploadObject(ctx, entry.LocalPath, entry.RemotePath, extra)
	if err != nil {
		return nil, err
	}

	params := synctypes.EntryParams{LocalPath: entry.LocalPath, RemoteObject: obj}
	if e.hashOverride != nil {
		params.HashOverride = e.hashOverride(obj)
	}
	return synctypes.NewEntry(synctypes.Push, params)
}

func (e *Executor) pullEntry(ctx context.Context, entry *synctypes.SyncEntry, force bool) (*synctypes.SyncEntry, error) {
	if entry.RemoteObject == nil || entry.LocalPath == "" {
		return nil, bserrors.NewValidationError(
			fmt.Sprintf("pull entry %s is missing its remote object or local path", entry.Name()))
	}
	if info, err := os.Stat(entry.LocalPath); err == nil && info.IsDir() {
		return nil, bserrors.NewError("pull", bserrors.ErrTargetExists).
			WithPath(entry.LocalPath).
			WithMessage("destination is an existing directory")
	}
	if err := os.MkdirAll(filepath.Dir(entry.LocalPath), 0o755); err != nil {
		return nil, bserrors.NewError("pull", err).WithPath(entry.LocalPath)
	}

	if err := entry.RemoteObject.Download(ctx, entry.LocalPath, force); err != nil {
		return nil, err
	}
	return synctypes.NewEntry(synctypes.Pull, synctypes.EntryParams{
		LocalPath:    entry.LocalPath,
		RemoteObject: entry.RemoteObject,
	})
}

func entryNames(entries []*synctypes.SyncEntry) []string {
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}
	return names
}
