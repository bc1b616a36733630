package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/internal/remotepath"
	"github.com/perigee-io/bucketsync/synctypes"
)

// PlanPull scans the remote side for a pull transaction. It lists every
// object under the full remote path (basePath joined with remotePath,
// backslashes converted unless disabled), marks prefix-only listing
// matches and zero-byte placeholder objects as skipped, filters the
// remainder against the include/exclude patterns, probes each local
// destination under localBaseDir, and classifies the resulting entries
// into a summary.
//
// A local destination that already exists as a directory is recorded as an
// unresolvable collision; the entry is still added, without a local path.
func (p *Planner) PlanPull(
	ctx context.Context,
	basePath string,
	remotePath string,
	localBaseDir string,
	opts synctypes.PullOptionConfig,
) (*synctypes.TransactionSummary, error) {
	filt, err := NewFilter(opts.IncludePattern, opts.ExcludePattern)
	if err != nil {
		return nil, err
	}

	absBase, err := filepath.Abs(localBaseDir)
	if err != nil {
		return nil, bserrors.NewError("pull", err).WithPath(localBaseDir)
	}

	if opts.ConvertToSlash {
		remotePath = strings.ReplaceAll(remotePath, "\\", "/")
	}
	fullRemotePath := remotepath.Full(basePath, remotePath)
	objects, err := p.store.ListObjects(ctx, fullRemotePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects at %q: %w", fullRemotePath, err)
	}

	summary := synctypes.NewSummary(synctypes.Pull)
	for _, obj := range objects {
		skip := false
		switch {
		case obj.Size() == 0 && !opts.ZeroByteObjects:
			// Zero-byte objects act as directory placeholders on some
			// backends and are not treated as files unless asked for.
			p.logger.Debug().Str("object", obj.Name()).Msg("skipping zero-byte object")
			skip = true
		case remotepath.FalsePositive(fullRemotePath, obj.Name()):
			p.logger.Debug().
				Str("object", obj.Name()).
				Str("path", fullRemotePath).
				Msg("skipping prefix-only listing match")
			skip = true
		}

		rel := remotepath.Relative(basePath, obj.Name())
		if !skip {
			skip = filt.Skip(rel)
		}

		params := synctypes.EntryParams{RemoteObject: obj}
		var collision *synctypes.Collision
		if !skip {
			localPath := filepath.Join(absBase, filepath.FromSlash(rel))
			if info, statErr := os.Stat(localPath); statErr == nil && info.IsDir() {
				collision = &synctypes.Collision{LocalDir: localPath}
			} else {
				params.LocalPath = localPath
			}
			if p.hashOverride != nil {
				params.HashOverride = p.hashOverride(obj)
			}
		}

		entry, err := synctypes.NewEntry(synctypes.Pull, params)
		if err != nil {
			return nil, err
		}
		summary.AddEntry(entry, collision, skip)
	}

	return summary, nil
}
