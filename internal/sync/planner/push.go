package planner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/internal/remotepath"
	"github.com/perigee-io/bucketsync/synctypes"
)

// PlanPush scans the local side for a push transaction. localPath may be a
// file, a directory, or a glob pattern; directories are collected
// recursively. A configured prefix anchors relative patterns and is the
// root the filter patterns and remote paths are computed against; an
// absolute localPath combined with a prefix must be a descendant of it.
//
// Finding no candidate files at all fails with errors.ErrFileNotFound
// before any filtering happens. For each candidate the remote target is
// listed: more than one true match there is an unresolvable collision
// (the remote side holds a directory where the local side holds a file).
func (p *Planner) PlanPush(
	ctx context.Context,
	basePath string,
	localPath string,
	opts synctypes.PushOptionConfig,
) (*synctypes.TransactionSummary, error) {
	filt, err := NewFilter(opts.IncludePattern, opts.ExcludePattern)
	if err != nil {
		return nil, err
	}

	prefix := opts.Prefix
	if prefix != "" {
		if prefix, err = filepath.Abs(prefix); err != nil {
			return nil, bserrors.NewError("push", err).WithPath(opts.Prefix)
		}
	}

	pattern, err := resolvePattern(localPath, prefix)
	if err != nil {
		return nil, err
	}

	files, err := collectFiles(pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, bserrors.NewError("push", bserrors.ErrFileNotFound).
			WithMessage(fmt.Sprintf("no files found under path=%s with prefix=%s", localPath, opts.Prefix))
	}

	summary := synctypes.NewSummary(synctypes.Push)
	for _, file := range files {
		relPath := file
		if prefix != "" {
			if relPath, err = filepath.Rel(prefix, file); err != nil {
				return nil, bserrors.NewError("push", err).WithPath(file)
			}
		}
		skip := filt.Skip(relPath)
		remoteTarget := remotepath.Full(basePath, filepath.ToSlash(relPath))

		params := synctypes.EntryParams{LocalPath: file, RemotePath: remoteTarget}
		var collision *synctypes.Collision
		if !skip {
			matches, err := p.trueMatchesAt(ctx, remoteTarget)
			if err != nil {
				return nil, err
			}
			switch {
			case len(matches) > 1:
				collision = &synctypes.Collision{RemoteObjects: matches}
			case len(matches) == 1:
				params.RemoteObject = matches[0]
				if p.hashOverride != nil {
					params.HashOverride = p.hashOverride(matches[0])
				}
			}
		}

		entry, err := synctypes.NewEntry(synctypes.Push, params)
		if err != nil {
			return nil, err
		}
		summary.AddEntry(entry, collision, skip)
	}

	return summary, nil
}

// trueMatchesAt lists the remote objects at remoteTarget and drops
// prefix-only listing matches.
func (p *Planner) trueMatchesAt(ctx context.Context, remoteTarget string) ([]synctypes.RemoteObject, error) {
	listed, err := p.store.ListObjects(ctx, remoteTarget)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects at %q: %w", remoteTarget, err)
	}
	var matches []synctypes.RemoteObject
	for _, obj := range listed {
		if remotepath.FalsePositive(remoteTarget, obj.Name()) {
			p.logger.Debug().
				Str("object", obj.Name()).
				Str("path", remoteTarget).
				Msg("ignoring prefix-only listing match")
			continue
		}
		matches = append(matches, obj)
	}
	return matches, nil
}

// resolvePattern anchors the glob pattern: with a prefix the pattern becomes
// absolute under it, without one it resolves against the working directory.
// An absolute pattern combined with a prefix must point below the prefix.
func resolvePattern(localPath, prefix string) (string, error) {
	pattern := localPath
	if filepath.IsAbs(pattern) && prefix != "" {
		rel, err := filepath.Rel(prefix, pattern)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", bserrors.NewValidationError(
				fmt.Sprintf("path %s is not a child of prefix %s", pattern, prefix))
		}
		pattern = rel
	}
	if prefix != "" {
		pattern = filepath.Join(prefix, pattern)
	}
	return pattern, nil
}

// collectFiles expands the glob pattern and returns every matched file plus
// every file below each matched directory. Directories themselves are never
// candidates.
func collectFiles(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, bserrors.NewValidationError(fmt.Sprintf("invalid glob pattern %q: %v", pattern, err))
	}

	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return nil, bserrors.NewError("push", err).WithPath(match)
		}
		if !info.IsDir() {
			add(match)
			continue
		}
		walkErr := filepath.WalkDir(match, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				add(path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, bserrors.NewError("push", walkErr).WithPath(match)
		}
	}
	return files, nil
}
