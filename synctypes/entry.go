package synctypes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/internal/checksum"
)

// SyncEntry captures the sync status of a single logical file: whether it
// exists locally, whether it exists remotely, and whether the contents match.
// Entries are immutable snapshots taken at planning (or execution) time; the
// engine never mutates an entry after construction.
type SyncEntry struct {
	// Direction is the transfer direction this entry was planned for
	Direction Direction

	// LocalPath is the absolute local file path. It is empty when the
	// destination of a pull could not be resolved (an existing directory
	// occupies it); such entries always carry a collision in the summary.
	LocalPath string

	// RemoteObject is the matched backend object, nil when the file does not
	// exist remotely
	RemoteObject RemoteObject

	// RemotePath is the full backend path, posix style, no leading separator
	RemotePath string

	// ExistsLocally reports whether LocalPath points at an existing file
	ExistsLocally bool

	// LocalSize is the local file size in bytes, 0 when not ExistsLocally
	LocalSize int64

	// LocalHash is the hex MD5 of the local file, empty when not ExistsLocally
	LocalHash string

	// RemoteHash is the content hash of the remote object, possibly
	// substituted by a HashOverrideFunc; empty when the object is unhashed
	// or does not exist
	RemoteHash string
}

// EntryParams carries the inputs for NewEntry. At least one of LocalPath and
// RemoteObject must be set; RemotePath is required when RemoteObject is nil.
type EntryParams struct {
	// LocalPath is the local file path, made absolute during construction.
	// Leave empty for entries whose local destination is unresolvable.
	LocalPath string

	// RemoteObject is the backend object, nil when the file is local-only
	RemoteObject RemoteObject

	// RemotePath is the full backend path. Optional when RemoteObject is
	// given; if both are set they must agree.
	RemotePath string

	// HashOverride replaces the hash reported by RemoteObject. Requires
	// RemoteObject to be set.
	HashOverride string
}

// NewEntry builds a SyncEntry and resolves its local and remote state.
//
// The local file, when a path is given, is stat'ed and hashed eagerly so the
// entry is a consistent snapshot. Validation is strict:
//
//   - the direction must be Push or Pull
//   - at least one of LocalPath and RemoteObject must be provided
//   - an explicit RemotePath must agree with RemoteObject.Name() when both
//     are given (leading separators ignored)
//   - LocalPath must not point at an existing directory
//   - HashOverride requires RemoteObject
//
// Violations fail with errors.ErrInvalidInput, except the directory case
// which fails with errors.ErrTargetExists.
func NewEntry(direction Direction, params EntryParams) (*SyncEntry, error) {
	if !direction.Valid() {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown sync direction %q", direction))
	}

	entry := &SyncEntry{Direction: direction, RemoteObject: params.RemoteObject}

	remotePath := strings.TrimLeft(params.RemotePath, "/")
	var objName string
	if params.RemoteObject != nil {
		objName = strings.TrimLeft(params.RemoteObject.Name(), "/")
	}

	if params.LocalPath == "" && params.RemoteObject == nil {
		return nil, errors.NewValidationError("either a local path or a remote object is required")
	}

	if params.LocalPath != "" {
		abs, err := filepath.Abs(params.LocalPath)
		if err != nil {
			return nil, errors.NewError("sync", err).WithPath(params.LocalPath)
		}
		info, err := os.Stat(abs)
		if err == nil && info.IsDir() {
			return nil, errors.NewError("sync", errors.ErrTargetExists).
				WithPath(abs).
				WithMessage("local path must point to a file but points to a directory")
		}
		entry.LocalPath = abs
		entry.ExistsLocally = err == nil && info.Mode().IsRegular()
		if entry.ExistsLocally {
			entry.LocalSize = info.Size()
			hash, err := checksum.MD5File(abs)
			if err != nil {
				return nil, errors.NewError("sync", err).WithPath(abs)
			}
			entry.LocalHash = hash
		}
	}

	switch {
	case remotePath != "" && params.RemoteObject != nil && remotePath != objName:
		return nil, errors.NewValidationError(fmt.Sprintf(
			"given remote path %q disagrees with remote object path %q", remotePath, objName))
	case remotePath != "":
		entry.RemotePath = remotePath
	case params.RemoteObject != nil:
		entry.RemotePath = objName
	default:
		return nil, errors.NewValidationError("a remote path is required when no remote object is given")
	}

	if params.HashOverride != "" {
		if params.RemoteObject == nil {
			return nil, errors.NewValidationError("a hash override requires a remote object")
		}
		entry.RemoteHash = params.HashOverride
	} else if params.RemoteObject != nil {
		entry.RemoteHash = params.RemoteObject.Hash()
	}

	return entry, nil
}

// Name returns the full remote path identifying this entry. It is the key
// under which the entry appears in transaction summaries.
func (e *SyncEntry) Name() string {
	return e.RemotePath
}

// ExistsOnRemote reports whether a matching remote object was found.
func (e *SyncEntry) ExistsOnRemote() bool {
	return e.RemoteObject != nil
}

// ExistsOnTarget reports whether the file already exists on the destination
// side of the transfer: remotely for a push, locally for a pull. Since the
// source side exists by construction, this holds exactly when the file is
// present on both sides.
func (e *SyncEntry) ExistsOnTarget() bool {
	return e.ExistsOnRemote() && e.ExistsLocally
}

// ContentMatches reports whether the local and remote content hashes are both
// known and equal. A true result means the transfer can be skipped.
func (e *SyncEntry) ContentMatches() bool {
	return e.ExistsOnTarget() &&
		e.LocalHash != "" && e.RemoteHash != "" &&
		e.LocalHash == e.RemoteHash
}

// BytesToTransfer returns the number of bytes moving over the wire for this
// entry: the local size for a push, the remote object size for a pull.
//
// Errors:
//   - errors.ErrFileNotFound: push of a file that does not exist locally
//   - errors.ErrObjectNotFound: pull of an entry with no remote object
func (e *SyncEntry) BytesToTransfer() (int64, error) {
	switch e.Direction {
	case Push:
		if !e.ExistsLocally {
			return 0, errors.NewError("size", errors.ErrFileNotFound).WithPath(e.LocalPath)
		}
		return e.LocalSize, nil
	case Pull:
		if e.RemoteObject == nil {
			return 0, errors.NewError("size", errors.ErrObjectNotFound).WithPath(e.RemotePath)
		}
		return e.RemoteObject.Size(), nil
	default:
		return 0, errors.NewValidationError(fmt.Sprintf("unknown sync direction %q", e.Direction))
	}
}

// String renders the entry for logs.
func (e *SyncEntry) String() string {
	return fmt.Sprintf("%s %s", e.Direction, e.RemotePath)
}
