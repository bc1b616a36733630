package synctypes

import (
	"fmt"
)

// CollisionRecord pairs an analyzed entry with the collision that makes it
// untransferable.
type CollisionRecord struct {
	// Entry is the entry whose logical path collided
	Entry *SyncEntry

	// Collision describes what the path collided with
	Collision Collision
}

// TransactionSummary is the result of analyzing a push or pull transaction.
// Every candidate file ends up in exactly one classification bucket; buckets
// preserve the order in which files were analyzed.
//
// A summary is first produced by the planner, then handed to the executor,
// which appends to SyncedFiles as transfers complete. AddEntry is not safe
// for concurrent use; planning runs on a single goroutine.
type TransactionSummary struct {
	// Direction is the transfer direction the summary was planned for
	Direction Direction

	// Skipped holds entries excluded by include/exclude patterns
	Skipped []*SyncEntry

	// Matched holds every entry that passed the filters
	Matched []*SyncEntry

	// NotOnTarget holds matched entries that do not exist on the destination
	NotOnTarget []*SyncEntry

	// OnTargetEqualHash holds matched entries already up to date
	OnTargetEqualHash []*SyncEntry

	// OnTargetDifferentHash holds matched entries that exist on the
	// destination with different content; syncing them requires force
	OnTargetDifferentHash []*SyncEntry

	// UnresolvableCollisions holds matched entries whose logical path
	// collides with a directory on the other side
	UnresolvableCollisions []CollisionRecord

	// SyncedFiles holds the entries actually transferred, in completion
	// order, rebuilt from post-transfer state
	SyncedFiles []*SyncEntry
}

// NewSummary creates an empty summary for the given direction.
func NewSummary(direction Direction) *TransactionSummary {
	return &TransactionSummary{Direction: direction}
}

// AddEntry classifies one analyzed entry into the summary. Entries flagged
// skip only land in Skipped; everything else lands in Matched plus exactly
// one of the status buckets. A non-nil collidesWith takes precedence over
// the target-state classification.
func (s *TransactionSummary) AddEntry(entry *SyncEntry, collidesWith *Collision, skip bool) {
	if skip {
		s.Skipped = append(s.Skipped, entry)
		return
	}
	s.Matched = append(s.Matched, entry)

	switch {
	case collidesWith != nil:
		s.UnresolvableCollisions = append(s.UnresolvableCollisions, CollisionRecord{
			Entry:     entry,
			Collision: *collidesWith,
		})
	case entry.ExistsOnTarget():
		if entry.ContentMatches() {
			s.OnTargetEqualHash = append(s.OnTargetEqualHash, entry)
		} else {
			s.OnTargetDifferentHash = append(s.OnTargetDifferentHash, entry)
		}
	default:
		s.NotOnTarget = append(s.NotOnTarget, entry)
	}
}

// FilesToSync returns the entries a transaction will transfer: files missing
// from the destination followed by files whose content differs, each in
// analysis order.
func (s *TransactionSummary) FilesToSync() []*SyncEntry {
	files := make([]*SyncEntry, 0, len(s.NotOnTarget)+len(s.OnTargetDifferentHash))
	files = append(files, s.NotOnTarget...)
	files = append(files, s.OnTargetDifferentHash...)
	return files
}

// AllFilesAnalyzed returns every entry the planner looked at, skipped or
// matched.
func (s *TransactionSummary) AllFilesAnalyzed() []*SyncEntry {
	all := make([]*SyncEntry, 0, len(s.Skipped)+len(s.Matched))
	all = append(all, s.Skipped...)
	all = append(all, s.Matched...)
	return all
}

// RequiresForce reports whether executing the transaction would overwrite
// existing destination files, which only force permits.
func (s *TransactionSummary) RequiresForce() bool {
	return len(s.OnTargetDifferentHash) > 0
}

// HasUnresolvableCollisions reports whether any analyzed path collides with
// a directory on the other side. Such transactions abort regardless of force.
func (s *TransactionSummary) HasUnresolvableCollisions() bool {
	return len(s.UnresolvableCollisions) > 0
}

// CollisionNames returns the names of all colliding entries in analysis
// order, for error messages and logs.
func (s *TransactionSummary) CollisionNames() []string {
	names := make([]string, len(s.UnresolvableCollisions))
	for i, rec := range s.UnresolvableCollisions {
		names[i] = rec.Entry.Name()
	}
	return names
}

// TotalBytesToSync returns the total number of bytes the transaction will
// transfer, summed over FilesToSync.
func (s *TransactionSummary) TotalBytesToSync() (int64, error) {
	var total int64
	for _, entry := range s.FilesToSync() {
		n, err := entry.BytesToTransfer()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// Overview renders a one-line account of the summary for logs.
func (s *TransactionSummary) Overview() string {
	return fmt.Sprintf("%s: %d to sync (%d new, %d modified), %d up to date, %d skipped, %d collisions",
		s.Direction,
		len(s.NotOnTarget)+len(s.OnTargetDifferentHash),
		len(s.NotOnTarget),
		len(s.OnTargetDifferentHash),
		len(s.OnTargetEqualHash),
		len(s.Skipped),
		len(s.UnresolvableCollisions))
}
