package testutil

import "sync"

// RecordingTracker implements progress.Tracker and records every call.
// It is safe for concurrent use so parallel transfers can report into it.
type RecordingTracker struct {
	mu        sync.Mutex
	updates   []ProgressUpdate
	completed bool
	err       error
}

// ProgressUpdate is a single recorded Update call.
type ProgressUpdate struct {
	Transferred int64
	Total       int64
}

// Update records a progress update.
func (r *RecordingTracker) Update(bytesTransferred, totalBytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, ProgressUpdate{Transferred: bytesTransferred, Total: totalBytes})
}

// Complete marks the transaction as finished.
func (r *RecordingTracker) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = true
}

// Error records the failure that ended the transaction.
func (r *RecordingTracker) Error(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Updates returns a copy of the recorded updates.
func (r *RecordingTracker) Updates() []ProgressUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProgressUpdate(nil), r.updates...)
}

// Completed reports whether Complete was called.
func (r *RecordingTracker) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Err returns the error passed to Error, if any.
func (r *RecordingTracker) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
