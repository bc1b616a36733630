// Package progress provides byte-progress tracking for transfers.
//
// The Tracker interface is the reporting seam between the sync engine and
// whatever a caller renders: implementations can drive a TUI, a callback, or
// plain log output. All shipped implementations are safe for concurrent use.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Tracker defines the interface for tracking transfer progress.
// Implementations can provide real-time progress updates during uploads and downloads.
type Tracker interface {
	// Update is called with the accumulated transferred bytes and the total
	// expected bytes. Transferred values are monotonically non-decreasing.
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer completes successfully
	Complete()

	// Error is called when the transfer fails
	Error(err error)
}

// Update is a snapshot of transfer progress delivered to a Callback.
type Update struct {
	BytesTransferred int64
	BytesTotal       int64
	Done             bool
	Err              error
}

// Callback is a function that receives progress updates.
type Callback func(update Update)

// CallbackTracker implements Tracker by invoking a callback for every event.
type CallbackTracker struct {
	callback Callback

	mu          sync.Mutex
	transferred int64
	total       int64
}

// NewCallbackTracker creates a new CallbackTracker.
func NewCallbackTracker(callback Callback) *CallbackTracker {
	return &CallbackTracker{callback: callback}
}

// Update implements Tracker.
func (t *CallbackTracker) Update(bytesTransferred, totalBytes int64) {
	t.mu.Lock()
	// Never report backwards progress, even with racing updaters.
	if bytesTransferred > t.transferred {
		t.transferred = bytesTransferred
	}
	if totalBytes > 0 {
		t.total = totalBytes
	}
	update := Update{BytesTransferred: t.transferred, BytesTotal: t.total}
	callback := t.callback
	t.mu.Unlock()

	// Call callback outside lock to prevent deadlock.
	if callback != nil {
		callback(update)
	}
}

// Complete implements Tracker.
func (t *CallbackTracker) Complete() {
	t.mu.Lock()
	update := Update{BytesTransferred: t.transferred, BytesTotal: t.total, Done: true}
	callback := t.callback
	t.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// Error implements Tracker.
func (t *CallbackTracker) Error(err error) {
	t.mu.Lock()
	update := Update{BytesTransferred: t.transferred, BytesTotal: t.total, Err: err}
	callback := t.callback
	t.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// LogTracker implements Tracker by writing progress through a zerolog logger.
// It is the non-interactive fallback used when progress display is disabled.
type LogTracker struct {
	logger zerolog.Logger
	level  zerolog.Level
}

// NewLogTracker creates a Tracker that logs progress at the given level.
func NewLogTracker(logger zerolog.Logger, level zerolog.Level) *LogTracker {
	return &LogTracker{logger: logger, level: level}
}

// Update implements Tracker.
func (t *LogTracker) Update(bytesTransferred, totalBytes int64) {
	t.logger.WithLevel(t.level).
		Str("transferred", FormatBytes(bytesTransferred)).
		Str("total", FormatBytes(totalBytes)).
		Msg("transfer progress")
}

// Complete implements Tracker.
func (t *LogTracker) Complete() {
	t.logger.WithLevel(t.level).Msg("transfer complete")
}

// Error implements Tracker.
func (t *LogTracker) Error(err error) {
	t.logger.Error().Err(err).Msg("transfer failed")
}

// NullTracker is a Tracker that discards all events.
type NullTracker struct{}

func (NullTracker) Update(bytesTransferred, totalBytes int64) {}
func (NullTracker) Complete()                                 {}
func (NullTracker) Error(err error)                           {}

// Reader wraps an io.Reader and reports accumulated bytes to a Tracker.
type Reader struct {
	reader      io.Reader
	tracker     Tracker
	total       int64
	transferred int64
}

// NewReader creates a progress-tracking reader. total may be 0 when the
// expected size is unknown.
func NewReader(r io.Reader, tracker Tracker, total int64) *Reader {
	return &Reader{reader: r, tracker: tracker, total: total}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (n int, err error) {
	n, err = r.reader.Read(p)
	if n > 0 {
		r.transferred += int64(n)
		if r.tracker != nil {
			r.tracker.Update(r.transferred, r.total)
		}
	}
	return n, err
}

// Writer wraps an io.Writer and reports accumulated bytes to a Tracker.
type Writer struct {
	writer      io.Writer
	tracker     Tracker
	total       int64
	transferred int64
}

// NewWriter creates a progress-tracking writer. total may be 0 when the
// expected size is unknown.
func NewWriter(w io.Writer, tracker Tracker, total int64) *Writer {
	return &Writer{writer: w, tracker: tracker, total: total}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	n, err = w.writer.Write(p)
	if n > 0 {
		w.transferred += int64(n)
		if w.tracker != nil {
			w.tracker.Update(w.transferred, w.total)
		}
	}
	return n, err
}

// FormatBytes formats a byte count into a human-readable string using
// decimal units, matching how object stores report sizes.
func FormatBytes(bytes int64) string {
	const (
		kb = 1000
		mb = kb * 1000
		gb = mb * 1000
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%d kB", (bytes+kb/2)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
