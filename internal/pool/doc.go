// Package pool recycles transfer buffers across object downloads.
//
// Buffers are handed out full length so they can serve directly as
// io.CopyBuffer scratch space. Very large requests fall back to one-off
// allocations that are never pooled.
package pool
