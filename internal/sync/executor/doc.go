// Package executor performs the transfers of a planned transaction.
// It validates the collision and overwrite preconditions against the whole
// summary before any file moves, then uploads or downloads each entry,
// sequentially or on a bounded goroutine pool, reporting byte progress as
// files complete.
package executor
