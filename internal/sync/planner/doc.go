// Package planner builds transaction summaries for push and pull operations.
// It scans the local tree or the remote prefix, pairs every candidate file
// with its counterpart on the other side, and applies include/exclude
// filtering and name-collision detection.
//
// The planner performs no transfers; its summary is consumed by the executor.
package planner
