// Package sync groups the transaction engine. The planner subpackage scans
// one side of a push or pull and classifies every candidate file into a
// transaction summary; the executor subpackage validates a summary against
// the force and collision policies and performs its transfers.
package sync
