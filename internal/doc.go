// Package internal contains private implementation details of bucketsync.
// These packages are not intended for external use and may change without
// notice.
//
// The internal packages are organized as follows:
//   - checksum: local file content hashing
//   - contenttype: MIME type detection for uploads
//   - pool: reusable transfer buffers
//   - remotepath: remote path joining and prefix-match filtering
//   - sync/planner: transaction scanning and classification
//   - sync/executor: transaction execution with progress reporting
//   - testutil: mocks, fakes, and fixtures for the test suites
//   - validation: bucket name, remote path, and metadata validation
package internal
