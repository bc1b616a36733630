// Package validation provides centralized input validation logic.
// This includes bucket name validation, remote path validation, and
// metadata sanitization.
//
// Inputs are validated before being sent to a storage backend so malformed
// requests fail locally with a clear error instead of a backend rejection.
package validation
