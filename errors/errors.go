// Package errors provides error types and handling for remote storage operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a storage operation error with context about the operation that failed.
// It wraps the underlying backend or filesystem error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "push", "pull", "delete")
	Op string

	// Bucket is the storage bucket name (if applicable)
	Bucket string

	// Path is the remote or local path involved (if applicable)
	Path string

	// Err is the underlying error from the storage backend or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Path != "" {
		return fmt.Sprintf("storage.%s %s/%s: %v", e.Op, e.Bucket, e.Path, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("storage.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("storage.%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("storage.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithPath adds path context to an existing error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewValidationError creates an invalid-input Error with the given message.
func NewValidationError(message string) *Error {
	return &Error{
		Op:  "validate",
		Err: fmt.Errorf("%s: %w", message, ErrInvalidInput),
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// NewPathError creates a new Error with bucket and path context.
func NewPathError(op, bucket, path string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Path:   path,
		Err:    err,
	}
}

// Sentinel errors for common storage operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrObjectNotFound indicates that the requested remote object does not exist
	ErrObjectNotFound = errors.New("storage: object not found")

	// ErrFileNotFound indicates that a required local file or directory does not exist
	ErrFileNotFound = errors.New("storage: file not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("storage: bucket not found")

	// ErrTargetExists indicates that the transfer target already exists with
	// different content and overwriting was not permitted
	ErrTargetExists = errors.New("storage: target already exists")

	// ErrUnresolvableCollision indicates a name collision between a file on one
	// side and a directory on the other that no transfer policy can resolve
	ErrUnresolvableCollision = errors.New("storage: unresolvable name collision")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("storage: invalid input")

	// ErrBucketAlreadyExists indicates that the bucket already exists
	ErrBucketAlreadyExists = errors.New("storage: bucket already exists")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("storage: invalid bucket name")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("storage: access denied")
)

// IsNotFound checks if an error indicates a missing object, file, or bucket.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound) ||
		errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrBucketNotFound)
}

// IsTargetExists checks if an error indicates that a transfer would overwrite
// an existing target without force being set.
func IsTargetExists(err error) bool {
	return errors.Is(err, ErrTargetExists)
}

// IsCollision checks if an error indicates an unresolvable name collision.
func IsCollision(err error) bool {
	return errors.Is(err, ErrUnresolvableCollision)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
