package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/perigee-io/bucketsync/errors"
)

// ValidateBucketName validates that a bucket name is DNS-compliant according
// to the rules shared by S3-compatible backends.
// Returns ErrInvalidBucketName if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return invalidBucket(bucket, "bucket name cannot be empty")
	}
	if len(bucket) < 3 || len(bucket) > 63 {
		return invalidBucket(bucket, "bucket name must be between 3 and 63 characters long")
	}
	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return invalidBucket(bucket, "bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}
	if bucket[0] == '-' || bucket[0] == '.' || bucket[len(bucket)-1] == '-' || bucket[len(bucket)-1] == '.' {
		return invalidBucket(bucket, "bucket name cannot start or end with a hyphen or dot")
	}
	if isIPAddress(bucket) {
		return invalidBucket(bucket, "bucket name cannot be formatted as an IP address")
	}
	if hasAdjacentSpecialChars(bucket) {
		return invalidBucket(bucket, "bucket name cannot contain two adjacent periods or hyphens")
	}
	return nil
}

// ValidateRemotePath validates a remote object path before it is sent to a
// backend: it must be non-empty, free of traversal sequences and control
// characters, and within the common backend length limit.
func ValidateRemotePath(path string) error {
	if path == "" {
		return invalidPath(path, "remote path cannot be empty")
	}
	if hasPathTraversal(path) {
		return invalidPath(path, "remote path cannot contain path traversal sequences")
	}
	if len(path) > 1024 {
		return invalidPath(path, "remote path cannot exceed 1024 characters")
	}
	if hasControlCharacters(path) {
		return invalidPath(path, "remote path cannot contain control characters")
	}
	return nil
}

// ValidateMetadata validates upload metadata keys and values.
func ValidateMetadata(metadata map[string]string) error {
	for key, value := range metadata {
		if err := validateMetadataKey(key); err != nil {
			return err
		}
		if err := validateMetadataValue(value); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeMetadata strips non-printable characters from metadata keys and
// control characters from values, keeping newlines and tabs in values.
func SanitizeMetadata(metadata map[string]string) map[string]string {
	if metadata == nil {
		return nil
	}
	sanitized := make(map[string]string, len(metadata))
	for key, value := range metadata {
		sanitized[sanitizeMetadataKey(key)] = sanitizeMetadataValue(value)
	}
	return sanitized
}

func invalidBucket(bucket, message string) error {
	return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
		WithBucket(bucket).
		WithMessage(message)
}

func invalidPath(path, message string) error {
	return errors.NewError("validateRemotePath", errors.ErrInvalidInput).
		WithPath(path).
		WithMessage(message)
}

// isValidBucketChar checks if a character is valid in a bucket name
func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// hasAdjacentSpecialChars checks for adjacent special characters
func hasAdjacentSpecialChars(bucket string) bool {
	for i := 0; i < len(bucket)-1; i++ {
		if (bucket[i] == '.' && bucket[i+1] == '.') || (bucket[i] == '-' && bucket[i+1] == '-') {
			return true
		}
	}
	return false
}

// isIPAddress checks if a string is formatted as an IPv4 address
func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if len(part) == 0 {
			return true // empty part still looks like an IP (e.g. "192.168..1")
		}
		num := 0
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
			num = num*10 + int(char-'0')
		}
		if num > 255 {
			return false
		}
	}
	return true
}

// hasPathTraversal checks for path traversal attempts in remote paths
func hasPathTraversal(path string) bool {
	if strings.Contains(path, "..") {
		return true
	}
	cleaned := filepath.Clean(path)
	if strings.HasPrefix(cleaned, "..") || strings.HasPrefix(cleaned, "/") {
		return true
	}
	// Windows-style absolute paths
	if len(cleaned) >= 3 && cleaned[1] == ':' && (cleaned[2] == '\\' || cleaned[2] == '/') {
		return true
	}
	return false
}

// hasControlCharacters checks for control characters in the path
func hasControlCharacters(path string) bool {
	for _, char := range path {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}

func sanitizeMetadataKey(key string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, key)
}

func sanitizeMetadataValue(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, value)
}

// validateMetadataKey validates a metadata key against the common backend rules
func validateMetadataKey(key string) error {
	if key == "" {
		return errors.NewError("validateMetadata", errors.ErrInvalidInput).
			WithMessage("metadata key cannot be empty")
	}
	if len(key) > 128 {
		return errors.NewError("validateMetadata", errors.ErrInvalidInput).
			WithMessage("metadata key cannot exceed 128 characters")
	}
	reservedPrefixes := []string{"aws:", "x-amz-", "x-amz:"}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(strings.ToLower(key), prefix) {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("metadata key cannot start with reserved prefix: %s", prefix))
		}
	}
	for _, char := range key {
		if char < 32 || char > 126 {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage("metadata key can only contain printable ASCII characters")
		}
	}
	return nil
}

// validateMetadataValue validates a metadata value against the common backend rules
func validateMetadataValue(value string) error {
	if len(value) > 2048 {
		return errors.NewError("validateMetadata", errors.ErrInvalidInput).
			WithMessage("metadata value cannot exceed 2048 characters")
	}
	for _, char := range value {
		if !unicode.IsPrint(char) && char != '\n' && char != '\t' {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage("metadata value can only contain printable characters")
		}
	}
	return nil
}
