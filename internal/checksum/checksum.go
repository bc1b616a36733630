// Package checksum computes content hashes used to compare local files with
// remote objects. MD5 is the comparison digest because S3-compatible backends
// report it as the ETag for non-multipart uploads.
package checksum

import (
	"crypto/md5" //nolint:gosec // content comparison, not cryptography
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// bufferSize is the read buffer used for streaming hashing.
const bufferSize = 32 * 1024

// MD5Reader computes the hex-encoded MD5 digest of everything readable from r.
func MD5Reader(r io.Reader) (string, error) {
	h := md5.New() //nolint:gosec // content comparison, not cryptography
	buf := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("hashing stream: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MD5File computes the hex-encoded MD5 digest of the file at path.
func MD5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer f.Close()

	sum, err := MD5Reader(f)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return sum, nil
}
