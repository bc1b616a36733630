package testutil

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteLocalFile writes content to name below dir, creating parent
// directories, and returns the absolute path.
func WriteLocalFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating parent directories for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// TempTree writes the given slash-path to content mapping below a fresh
// temp directory and returns that directory.
func TempTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		WriteLocalFile(t, dir, name, content)
	}
	return dir
}

// MD5Hex returns the hex MD5 of content, the hash shape backends report
// for plain uploads.
func MD5Hex(content string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(content)))
}
