// Package contenttype detects the MIME type of local files about to be
// uploaded, preferring content sniffing over extension lookup.
package contenttype

import (
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Default is used when nothing more specific can be detected.
const Default = "application/octet-stream"

// sniffSize is the number of leading bytes used for content sniffing.
const sniffSize = 512

// Detect returns the MIME type of the file at path. Content sniffing on the
// leading bytes wins when the file is readable; otherwise the extension
// decides, and failing that Default is returned.
func Detect(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fromExtension(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fromExtension(path)
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, _ := f.Read(buf)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			return mt.String()
		}
	}
	return fromExtension(path)
}

// fromExtension detects the content type from the file extension alone.
func fromExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return Default
}
