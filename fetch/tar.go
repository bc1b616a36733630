package fetch

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	bserrors "github.com/perigee-io/bucketsync/errors"
)

// OpenFileInTar returns a reader over the single archive member whose name
// matches pattern. The pattern is anchored at the start of the member name;
// zero matches and multiple matches both fail with errors.ErrInvalidInput.
//
// Compression is chosen by file extension: .tar.gz and .tgz archives are
// gzip-decompressed, .tar.zst archives zstd-decompressed, anything else is
// read as a plain tar stream. The member content is buffered in memory, so
// nothing is extracted to disk.
func OpenFileInTar(path string, pattern string) (io.ReadCloser, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, bserrors.NewValidationError(fmt.Sprintf("invalid member pattern %q: %v", pattern, err))
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, bserrors.NewError("tar", bserrors.ErrFileNotFound).WithPath(path)
		}
		return nil, bserrors.NewError("tar", err).WithPath(path)
	}
	defer f.Close()

	reader, closeReader, err := decompressed(f, path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer closeReader()

	var matches []string
	var content []byte
	var regular bool

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading archive %s: %w", path, err)
		}
		if loc := re.FindStringIndex(hdr.Name); loc == nil || loc[0] != 0 {
			continue
		}
		matches = append(matches, hdr.Name)
		if len(matches) > 1 {
			continue
		}
		regular = hdr.Typeflag == tar.TypeReg
		if regular {
			if content, err = io.ReadAll(tr); err != nil {
				return nil, fmt.Errorf("reading member %s of %s: %w", hdr.Name, path, err)
			}
		}
	}

	if len(matches) != 1 {
		return nil, bserrors.NewValidationError(fmt.Sprintf(
			"pattern %q matched %d archive members %v, need exactly one", pattern, len(matches), matches))
	}
	if !regular {
		return nil, bserrors.NewValidationError(fmt.Sprintf("archive member %q is not a regular file", matches[0]))
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// decompressed wraps f in the decompressor the file extension implies.
func decompressed(f *os.File, path string) (io.Reader, func(), error) {
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { gz.Close() }, nil
	case strings.HasSuffix(name, ".tar.zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	default:
		return f, func() {}, nil
	}
}
