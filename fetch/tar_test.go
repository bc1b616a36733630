package fetch

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bserrors "github.com/perigee-io/bucketsync/errors"
)

type tarMember struct {
	name    string
	content string
	dir     bool
}

// writeTarArchive builds a tar file at path, compressed according to the
// file extension like OpenFileInTar expects.
func writeTarArchive(t *testing.T, path string, members []tarMember) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var w io.Writer = f
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	case strings.HasSuffix(name, ".tar.zst"):
		enc, err := zstd.NewWriter(f)
		require.NoError(t, err)
		defer enc.Close()
		w = enc
	}

	tw := tar.NewWriter(w)
	defer tw.Close()
	for _, m := range members {
		hdr := &tar.Header{Name: m.name, Mode: 0o644, Size: int64(len(m.content)), Typeflag: tar.TypeReg}
		if m.dir {
			hdr = &tar.Header{Name: m.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !m.dir {
			_, err := tw.Write([]byte(m.content))
			require.NoError(t, err)
		}
	}
}

func readAndClose(t *testing.T, r io.ReadCloser) string {
	t.Helper()
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return string(content)
}

func TestOpenFileInTar_SingleMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.tar")
	writeTarArchive(t, path, []tarMember{
		{name: "readme.txt", content: "docs"},
		{name: "data/model.bin", content: "weights"},
	})

	r, err := OpenFileInTar(path, `data/.*`)
	require.NoError(t, err)
	assert.Equal(t, "weights", readAndClose(t, r))
}

func TestOpenFileInTar_AnchoredPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.tar")
	writeTarArchive(t, path, []tarMember{
		{name: "data.txt", content: "top level"},
		{name: "nested/data.txt", content: "nested"},
	})

	// The pattern only matches at the start of the member name, so the
	// nested file does not count as a second match.
	r, err := OpenFileInTar(path, "data")
	require.NoError(t, err)
	assert.Equal(t, "top level", readAndClose(t, r))
}

func TestOpenFileInTar_ZeroMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.tar")
	writeTarArchive(t, path, []tarMember{{name: "readme.txt", content: "docs"}})

	_, err := OpenFileInTar(path, "missing")
	require.Error(t, err)
	assert.True(t, bserrors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "matched 0")
}

func TestOpenFileInTar_MultipleMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.tar")
	writeTarArchive(t, path, []tarMember{
		{name: "a.txt", content: "a"},
		{name: "b.txt", content: "b"},
	})

	_, err := OpenFileInTar(path, ".*")
	require.Error(t, err)
	assert.True(t, bserrors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "a.txt")
	assert.Contains(t, err.Error(), "b.txt")
}

func TestOpenFileInTar_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.tar.gz")
	writeTarArchive(t, path, []tarMember{{name: "data.json", content: `{"k": 1}`}})

	r, err := OpenFileInTar(path, `data\.json`)
	require.NoError(t, err)
	assert.Equal(t, `{"k": 1}`, readAndClose(t, r))
}

func TestOpenFileInTar_Zstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.tar.zst")
	writeTarArchive(t, path, []tarMember{{name: "data.json", content: `{"k": 2}`}})

	r, err := OpenFileInTar(path, `data\.json`)
	require.NoError(t, err)
	assert.Equal(t, `{"k": 2}`, readAndClose(t, r))
}

func TestOpenFileInTar_DirectoryMember(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.tar")
	writeTarArchive(t, path, []tarMember{
		{name: "data/", dir: true},
		{name: "data/file.txt", content: "x"},
	})

	_, err := OpenFileInTar(path, `data/$`)
	require.Error(t, err)
	assert.True(t, bserrors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "not a regular file")
}

func TestOpenFileInTar_MissingArchive(t *testing.T) {
	_, err := OpenFileInTar(filepath.Join(t.TempDir(), "absent.tar"), ".*")
	require.Error(t, err)
	assert.True(t, bserrors.IsNotFound(err))
}

func TestOpenFileInTar_InvalidPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.tar")
	writeTarArchive(t, path, []tarMember{{name: "a.txt", content: "a"}})

	_, err := OpenFileInTar(path, "[")
	require.Error(t, err)
	assert.True(t, bserrors.IsInvalidInput(err))
}
