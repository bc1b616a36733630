// Package remotepath implements the path rules shared by all remote
// operations: joining against a base path, relativizing object names, and
// detecting objects a prefix listing returned by accident.
//
// Remote paths are always posix style. A combined path must never begin with
// "/": some backends reject or mishandle a leading separator when listing or
// pulling, even though they tolerate it when pushing.
package remotepath

import "strings"

// Full joins the configured base path with a relative remote path and strips
// any leading separators from the result. Empty segments are dropped so an
// empty base (or an already-absolute relative part) never produces a double
// separator. A trailing separator survives the join: it marks the path as a
// directory listing and disables false-positive filtering downstream. An
// empty remote path under a non-empty base also yields a trailing separator,
// scoping the listing to true descendants of the base.
func Full(basePath, remotePath string) string {
	trailing := strings.HasSuffix(remotePath, "/") ||
		(remotePath == "" && strings.Trim(basePath, "/") != "")

	parts := make([]string, 0, 2)
	for _, p := range []string{basePath, remotePath} {
		p = strings.Trim(p, "/")
		if p != "" {
			parts = append(parts, p)
		}
	}
	joined := strings.Join(parts, "/")
	if trailing && joined != "" {
		joined += "/"
	}
	return joined
}

// Relative returns the object name relative to the configured base path, with
// the leading separator stripped. It is the inverse of Full for names that
// were produced under basePath.
func Relative(basePath, name string) string {
	rel := strings.TrimPrefix(name, basePath)
	return strings.TrimLeft(rel, "/")
}

// FalsePositive reports whether an object with the given name was listed only
// because its name shares leading characters with fullRemotePath, without
// being the path itself or a descendant of it.
//
// Prefix listings match raw strings: listing "pull/this/dir" also returns
// "pull/this/dir_suffix", and listing "delete/this/file" also returns
// "delete/this/file_2". Such objects must be excluded from pulls, deletes,
// and push collision checks.
func FalsePositive(fullRemotePath, name string) bool {
	// A trailing separator or empty prefix only matches true descendants.
	if strings.HasSuffix(fullRemotePath, "/") || fullRemotePath == "" {
		return false
	}

	fullRemotePath = strings.TrimLeft(fullRemotePath, "/")
	name = strings.TrimLeft(name, "/")
	if name == fullRemotePath {
		return false
	}
	return !strings.HasPrefix(name, fullRemotePath+"/")
}
