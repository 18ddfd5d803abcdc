// Package version reads the release identifier that the build step drops
// next to the binary. The file is re-read on every call so a rolling
// release can update it without a restart.
package version

import (
	"os"
	"strings"
	"unicode/utf8"
)

// Unknown is returned whenever the version file cannot be read.
const Unknown = "unknown"

// DefaultPath is relative to the process working directory.
const DefaultPath = "version.txt"

type Reader struct {
	Path string
}

// NewReader returns a Reader for path, falling back to DefaultPath.
func NewReader(path string) *Reader {
	if path == "" {
		path = DefaultPath
	}
	return &Reader{Path: path}
}

// Read returns the trimmed file contents, or Unknown on any failure.
func (r *Reader) Read() string {
	return Read(r.Path)
}

func Read(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return Unknown
	}
	if !utf8.Valid(data) {
		return Unknown
	}
	return strings.TrimSpace(string(data))
}
