package constants

import (
	"path/filepath"
	"strings"
)

// AllowedExtensions holds the allowed file extensions for chunk discovery.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Stem returns the base name of a path without its extension. Checkpoint
// keys and canonical ordering are both derived from it.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
