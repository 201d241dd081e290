package gcs

import (
	"fmt"
	"path"
	"strings"
	"unicode"
)

// ObjectKey builds a stable object key under folder. The unique segment
// keeps re-uploads of the same file name from colliding.
func ObjectKey(folder, unique, fileName string) string {
	cleanName := SanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = unique
	}
	return fmt.Sprintf("%s/%s/%s", strings.Trim(folder, "/"), unique, cleanName)
}

// SanitizeFileName strips path separators and control characters from a
// client-supplied file name.
func SanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
