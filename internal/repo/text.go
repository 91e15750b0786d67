package repo

import (
	"bytes"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// binarySniff is how many leading bytes are checked for NUL.
const binarySniff = 8000

// ReadText reads path (repository-relative) under root as UTF-8 text.
// ok is false when the file cannot be read, is not valid UTF-8, or looks
// binary; callers skip such files silently.
func ReadText(root, path string) (text string, ok bool) {
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		return "", false
	}
	if looksBinary(b) || !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// Exists reports whether path under root is an existing regular file.
func Exists(root, path string) bool {
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(path)))
	return err == nil && info.Mode().IsRegular()
}

func looksBinary(b []byte) bool {
	n := min(len(b), binarySniff)
	return bytes.IndexByte(b[:n], 0) >= 0
}
