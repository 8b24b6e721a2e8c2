package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var allowedImageExtensions = map[string]bool{"png": true, "jpg": true, "jpeg": true, "gif": true}

// AllowedImage reports whether the filename has an accepted image extension.
func AllowedImage(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return allowedImageExtensions[ext]
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SecureFilename strips directories and anything outside [A-Za-z0-9_.-].
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	return name
}

// LocalImageStore writes uploads below Dir and serves them from URLPrefix.
type LocalImageStore struct {
	Dir       string
	URLPrefix string
}

// Save stores r as name and returns its public URL.
func (s LocalImageStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	// Ensure upload directory exists
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return strings.TrimRight(s.URLPrefix, "/") + "/" + name, nil
}
