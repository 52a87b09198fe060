package utils

// media.go stores uploaded images under the media root. Only png/jpg/jpeg
// extensions are accepted; stored files get random UUID names so client
// file names never reach the filesystem.

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBadExtension is returned when an upload is not png, jpg or jpeg.
var ErrBadExtension = errors.New("unsupported image extension")

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ValidateImageName checks the extension allow-list.
func ValidateImageName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return ErrBadExtension
	}
	return nil
}

// SaveImage writes one multipart upload into mediaRoot/subdir and returns
// the stored path relative to mediaRoot (what the API exposes).
func SaveImage(mediaRoot, subdir string, fh *multipart.FileHeader) (string, error) {
	if err := ValidateImageName(fh.Filename); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	rel := filepath.Join(subdir, uuid.NewString()+ext)

	dir := filepath.Join(mediaRoot, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(mediaRoot, rel))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Best effort cleanup; the row referencing the path was never written.
		_ = os.Remove(dst.Name())
		return "", err
	}
	return rel, nil
}

// SaveImages stores a batch of uploads and returns their relative paths.
// On any failure the already-written files are removed so no orphans remain.
func SaveImages(mediaRoot, subdir string, files []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, fh := range files {
		rel, err := SaveImage(mediaRoot, subdir, fh)
		if err != nil {
			for _, p := range paths {
				_ = os.Remove(filepath.Join(mediaRoot, p))
			}
			return nil, err
		}
		paths = append(paths, rel)
	}
	return paths, nil
}
