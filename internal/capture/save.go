// Package capture exports rendered frames as PNG stills.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrExists is returned when the destination file is already present.
var ErrExists = errors.New("file already exists")

var invalidFilenameChars = regexp.MustCompile(`[\\/:*?"<>|.\s]`)

// SanitizeFilename strips characters invalid in filenames and trims whitespace.
// Falls back to "capture" if the result is empty.
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(strings.TrimSpace(name), "")
	if name == "" {
		return "capture"
	}
	return name
}

// Filename returns "codecam-<style>-<timestamp>.png", the timestamp being
// UTC ISO-8601 with ':' and '.' replaced by '-'.
func Filename(style string, t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return fmt.Sprintf("codecam-%s-%s.png", SanitizeFilename(style), stamp)
}

// Save encodes img as PNG into dir and returns the written path. It never
// overwrites an existing file.
func Save(dir string, img image.Image, style string, t time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, Filename(style, t))
	if err := WritePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// WritePNG encodes img to path, refusing to overwrite.
func WritePNG(path string, img image.Image) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("creating capture: %w", err)
	}

	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encoding png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing capture: %w", err)
	}
	return nil
}
