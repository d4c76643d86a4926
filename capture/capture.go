// Package capture persists executor output: single frames to disk and frame
// streams to video through ffmpeg.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Kind identifies which pass an output snapshot came from.
type Kind string

const (
	ComputeOutput Kind = "compute"
	PixelOutput   Kind = "pixel"
)

// Format is an image file format supported by DiskSaver.
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// ParseFormat converts a config value (or file extension) into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	default:
		return "", fmt.Errorf("capture: unsupported image format %q", s)
	}
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	if f == "" {
		return string(PNG)
	}
	return string(f)
}

func (f Format) encode(w io.Writer, img image.Image) error {
	switch f {
	case "", PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("capture: unsupported image format %q", string(f))
	}
}

// DiskSaver writes every snapshot to its own file in Dir.
type DiskSaver struct {
	Dir    string
	Format Format
	Prefix string
}

// Path returns the file a snapshot of kind at frame would be written to.
func (s *DiskSaver) Path(kind Kind, frame int64) string {
	name := fmt.Sprintf("%s%s_%06d.%s", s.Prefix, kind, frame, s.Format.Ext())
	return filepath.Join(s.Dir, name)
}

// Save encodes img and writes it to Path(kind, frame). The directory is
// created when missing. A partially written file is removed on failure.
func (s *DiskSaver) Save(kind Kind, frame int64, img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("capture: no %s image for frame %d", kind, frame)
	}
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return "", fmt.Errorf("capture: create %s: %w", s.Dir, err)
		}
	}

	path := s.Path(kind, frame)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	if err := s.Format.encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("capture: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("capture: %w", err)
	}
	return path, nil
}
