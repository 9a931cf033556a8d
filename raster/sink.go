package raster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ErrBackendUnavailable is returned when a raster is requested without a
// rendering backend to upload it through. Callers may retry once a sink exists.
var ErrBackendUnavailable = errors.New("rendering backend unavailable")

// Sink is the narrow capability a rendering host provides to receive
// finished rasters, typically by wrapping them in a texture object that
// honors the raster's WrapS/WrapT modes.
type Sink interface {
	Upload(r *Raster) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(r *Raster) error

// Upload calls f(r).
func (f SinkFunc) Upload(r *Raster) error {
	return f(r)
}

// PNGSink writes each uploaded raster to Dir as <kind>_<identity>_<res>.png.
type PNGSink struct {
	Dir string
}

// Upload encodes r into a PNG file under s.Dir.
func (s PNGSink) Upload(r *Raster) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("creating texture directory: %w", err)
	}
	path := filepath.Join(s.Dir, FileName(r))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FileName returns the canonical file name for a generated raster.
func FileName(r *Raster) string {
	identity := strings.Map(func(c rune) rune {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '-' {
			return c
		}
		return '_'
	}, r.Identity)
	if identity == "" {
		identity = "default"
	}
	return fmt.Sprintf("%s_%s_%gx.png", r.Kind, identity, r.Resolution)
}

// MemorySink keeps the most recent upload per file name. It backs headless
// hosts and tests that inspect rasters after generation.
type MemorySink struct {
	Rasters map[string]*Raster
}

// Upload records r under FileName(r).
func (s *MemorySink) Upload(r *Raster) error {
	if s.Rasters == nil {
		s.Rasters = make(map[string]*Raster)
	}
	s.Rasters[FileName(r)] = r
	return nil
}
