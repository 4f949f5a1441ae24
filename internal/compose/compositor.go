// Package compose rasterizes committed annotation entities onto a decoded
// photo at its native resolution and writes the result to a new file. The
// source photo is only ever opened for reading; failures leave it untouched
// and never leave a partial output at a readable path.
package compose

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/example/fieldmark/internal/annotate"
)

// DefaultJPEGQuality is used when a Compositor does not specify its own.
const DefaultJPEGQuality = 90

// Compositor produces permanently annotated copies of photos.
//
// The zero value writes next to the source file with DefaultJPEGQuality.
type Compositor struct {
	// OutDir overrides the output directory. Empty means the source's
	// directory.
	OutDir string
	// JPEGQuality sets the encoder quality for JPEG sources, 1..100.
	JPEGQuality int
}

// Compose decodes the photo at sourcePath, paints entities over it in order
// and encodes the result to a new file whose path is returned. The output
// format follows the source format (PNG stays PNG, JPEG is re-encoded as
// JPEG). An empty entity list still produces a fresh output file so callers
// get one uniform path contract.
//
// Failures are typed: *DecodeError when the source is unreadable or corrupt,
// *WriteError when the destination cannot be written.
func (c *Compositor) Compose(sourcePath string, entities []annotate.Entity) (string, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return "", &DecodeError{Path: sourcePath, Err: err}
	}
	src, format, err := image.Decode(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return "", &DecodeError{Path: sourcePath, Err: err}
	}

	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	if err := RenderEntities(rgba, entities); err != nil {
		return "", fmt.Errorf("render annotations: %w", err)
	}

	outPath := c.outputPath(sourcePath, format)
	if err := c.writeImage(outPath, rgba, format); err != nil {
		return "", err
	}
	return outPath, nil
}

// outputPath derives a destination that cannot collide with the source: the
// base name keeps the photo recognisable, the uuid fragment keeps repeated
// composites of the same photo distinct.
func (c *Compositor) outputPath(sourcePath, format string) string {
	dir := c.OutDir
	if dir == "" {
		dir = filepath.Dir(sourcePath)
	}
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	ext := ".png"
	if format == "jpeg" {
		ext = ".jpg"
	}
	tag := uuid.NewString()[:8]
	return filepath.Join(dir, fmt.Sprintf("%s.annotated.%s%s", base, tag, ext))
}

// writeImage encodes through a temp file in the destination directory and
// renames it into place, so a failed encode never leaves a readable partial.
func (c *Compositor) writeImage(path string, img *image.RGBA, format string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".fieldmark-*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: cause}
	}

	switch format {
	case "jpeg":
		quality := c.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(tmp, img, &jpeg.Options{Quality: quality})
	default:
		err = png.Encode(tmp, img)
	}
	if err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
