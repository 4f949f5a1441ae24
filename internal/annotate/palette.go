package annotate

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"sync"
)

// PaletteColor pairs a drawing color with its display name.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

// The palette is the closed set of colors a session's tools may use. The
// built-in entries cover the field-report conventions (red for defects, blue
// for notes, yellow for highlights); configuration can extend the set via
// EnsurePaletteColor before any session starts.
var (
	paletteMu sync.RWMutex
	palette   = []color.RGBA{
		{255, 0, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
		{0, 180, 0, 255},
		{255, 128, 0, 255},
		{255, 255, 255, 255},
		{0, 0, 0, 255},
	}
	paletteNames = []string{
		"Red",
		"Blue",
		"Yellow",
		"Green",
		"Orange",
		"White",
		"Black",
	}
)

var (
	widthsMu sync.RWMutex
	widths   = []int{2, 4, 6, 10}
)

var textSizes = []float64{16, 24, 32, 48}

const (
	defaultColorIndex = 0
	defaultWidthIndex = 1
)

// DefaultColor returns the palette color new sessions start with.
func DefaultColor() color.RGBA { return PaletteColorAt(defaultColorIndex) }

// DefaultColorIndex returns the palette index new sessions start with.
func DefaultColorIndex() int { return defaultColorIndex }

// DefaultWidthIndex returns the width option index new sessions start with.
func DefaultWidthIndex() int { return defaultWidthIndex }

// DefaultWidth returns the stroke width new sessions start with.
func DefaultWidth() int { return WidthAt(defaultWidthIndex) }

// DefaultTextSize returns the label size new sessions start with.
func DefaultTextSize() float64 { return textSizes[1] }

// Palette returns a copy of the available drawing colors.
func Palette() []color.RGBA {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	out := make([]color.RGBA, len(palette))
	copy(out, palette)
	return out
}

// PaletteColors returns palette entries annotated with their display names.
func PaletteColors() []PaletteColor {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	out := make([]PaletteColor, len(palette))
	for i := range palette {
		out[i] = PaletteColor{Name: paletteNames[i], Color: palette[i]}
	}
	return out
}

// PaletteColorAt returns the palette entry at idx, clamped into range.
func PaletteColorAt(idx int) color.RGBA {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	if len(palette) == 0 {
		return color.RGBA{}
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(palette) {
		idx = len(palette) - 1
	}
	return palette[idx]
}

// LookupPaletteColor finds a palette entry by its display name.
func LookupPaletteColor(name string) (color.RGBA, bool) {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	for i, n := range paletteNames {
		if strings.EqualFold(n, name) {
			return palette[i], true
		}
	}
	return color.RGBA{}, false
}

// EnsurePaletteColor makes sure col is present in the palette and returns its
// index. Configuration uses this to register extra named colors.
func EnsurePaletteColor(col color.RGBA, name string) int {
	paletteMu.Lock()
	defer paletteMu.Unlock()
	for idx, existing := range palette {
		if existing == col {
			if name != "" && paletteNames[idx] == "" {
				paletteNames[idx] = name
			}
			return idx
		}
	}
	if name == "" {
		name = fmt.Sprintf("#%02X%02X%02X", col.R, col.G, col.B)
	}
	palette = append(palette, col)
	paletteNames = append(paletteNames, name)
	return len(palette) - 1
}

// WidthOptions returns a copy of the available stroke widths.
func WidthOptions() []int {
	widthsMu.RLock()
	defer widthsMu.RUnlock()
	out := make([]int, len(widths))
	copy(out, widths)
	return out
}

// WidthAt returns the stroke width at idx, clamped into range.
func WidthAt(idx int) int {
	widthsMu.RLock()
	defer widthsMu.RUnlock()
	if len(widths) == 0 {
		return 1
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(widths) {
		idx = len(widths) - 1
	}
	return widths[idx]
}

// EnsureWidth makes sure width is included in the options and returns its index.
func EnsureWidth(width int) int {
	if width < 1 {
		width = 1
	}
	widthsMu.Lock()
	defer widthsMu.Unlock()
	for idx, existing := range widths {
		if existing == width {
			return idx
		}
	}
	widths = append(widths, width)
	sort.Ints(widths)
	for idx, existing := range widths {
		if existing == width {
			return idx
		}
	}
	return 0
}

// TextSizes returns the available label sizes in reference pixels.
func TextSizes() []float64 {
	out := make([]float64, len(textSizes))
	copy(out, textSizes)
	return out
}
