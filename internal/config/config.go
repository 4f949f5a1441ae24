package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
)

// Notify holds notification settings.
type Notify struct {
	Save bool
	Copy bool
}

// Config holds the application configuration.
type Config struct {
	// SaveDir overrides where annotated photos are written. Empty keeps
	// them next to their source.
	SaveDir string
	// DefaultColor names the palette color new sessions start with.
	DefaultColor string
	// DefaultWidth is the stroke width new sessions start with, in
	// reference pixels. Zero keeps the built-in default.
	DefaultWidth int
	// TextSize is the label size new sessions start with, in reference
	// pixels. Zero keeps the built-in default.
	TextSize float64
	Notify   Notify
	// Palette holds extra named colors registered on top of the built-in
	// palette.
	Palette map[string]color.RGBA
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Notify: Notify{
			Save: false,
			Copy: false,
		},
		Palette: make(map[string]color.RGBA),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.DefaultColor != "" {
		fmt.Fprintf(&sb, "default_color = %s\n", c.DefaultColor)
	}
	if c.DefaultWidth > 0 {
		fmt.Fprintf(&sb, "default_width = %d\n", c.DefaultWidth)
	}
	if c.TextSize > 0 {
		fmt.Fprintf(&sb, "text_size = %g\n", c.TextSize)
	}
	sb.WriteString("\n")

	// Notify section
	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)

	// Palette section
	if len(c.Palette) > 0 {
		sb.WriteString("\n[palette]\n")
		// Sort keys for deterministic output
		var names []string
		for name := range c.Palette {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "%s = %s\n", name, toHex(c.Palette[name]))
		}
	}

	return sb.String()
}

func toHex(c color.RGBA) string {
	if c.A != 255 {
		return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
