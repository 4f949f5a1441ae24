package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/example/fieldmark/internal/annotate"
)

type colorsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ExitOnError)
	cmd := &colorsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *colorsCmd) Run() error {
	palette := annotate.PaletteColors()
	if len(palette) == 0 {
		fmt.Fprintln(os.Stdout, "no colors available")
		return nil
	}
	fmt.Fprintln(os.Stdout, "available palette colors (* marks the default color):")
	defaultIdx := clampIndex(annotate.DefaultColorIndex(), len(palette))
	for idx, entry := range palette {
		marker := " "
		if idx == defaultIdx {
			marker = "*"
		}
		name := entry.Name
		hex := fmt.Sprintf("#%02X%02X%02X", entry.Color.R, entry.Color.G, entry.Color.B)
		if name == "" {
			name = hex
		}
		block := fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", entry.Color.R, entry.Color.G, entry.Color.B)
		fmt.Fprintf(os.Stdout, "%s %2d: %-12s %s %s\n", marker, idx, name, hex, block)
	}
	return nil
}

func (c *colorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

type widthsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseWidthsCmd(args []string, r *root) (*widthsCmd, error) {
	fs := flag.NewFlagSet("widths", flag.ExitOnError)
	cmd := &widthsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *widthsCmd) Run() error {
	widths := annotate.WidthOptions()
	if len(widths) == 0 {
		fmt.Fprintln(os.Stdout, "no widths available")
		return nil
	}
	fmt.Fprintln(os.Stdout, "available stroke widths (* marks the default width):")
	defaultIdx := clampIndex(annotate.DefaultWidthIndex(), len(widths))
	for idx, width := range widths {
		marker := " "
		if idx == defaultIdx {
			marker = "*"
		}
		fmt.Fprintf(os.Stdout, "%s %3dpx\n", marker, width)
	}
	return nil
}

func (c *widthsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
