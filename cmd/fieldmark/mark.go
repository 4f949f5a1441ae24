package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/example/fieldmark/internal/annotate"
	"github.com/example/fieldmark/internal/clipboard"
	"github.com/example/fieldmark/internal/compose"
	"github.com/example/fieldmark/internal/session"
)

// markCmd adds a single annotation to a photo without opening the editor.
// Coordinates are canvas-normalized values between 0 and 1, so the same
// command works on any photo resolution.
type markCmd struct {
	file        string
	outDir      string
	toClipboard bool
	colorSpec   string
	color       color.RGBA
	width       int
	textSize    float64
	quality     int
	shape       string
	coords      []float64
	text        string
	*root
	fs *flag.FlagSet
}

func (m *markCmd) FlagSet() *flag.FlagSet {
	return m.fs
}

func parseColorSpec(s string) (color.RGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return c, nil
	}
	for _, entry := range annotate.PaletteColors() {
		if strings.EqualFold(entry.Name, s) {
			return entry.Color, nil
		}
	}
	if strings.HasPrefix(spec, "#") && (len(spec) == 7 || len(spec) == 9) {
		r, err := strconv.ParseUint(spec[1:3], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		g, err := strconv.ParseUint(spec[3:5], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		b, err := strconv.ParseUint(spec[5:7], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		a := uint64(255)
		if len(spec) == 9 {
			val, err := strconv.ParseUint(spec[7:9], 16, 8)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("invalid color %q", s)
			}
			a = val
		}
		return color.RGBA{uint8(r), uint8(g), uint8(b), uint8(a)}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", s)
}

func parseMarkCmd(args []string, r *root) (*markCmd, error) {
	fs := flag.NewFlagSet("mark", flag.ExitOnError)
	m := &markCmd{root: r, fs: fs}
	fs.Usage = usageFunc(m)
	fs.StringVar(&m.file, "file", "", "photo to annotate")
	fs.StringVar(&m.outDir, "out-dir", r.config.SaveDir, "directory for the annotated copy (defaults to the photo's directory)")
	fs.BoolVar(&m.toClipboard, "to-clipboard", false, "copy the annotated photo to the clipboard")
	fs.BoolVar(&m.toClipboard, "to-clip", false, "copy the annotated photo to the clipboard (alias)")
	fs.StringVar(&m.colorSpec, "color", "red", "annotation color name or hex value")
	fs.IntVar(&m.width, "width", annotate.DefaultWidth(), "stroke width in reference pixels")
	fs.Float64Var(&m.textSize, "text-size", annotate.DefaultTextSize(), "label size in reference pixels")
	fs.IntVar(&m.quality, "quality", 0, "JPEG encoder quality (1-100, 0 uses the default)")

	flagArgs, positionals, err := splitMarkArgs(args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) < 1 {
		return nil, &UsageError{of: m}
	}
	m.shape = strings.ToLower(positionals[0])
	remaining := positionals[1:]
	switch m.shape {
	case "stroke":
		m.coords, err = expectFloats(remaining, len(remaining), m.shape)
		if err == nil && (len(m.coords) < 4 || len(m.coords)%2 != 0) {
			err = fmt.Errorf("stroke requires at least two x y pairs")
		}
	case "arrow":
		m.coords, err = expectFloats(remaining, 4, m.shape)
	case "label":
		if len(remaining) < 3 {
			return nil, fmt.Errorf("label requires x y and content")
		}
		m.coords, err = expectFloats(remaining[:2], 2, m.shape)
		if err != nil {
			return nil, err
		}
		m.text = strings.Join(remaining[2:], " ")
		if strings.TrimSpace(m.text) == "" {
			return nil, fmt.Errorf("label content cannot be empty")
		}
	default:
		return nil, fmt.Errorf("unsupported shape %q", m.shape)
	}
	if err != nil {
		return nil, err
	}
	colorVal, err := parseColorSpec(m.colorSpec)
	if err != nil {
		return nil, err
	}
	m.color = colorVal
	if m.file == "" {
		return nil, fmt.Errorf("input file is required")
	}
	if m.width < 1 {
		m.width = 1
	}
	if m.textSize <= 0 {
		m.textSize = annotate.DefaultTextSize()
	}
	return m, nil
}

func (m *markCmd) Run() error {
	done := make(chan session.Result, 1)
	fail := make(chan error, 1)
	sess := session.New(m.file,
		session.WithComposer(&compose.Compositor{OutDir: m.outDir, JPEGQuality: m.quality}),
		session.WithOnComplete(func(r session.Result) { done <- r }),
		session.WithOnError(func(err error) { fail <- err }),
	)
	sess.SetColor(m.color)
	sess.SetWidth(m.width)
	sess.SetTextSize(m.textSize)

	switch m.shape {
	case "stroke":
		sess.SelectTool(annotate.ToolDraw)
		sess.PointerDown(point(m.coords[0], m.coords[1]))
		for i := 2; i < len(m.coords); i += 2 {
			sess.PointerMove(point(m.coords[i], m.coords[i+1]))
		}
		sess.PointerUp()
	case "arrow":
		sess.SelectTool(annotate.ToolArrow)
		sess.PointerDown(point(m.coords[0], m.coords[1]))
		sess.PointerMove(point(m.coords[2], m.coords[3]))
		sess.PointerUp()
	case "label":
		sess.SelectTool(annotate.ToolText)
		if !sess.Tap(point(m.coords[0], m.coords[1])) {
			return fmt.Errorf("label placement rejected")
		}
		sess.ConfirmText(m.text)
	}
	if !sess.CanUndo() {
		return fmt.Errorf("%s did not produce an annotation (degenerate geometry?)", m.shape)
	}

	if err := sess.Done(); err != nil {
		return err
	}
	var result session.Result
	select {
	case result = <-done:
	case err := <-fail:
		return err
	}

	saved := result.AnnotatedPath
	if abs, err := filepath.Abs(saved); err == nil {
		saved = abs
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", saved)
	m.root.notifySave(saved)

	if m.toClipboard {
		img, err := loadPhoto(result.AnnotatedPath)
		if err != nil {
			return fmt.Errorf("reload annotated photo: %w", err)
		}
		if err := clipboard.WriteImage(img); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		detail := filepath.Base(result.AnnotatedPath)
		fmt.Fprintf(os.Stderr, "copied %s to clipboard\n", detail)
		m.root.notifyCopy(detail)
	}
	return nil
}

func point(x, y float64) annotate.Point {
	return annotate.Point{X: x, Y: y}.Clamp()
}

func expectFloats(args []string, n int, shape string) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d coordinate arguments", shape, n)
	}
	vals := make([]float64, n)
	for i, raw := range args {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", raw)
		}
		vals[i] = v
	}
	return vals, nil
}

var markFlagNames = map[string]struct{}{
	"file":         {},
	"out-dir":      {},
	"to-clipboard": {},
	"to-clip":      {},
	"color":        {},
	"width":        {},
	"text-size":    {},
	"quality":      {},
}

var markBoolFlags = map[string]struct{}{
	"to-clipboard": {},
	"to-clip":      {},
}

// splitMarkArgs separates known flags from positionals so that flags may
// follow the shape arguments. Negative coordinates are kept positional.
func splitMarkArgs(args []string) ([]string, []string, error) {
	var flags []string
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positionals = append(positionals, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if name == "" {
			positionals = append(positionals, arg)
			continue
		}
		parts := strings.SplitN(name, "=", 2)
		base := strings.ToLower(parts[0])
		if _, ok := markFlagNames[base]; !ok {
			positionals = append(positionals, arg)
			continue
		}
		// Normalise to single dash form for the flag parser.
		norm := "-" + base
		if len(parts) == 2 {
			flags = append(flags, norm+"="+parts[1])
			continue
		}
		if _, ok := markBoolFlags[base]; ok {
			flags = append(flags, norm)
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("flag %s requires a value", arg)
		}
		flags = append(flags, norm, args[i+1])
		i++
	}
	return flags, positionals, nil
}
