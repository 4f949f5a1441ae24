package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/example/fieldmark/internal/annotate"
	"github.com/example/fieldmark/internal/config"
	"github.com/example/fieldmark/internal/notify"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs         *flag.FlagSet
	program    string
	notifier   *notify.Notifier
	config     *config.Config
	saveAlerts bool
	copyAlerts bool

	// Resolved from config once flags are parsed.
	startColor    *color.RGBA
	startWidth    int
	startTextSize float64
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("fieldmark", flag.ExitOnError),
		program:  "fieldmark",
		notifier: notify.New(prefs),
		config:   cfg,
	}
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an annotated photo")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.Usage = usageFunc(r)
	return r
}

// applyConfig folds the loaded configuration into the shared palette and the
// session start values. Extra palette colors become selectable in the editor.
func (r *root) applyConfig() {
	for name, col := range r.config.Palette {
		annotate.EnsurePaletteColor(col, name)
	}
	if r.config.DefaultWidth > 0 {
		annotate.EnsureWidth(r.config.DefaultWidth)
		r.startWidth = r.config.DefaultWidth
	}
	if r.config.TextSize > 0 {
		r.startTextSize = r.config.TextSize
	}
	if spec := strings.TrimSpace(r.config.DefaultColor); spec != "" {
		col, err := parseColorSpec(spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: config default_color: %v\n", err)
		} else {
			annotate.EnsurePaletteColor(col, "")
			r.startColor = &col
		}
	}
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.applyConfig()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r)
	case "mark":
		cmd, err = parseMarkCmd(subArgs, r)
	case "colors":
		cmd, err = parseColorsCmd(subArgs, r)
	case "widths":
		cmd, err = parseWidthsCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifyCopy(detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail)
}
