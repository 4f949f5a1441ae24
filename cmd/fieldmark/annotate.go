package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	"github.com/example/fieldmark/internal/editor"
)

// annotateCmd opens the interactive editor on a photo.
type annotateCmd struct {
	file    string
	outDir  string
	quality int
	*root
	fs *flag.FlagSet
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	a := &annotateCmd{root: r, fs: fs}
	fs.Usage = usageFunc(a)
	fs.StringVar(&a.file, "file", "", "photo to annotate")
	fs.StringVar(&a.outDir, "out-dir", r.config.SaveDir, "directory for the annotated copy (defaults to the photo's directory)")
	fs.IntVar(&a.quality, "quality", 0, "JPEG encoder quality (1-100, 0 uses the default)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if a.file == "" && fs.NArg() == 1 {
		a.file = fs.Arg(0)
	}
	if a.file == "" || fs.NArg() > 1 {
		return nil, &UsageError{of: a}
	}
	return a, nil
}

func (a *annotateCmd) Run() error {
	photo, err := loadPhoto(a.file)
	if err != nil {
		return err
	}
	opts := []editor.Option{
		editor.WithOutDir(a.outDir),
		editor.WithJPEGQuality(a.quality),
		editor.WithOnCopy(func(detail string) { a.root.notifyCopy(filepath.Base(detail)) }),
	}
	if a.root.startColor != nil {
		opts = append(opts, editor.WithInitialColor(*a.root.startColor))
	}
	if a.root.startWidth > 0 {
		opts = append(opts, editor.WithInitialWidth(a.root.startWidth))
	}
	if a.root.startTextSize > 0 {
		opts = append(opts, editor.WithInitialTextSize(a.root.startTextSize))
	}

	result, err := editor.New(a.file, photo, opts...).Run()
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Fprintln(os.Stderr, "cancelled, nothing written")
		return nil
	}
	saved := result.AnnotatedPath
	if abs, err := filepath.Abs(saved); err == nil {
		saved = abs
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", saved)
	a.root.notifySave(saved)
	return nil
}

// loadPhoto decodes a PNG or JPEG file into a drawable surface.
func loadPhoto(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, _, err := image.Decode(f)
	if err != nil {
		if cerr := f.Close(); cerr != nil {
			log.Printf("error closing %q: %v", path, cerr)
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		log.Printf("error closing %q: %v", path, err)
	}
	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	return rgba, nil
}
