package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/fieldmark/internal/config"
)

func testRoot() *root {
	return &root{program: "fieldmark", config: config.New()}
}

func TestParseMarkRequiresFile(t *testing.T) {
	_, err := parseMarkCmd([]string{"arrow", "0.1", "0.1", "0.5", "0.5"}, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "input file is required"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseMarkUnsupportedShape(t *testing.T) {
	_, err := parseMarkCmd([]string{"-file", "a.png", "blob", "0.1", "0.1"}, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "unsupported shape"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseMarkStrokeNeedsTwoPoints(t *testing.T) {
	_, err := parseMarkCmd([]string{"-file", "a.png", "stroke", "0.1", "0.1"}, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "at least two x y pairs"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseMarkLabelNeedsContent(t *testing.T) {
	_, err := parseMarkCmd([]string{"-file", "a.png", "label", "0.5", "0.5", "   "}, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "label content cannot be empty"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseColorSpec(t *testing.T) {
	if c, err := parseColorSpec("red"); err != nil || c != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("named color: got %v, %v", c, err)
	}
	if c, err := parseColorSpec("Orange"); err != nil || c.A != 255 {
		t.Fatalf("palette color: got %v, %v", c, err)
	}
	if c, err := parseColorSpec("#11223344"); err != nil || c != (color.RGBA{0x11, 0x22, 0x33, 0x44}) {
		t.Fatalf("hex color: got %v, %v", c, err)
	}
	if _, err := parseColorSpec("not-a-color"); err == nil {
		t.Fatalf("expected error for invalid color")
	}
}

func TestSplitMarkArgsKeepsNegativeCoordinates(t *testing.T) {
	flags, positionals, err := splitMarkArgs([]string{"-file", "a.png", "arrow", "-0.1", "0.2", "0.5", "0.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flags) != 2 || flags[0] != "-file" {
		t.Fatalf("expected file flag extracted, got %v", flags)
	}
	want := []string{"arrow", "-0.1", "0.2", "0.5", "0.5"}
	if len(positionals) != len(want) {
		t.Fatalf("expected positionals %v, got %v", want, positionals)
	}
	for i := range want {
		if positionals[i] != want[i] {
			t.Fatalf("expected positionals %v, got %v", want, positionals)
		}
	}
}

func TestMarkRunRejectsDegenerateArrow(t *testing.T) {
	m := &markCmd{
		root:     testRoot(),
		file:     "unused.png",
		shape:    "arrow",
		coords:   []float64{0.5, 0.5, 0.5, 0.5},
		color:    color.RGBA{255, 0, 0, 255},
		width:    2,
		textSize: 24,
	}
	if err := m.Run(); err == nil {
		t.Fatalf("expected error")
	} else if want := "did not produce an annotation"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestMarkRunWritesAnnotatedCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	writeTestPNG(t, src, 64, 48)
	before, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}

	m := &markCmd{
		root:     testRoot(),
		file:     src,
		outDir:   dir,
		shape:    "stroke",
		coords:   []float64{0.1, 0.1, 0.9, 0.9},
		color:    color.RGBA{255, 0, 0, 255},
		width:    2,
		textSize: 24,
	}
	if err := m.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	after, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("re-read source: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("source file was modified")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var annotated string
	for _, e := range entries {
		if e.Name() != "photo.png" && strings.Contains(e.Name(), ".annotated.") {
			annotated = filepath.Join(dir, e.Name())
		}
	}
	if annotated == "" {
		t.Fatalf("no annotated copy written, dir has %d entries", len(entries))
	}
	f, err := os.Open(annotated)
	if err != nil {
		t.Fatalf("open annotated: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("annotated copy is not a valid png: %v", err)
	}
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 5), 200, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}
