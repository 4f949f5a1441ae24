package compose

import (
	"image"
	"image/color"
	"testing"

	"github.com/example/fieldmark/internal/annotate"
)

func countColored(img *image.RGBA, c color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

func TestRenderStrokePaintsPath(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	e := annotate.NewStroke([]annotate.Point{{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.9}}, testRed, 2)
	if err := RenderEntity(img, e); err != nil {
		t.Fatalf("render: %v", err)
	}
	if countColored(img, testRed) == 0 {
		t.Fatalf("stroke painted nothing")
	}
	if img.RGBAAt(50, 50) != testRed {
		t.Fatalf("diagonal stroke should cross the center")
	}
}

func TestRenderArrowPaintsHead(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	e := annotate.NewArrow(annotate.Point{X: 0.1, Y: 0.5}, annotate.Point{X: 0.9, Y: 0.5}, testRed, 2)
	if err := RenderEntity(img, e); err != nil {
		t.Fatalf("render: %v", err)
	}
	shaft := countColored(img, testRed)
	if shaft == 0 {
		t.Fatalf("arrow painted nothing")
	}

	// The filled head makes an arrow heavier than a bare line of the same
	// geometry.
	lineOnly := image.NewRGBA(image.Rect(0, 0, 200, 200))
	if err := RenderEntity(lineOnly, annotate.NewStroke([]annotate.Point{{X: 0.1, Y: 0.5}, {X: 0.9, Y: 0.5}}, testRed, 2)); err != nil {
		t.Fatalf("render line: %v", err)
	}
	if shaft <= countColored(lineOnly, testRed) {
		t.Fatalf("expected arrow head to add pixels beyond the shaft")
	}
}

func TestRenderLabelPaintsGlyphs(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	e := annotate.NewLabel(annotate.Point{X: 0.2, Y: 0.5}, "leak", testRed, 32)
	if err := RenderEntity(img, e); err != nil {
		t.Fatalf("render: %v", err)
	}
	// Glyph edges are antialiased, so look for reddish coverage rather than
	// exact color matches.
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.R > 100 && c.G < 80 && c.B < 80 && c.A > 100 {
				n++
			}
		}
	}
	if n == 0 {
		t.Fatalf("label painted nothing")
	}
}

func TestRenderOrderLaterEntityWins(t *testing.T) {
	blue := color.RGBA{0, 0, 255, 255}
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	line := []annotate.Point{{X: 0, Y: 0.5}, {X: 1, Y: 0.5}}
	entities := []annotate.Entity{
		annotate.NewStroke(line, testRed, 4),
		annotate.NewStroke(line, blue, 4),
	}
	if err := RenderEntities(img, entities); err != nil {
		t.Fatalf("render: %v", err)
	}
	if img.RGBAAt(50, 50) != blue {
		t.Fatalf("later entity should paint over earlier one, got %v", img.RGBAAt(50, 50))
	}
}

func TestScaleThicknessFloor(t *testing.T) {
	if got := scaleThickness(2, 0.01); got < 1 {
		t.Fatalf("thickness must stay at least 1, got %d", got)
	}
	if thin, thick := scaleThickness(2, 1), scaleThickness(10, 1); thick <= thin {
		t.Fatalf("wider configured width must stay wider, got %d vs %d", thin, thick)
	}
}

func TestDevicePointMapsCorners(t *testing.T) {
	b := image.Rect(0, 0, 640, 480)
	if got := devicePoint(annotate.Point{X: 0, Y: 0}, b, 640, 480); got != image.Pt(0, 0) {
		t.Fatalf("origin mapped to %v", got)
	}
	if got := devicePoint(annotate.Point{X: 1, Y: 1}, b, 640, 480); got != image.Pt(640, 480) {
		t.Fatalf("far corner mapped to %v", got)
	}
	if got := devicePoint(annotate.Point{X: 0.5, Y: 0.5}, b, 640, 480); got != image.Pt(320, 240) {
		t.Fatalf("center mapped to %v", got)
	}
}

func TestMeasureText(t *testing.T) {
	w, h, baseline, err := MeasureText("crack", 24)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if w <= 0 || h <= 0 || baseline <= 0 {
		t.Fatalf("expected positive metrics, got w=%d h=%d baseline=%d", w, h, baseline)
	}
	w2, _, _, err := MeasureText("crack crack", 24)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if w2 <= w {
		t.Fatalf("longer text must measure wider")
	}
}
