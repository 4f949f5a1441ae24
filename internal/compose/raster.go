package compose

import (
	"image"
	"image/color"
	"math"

	"github.com/example/fieldmark/internal/annotate"
)

// referenceWidth is the canvas width, in pixels, at which entity stroke
// widths and text sizes are expressed. Rasterizing onto a surface of width W
// scales both by W/referenceWidth so annotations keep their apparent
// proportions between preview and native resolution.
const referenceWidth = 1000.0

// RenderEntities rasterizes the entities onto dst in order, so later entries
// paint over earlier ones.
func RenderEntities(dst *image.RGBA, entities []annotate.Entity) error {
	for _, e := range entities {
		if err := RenderEntity(dst, e); err != nil {
			return err
		}
	}
	return nil
}

// RenderEntity rasterizes a single entity onto dst, scaling its normalized
// geometry to dst's bounds. The only error source is label font setup.
func RenderEntity(dst *image.RGBA, e annotate.Entity) error {
	b := dst.Bounds()
	w := float64(b.Dx())
	h := float64(b.Dy())
	scale := w / referenceWidth
	switch e.Kind {
	case annotate.KindStroke:
		thick := scaleThickness(e.Width, scale)
		prev := devicePoint(e.Points[0], b, w, h)
		if len(e.Points) == 1 {
			setThickPixel(dst, prev.X, prev.Y, thick, e.Color)
			return nil
		}
		for _, p := range e.Points[1:] {
			cur := devicePoint(p, b, w, h)
			drawLine(dst, prev.X, prev.Y, cur.X, cur.Y, e.Color, thick)
			prev = cur
		}
	case annotate.KindArrow:
		thick := scaleThickness(e.Width, scale)
		start := devicePoint(e.Start, b, w, h)
		end := devicePoint(e.End, b, w, h)
		drawArrow(dst, start.X, start.Y, end.X, end.Y, e.Color, thick)
	case annotate.KindLabel:
		pos := devicePoint(e.Position, b, w, h)
		size := e.TextSize * scale
		if size < 1 {
			size = 1
		}
		return drawText(dst, pos.X, pos.Y, e.Text, e.Color, size)
	}
	return nil
}

func devicePoint(p annotate.Point, b image.Rectangle, w, h float64) image.Point {
	return image.Pt(b.Min.X+int(math.Round(p.X*w)), b.Min.Y+int(math.Round(p.Y*h)))
}

func scaleThickness(width int, scale float64) int {
	t := int(math.Round(float64(width) * scale))
	if t < 1 {
		t = 1
	}
	return t
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// drawArrow draws the shaft and a filled triangular head at (x1, y1)
// oriented along the shaft direction. The head grows with the stroke width
// so it stays visible at any resolution.
func drawArrow(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	angle := math.Atan2(float64(y1-y0), float64(x1-x0))
	size := float64(8 + thick*3)

	// Shorten the shaft so it does not poke through the head tip.
	shaftX := x1 - int(math.Cos(angle)*size*0.5)
	shaftY := y1 - int(math.Sin(angle)*size*0.5)
	drawLine(img, x0, y0, shaftX, shaftY, col, thick)

	a1 := angle + math.Pi/7
	a2 := angle - math.Pi/7
	left := image.Pt(x1-int(math.Cos(a1)*size), y1-int(math.Sin(a1)*size))
	right := image.Pt(x1-int(math.Cos(a2)*size), y1-int(math.Sin(a2)*size))
	fillTriangle(img, image.Pt(x1, y1), left, right, col)
}

// fillTriangle rasterizes the triangle a-b-c by scanning its bounding box
// and testing edge orientation. Head triangles are small, so this stays cheap.
func fillTriangle(img *image.RGBA, a, b, c image.Point, col color.Color) {
	minX := min3(a.X, b.X, c.X)
	maxX := max3(a.X, b.X, c.X)
	minY := min3(a.Y, b.Y, c.Y)
	maxY := max3(a.Y, b.Y, c.Y)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if !image.Pt(x, y).In(img.Bounds()) {
				continue
			}
			d1 := edgeSign(x, y, a, b)
			d2 := edgeSign(x, y, b, c)
			d3 := edgeSign(x, y, c, a)
			hasNeg := d1 < 0 || d2 < 0 || d3 < 0
			hasPos := d1 > 0 || d2 > 0 || d3 > 0
			if !(hasNeg && hasPos) {
				img.Set(x, y, col)
			}
		}
	}
}

func edgeSign(px, py int, a, b image.Point) int {
	return (px-b.X)*(a.Y-b.Y) - (a.X-b.X)*(py-b.Y)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3(a, b, c int) int {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
