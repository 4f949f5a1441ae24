package editor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/fieldmark/internal/annotate"
)

var (
	chromeBG   = color.RGBA{R: 0x2b, G: 0x2b, B: 0x2b, A: 0xff}
	chromeFG   = colornames.Gainsboro
	selectedBG = color.RGBA{R: 0x4a, G: 0x6a, B: 0x8a, A: 0xff}
	swatchEdge = colornames.Gray
)

// toolButton is a clickable region in the left toolbar.
type toolButton struct {
	label string
	rect  image.Rectangle
	click func()
	sel   func() bool
}

type swatch struct {
	color color.RGBA
	rect  image.Rectangle
}

type widthOption struct {
	width int
	rect  image.Rectangle
}

type sizeOption struct {
	size float64
	rect image.Rectangle
}

// toolbar lays out tool, color, width and text size controls down the left
// edge. Layout is computed once; the window does not resize the bar.
type toolbar struct {
	sess   *Session
	tools  []toolButton
	colors []swatch
	widths []widthOption
	sizes  []sizeOption
}

func newToolbar(sess *Session) *toolbar {
	tb := &toolbar{sess: sess}
	y := 8
	for _, t := range []annotate.Tool{annotate.ToolDraw, annotate.ToolArrow, annotate.ToolText} {
		tool := t
		tb.tools = append(tb.tools, toolButton{
			label: tool.String(),
			rect:  image.Rect(8, y, toolbarWidth-8, y+22),
			click: func() { sess.SelectTool(tool) },
			sel:   func() bool { return sess.ActiveTool() == tool },
		})
		y += 26
	}
	y += 10
	const swatchSize = 22
	x := 8
	for _, c := range annotate.Palette() {
		if x+swatchSize > toolbarWidth-8 {
			x = 8
			y += swatchSize + 4
		}
		tb.colors = append(tb.colors, swatch{color: c, rect: image.Rect(x, y, x+swatchSize, y+swatchSize)})
		x += swatchSize + 4
	}
	y += swatchSize + 14
	for _, wd := range annotate.WidthOptions() {
		tb.widths = append(tb.widths, widthOption{width: wd, rect: image.Rect(8, y, toolbarWidth-8, y+18)})
		y += 20
	}
	y += 10
	for _, sz := range annotate.TextSizes() {
		tb.sizes = append(tb.sizes, sizeOption{size: sz, rect: image.Rect(8, y, toolbarWidth-8, y+18)})
		y += 20
	}
	return tb
}

// click dispatches a press inside the toolbar. It reports whether anything
// was hit.
func (tb *toolbar) click(p image.Point) bool {
	for _, b := range tb.tools {
		if p.In(b.rect) {
			b.click()
			return true
		}
	}
	for _, s := range tb.colors {
		if p.In(s.rect) {
			tb.sess.SetColor(s.color)
			return true
		}
	}
	for _, w := range tb.widths {
		if p.In(w.rect) {
			tb.sess.SetWidth(w.width)
			return true
		}
	}
	if tb.sess.ActiveTool() == annotate.ToolText {
		for _, s := range tb.sizes {
			if p.In(s.rect) {
				tb.sess.SetTextSize(s.size)
				return true
			}
		}
	}
	return false
}

func (tb *toolbar) draw(dst *image.RGBA, height int) {
	draw.Draw(dst, image.Rect(0, 0, toolbarWidth, height), image.NewUniform(chromeBG), image.Point{}, draw.Src)

	for _, b := range tb.tools {
		bg := chromeBG
		if b.sel() {
			bg = selectedBG
		}
		draw.Draw(dst, b.rect, image.NewUniform(bg), image.Point{}, draw.Src)
		strokeRect(dst, b.rect, swatchEdge)
		drawString(dst, b.rect.Min.X+6, b.rect.Max.Y-7, b.label, chromeFG)
	}
	active := tb.sess.Color()
	for _, s := range tb.colors {
		draw.Draw(dst, s.rect, image.NewUniform(s.color), image.Point{}, draw.Src)
		edge := swatchEdge
		if s.color == active {
			edge = colornames.White
			strokeRect(dst, s.rect.Inset(-1), edge)
		}
		strokeRect(dst, s.rect, edge)
	}
	for _, w := range tb.widths {
		bg := chromeBG
		if w.width == tb.sess.Width() {
			bg = selectedBG
		}
		draw.Draw(dst, w.rect, image.NewUniform(bg), image.Point{}, draw.Src)
		mid := (w.rect.Min.Y + w.rect.Max.Y) / 2
		bar := image.Rect(w.rect.Min.X+4, mid-w.width/2, w.rect.Max.X-4, mid-w.width/2+w.width)
		draw.Draw(dst, bar, image.NewUniform(chromeFG), image.Point{}, draw.Src)
	}
	if tb.sess.ActiveTool() == annotate.ToolText {
		for _, s := range tb.sizes {
			bg := chromeBG
			if s.size == tb.sess.TextSize() {
				bg = selectedBG
			}
			draw.Draw(dst, s.rect, image.NewUniform(bg), image.Point{}, draw.Src)
			drawString(dst, s.rect.Min.X+6, s.rect.Max.Y-5, fmt.Sprintf("%gpx", s.size), chromeFG)
		}
	}
}

func drawBackdrop(dst *image.RGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}), image.Point{}, draw.Src)
}

func drawBottomBar(dst *image.RGBA, width, height int, textMode bool) {
	bar := image.Rect(0, height-bottomHeight, width, height)
	draw.Draw(dst, bar, image.NewUniform(chromeBG), image.Point{}, draw.Src)
	hint := "D/A/T tool  Z undo  C copy  Enter save  Esc cancel"
	if textMode {
		hint = "type label  Enter confirm  Esc discard"
	}
	drawString(dst, toolbarWidth+8, height-8, hint, chromeFG)
}

// drawLabelPreview shows the text being typed at its anchor, in the color it
// will be committed with.
func drawLabelPreview(dst *image.RGBA, x, y int, text string, c color.RGBA) {
	drawString(dst, x, y, text, c)
}

func drawCenteredMessage(dst *image.RGBA, width, height int, msg string) {
	fw := basicfont.Face7x13.Advance * len(msg)
	x := (width+toolbarWidth)/2 - fw/2
	y := height / 2
	box := image.Rect(x-8, y-16, x+fw+8, y+8)
	draw.Draw(dst, box, image.NewUniform(chromeBG), image.Point{}, draw.Src)
	strokeRect(dst, box, swatchEdge)
	drawString(dst, x, y, msg, chromeFG)
}

func drawString(dst *image.RGBA, x, y int, text string, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func strokeRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.Set(x, r.Min.Y, c)
		dst.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.Set(r.Min.X, y, c)
		dst.Set(r.Max.X-1, y, c)
	}
}
