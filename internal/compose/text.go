package compose

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	labelFont *opentype.Font
	faces     sync.Map // map[float64]font.Face
)

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse label font: %v", err)
	}
	labelFont = f
}

func faceForSize(size float64) (font.Face, error) {
	if size <= 0 {
		size = 12
	}
	if face, ok := faces.Load(size); ok {
		return face.(font.Face), nil
	}
	if labelFont == nil {
		return nil, fmt.Errorf("label font not initialised")
	}
	face, err := opentype.NewFace(labelFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	faces.Store(size, face)
	return face, nil
}

// MeasureText returns the dimensions of text rendered at the provided size.
// The returned width and height represent the bounding box, while baseline is
// the offset from the top to the text baseline.
func MeasureText(text string, size float64) (width, height, baseline int, err error) {
	face, err := faceForSize(size)
	if err != nil {
		return 0, 0, 0, err
	}
	drawer := &font.Drawer{Face: face}
	width = drawer.MeasureString(text).Ceil()
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	baseline = ascent
	height = ascent + descent
	return
}

// drawText renders text with its baseline-left corner at (x, y). Label
// anchoring is stable across resolutions because the anchor is the scaled
// tap point itself, not a derived box corner.
func drawText(img *image.RGBA, x, y int, text string, col color.Color, size float64) error {
	face, err := faceForSize(size)
	if err != nil {
		return err
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
	return nil
}
