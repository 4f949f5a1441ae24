package annotate

import (
	"image/color"
	"strings"
)

// Point is a position on the editing canvas expressed as fractions of the
// canvas size. Both coordinates are clamped to [0, 1] so entity geometry is
// independent of whatever pixel resolution the canvas is rendered at.
type Point struct {
	X, Y float64
}

// Clamp returns the point constrained to the unit square.
func (p Point) Clamp() Point {
	return Point{X: clamp01(p.X), Y: clamp01(p.Y)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Kind identifies the variant of an Entity. The set is closed; rendering and
// gesture handling switch exhaustively over it.
type Kind int

const (
	KindStroke Kind = iota
	KindLabel
	KindArrow
)

func (k Kind) String() string {
	switch k {
	case KindStroke:
		return "stroke"
	case KindLabel:
		return "label"
	case KindArrow:
		return "arrow"
	default:
		return "unknown"
	}
}

// Entity is a single committed annotation. Geometry is always canvas
// normalized; Width and TextSize are pixel values at a 1000 pixel wide
// reference canvas and are scaled by consumers to their own resolution.
// Entities are immutable once committed to a Set.
type Entity struct {
	Kind  Kind
	Color color.RGBA
	Width int

	// Points is the ordered freehand path. Used by KindStroke only.
	Points []Point

	// Position anchors the label's baseline-left at the tap point.
	// Text and TextSize are used by KindLabel only.
	Position Point
	Text     string
	TextSize float64

	// Start and End are used by KindArrow only; the head is drawn at End.
	Start, End Point
}

// NewStroke builds a freehand stroke entity from an ordered path.
func NewStroke(points []Point, col color.RGBA, width int) Entity {
	path := make([]Point, len(points))
	for i, p := range points {
		path[i] = p.Clamp()
	}
	return Entity{Kind: KindStroke, Points: path, Color: col, Width: width}
}

// NewLabel builds a text label entity anchored at pos.
func NewLabel(pos Point, text string, col color.RGBA, size float64) Entity {
	return Entity{Kind: KindLabel, Position: pos.Clamp(), Text: text, Color: col, TextSize: size}
}

// NewArrow builds an arrow entity pointing from start to end.
func NewArrow(start, end Point, col color.RGBA, width int) Entity {
	return Entity{Kind: KindArrow, Start: start.Clamp(), End: end.Clamp(), Color: col, Width: width}
}

// Committable reports whether the entity carries enough geometry to be worth
// keeping: a stroke needs at least two points, an arrow a non zero length and
// a label some non-whitespace text. Degenerate gestures are discarded rather
// than treated as errors.
func (e Entity) Committable() bool {
	switch e.Kind {
	case KindStroke:
		return len(e.Points) >= 2
	case KindLabel:
		return strings.TrimSpace(e.Text) != ""
	case KindArrow:
		return e.Start != e.End
	default:
		return false
	}
}

// clone returns a copy that shares no mutable state with the receiver.
func (e Entity) clone() Entity {
	out := e
	if e.Points != nil {
		out.Points = make([]Point, len(e.Points))
		copy(out.Points, e.Points)
	}
	return out
}
