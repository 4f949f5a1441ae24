package annotate

import "image/color"

// Tool selects how pointer input on the canvas is interpreted.
type Tool int

const (
	ToolDraw Tool = iota
	ToolText
	ToolArrow
)

func (t Tool) String() string {
	switch t {
	case ToolDraw:
		return "draw"
	case ToolText:
		return "text"
	case ToolArrow:
		return "arrow"
	default:
		return "unknown"
	}
}

// ToolState holds the active tool, the color, width and text size applied to
// newly created entities, and the single in-progress (uncommitted) entity a
// gesture is building. Changing color or width never touches entities that
// were already committed.
//
// Like Set, a ToolState belongs to one session and is mutated only from the
// interactive goroutine.
type ToolState struct {
	tool       Tool
	color      color.RGBA
	width      int
	textSize   float64
	inProgress *Entity
}

// NewToolState returns a ToolState with the draw tool and palette defaults.
func NewToolState() *ToolState {
	return &ToolState{
		tool:     ToolDraw,
		color:    DefaultColor(),
		width:    DefaultWidth(),
		textSize: DefaultTextSize(),
	}
}

// ActiveTool returns the currently selected tool.
func (ts *ToolState) ActiveTool() Tool { return ts.tool }

// Select switches the active tool. Any in-progress entity is abandoned
// without being committed; switching tools mid-gesture discards the gesture.
func (ts *ToolState) Select(t Tool) {
	ts.tool = t
	ts.inProgress = nil
}

// Color returns the color applied to new entities.
func (ts *ToolState) Color() color.RGBA { return ts.color }

// SetColor changes the color for entities created after the call.
func (ts *ToolState) SetColor(c color.RGBA) { ts.color = c }

// Width returns the stroke width applied to new entities, in reference pixels.
func (ts *ToolState) Width() int { return ts.width }

// SetWidth changes the stroke width for entities created after the call.
func (ts *ToolState) SetWidth(w int) {
	if w < 1 {
		w = 1
	}
	ts.width = w
}

// TextSize returns the label size applied to new labels, in reference pixels.
func (ts *ToolState) TextSize() float64 { return ts.textSize }

// SetTextSize changes the label size for labels created after the call.
func (ts *ToolState) SetTextSize(s float64) {
	if s > 0 {
		ts.textSize = s
	}
}

// Begin installs e as the in-progress entity, replacing any previous one.
func (ts *ToolState) Begin(e Entity) { ts.inProgress = &e }

// InProgress returns the entity currently under construction, or nil. The
// pointer stays valid only until the next Begin, Take, Abandon or Select.
func (ts *ToolState) InProgress() *Entity { return ts.inProgress }

// Take removes and returns the in-progress entity. It reports false when no
// gesture is underway.
func (ts *ToolState) Take() (Entity, bool) {
	if ts.inProgress == nil {
		return Entity{}, false
	}
	e := *ts.inProgress
	ts.inProgress = nil
	return e, true
}

// Abandon drops the in-progress entity without committing it.
func (ts *ToolState) Abandon() { ts.inProgress = nil }
