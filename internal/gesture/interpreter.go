// Package gesture turns raw pointer input into annotation entities. The
// interpretation of a gesture depends on the active tool: the draw tool
// accumulates a freehand path, the arrow tool tracks a live endpoint, and the
// text tool opens an out-of-band text entry that commits on confirmation.
//
// Committing to the Set is the only mutation the undo log ever sees;
// degenerate gestures (single-point strokes, zero-length arrows, empty label
// text) are discarded silently.
package gesture

import (
	"strings"

	"github.com/example/fieldmark/internal/annotate"
)

// Interpreter drives one canvas interaction at a time against a session's
// tool state and entity set. All methods run synchronously on the interactive
// goroutine; nothing here blocks or allocates beyond the path being built.
type Interpreter struct {
	tools *annotate.ToolState
	set   *annotate.Set

	pendingLabel *annotate.Point
}

// New returns an interpreter bound to the session's tool state and set.
func New(tools *annotate.ToolState, set *annotate.Set) *Interpreter {
	return &Interpreter{tools: tools, set: set}
}

// PointerDown begins a gesture at p for the draw and arrow tools. For the
// text tool pointer presses are ignored; taps go through Tap instead.
func (in *Interpreter) PointerDown(p annotate.Point) {
	p = p.Clamp()
	switch in.tools.ActiveTool() {
	case annotate.ToolDraw:
		in.tools.Begin(annotate.NewStroke([]annotate.Point{p}, in.tools.Color(), in.tools.Width()))
	case annotate.ToolArrow:
		in.tools.Begin(annotate.NewArrow(p, p, in.tools.Color(), in.tools.Width()))
	case annotate.ToolText:
	}
}

// PointerMove extends the gesture in progress: the draw tool appends p to
// the path, the arrow tool moves the live endpoint. Without a preceding
// PointerDown the event is dropped.
func (in *Interpreter) PointerMove(p annotate.Point) {
	e := in.tools.InProgress()
	if e == nil {
		return
	}
	p = p.Clamp()
	switch e.Kind {
	case annotate.KindStroke:
		// Skip points identical to the tail so a press-and-release with
		// jitterless move events still counts as a single-point tap.
		if e.Points[len(e.Points)-1] == p {
			return
		}
		e.Points = append(e.Points, p)
	case annotate.KindArrow:
		e.End = p
	}
}

// PointerUp ends the gesture. The in-progress entity is committed when it
// carries real geometry and discarded otherwise; either way the buffer is
// cleared.
func (in *Interpreter) PointerUp() {
	e, ok := in.tools.Take()
	if !ok {
		return
	}
	if e.Committable() {
		in.set.Commit(e)
	}
}

// Tap starts a label interaction at p when the text tool is active. It
// reports true when the caller should open a text entry; the label commits
// later through ConfirmText.
func (in *Interpreter) Tap(p annotate.Point) bool {
	if in.tools.ActiveTool() != annotate.ToolText {
		return false
	}
	p = p.Clamp()
	in.pendingLabel = &p
	return true
}

// PendingLabel returns the anchor of the label awaiting text, if any.
func (in *Interpreter) PendingLabel() (annotate.Point, bool) {
	if in.pendingLabel == nil {
		return annotate.Point{}, false
	}
	return *in.pendingLabel, true
}

// ConfirmText completes a label interaction. Whitespace-only text commits
// nothing. It reports whether an entity was committed.
func (in *Interpreter) ConfirmText(text string) bool {
	pos := in.pendingLabel
	in.pendingLabel = nil
	if pos == nil {
		return false
	}
	text = strings.TrimSpace(text)
	label := annotate.NewLabel(*pos, text, in.tools.Color(), in.tools.TextSize())
	if !label.Committable() {
		return false
	}
	in.set.Commit(label)
	return true
}

// CancelText abandons a label interaction without creating an entity.
func (in *Interpreter) CancelText() {
	in.pendingLabel = nil
}

// Reset abandons any gesture or label interaction in progress.
func (in *Interpreter) Reset() {
	in.tools.Abandon()
	in.pendingLabel = nil
}
