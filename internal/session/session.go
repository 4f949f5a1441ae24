// Package session orchestrates one annotate-then-done-or-cancel interaction
// over a single source photo. The session owns the entity set and tool state
// for its whole lifetime: gesture input mutates them synchronously on the
// interactive goroutine, while compositing runs once, in the background,
// when the user finishes.
package session

import (
	"errors"
	"image/color"
	"sync"

	"github.com/google/uuid"

	"github.com/example/fieldmark/internal/annotate"
	"github.com/example/fieldmark/internal/compose"
	"github.com/example/fieldmark/internal/gesture"
)

// Result is delivered once per session on a successful Done.
type Result struct {
	// OriginalPath is the source photo, byte-for-byte unchanged.
	OriginalPath string
	// AnnotatedPath is the freshly written composite, always distinct from
	// OriginalPath.
	AnnotatedPath string
	// HasAnnotations reports whether any entity was committed at the moment
	// Done was invoked.
	HasAnnotations bool
}

// Composer produces the annotated copy of a photo. *compose.Compositor is
// the production implementation; tests substitute their own.
type Composer interface {
	Compose(sourcePath string, entities []annotate.Entity) (string, error)
}

var (
	// ErrComposing rejects a Done or Cancel that arrives while a previous
	// Done is still in flight.
	ErrComposing = errors.New("session: compose already in flight")
	// ErrFinished rejects operations on a session that already completed.
	ErrFinished = errors.New("session: already finished")
)

// State tracks where the session is in its lifecycle.
type State int

const (
	StateEditing State = iota
	StateComposing
	StateDone
	StateCancelled
)

// Session runs one photo edit. Create it with New, feed it gestures from the
// interactive goroutine, then call Done or Cancel exactly once. After either
// succeeds the session is terminal and ignores further input.
type Session struct {
	id        string
	photoPath string

	tools    *annotate.ToolState
	set      *annotate.Set
	gestures *gesture.Interpreter
	composer Composer

	onComplete func(Result)
	onCancel   func()
	onError    func(error)

	mu    sync.Mutex
	state State
}

// Option configures a Session during creation.
type Option func(*Session)

// WithComposer substitutes the compositor used on Done.
func WithComposer(c Composer) Option { return func(s *Session) { s.composer = c } }

// WithOnComplete registers the callback that receives the result of a
// successful Done. It runs on the compositing goroutine.
func WithOnComplete(fn func(Result)) Option { return func(s *Session) { s.onComplete = fn } }

// WithOnCancel registers the callback fired when the session is cancelled.
func WithOnCancel(fn func()) Option { return func(s *Session) { s.onCancel = fn } }

// WithOnError registers the callback that receives compositor failures. The
// session stays editable so the user can retry or cancel.
func WithOnError(fn func(error)) Option { return func(s *Session) { s.onError = fn } }

// New opens an editing session over the photo at photoPath. The entity set
// starts empty and the tools at palette defaults.
func New(photoPath string, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		photoPath: photoPath,
		tools:     annotate.NewToolState(),
		set:       &annotate.Set{},
		composer:  &compose.Compositor{},
	}
	s.gestures = gesture.New(s.tools, s.set)
	for _, o := range opts {
		o(s)
	}
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// PhotoPath returns the source photo path the session was opened with.
func (s *Session) PhotoPath() string { return s.photoPath }

// CurrentState returns the lifecycle state.
func (s *Session) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateEditing
}

// SelectTool switches the active tool, abandoning any gesture in progress.
func (s *Session) SelectTool(t annotate.Tool) {
	if !s.editing() {
		return
	}
	s.gestures.Reset()
	s.tools.Select(t)
}

// ActiveTool returns the currently selected tool.
func (s *Session) ActiveTool() annotate.Tool { return s.tools.ActiveTool() }

// SetColor changes the color for entities created after the call.
func (s *Session) SetColor(c color.RGBA) {
	if s.editing() {
		s.tools.SetColor(c)
	}
}

// Color returns the color applied to new entities.
func (s *Session) Color() color.RGBA { return s.tools.Color() }

// SetWidth changes the stroke width for entities created after the call.
func (s *Session) SetWidth(w int) {
	if s.editing() {
		s.tools.SetWidth(w)
	}
}

// Width returns the stroke width applied to new entities.
func (s *Session) Width() int { return s.tools.Width() }

// SetTextSize changes the label size for labels created after the call.
func (s *Session) SetTextSize(size float64) {
	if s.editing() {
		s.tools.SetTextSize(size)
	}
}

// TextSize returns the label size applied to new labels.
func (s *Session) TextSize() float64 { return s.tools.TextSize() }

// PointerDown forwards a pointer press to the gesture interpreter.
func (s *Session) PointerDown(p annotate.Point) {
	if s.editing() {
		s.gestures.PointerDown(p)
	}
}

// PointerMove forwards a pointer drag to the gesture interpreter.
func (s *Session) PointerMove(p annotate.Point) {
	if s.editing() {
		s.gestures.PointerMove(p)
	}
}

// PointerUp ends the gesture, committing or discarding its entity.
func (s *Session) PointerUp() {
	if s.editing() {
		s.gestures.PointerUp()
	}
}

// Tap starts a label interaction under the text tool. It reports true when
// the caller should open a text entry.
func (s *Session) Tap(p annotate.Point) bool {
	if !s.editing() {
		return false
	}
	return s.gestures.Tap(p)
}

// PendingLabel returns the anchor of the label awaiting text, if any.
func (s *Session) PendingLabel() (annotate.Point, bool) { return s.gestures.PendingLabel() }

// ConfirmText completes a label interaction with the entered text.
func (s *Session) ConfirmText(text string) bool {
	if !s.editing() {
		return false
	}
	return s.gestures.ConfirmText(text)
}

// CancelText abandons a label interaction.
func (s *Session) CancelText() {
	if s.editing() {
		s.gestures.CancelText()
	}
}

// Undo removes the most recently committed entity; on an empty set it does
// nothing. It reports whether an entity was removed.
func (s *Session) Undo() bool {
	if !s.editing() {
		return false
	}
	_, ok := s.set.Undo()
	return ok
}

// CanUndo reports whether there is anything to undo.
func (s *Session) CanUndo() bool { return s.set.CanUndo() }

// Entities returns a snapshot of the committed entities in paint order.
func (s *Session) Entities() []annotate.Entity { return s.set.Entities() }

// InProgress returns the entity currently under construction, or nil.
func (s *Session) InProgress() *annotate.Entity { return s.tools.InProgress() }

// Done hands the committed entities and the source photo to the compositor
// on a background goroutine. On success the session turns terminal and
// OnComplete receives the Result; on failure OnError receives the typed
// compositor error and the session stays editable for a retry.
//
// At most one Done may be in flight: reentrant calls return ErrComposing,
// calls after completion return ErrFinished.
func (s *Session) Done() error {
	s.mu.Lock()
	switch s.state {
	case StateComposing:
		s.mu.Unlock()
		return ErrComposing
	case StateDone, StateCancelled:
		s.mu.Unlock()
		return ErrFinished
	}
	s.state = StateComposing
	s.mu.Unlock()

	// Snapshot outside the hot path: the set cannot change anymore because
	// gesture input is rejected outside StateEditing.
	entities := s.set.Entities()
	hasAnnotations := len(entities) > 0

	go func() {
		annotatedPath, err := s.composer.Compose(s.photoPath, entities)
		if err != nil {
			s.mu.Lock()
			s.state = StateEditing
			s.mu.Unlock()
			if s.onError != nil {
				s.onError(err)
			}
			return
		}
		s.mu.Lock()
		s.state = StateDone
		s.mu.Unlock()
		if s.onComplete != nil {
			s.onComplete(Result{
				OriginalPath:   s.photoPath,
				AnnotatedPath:  annotatedPath,
				HasAnnotations: hasAnnotations,
			})
		}
	}()
	return nil
}

// Cancel discards the entity set and tool state without any file I/O and
// fires OnCancel. It is rejected while a Done is in flight.
func (s *Session) Cancel() error {
	s.mu.Lock()
	switch s.state {
	case StateComposing:
		s.mu.Unlock()
		return ErrComposing
	case StateDone, StateCancelled:
		s.mu.Unlock()
		return ErrFinished
	}
	s.state = StateCancelled
	s.mu.Unlock()

	s.gestures.Reset()
	s.set = &annotate.Set{}
	if s.onCancel != nil {
		s.onCancel()
	}
	return nil
}
