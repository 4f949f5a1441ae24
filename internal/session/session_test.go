package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/fieldmark/internal/annotate"
)

// fakeComposer records calls and lets tests control timing and outcome.
type fakeComposer struct {
	mu       sync.Mutex
	calls    int
	entities []annotate.Entity
	path     string
	err      error
	release  chan struct{}
}

func (f *fakeComposer) Compose(sourcePath string, entities []annotate.Entity) (string, error) {
	f.mu.Lock()
	f.calls++
	f.entities = entities
	err := f.err
	path := f.path
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	if err != nil {
		return "", err
	}
	if path != "" {
		return path, nil
	}
	return sourcePath + ".annotated", nil
}

func (f *fakeComposer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func drawStroke(s *Session) {
	s.SelectTool(annotate.ToolDraw)
	s.PointerDown(annotate.Point{X: 0.1, Y: 0.1})
	s.PointerMove(annotate.Point{X: 0.6, Y: 0.6})
	s.PointerUp()
}

func waitResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for result")
		return Result{}
	}
}

func TestDoneDeliversResult(t *testing.T) {
	fc := &fakeComposer{path: "/photos/a.annotated.png"}
	results := make(chan Result, 1)
	s := New("/photos/a.png",
		WithComposer(fc),
		WithOnComplete(func(r Result) { results <- r }),
	)
	drawStroke(s)

	if err := s.Done(); err != nil {
		t.Fatalf("done: %v", err)
	}
	r := waitResult(t, results)
	if r.OriginalPath != "/photos/a.png" {
		t.Errorf("original path: %s", r.OriginalPath)
	}
	if r.AnnotatedPath != "/photos/a.annotated.png" {
		t.Errorf("annotated path: %s", r.AnnotatedPath)
	}
	if !r.HasAnnotations {
		t.Errorf("expected HasAnnotations")
	}
	if s.CurrentState() != StateDone {
		t.Errorf("expected terminal state, got %v", s.CurrentState())
	}
}

func TestDoneWithoutAnnotations(t *testing.T) {
	fc := &fakeComposer{}
	results := make(chan Result, 1)
	s := New("p.png", WithComposer(fc), WithOnComplete(func(r Result) { results <- r }))

	if err := s.Done(); err != nil {
		t.Fatalf("done: %v", err)
	}
	r := waitResult(t, results)
	if r.HasAnnotations {
		t.Errorf("empty set must report HasAnnotations=false")
	}
	if fc.callCount() != 1 {
		t.Errorf("compositor should still run for an empty set")
	}
}

func TestReentrantDoneRejected(t *testing.T) {
	fc := &fakeComposer{release: make(chan struct{})}
	results := make(chan Result, 1)
	s := New("p.png", WithComposer(fc), WithOnComplete(func(r Result) { results <- r }))

	if err := s.Done(); err != nil {
		t.Fatalf("first done: %v", err)
	}
	if err := s.Done(); !errors.Is(err, ErrComposing) {
		t.Fatalf("expected ErrComposing, got %v", err)
	}
	if err := s.Cancel(); !errors.Is(err, ErrComposing) {
		t.Fatalf("cancel during compose should be rejected, got %v", err)
	}

	close(fc.release)
	waitResult(t, results)
	if err := s.Done(); !errors.Is(err, ErrFinished) {
		t.Fatalf("expected ErrFinished after completion, got %v", err)
	}
	if fc.callCount() != 1 {
		t.Fatalf("compositor must run exactly once, ran %d times", fc.callCount())
	}
}

func TestComposeFailureReturnsToEditing(t *testing.T) {
	sentinel := errors.New("disk full")
	fc := &fakeComposer{err: sentinel}
	failures := make(chan error, 1)
	s := New("p.png", WithComposer(fc), WithOnError(func(err error) { failures <- err }))
	drawStroke(s)

	if err := s.Done(); err != nil {
		t.Fatalf("done: %v", err)
	}
	select {
	case err := <-failures:
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for error")
	}
	if s.CurrentState() != StateEditing {
		t.Fatalf("failed compose must return to editing, got %v", s.CurrentState())
	}
	if len(s.Entities()) != 1 {
		t.Fatalf("entities must survive a failed compose")
	}

	// Retry succeeds once the composer recovers.
	fc.mu.Lock()
	fc.err = nil
	fc.mu.Unlock()
	results := make(chan Result, 1)
	s.onComplete = func(r Result) { results <- r }
	if err := s.Done(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	waitResult(t, results)
}

func TestCancelFiresCallbackWithoutCompose(t *testing.T) {
	fc := &fakeComposer{}
	cancelled := false
	completed := false
	s := New("p.png",
		WithComposer(fc),
		WithOnComplete(func(Result) { completed = true }),
		WithOnCancel(func() { cancelled = true }),
	)
	drawStroke(s)

	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !cancelled {
		t.Fatalf("expected OnCancel")
	}
	if completed {
		t.Fatalf("OnComplete must not fire on cancel")
	}
	if fc.callCount() != 0 {
		t.Fatalf("cancel must not invoke the compositor")
	}
	if s.CurrentState() != StateCancelled {
		t.Fatalf("expected cancelled state, got %v", s.CurrentState())
	}
}

func TestTerminalSessionIgnoresInput(t *testing.T) {
	s := New("p.png", WithComposer(&fakeComposer{}))
	drawStroke(s)
	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	drawStroke(s)
	if len(s.Entities()) != 0 {
		t.Fatalf("cancelled session must ignore gestures")
	}
	if s.Undo() {
		t.Fatalf("cancelled session must ignore undo")
	}
	if s.Tap(annotate.Point{X: 0.5, Y: 0.5}) {
		t.Fatalf("cancelled session must ignore taps")
	}
	if err := s.Cancel(); !errors.Is(err, ErrFinished) {
		t.Fatalf("second cancel should report ErrFinished, got %v", err)
	}
}

func TestDoneSnapshotIgnoresLaterMutation(t *testing.T) {
	fc := &fakeComposer{release: make(chan struct{})}
	results := make(chan Result, 1)
	s := New("p.png", WithComposer(fc), WithOnComplete(func(r Result) { results <- r }))
	drawStroke(s)

	if err := s.Done(); err != nil {
		t.Fatalf("done: %v", err)
	}
	// Input after Done is accepted nowhere; the snapshot handed to the
	// compositor is the set at Done time.
	drawStroke(s)
	close(fc.release)
	waitResult(t, results)

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if len(fc.entities) != 1 {
		t.Fatalf("compositor saw %d entities, want 1", len(fc.entities))
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	a := New("p.png")
	b := New("p.png")
	if a.ID() == b.ID() || a.ID() == "" {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", a.ID(), b.ID())
	}
}

func TestUndoEmptyIsNoOp(t *testing.T) {
	s := New("p.png", WithComposer(&fakeComposer{}))
	if s.Undo() {
		t.Fatalf("undo on empty session should report false")
	}
	drawStroke(s)
	if !s.Undo() {
		t.Fatalf("undo should remove the stroke")
	}
	if s.CanUndo() {
		t.Fatalf("set should be empty again")
	}
}
