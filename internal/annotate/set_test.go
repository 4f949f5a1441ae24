package annotate

import (
	"image/color"
	"testing"
)

var red = color.RGBA{255, 0, 0, 255}

func TestCommitUndoSymmetry(t *testing.T) {
	s := &Set{}
	for i := 0; i < 5; i++ {
		s.Commit(NewArrow(Point{0.1, 0.1}, Point{0.9, 0.9}, red, 2))
	}
	if s.Len() != 5 {
		t.Fatalf("expected 5 entities, got %d", s.Len())
	}
	for i := 0; i < 5; i++ {
		if _, ok := s.Undo(); !ok {
			t.Fatalf("undo %d failed", i)
		}
	}
	if !s.Empty() {
		t.Fatalf("expected empty set after matching undos")
	}
}

func TestUndoOnEmptyIsNoOp(t *testing.T) {
	s := &Set{}
	if _, ok := s.Undo(); ok {
		t.Fatalf("undo on empty set should report false")
	}
	if _, ok := s.Undo(); ok {
		t.Fatalf("repeated undo on empty set should stay a no-op")
	}
	if s.CanUndo() {
		t.Fatalf("CanUndo should be false on empty set")
	}
}

func TestUndoReturnsMostRecent(t *testing.T) {
	s := &Set{}
	s.Commit(NewLabel(Point{0.2, 0.2}, "first", red, 24))
	s.Commit(NewLabel(Point{0.4, 0.4}, "second", red, 24))
	e, ok := s.Undo()
	if !ok || e.Text != "second" {
		t.Fatalf("expected most recent entity, got %+v ok=%v", e, ok)
	}
	e, ok = s.Undo()
	if !ok || e.Text != "first" {
		t.Fatalf("expected first entity next, got %+v ok=%v", e, ok)
	}
}

func TestEntitiesSnapshotIsolation(t *testing.T) {
	s := &Set{}
	s.Commit(NewStroke([]Point{{0.1, 0.1}, {0.5, 0.5}}, red, 2))

	snap := s.Entities()
	snap[0].Points[0] = Point{0.99, 0.99}
	snap[0].Color = color.RGBA{0, 255, 0, 255}

	fresh := s.Entities()
	if fresh[0].Points[0] != (Point{0.1, 0.1}) {
		t.Fatalf("snapshot mutation leaked into the set: %+v", fresh[0].Points[0])
	}
	if fresh[0].Color != red {
		t.Fatalf("snapshot color mutation leaked into the set")
	}
}

func TestCommitClonesInput(t *testing.T) {
	s := &Set{}
	pts := []Point{{0.1, 0.1}, {0.5, 0.5}}
	s.Commit(NewStroke(pts, red, 2))
	pts[0] = Point{0.7, 0.7}
	if got := s.Entities()[0].Points[0]; got != (Point{0.1, 0.1}) {
		t.Fatalf("caller mutation leaked into committed entity: %+v", got)
	}
}

func TestCommittable(t *testing.T) {
	cases := []struct {
		name string
		e    Entity
		want bool
	}{
		{"stroke two points", NewStroke([]Point{{0, 0}, {0.5, 0.5}}, red, 2), true},
		{"stroke one point", NewStroke([]Point{{0.3, 0.3}}, red, 2), false},
		{"arrow distinct ends", NewArrow(Point{0.1, 0.1}, Point{0.2, 0.2}, red, 2), true},
		{"arrow zero length", NewArrow(Point{0.4, 0.4}, Point{0.4, 0.4}, red, 2), false},
		{"label with text", NewLabel(Point{0.5, 0.5}, "note", red, 24), true},
		{"label whitespace only", NewLabel(Point{0.5, 0.5}, "  \t ", red, 24), false},
	}
	for _, tc := range cases {
		if got := tc.e.Committable(); got != tc.want {
			t.Errorf("%s: Committable() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPointClamp(t *testing.T) {
	p := Point{X: -0.5, Y: 1.5}.Clamp()
	if p.X != 0 || p.Y != 1 {
		t.Fatalf("expected clamped point {0 1}, got %+v", p)
	}
}
