package annotate

// Set is the ordered collection of committed entities for one editing
// session. Order is z-order: later entries draw on top of earlier ones. The
// slice doubles as the undo log: commits append, undo removes exactly the
// tail, so no separate command stack is kept.
//
// A Set is owned by a single session and is not safe for concurrent use.
type Set struct {
	entities []Entity
}

// Commit appends an entity to the set. The entity is cloned so later
// mutation of the caller's point slice cannot reach committed state.
func (s *Set) Commit(e Entity) {
	s.entities = append(s.entities, e.clone())
}

// Undo removes and returns the most recently committed entity. On an empty
// set it reports false and changes nothing; calling it repeatedly until the
// set drains is always safe.
func (s *Set) Undo() (Entity, bool) {
	if len(s.entities) == 0 {
		return Entity{}, false
	}
	last := s.entities[len(s.entities)-1]
	s.entities = s.entities[:len(s.entities)-1]
	return last, true
}

// CanUndo reports whether Undo would remove an entity.
func (s *Set) CanUndo() bool { return len(s.entities) > 0 }

// Len returns the number of committed entities.
func (s *Set) Len() int { return len(s.entities) }

// Empty reports whether no entities have been committed.
func (s *Set) Empty() bool { return len(s.entities) == 0 }

// Entities returns a snapshot of the committed entities in paint order. The
// snapshot shares no mutable state with the set, so it can safely outlive
// further edits (the compositor consumes one while the session winds down).
func (s *Set) Entities() []Entity {
	out := make([]Entity, len(s.entities))
	for i, e := range s.entities {
		out[i] = e.clone()
	}
	return out
}
