// Package expansion decides whether a composite node is drawn expanded or
// collapsed.
//
// State belongs to exactly one rendered tree instance. When the host replaces
// the tree (a new query, a new root) it must start a new State, and every node
// falls back to the default policy. Store is an optional side map indexed by
// path that outlives instances for hosts that want to remember what was open.
package expansion

import (
	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/value"
)

const (
	// sequenceInlineLimit is the size below which sequences open by default.
	sequenceInlineLimit = 5
	// sequenceOpenDepth and mappingOpenDepth are the depths above which
	// composites open regardless of size. The root is depth 0.
	sequenceOpenDepth = 1
	mappingOpenDepth  = 2
)

// Toggleable reports whether a node of this kind and size has an
// expand/collapse affordance. Empty composites are drawn as literal [] or {}.
func Toggleable(kind value.Kind, size int) bool {
	return kind.IsComposite() && size > 0
}

// DefaultExpanded is the policy applied the first time a node is rendered.
func DefaultExpanded(kind value.Kind, size, depth int) bool {
	switch kind {
	case value.KindSequence:
		return size > 0 && (size < sequenceInlineLimit || depth < sequenceOpenDepth)
	case value.KindMapping:
		return size > 0 && depth < mappingOpenDepth
	default:
		return false
	}
}

// State holds the expansion flags of one tree instance. The zero value is not
// usable; call NewState.
type State struct {
	open  map[path.Path]bool
	store *Store
}

// NewState starts the flags for a fresh tree instance. store may be nil; when
// set, nodes first rendered in this instance take their initial flag from it
// and toggles are written back to it.
func NewState(store *Store) *State {
	return &State{open: map[path.Path]bool{}, store: store}
}

// IsExpanded returns the flag for the node at p, evaluating the default policy
// (or the store) the first time the node is seen in this instance.
func (s *State) IsExpanded(p path.Path, kind value.Kind, size, depth int) bool {
	if !Toggleable(kind, size) {
		return false
	}
	if open, ok := s.open[p]; ok {
		return open
	}
	open := DefaultExpanded(kind, size, depth)
	if s.store != nil {
		if remembered, ok := s.store.Get(p); ok {
			open = remembered
		}
	}
	s.open[p] = open
	return open
}

// Seen reports whether the node at p has been rendered in this instance.
func (s *State) Seen(p path.Path) bool {
	_, ok := s.open[p]
	return ok
}

// Toggle flips the flag of an already rendered node and reports whether it did.
// Paths never rendered in this instance are ignored.
func (s *State) Toggle(p path.Path) bool {
	open, ok := s.open[p]
	if !ok {
		return false
	}
	s.open[p] = !open
	if s.store != nil {
		s.store.Set(p, !open)
	}
	return true
}

// Set forces the flag of an already rendered node.
func (s *State) Set(p path.Path, open bool) bool {
	cur, ok := s.open[p]
	if !ok {
		return false
	}
	if cur != open {
		return s.Toggle(p)
	}
	return true
}

// Len returns the number of nodes rendered in this instance.
func (s *State) Len() int {
	return len(s.open)
}

// Store remembers expansion flags by path across tree instances.
type Store struct {
	flags map[path.Path]bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{flags: map[path.Path]bool{}}
}

// Get returns the remembered flag for p.
func (st *Store) Get(p path.Path) (bool, bool) {
	open, ok := st.flags[p]
	return open, ok
}

// Set remembers the flag for p.
func (st *Store) Set(p path.Path, open bool) {
	st.flags[p] = open
}

// Reset forgets everything.
func (st *Store) Reset() {
	clear(st.flags)
}
