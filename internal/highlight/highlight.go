// Package highlight decides which rendered nodes carry the current-match
// decoration.
package highlight

import (
	"fmt"

	"github.com/oakwood-commons/kvi/internal/path"
)

// Mode selects how a node address is compared with the match address.
type Mode string

const (
	// ModePrefix compares raw strings: "$.a1" also marks "$.a10".
	ModePrefix Mode = "prefix"
	// ModeSegment compares typed segments, so only the matched node and its
	// descendants are marked.
	ModeSegment Mode = "segment"
)

// ParseMode validates a mode name. The empty string selects ModePrefix.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModePrefix:
		return ModePrefix, nil
	case ModeSegment:
		return ModeSegment, nil
	default:
		return "", fmt.Errorf("invalid highlight mode %q: valid values are prefix, segment", s)
	}
}

// State is the optional path of the current match.
type State struct {
	Set      bool
	Path     path.Path
	Segments path.Segments
}

// None is the empty state.
var None = State{}

// At returns a state pointing at the given address.
func At(segs path.Segments) State {
	if segs == nil {
		segs = path.Segments{}
	}
	return State{Set: true, Path: segs.Path(), Segments: segs}
}

// AtPath returns a state from a string address only. Segment comparison then
// relies on path.Parse and never matches if the address cannot be parsed.
func AtPath(p path.Path) State {
	segs, err := path.Parse(p)
	if err != nil {
		segs = nil
	}
	return State{Set: true, Path: p, Segments: segs}
}

// IsHighlighted reports whether a node at p (with typed form segs) is marked.
func (m Mode) IsHighlighted(p path.Path, segs path.Segments, st State) bool {
	if !st.Set {
		return false
	}
	if m == ModeSegment {
		if st.Segments == nil {
			return false
		}
		return segs.HasPrefix(st.Segments)
	}
	return p.HasPrefix(st.Path)
}

// IsHighlighted is the default literal-prefix test.
func IsHighlighted(p path.Path, st State) bool {
	return st.Set && p.HasPrefix(st.Path)
}
