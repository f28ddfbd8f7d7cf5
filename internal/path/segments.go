package path

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind distinguishes mapping keys from sequence indexes.
type SegmentKind uint8

const (
	SegmentKey SegmentKind = iota
	SegmentIndex
)

// Segment is one step of a typed address.
type Segment struct {
	Kind  SegmentKind
	Key   string
	Index int
}

// Segments is the typed form of a Path. Comparing Segments avoids the
// accidental collisions of raw string prefixes ("$.a1" vs "$.a10").
type Segments []Segment

// Key returns a copy of s extended with the mapping key k.
func (s Segments) Key(k string) Segments {
	out := make(Segments, len(s), len(s)+1)
	copy(out, s)
	return append(out, Segment{Kind: SegmentKey, Key: k})
}

// Index returns a copy of s extended with the sequence index i.
func (s Segments) Index(i int) Segments {
	out := make(Segments, len(s), len(s)+1)
	copy(out, s)
	return append(out, Segment{Kind: SegmentIndex, Index: i})
}

// Path renders the segments with the string addressing rule.
func (s Segments) Path() Path {
	p := Root
	for _, seg := range s {
		if seg.Kind == SegmentIndex {
			p = p.Index(seg.Index)
		} else {
			p = p.Key(seg.Key)
		}
	}
	return p
}

// HasPrefix reports whether prefix names s itself or one of its ancestors.
func (s Segments) HasPrefix(prefix Segments) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, seg := range prefix {
		if s[i] != seg {
			return false
		}
	}
	return true
}

// Equal reports whether both addresses have the same segments.
func (s Segments) Equal(o Segments) bool {
	return len(s) == len(o) && s.HasPrefix(o)
}

// Parse splits a string path back into segments. Keys containing '.' or '['
// cannot be told apart from nested addresses, so the result is best effort;
// it is meant for paths typed by a user, not for round-tripping.
func Parse(p Path) (Segments, error) {
	s := string(p)
	if !strings.HasPrefix(s, string(Root)) {
		return nil, fmt.Errorf("path %q must start with %q", s, Root)
	}
	s = s[len(Root):]
	segs := Segments{}
	for len(s) > 0 {
		switch s[0] {
		case '.':
			s = s[1:]
			end := strings.IndexAny(s, ".[")
			if end < 0 {
				end = len(s)
			}
			segs = append(segs, Segment{Kind: SegmentKey, Key: s[:end]})
			s = s[end:]
		case '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return nil, fmt.Errorf("path %q has an unterminated index", p)
			}
			idx, err := strconv.Atoi(s[1:end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("path %q has an invalid index %q", p, s[1:end])
			}
			segs = append(segs, Segment{Kind: SegmentIndex, Index: idx})
			s = s[end+1:]
		default:
			return nil, fmt.Errorf("path %q: unexpected %q", p, s[0])
		}
	}
	return segs, nil
}
