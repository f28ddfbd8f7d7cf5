// Package search rewrites a value tree into the pruned projection that
// matches a query.
package search

import (
	"strings"

	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/value"
)

// Result is the outcome of a projection.
type Result struct {
	// Value is the projected tree. It is meaningful only when Present is set.
	Value value.Value
	// Present is false when nothing in the tree matched.
	Present bool
	// Matched is set when some leaf matched. Match then holds the address of
	// the last matching leaf visited, in the projected tree.
	Matched bool
	Match   path.Path
	// MatchSegments is the typed form of Match.
	MatchSegments path.Segments
	// Leaves and Hits count visited and matching scalar leaves.
	Leaves int
	Hits   int
}

// LeafMatches reports whether a scalar leaf matches the lowered query.
func LeafMatches(leaf value.Value, loweredQuery string) bool {
	return strings.Contains(strings.ToLower(value.Stringify(leaf)), loweredQuery)
}

// frame is one composite on the work stack.
type frame struct {
	src  value.Value
	at   path.Path
	segs path.Segments
	next int

	items   []value.Value
	entries []value.Entry
	// key is the mapping key this frame is stored under in its parent.
	key string
}

// Project returns the subset of root whose scalar leaves contain query,
// case-insensitively.
//
// An empty query returns root itself with no copy. Otherwise the result is a
// new tree: sequences keep surviving elements re-indexed from 0, mappings keep
// surviving pairs in order, and a composite with no surviving children is
// absent from its parent. The recorded match is the last matching leaf in
// depth-first, left-to-right order, addressed in the projected tree.
//
// The walk keeps its own stack, so depth is limited by memory rather than by
// the goroutine stack.
func Project(root value.Value, query string) Result {
	if query == "" {
		return Result{Value: root, Present: true}
	}
	q := strings.ToLower(query)
	res := Result{}

	rootSegs := path.Segments{}
	if !root.Kind().IsComposite() {
		res.Leaves = 1
		if LeafMatches(root, q) {
			res.Hits = 1
			res.record(path.Root, rootSegs)
			res.Value, res.Present = root, true
		}
		return res
	}

	stack := []*frame{{src: root, at: path.Root, segs: rootSegs}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < top.src.Len() {
			i := top.next
			top.next++

			var child value.Value
			var at path.Path
			var segs path.Segments
			var key string
			if top.src.Kind() == value.KindSequence {
				child = top.src.Item(i)
				// the child's address is the index it will take if it survives
				idx := len(top.items)
				at, segs = top.at.Index(idx), top.segs.Index(idx)
			} else {
				e := top.src.EntryAt(i)
				child, key = e.Value, e.Key
				at, segs = top.at.Key(key), top.segs.Key(key)
			}

			if child.Kind().IsComposite() {
				stack = append(stack, &frame{src: child, at: at, segs: segs, key: key})
				continue
			}
			res.Leaves++
			if LeafMatches(child, q) {
				res.Hits++
				res.record(at, segs)
				top.keep(key, child)
			}
			continue
		}

		stack = stack[:len(stack)-1]
		out, ok := top.result()
		if len(stack) == 0 {
			res.Value, res.Present = out, ok
			break
		}
		if ok {
			stack[len(stack)-1].keep(top.key, out)
		}
	}
	return res
}

func (r *Result) record(at path.Path, segs path.Segments) {
	r.Matched = true
	r.Match = at
	r.MatchSegments = segs
}

func (f *frame) keep(key string, v value.Value) {
	if f.src.Kind() == value.KindSequence {
		f.items = append(f.items, v)
		return
	}
	f.entries = append(f.entries, value.Entry{Key: key, Value: v})
}

func (f *frame) result() (value.Value, bool) {
	if f.src.Kind() == value.KindSequence {
		if len(f.items) == 0 {
			return value.Value{}, false
		}
		return value.Sequence(f.items...), true
	}
	if len(f.entries) == 0 {
		return value.Value{}, false
	}
	return value.Mapping(f.entries...), true
}
