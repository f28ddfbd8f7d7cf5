// Package render turns a value tree into display nodes: formatted scalars,
// expand/collapse state and highlight marks.
package render

import (
	"github.com/oakwood-commons/kvi/internal/expansion"
	"github.com/oakwood-commons/kvi/internal/highlight"
	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/value"
)

// Node is one rendered element.
type Node struct {
	Path     path.Path
	Segments path.Segments
	Depth    int

	// Key is set for mapping members, Index (>= 0) for sequence elements.
	Key    string
	HasKey bool
	Index  int

	Kind value.Kind
	// Size is the number of children of a composite.
	Size int
	// Display is the formatted scalar. It is empty for composites.
	Display Display

	Toggleable  bool
	Expanded    bool
	Highlighted bool
	// Separator is set on every sibling but the last.
	Separator bool

	// Children is populated only when the node is expanded.
	Children []*Node
}

// Label returns the caption of a node: its mapping key, its index or "$".
func (n *Node) Label() string {
	switch {
	case n.HasKey:
		return n.Key
	case n.Index >= 0:
		return value.FormatNumber(float64(n.Index))
	default:
		return string(path.Root)
	}
}

// Walk visits n and its rendered descendants in pre-order. Returning false
// from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}

// Find returns the rendered node at p.
func (n *Node) Find(p path.Path) *Node {
	var found *Node
	n.Walk(func(cur *Node) bool {
		if found != nil {
			return false
		}
		if cur.Path == p {
			found = cur
			return false
		}
		return p.HasPrefix(cur.Path)
	})
	return found
}

// FindSegments returns the rendered node at a typed address. Unlike Find it
// stays exact for keys that contain '.' or '['.
func (n *Node) FindSegments(segs path.Segments) *Node {
	var found *Node
	n.Walk(func(cur *Node) bool {
		if found != nil {
			return false
		}
		if cur.Segments.Equal(segs) {
			found = cur
			return false
		}
		return segs.HasPrefix(cur.Segments)
	})
	return found
}

// Options controls one render pass.
type Options struct {
	// Expansion is the state of the tree instance being drawn. A nil value
	// renders with a throwaway state.
	Expansion *expansion.State
	Highlight highlight.State
	Mode      highlight.Mode
	// Rules formats scalars. Nil selects DefaultRules with zero config.
	Rules []Rule
}

type work struct {
	v    value.Value
	node *Node
}

// Render draws root. Collapsed composites keep their size but have no
// children; the walk uses its own stack and is not bounded by goroutine stack
// depth.
func Render(root value.Value, opts Options) *Node {
	st := opts.Expansion
	if st == nil {
		st = expansion.NewState(nil)
	}
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules(RuleConfig{})
	}

	top := &Node{Path: path.Root, Segments: path.Segments{}, Index: -1}
	stack := []work{{v: root, node: top}}
	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := w.node
		n.Kind = w.v.Kind()
		n.Highlighted = opts.Mode.IsHighlighted(n.Path, n.Segments, opts.Highlight)

		if !n.Kind.IsComposite() {
			n.Display = Format(rules, Leaf{Value: w.v, Path: n.Path, Key: n.Key, HasKey: n.HasKey})
			continue
		}

		n.Size = w.v.Len()
		n.Toggleable = expansion.Toggleable(n.Kind, n.Size)
		n.Expanded = st.IsExpanded(n.Path, n.Kind, n.Size, n.Depth)
		if !n.Expanded {
			continue
		}

		n.Children = make([]*Node, n.Size)
		pending := make([]work, n.Size)
		for i := 0; i < n.Size; i++ {
			c := &Node{Depth: n.Depth + 1, Index: -1, Separator: i < n.Size-1}
			var cv value.Value
			if n.Kind == value.KindSequence {
				cv = w.v.Item(i)
				c.Index = i
				c.Path, c.Segments = n.Path.Index(i), n.Segments.Index(i)
			} else {
				e := w.v.EntryAt(i)
				cv = e.Value
				c.Key, c.HasKey = e.Key, true
				c.Path, c.Segments = n.Path.Key(e.Key), n.Segments.Key(e.Key)
			}
			n.Children[i] = c
			pending[i] = work{v: cv, node: c}
		}
		// reversed so siblings are visited left to right
		for i := len(pending) - 1; i >= 0; i-- {
			stack = append(stack, pending[i])
		}
	}
	return top
}
