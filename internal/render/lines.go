package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/oakwood-commons/kvi/internal/value"
)

// LineKind tells what part of a node a line draws.
type LineKind int

const (
	// LineLeaf is a scalar or an empty composite.
	LineLeaf LineKind = iota
	// LineOpen is the first line of an expanded composite.
	LineOpen
	// LineClose is the closing bracket of an expanded composite.
	LineClose
	// LineCollapsed is a collapsed composite with its size hint.
	LineCollapsed
)

// Line is one row of the flattened view. Several lines may share a node.
type Line struct {
	Node *Node
	Kind LineKind
}

// Lines flattens a rendered tree into display rows.
func Lines(root *Node) []Line {
	var out []Line
	type item struct {
		n     *Node
		close bool
	}
	stack := []item{{n: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := it.n
		switch {
		case it.close:
			out = append(out, Line{Node: n, Kind: LineClose})
		case !n.Kind.IsComposite() || n.Size == 0:
			out = append(out, Line{Node: n, Kind: LineLeaf})
		case !n.Expanded:
			out = append(out, Line{Node: n, Kind: LineCollapsed})
		default:
			out = append(out, Line{Node: n, Kind: LineOpen})
			stack = append(stack, item{n: n, close: true})
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, item{n: n.Children[i]})
			}
		}
	}
	return out
}

// Styles colors the parts of a line. The zero value draws plain text.
type Styles struct {
	Key       lipgloss.Style
	String    lipgloss.Style
	Number    lipgloss.Style
	Bool      lipgloss.Style
	Null      lipgloss.Style
	Link      lipgloss.Style
	Comment   lipgloss.Style
	Punct     lipgloss.Style
	Hint      lipgloss.Style
	Highlight lipgloss.Style
	// Hyperlinks wraps link values in OSC 8 sequences.
	Hyperlinks bool
	// Indent is the number of spaces per depth level. Zero means 2.
	Indent int
}

// String draws the line without styling.
func (l Line) String() string {
	return l.Render(Styles{})
}

// Render draws the line with s.
func (l Line) Render(s Styles) string {
	n := l.Node
	indent := s.Indent
	if indent <= 0 {
		indent = 2
	}
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", n.Depth*indent))

	if l.Kind == LineClose {
		b.WriteString(s.Punct.Render(closer(n.Kind)))
		if n.Separator {
			b.WriteString(s.Punct.Render(","))
		}
		return b.String()
	}

	if n.HasKey {
		key := s.Key.Render(value.Quote(n.Key))
		if n.Highlighted {
			key = s.Highlight.Render(value.Quote(n.Key))
		}
		b.WriteString(key)
		b.WriteString(s.Punct.Render(": "))
	}

	var comment string
	switch l.Kind {
	case LineOpen:
		b.WriteString(s.Punct.Render(opener(n.Kind)))
		return b.String()
	case LineCollapsed:
		b.WriteString(s.Punct.Render(opener(n.Kind) + "…" + closer(n.Kind)))
		comment = SizeHint(n)
	default:
		if n.Kind.IsComposite() {
			b.WriteString(s.Punct.Render(opener(n.Kind) + closer(n.Kind)))
		} else {
			b.WriteString(scalar(n, s))
			comment = n.Display.Comment
		}
	}
	if n.Separator {
		b.WriteString(s.Punct.Render(","))
	}
	if comment != "" {
		style := s.Comment
		if l.Kind == LineCollapsed {
			style = s.Hint
		}
		b.WriteString(style.Render("  // " + comment))
	}
	return b.String()
}

// SizeHint describes the hidden children of a collapsed composite.
func SizeHint(n *Node) string {
	unit := "items"
	if n.Kind == value.KindMapping {
		unit = "keys"
	}
	if n.Size == 1 {
		unit = strings.TrimSuffix(unit, "s")
	}
	return fmt.Sprintf("%d %s", n.Size, unit)
}

func scalar(n *Node, s Styles) string {
	text := n.Display.Text
	var style lipgloss.Style
	switch {
	case n.Display.Link != "":
		style = s.Link
	case n.Kind == value.KindString:
		style = s.String
	case n.Kind == value.KindNumber:
		style = s.Number
	case n.Kind == value.KindBool:
		style = s.Bool
	case n.Kind == value.KindNull:
		style = s.Null
	}
	if n.Highlighted {
		style = s.Highlight
	}
	out := style.Render(text)
	if n.Display.Link != "" && s.Hyperlinks {
		out = ansi.SetHyperlink(n.Display.Link) + out + ansi.ResetHyperlink()
	}
	return out
}

func opener(k value.Kind) string {
	if k == value.KindSequence {
		return "["
	}
	return "{"
}

func closer(k value.Kind) string {
	if k == value.KindSequence {
		return "]"
	}
	return "}"
}

// Text renders the whole tree as plain or styled text, one line per row.
func Text(root *Node, s Styles) string {
	lines := Lines(root)
	rows := make([]string, len(lines))
	for i, l := range lines {
		rows[i] = l.Render(s)
	}
	return strings.Join(rows, "\n")
}
