package formatter

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/render"
	"github.com/oakwood-commons/kvi/internal/value"
)

const (
	// defaultMaxArrayInline is the max number of array elements to show inline.
	defaultMaxArrayInline = 3
)

// TreeOptions controls tree output formatting.
type TreeOptions struct {
	// NoValues hides values at leaf nodes (structure only).
	NoValues bool
	// MaxDepth limits tree depth (0 = unlimited).
	MaxDepth int
	// MaxArrayInline is max items to show inline for scalar arrays (default 3).
	// Longer scalar arrays are summarized as "[N items]".
	MaxArrayInline int
	// MaxStringLen is the display width before inline values are truncated.
	// 0 or negative = no truncation.
	MaxStringLen int
	// ArrayStyle controls how array indices are displayed:
	// "index" = [0], [1]; "numbered" = 1, 2; "bullet" = •; "none" = skip index.
	ArrayStyle string
	// Rules format leaf values. Nil means render.DefaultRules.
	Rules []render.Rule
}

// ValidArrayStyles contains all valid array style values.
var ValidArrayStyles = []string{"index", "numbered", "bullet", "none"}

// ValidateArrayStyle returns an error if the style is invalid.
func ValidateArrayStyle(style string) error {
	if style == "" {
		return nil
	}
	for _, valid := range ValidArrayStyles {
		if style == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid array-style %q: valid values are %s", style, strings.Join(ValidArrayStyles, ", "))
}

// FormatArrayIndex formats an array index based on style.
func FormatArrayIndex(i int, style string) string {
	switch style {
	case "numbered":
		return fmt.Sprintf("%d", i+1)
	case "bullet":
		return "•"
	case "none":
		return ""
	default:
		return fmt.Sprintf("[%d]", i)
	}
}

// formatKeyValue formats a key-value pair for display.
// If key is empty (e.g., from array-style none), returns just the value.
func formatKeyValue(key, val string) string {
	if key == "" {
		return val
	}
	return key + ": " + val
}

func formatKeyOnly(key string) string {
	if key == "" {
		return "(item)"
	}
	return key
}

type treeItem struct {
	branch treeprint.Tree
	label  string
	leaf   render.Leaf
	depth  int
}

// FormatTree renders v as an ASCII tree. Mappings become branches labelled
// by key, sequences show indexed children and scalars are printed inline.
// Epoch fields carry their calendar time in parentheses.
func FormatTree(v value.Value, opts TreeOptions) string {
	if opts.MaxArrayInline == 0 {
		opts.MaxArrayInline = defaultMaxArrayInline
	}
	if opts.Rules == nil {
		opts.Rules = render.DefaultRules(render.RuleConfig{})
	}

	tree := treeprint.New()
	if !v.Kind().IsComposite() {
		tree.AddNode(formatLeaf(render.Leaf{Value: v, Path: path.Root}, opts))
		return tree.String()
	}

	// children are pushed in reverse so each branch receives them in order
	var stack []treeItem
	pushChildren := func(branch treeprint.Tree, parent render.Leaf, depth int) {
		p := parent.Path
		if parent.Value.Kind() == value.KindMapping {
			entries := parent.Value.Entries()
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				stack = append(stack, treeItem{
					branch: branch,
					label:  e.Key,
					leaf:   render.Leaf{Value: e.Value, Path: p.Key(e.Key), Key: e.Key, HasKey: true},
					depth:  depth,
				})
			}
			return
		}
		items := parent.Value.Items()
		for i := len(items) - 1; i >= 0; i-- {
			stack = append(stack, treeItem{
				branch: branch,
				label:  FormatArrayIndex(i, opts.ArrayStyle),
				leaf:   render.Leaf{Value: items[i], Path: p.Index(i)},
				depth:  depth,
			})
		}
	}
	pushChildren(tree, render.Leaf{Value: v, Path: path.Root}, 0)

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if opts.MaxDepth > 0 && it.depth >= opts.MaxDepth {
			it.branch.AddNode(formatKeyValue(it.label, "..."))
			continue
		}
		val := it.leaf.Value
		switch {
		case !val.Kind().IsComposite():
			if opts.NoValues {
				it.branch.AddNode(formatKeyOnly(it.label))
			} else {
				it.branch.AddNode(formatKeyValue(it.label, formatLeaf(it.leaf, opts)))
			}
		case val.Len() == 0:
			if opts.NoValues {
				it.branch.AddNode(formatKeyOnly(it.label))
			} else {
				empty := "{}"
				if val.Kind() == value.KindSequence {
					empty = "[]"
				}
				it.branch.AddNode(formatKeyValue(it.label, empty))
			}
		case val.Kind() == value.KindSequence && isScalarSequence(val):
			switch {
			case opts.NoValues:
				it.branch.AddNode(formatKeyOnly(it.label))
			case val.Len() <= opts.MaxArrayInline:
				it.branch.AddNode(formatKeyValue(it.label, formatInline(val, opts)))
			default:
				it.branch.AddNode(formatKeyValue(it.label, fmt.Sprintf("[%d items]", val.Len())))
			}
		default:
			child := it.branch.AddBranch(formatKeyOnly(it.label))
			pushChildren(child, it.leaf, it.depth+1)
		}
	}
	return tree.String()
}

func isScalarSequence(v value.Value) bool {
	for _, item := range v.Items() {
		if item.Kind().IsComposite() {
			return false
		}
	}
	return true
}

func formatInline(v value.Value, opts TreeOptions) string {
	parts := make([]string, v.Len())
	for i, item := range v.Items() {
		parts[i] = scalarText(item)
	}
	return truncate("["+strings.Join(parts, ", ")+"]", opts.MaxStringLen)
}

// formatLeaf prints strings bare, like the rest of the tree, and appends the
// rule comment in parentheses.
func formatLeaf(l render.Leaf, opts TreeOptions) string {
	d := render.Format(opts.Rules, l)
	text := d.Text
	if l.Value.Kind() == value.KindString {
		text = l.Value.Str()
	}
	text = truncate(text, opts.MaxStringLen)
	if d.Comment != "" {
		text += " (" + d.Comment + ")"
	}
	return text
}

func scalarText(v value.Value) string {
	if v.Kind() == value.KindString {
		return v.Str()
	}
	return value.Stringify(v)
}

// truncate shortens s to maxLen display cells, ending in "...".
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}
