// Package formatter writes a value tree in the non-interactive output modes.
package formatter

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/oakwood-commons/kvi/internal/render"
	"github.com/oakwood-commons/kvi/internal/value"
)

// Mode is an output mode.
type Mode string

const (
	ModeText Mode = "text"
	ModeTree Mode = "tree"
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
	ModeTOML Mode = "toml"
)

// Modes lists the valid output modes in help order.
var Modes = []Mode{ModeText, ModeTree, ModeJSON, ModeYAML, ModeTOML}

// ParseMode validates an --output value. Empty means text.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeText, nil
	}
	for _, m := range Modes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return "", fmt.Errorf("invalid output %q: valid values are %s", s, strings.Join(names, ", "))
}

// Options controls Format.
type Options struct {
	Mode Mode
	// Root is the rendered tree used by text mode. Text mode renders the
	// value with default expansion when Root is nil.
	Root   *render.Node
	Styles render.Styles
	// Indent is the JSON and YAML indent width. Zero means 2.
	Indent int
	Tree   TreeOptions
}

// Format writes v in opts.Mode. The result has no trailing newline.
func Format(v value.Value, opts Options) (string, error) {
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	switch opts.Mode {
	case ModeText, "":
		root := opts.Root
		if root == nil {
			root = render.Render(v, render.Options{Rules: opts.Tree.Rules})
		}
		return render.Text(root, opts.Styles), nil
	case ModeTree:
		return strings.TrimRight(FormatTree(v, opts.Tree), "\n"), nil
	case ModeJSON:
		out, err := value.EncodeJSON(v, strings.Repeat(" ", indent))
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(out), nil
	case ModeYAML:
		out, err := FormatYAML(v, YAMLFormatOptions{Indent: indent, LiteralBlockStrings: true})
		if err != nil {
			return "", err
		}
		return strings.TrimRight(out, "\n"), nil
	case ModeTOML:
		return FormatTOML(v)
	default:
		return "", fmt.Errorf("unsupported output mode %q", opts.Mode)
	}
}

// FormatTOML encodes a mapping root as TOML. Table keys come out sorted and
// null members are dropped, since TOML has neither ordered tables nor null.
func FormatTOML(v value.Value) (string, error) {
	if v.Kind() != value.KindMapping {
		return "", fmt.Errorf("toml output needs a mapping at the root, got %s", v.Kind())
	}
	data, err := toml.Marshal(tomlNative(v))
	if err != nil {
		return "", fmt.Errorf("encode toml: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func tomlNative(v value.Value) any {
	switch v.Kind() {
	case value.KindMapping:
		out := make(map[string]any, v.Len())
		for _, e := range v.Entries() {
			if e.Value.IsNull() {
				continue
			}
			out[e.Key] = tomlNative(e.Value)
		}
		return out
	case value.KindSequence:
		out := make([]any, 0, v.Len())
		for _, item := range v.Items() {
			if item.IsNull() {
				continue
			}
			out = append(out, tomlNative(item))
		}
		return out
	case value.KindNumber:
		if n := v.Number(); value.IsInteger(n) && n >= -1<<53 && n <= 1<<53 {
			return int64(n)
		}
		return v.Number()
	case value.KindOpaque:
		return value.Stringify(v)
	default:
		return value.ToNative(v)
	}
}
