package formatter

import (
	"bytes"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvi/internal/value"
)

// YAMLFormatOptions control YAML rendering.
type YAMLFormatOptions struct {
	Indent                int
	LiteralBlockStrings   bool
	ExpandEscapedNewlines bool
}

// FormatYAML renders v as YAML with mapping order kept. Multi-line strings
// can be emitted as literal blocks ("|") to preserve newlines.
func FormatYAML(v value.Value, opts YAMLFormatOptions) (string, error) {
	node := ToYAMLNode(v)

	if opts.ExpandEscapedNewlines {
		expandEscapedNewlines(node)
	}
	if opts.LiteralBlockStrings {
		applyLiteralStyle(node)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToYAMLNode builds a node tree for v.
func ToYAMLNode(v value.Value) *yaml.Node {
	switch v.Kind() {
	case value.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case value.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: value.Stringify(v)}
	case value.KindNumber:
		n := v.Number()
		switch {
		case math.IsNaN(n):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".nan"}
		case math.IsInf(n, 1):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".inf"}
		case math.IsInf(n, -1):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: "-.inf"}
		case value.IsInteger(n):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: value.FormatNumber(n)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: value.FormatNumber(n)}
	case value.KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items() {
			n.Content = append(n.Content, ToYAMLNode(item))
		}
		if len(n.Content) == 0 {
			n.Style = yaml.FlowStyle
		}
		return n
	case value.KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range v.Entries() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
				ToYAMLNode(e.Value))
		}
		if len(n.Content) == 0 {
			n.Style = yaml.FlowStyle
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value.Stringify(v)}
	}
}

func applyLiteralStyle(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		applyLiteralStyle(c)
	}
}

func expandEscapedNewlines(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\\n") {
		n.Value = strings.ReplaceAll(n.Value, "\\n", "\n")
	}
	for _, c := range n.Content {
		expandEscapedNewlines(c)
	}
}
