package loader

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvi/internal/value"
)

const (
	tagNull  = "!!null"
	tagBool  = "!!bool"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagMerge = "!!merge"
)

// loadYAML parses one document through the node API so mapping order
// survives.
func loadYAML(input string) ([]value.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(input), &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	v, err := FromYAMLNode(&doc)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return []value.Value{v}, nil
}

// loadMultiDocYAML drops empty documents.
func loadMultiDocYAML(input string) ([]value.Value, error) {
	var docs []value.Value
	dec := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid multi-document YAML: %w", err)
		}
		v, err := FromYAMLNode(&doc)
		if err != nil {
			return nil, fmt.Errorf("invalid multi-document YAML: %w", err)
		}
		if v.IsNull() {
			continue
		}
		docs = append(docs, v)
	}
	if len(docs) == 0 {
		return nil, errors.New("no documents found in multi-document YAML")
	}
	return docs, nil
}

// FromYAMLNode converts a parsed YAML node. Aliases are resolved, merge keys
// are applied with explicit keys taking precedence, and non-scalar keys are
// stringified.
func FromYAMLNode(n *yaml.Node) (value.Value, error) {
	if n == nil {
		return value.Null(), nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Null(), nil
		}
		return FromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(n.Alias)
	case yaml.ScalarNode:
		return yamlScalar(n)
	case yaml.SequenceNode:
		items := make([]value.Value, len(n.Content))
		for i, c := range n.Content {
			v, err := FromYAMLNode(c)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.Sequence(items...), nil
	case yaml.MappingNode:
		return yamlMapping(n)
	default:
		return value.Null(), nil
	}
}

func yamlScalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case tagNull:
		return value.Null(), nil
	case tagBool:
		var b bool
		if err := n.Decode(&b); err != nil {
			return value.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return value.Bool(b), nil
	case tagInt, tagFloat:
		var f float64
		if err := n.Decode(&f); err != nil {
			return value.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return value.Number(f), nil
	default:
		// strings, timestamps and binary keep their source text
		return value.String(n.Value), nil
	}
}

func yamlMapping(n *yaml.Node) (value.Value, error) {
	explicit := map[string]bool{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if !isMergeKey(n.Content[i]) {
			k, err := yamlKey(n.Content[i])
			if err != nil {
				return value.Value{}, err
			}
			explicit[k] = true
		}
	}

	var entries []value.Entry
	merged := map[string]bool{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		kn, vn := n.Content[i], n.Content[i+1]
		if isMergeKey(kn) {
			inherited, err := mergeSources(vn)
			if err != nil {
				return value.Value{}, err
			}
			for _, e := range inherited {
				if explicit[e.Key] || merged[e.Key] {
					continue
				}
				merged[e.Key] = true
				entries = append(entries, e)
			}
			continue
		}
		k, err := yamlKey(kn)
		if err != nil {
			return value.Value{}, err
		}
		v, err := FromYAMLNode(vn)
		if err != nil {
			return value.Value{}, err
		}
		entries = append(entries, value.E(k, v))
	}
	return value.Mapping(entries...), nil
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == tagMerge
}

// mergeSources returns the entries inherited through a "<<" key. Earlier
// sources in a sequence win over later ones.
func mergeSources(n *yaml.Node) ([]value.Entry, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	var sources []*yaml.Node
	switch n.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{n}
	case yaml.SequenceNode:
		sources = n.Content
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping", n.Line)
	}
	var out []value.Entry
	seen := map[string]bool{}
	for _, src := range sources {
		v, err := FromYAMLNode(src)
		if err != nil {
			return nil, err
		}
		if v.Kind() != value.KindMapping {
			return nil, fmt.Errorf("line %d: merge value must be a mapping", src.Line)
		}
		for _, e := range v.Entries() {
			if seen[e.Key] {
				continue
			}
			seen[e.Key] = true
			out = append(out, e)
		}
	}
	return out, nil
}

func yamlKey(n *yaml.Node) (string, error) {
	if n.Kind == yaml.ScalarNode {
		return n.Value, nil
	}
	v, err := FromYAMLNode(n)
	if err != nil {
		return "", err
	}
	return value.Stringify(v), nil
}
