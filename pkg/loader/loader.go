// Package loader turns raw input into an ordered value tree, detecting the
// format from the content.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/oakwood-commons/kvi/internal/value"
)

// ErrEmptyInput is returned for input that is empty after trimming.
var ErrEmptyInput = errors.New("empty input")

// Format is a detected input format.
type Format string

const (
	FormatJWT          Format = "jwt"
	FormatMultiDocYAML Format = "yaml-multi"
	FormatNDJSON       Format = "ndjson"
	FormatTOML         Format = "toml"
	FormatJSON         Format = "json"
	FormatYAML         Format = "yaml"
)

var (
	// tomlSectionPattern matches [table] and [[array]] headers with bare,
	// quoted or dotted keys, but not JSON arrays such as [1, 2, 3].
	tomlSectionPattern = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// tomlKeyValuePattern matches key = value, never YAML's key: value.
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// Detect guesses the format of trimmed input. Checks run from the most to the
// least restrictive; YAML is the catch-all.
func Detect(input string) Format {
	switch {
	case IsJWT(input):
		return FormatJWT
	case strings.Contains(input, "\n---") || strings.HasPrefix(input, "---"):
		return FormatMultiDocYAML
	case isLikelyNDJSON(strings.Split(input, "\n")):
		return FormatNDJSON
	case isLikelyTOML(input):
		return FormatTOML
	case strings.HasPrefix(input, "{") || strings.HasPrefix(input, "["):
		return FormatJSON
	default:
		return FormatYAML
	}
}

// LoadData parses every document in input. Single-document formats return one
// element.
func LoadData(input string) ([]value.Value, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	switch Detect(input) {
	case FormatJWT:
		return loadJWT(input)
	case FormatMultiDocYAML:
		return loadMultiDocYAML(input)
	case FormatNDJSON:
		return loadNDJSON(input)
	case FormatTOML:
		return loadTOML(input)
	case FormatJSON:
		docs, err := loadJSON(input)
		if err == nil {
			return docs, nil
		}
		// flow-style YAML such as {a: 1} also starts with a brace
		if yamlDocs, yerr := loadYAML(input); yerr == nil {
			return yamlDocs, nil
		}
		return nil, err
	default:
		return loadYAML(input)
	}
}

// LoadRoot parses input into one root. Multi-document input becomes a
// sequence of documents.
func LoadRoot(input string) (value.Value, error) {
	docs, err := LoadData(input)
	if err != nil {
		return value.Value{}, err
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	return value.Sequence(docs...), nil
}

// LoadRootBytes is LoadRoot over bytes.
func LoadRootBytes(data []byte) (value.Value, error) {
	return LoadRoot(string(data))
}

// LoadReader reads r to the end and parses it.
func LoadReader(r io.Reader) (value.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return value.Value{}, fmt.Errorf("read input: %w", err)
	}
	return LoadRootBytes(data)
}

// LoadFile reads and parses the file at path.
func LoadFile(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Value{}, err
	}
	v, err := LoadRootBytes(data)
	if err != nil {
		return value.Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// LoadObject accepts an already built Go value. Strings and byte slices are
// parsed; anything else goes through value.FromAny.
func LoadObject(obj any) (value.Value, error) {
	switch v := obj.(type) {
	case nil:
		return value.Value{}, errors.New("object input is nil")
	case string:
		return LoadRoot(v)
	case []byte:
		return LoadRootBytes(v)
	case value.Value:
		return v, nil
	default:
		return value.FromAny(obj), nil
	}
}

func loadJSON(input string) ([]value.Value, error) {
	v, err := value.DecodeJSON([]byte(input))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return []value.Value{v}, nil
}

// loadNDJSON keeps lines that are not valid JSON as plain strings.
func loadNDJSON(input string) ([]value.Value, error) {
	lines := strings.Split(input, "\n")
	docs := make([]value.Value, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := value.DecodeJSON([]byte(line))
		if err != nil {
			docs = append(docs, value.String(line))
			continue
		}
		docs = append(docs, v)
	}
	if len(docs) == 0 {
		return nil, ErrEmptyInput
	}
	return docs, nil
}

// isLikelyNDJSON requires several lines, most of them starting like a JSON
// object or array. YAML lists of bare "- item" lines do not qualify.
func isLikelyNDJSON(lines []string) bool {
	jsonCount, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmpty > 1 && jsonCount > nonEmpty/2
}

func isLikelyTOML(input string) bool {
	sections, keyValues, nonEmpty := 0, 0, 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSectionPattern.MatchString(line) {
			sections++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValues++
		}
	}
	return sections > 0 || (nonEmpty > 0 && keyValues > nonEmpty/2)
}

// loadTOML decodes into Go maps, so table keys come back sorted.
func loadTOML(input string) ([]value.Value, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []value.Value{value.FromAny(data)}, nil
}
