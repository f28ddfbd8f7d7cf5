package loader

import (
	"github.com/oakwood-commons/kvi/internal/value"
)

// maxDecodeDepth bounds how many times a string may unwrap into another
// serialized document.
const maxDecodeDepth = 20

// TryDecode parses a string that holds serialized data (JWT, JSON, YAML,
// TOML, NDJSON). Only results that are mappings or sequences count; plain
// words and numbers return false.
func TryDecode(s string) (value.Value, bool) {
	if s == "" {
		return value.Value{}, false
	}
	v, err := LoadRoot(s)
	if err != nil || !v.Kind().IsComposite() {
		return value.Value{}, false
	}
	return v, true
}

// RecursiveDecode replaces every string leaf that holds serialized data with
// its parsed tree, unwrapping nested documents as well. The input is not
// modified.
func RecursiveDecode(v value.Value) value.Value {
	return recursiveDecode(v, 0)
}

// recursiveDecode walks the tree; unwraps counts only string-to-document
// decodes, so deep ordinary nesting does not stop decoding.
func recursiveDecode(v value.Value, unwraps int) value.Value {
	switch v.Kind() {
	case value.KindSequence:
		items := v.Items()
		for i, item := range items {
			items[i] = recursiveDecode(item, unwraps)
		}
		return value.Sequence(items...)
	case value.KindMapping:
		entries := v.Entries()
		for i, e := range entries {
			entries[i].Value = recursiveDecode(e.Value, unwraps)
		}
		return value.Mapping(entries...)
	case value.KindString:
		if unwraps >= maxDecodeDepth {
			return v
		}
		if decoded, ok := TryDecode(v.Str()); ok {
			return recursiveDecode(decoded, unwraps+1)
		}
		return v
	default:
		return v
	}
}
