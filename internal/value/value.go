// Package value defines the tagged-union node type inspected by kvi and the
// classifier that maps arbitrary Go values onto it.
package value

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
	// KindOpaque holds a value of no recognized shape. It renders through a
	// best-effort string coercion.
	KindOpaque
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "boolean",
	KindNumber:   "number",
	KindString:   "string",
	KindSequence: "sequence",
	KindMapping:  "mapping",
	KindOpaque:   "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "opaque"
}

// IsComposite reports whether k holds children.
func (k Kind) IsComposite() bool {
	return k == KindSequence || k == KindMapping
}

// Entry is one key/value pair of a mapping.
type Entry struct {
	Key   string
	Value Value
}

// Value is an immutable node. The zero Value is Null.
//
// Constructors copy the slices they are given and accessors never hand out
// internal slices, so a tree observed by the inspector cannot be changed
// underneath it.
type Value struct {
	kind    Kind
	b       bool
	n       float64
	s       string
	items   []Value
	entries []Entry
	opaque  any
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a number.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Opaque wraps a value of no recognized shape.
func Opaque(v any) Value { return Value{kind: KindOpaque, opaque: v} }

// Sequence builds an ordered list.
func Sequence(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindSequence, items: out}
}

// Mapping builds an ordered map. Keys are unique: a repeated key replaces the
// earlier value but keeps the earlier position.
func Mapping(entries ...Entry) Value {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := seen[e.Key]; ok {
			out[i].Value = e.Value
			continue
		}
		seen[e.Key] = len(out)
		out = append(out, e)
	}
	return Value{kind: KindMapping, entries: out}
}

// E is shorthand for an Entry literal.
func E(key string, v Value) Entry { return Entry{Key: key, Value: v} }

// sequenceOf and mappingOf adopt slices built inside this module without a
// second copy. Callers must not retain the slice.
func sequenceOf(items []Value) Value {
	return Value{kind: KindSequence, items: items}
}

func mappingOf(entries []Entry) Value {
	return Value{kind: KindMapping, entries: entries}
}

// Kind returns the variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload; false for other kinds.
func (v Value) Bool() bool { return v.b }

// Number returns the numeric payload; 0 for other kinds.
func (v Value) Number() float64 { return v.n }

// Str returns the string payload; "" for other kinds.
func (v Value) Str() string { return v.s }

// Opaque returns the payload of an opaque value.
func (v Value) Opaque() any { return v.opaque }

// Len returns the number of children of a composite, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.items)
	case KindMapping:
		return len(v.entries)
	default:
		return 0
	}
}

// Item returns the i-th element of a sequence.
func (v Value) Item(i int) Value { return v.items[i] }

// EntryAt returns the i-th pair of a mapping.
func (v Value) EntryAt(i int) Entry { return v.entries[i] }

// Lookup returns the value stored under key in a mapping.
func (v Value) Lookup(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Items returns a copy of the elements of a sequence.
func (v Value) Items() []Value {
	out := make([]Value, len(v.items))
	copy(out, v.items)
	return out
}

// Entries returns a copy of the pairs of a mapping.
func (v Value) Entries() []Entry {
	out := make([]Entry, len(v.entries))
	copy(out, v.entries)
	return out
}

// Keys returns the mapping keys in order.
func (v Value) Keys() []string {
	out := make([]string, len(v.entries))
	for i, e := range v.entries {
		out[i] = e.Key
	}
	return out
}

// Slice returns a sequence holding elements [start, end) of v, or a mapping
// holding pairs [start, end). Scalars are returned unchanged.
func (v Value) Slice(start, end int) Value {
	switch v.kind {
	case KindSequence:
		return Sequence(v.items[start:end]...)
	case KindMapping:
		out := make([]Entry, end-start)
		copy(out, v.entries[start:end])
		return mappingOf(out)
	default:
		return v
	}
}

// Same reports whether a and b are the same node, sharing child storage
// rather than merely holding equal content. Scalars are Same when Equal.
func Same(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindSequence:
		if len(a.items) == 0 || len(b.items) == 0 {
			return len(a.items) == len(b.items)
		}
		return len(a.items) == len(b.items) && &a.items[0] == &b.items[0]
	case KindMapping:
		if len(a.entries) == 0 || len(b.entries) == 0 {
			return len(a.entries) == len(b.entries)
		}
		return len(a.entries) == len(b.entries) && &a.entries[0] == &b.entries[0]
	default:
		return Equal(a, b)
	}
}

// Equal reports deep equality. Opaque payloads are compared by their string
// form.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindSequence:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(a.entries) != len(b.entries) {
			return false
		}
		for i := range a.entries {
			if a.entries[i].Key != b.entries[i].Key || !Equal(a.entries[i].Value, b.entries[i].Value) {
				return false
			}
		}
		return true
	default:
		return Stringify(a) == Stringify(b)
	}
}
