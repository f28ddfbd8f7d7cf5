package value

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/go-json-experiment/json"

	"github.com/oakwood-commons/kvi/internal/path"
)

// Ref marks a container reached again while it was still being converted,
// i.e. a cycle in the input graph. It is stored as an Opaque payload.
type Ref struct {
	Target path.Path
}

func (r Ref) String() string {
	return "<ref " + string(r.Target) + ">"
}

// Classify reports the kind a Go value maps to. It never fails: values of no
// recognized shape are KindOpaque.
func Classify(v any) Kind {
	switch t := v.(type) {
	case nil:
		return KindNull
	case Value:
		return t.kind
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case string:
		return KindString
	case []any, []Value:
		return KindSequence
	case map[string]any, []Entry:
		return KindMapping
	}

	rv := reflect.ValueOf(v)
	//exhaustive:ignore // only the container kinds need a second look
	switch rv.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.String:
		return KindString
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return KindMapping
		}
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return KindNull
		}
		return Classify(rv.Elem().Interface())
	case reflect.Struct:
		return KindMapping
	}
	return KindOpaque
}

// FromAny converts a native Go tree into a Value.
//
// map[string]any keys are sorted ascending since Go maps carry no order.
// Structs go through a JSON round trip so their field order and json tags are
// kept. A map, slice or pointer met again while it is still being converted is
// replaced by an Opaque Ref naming the path where it was first seen.
func FromAny(v any) Value {
	c := converter{onPath: map[uintptr]path.Path{}}
	return c.convert(v, path.Root)
}

type converter struct {
	onPath map[uintptr]path.Path
}

func (c *converter) convert(v any, at path.Path) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case float64:
		return Number(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case []Value:
		return Sequence(t...)
	case []Entry:
		return Mapping(t...)
	case []any:
		return c.withGuard(t, at, func() Value {
			items := make([]Value, len(t))
			for i, e := range t {
				items[i] = c.convert(e, at.Index(i))
			}
			return sequenceOf(items)
		})
	case map[string]any:
		return c.withGuard(t, at, func() Value {
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			entries := make([]Entry, len(keys))
			for i, k := range keys {
				entries[i] = Entry{Key: k, Value: c.convert(t[k], at.Key(k))}
			}
			return mappingOf(entries)
		})
	}
	return c.convertReflect(reflect.ValueOf(v), at)
}

func (c *converter) convertReflect(rv reflect.Value, at path.Path) Value {
	//exhaustive:ignore // everything else is opaque
	switch rv.Kind() {
	case reflect.Invalid:
		return Null()
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	case reflect.String:
		return String(rv.String())
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		if rv.Kind() == reflect.Ptr {
			return c.withGuard(rv.Interface(), at, func() Value {
				return c.convert(rv.Elem().Interface(), at)
			})
		}
		return c.convert(rv.Elem().Interface(), at)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Sequence()
		}
		build := func() Value {
			items := make([]Value, rv.Len())
			for i := range items {
				items[i] = c.convert(rv.Index(i).Interface(), at.Index(i))
			}
			return sequenceOf(items)
		}
		if rv.Kind() == reflect.Slice {
			return c.withGuard(rv.Interface(), at, build)
		}
		return build()
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Opaque(rv.Interface())
		}
		return c.withGuard(rv.Interface(), at, func() Value {
			keys := make([]string, 0, rv.Len())
			for _, k := range rv.MapKeys() {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			entries := make([]Entry, len(keys))
			for i, k := range keys {
				mv := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
				entries[i] = Entry{Key: k, Value: c.convert(mv.Interface(), at.Key(k))}
			}
			return mappingOf(entries)
		})
	case reflect.Struct:
		return structValue(rv.Interface())
	}
	return Opaque(rv.Interface())
}

// withGuard runs build unless the container behind v is already being
// converted further up, in which case it returns a Ref to that position.
func (c *converter) withGuard(v any, at path.Path, build func() Value) Value {
	id := identity(v)
	if id == 0 {
		return build()
	}
	if first, ok := c.onPath[id]; ok {
		return Opaque(Ref{Target: first})
	}
	c.onPath[id] = at
	defer delete(c.onPath, id)
	return build()
}

func identity(v any) uintptr {
	rv := reflect.ValueOf(v)
	//exhaustive:ignore
	switch rv.Kind() {
	case reflect.Map, reflect.Ptr:
		return rv.Pointer()
	case reflect.Slice:
		if rv.Len() == 0 {
			return 0
		}
		return rv.Pointer()
	}
	return 0
}

// structValue converts a struct through its JSON form, keeping field order.
func structValue(v any) Value {
	data, err := json.Marshal(v)
	if err != nil {
		return Opaque(v)
	}
	out, err := DecodeJSON(data)
	if err != nil {
		return Opaque(v)
	}
	return out
}

// ToNative converts v back into plain Go values: map[string]any, []any,
// float64, string, bool and nil. Opaque payloads are returned as-is.
func ToNative(v Value) any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindSequence:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = ToNative(item)
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.entries))
		for _, e := range v.entries {
			out[e.Key] = ToNative(e.Value)
		}
		return out
	default:
		return v.opaque
	}
}

// GoString makes %#v output readable in test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("value.%s(%s)", v.kind, Stringify(v))
}
