// Package path builds the positional addresses kvi assigns to every node of a
// value tree.
//
// A Path is a plain string: the root is "$", a mapping member appends
// ".<key>" and a sequence element appends "[<index>]". Paths are positional:
// the same logical datum can carry a different path in two different trees
// (for example before and after a search projection re-indexes a sequence).
package path

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is the string address of a node within one tree instance.
type Path string

// Root is the address of the top-level node.
const Root Path = "$"

// Key returns the address of the mapping member k under p.
func (p Path) Key(k string) Path {
	return p + "." + Path(k)
}

// Index returns the address of the sequence element i under p.
func (p Path) Index(i int) Path {
	return p + "[" + Path(strconv.Itoa(i)) + "]"
}

// HasPrefix reports whether prefix is a literal string prefix of p.
// It is not segment-aware: "$.a10" has the prefix "$.a1".
func (p Path) HasPrefix(prefix Path) bool {
	return strings.HasPrefix(string(p), string(prefix))
}

// String implements fmt.Stringer.
func (p Path) String() string {
	return string(p)
}

// Child derives the address of a child node. A string is treated as a mapping
// key; any Go integer is treated as a sequence index. Other types are formatted
// with fmt and treated as keys.
func Child(parent Path, keyOrIndex any) Path {
	switch v := keyOrIndex.(type) {
	case string:
		return parent.Key(v)
	case int:
		return parent.Index(v)
	case int8:
		return parent.Index(int(v))
	case int16:
		return parent.Index(int(v))
	case int32:
		return parent.Index(int(v))
	case int64:
		return parent.Index(int(v))
	case uint:
		return parent.Index(int(v))
	case uint8:
		return parent.Index(int(v))
	case uint16:
		return parent.Index(int(v))
	case uint32:
		return parent.Index(int(v))
	case uint64:
		return parent.Index(int(v))
	default:
		return parent.Key(fmt.Sprint(v))
	}
}
