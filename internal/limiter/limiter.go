// Package limiter selects a window of records from the top level of a tree.
package limiter

import (
	"fmt"

	"github.com/oakwood-commons/kvi/internal/value"
)

// Config holds the record-limiting parameters. Zero values disable a field.
type Config struct {
	Limit  int // keep at most this many records
	Offset int // skip this many records first
	Tail   int // keep only the last N records; excludes Limit and ignores Offset
}

// Validate rejects negative values and Limit combined with Tail.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive reports whether any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Window returns the [start, end) range kept out of length records.
func (c Config) Window(length int) (int, int) {
	if c.Tail > 0 {
		return max(length-c.Tail, 0), length
	}
	start := min(c.Offset, length)
	end := length
	if c.Limit > 0 {
		end = min(start+c.Limit, length)
	}
	return start, end
}

// Apply limits the elements of a sequence or the entries of a mapping, in
// their stored order. Scalars are returned unchanged.
func (c Config) Apply(v value.Value) value.Value {
	if !c.IsActive() || !v.Kind().IsComposite() {
		return v
	}
	start, end := c.Window(v.Len())
	return v.Slice(start, end)
}
