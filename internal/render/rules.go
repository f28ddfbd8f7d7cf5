package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/value"
)

const (
	// epochMin and epochMax bound the integers read as Unix seconds
	// (2000-01-01 to 2050-01-01).
	epochMin = 946684800
	epochMax = 2524608000

	// DefaultTimestampLayout renders the calendar comment of epoch fields.
	DefaultTimestampLayout = "2006-01-02 15:04:05 MST"
)

// Leaf describes a scalar being formatted.
type Leaf struct {
	Value value.Value
	Path  path.Path
	// Key is set when the leaf is a mapping member.
	Key    string
	HasKey bool
}

// Display is the formatted form of a scalar.
type Display struct {
	Text    string
	Link    string
	Comment string
	// Rule names the rule that produced the display.
	Rule string
}

// Rule pairs a predicate with a formatter. Rules are evaluated in order and
// the first match wins.
type Rule struct {
	Name   string
	Match  func(Leaf) bool
	Format func(Leaf) Display
}

// RuleConfig tunes the built-in rules.
type RuleConfig struct {
	TimestampLayout string
	Location        *time.Location
}

// DefaultRules returns the built-in rule list. It always ends with a rule
// that matches anything.
func DefaultRules(cfg RuleConfig) []Rule {
	layout := cfg.TimestampLayout
	if layout == "" {
		layout = DefaultTimestampLayout
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return []Rule{
		{
			Name:   "null",
			Match:  kindIs(value.KindNull),
			Format: func(Leaf) Display { return Display{Text: "null"} },
		},
		{
			Name:   "bool",
			Match:  kindIs(value.KindBool),
			Format: func(l Leaf) Display { return Display{Text: fmt.Sprint(l.Value.Bool())} },
		},
		{
			Name:  "epoch",
			Match: isEpochField,
			Format: func(l Leaf) Display {
				ms := int64(l.Value.Number()) * 1000
				return Display{
					Text:    value.FormatNumber(l.Value.Number()),
					Comment: time.UnixMilli(ms).In(loc).Format(layout),
				}
			},
		},
		{
			Name:   "number",
			Match:  kindIs(value.KindNumber),
			Format: func(l Leaf) Display { return Display{Text: value.FormatNumber(l.Value.Number())} },
		},
		{
			Name: "link",
			Match: func(l Leaf) bool {
				return l.Value.Kind() == value.KindString && strings.HasPrefix(l.Value.Str(), "http")
			},
			Format: func(l Leaf) Display {
				return Display{Text: value.Quote(l.Value.Str()), Link: l.Value.Str()}
			},
		},
		{
			Name:   "string",
			Match:  kindIs(value.KindString),
			Format: func(l Leaf) Display { return Display{Text: value.Quote(l.Value.Str())} },
		},
		{
			Name:   "fallback",
			Match:  func(Leaf) bool { return true },
			Format: func(l Leaf) Display { return Display{Text: value.Stringify(l.Value)} },
		},
	}
}

// Format applies the first matching rule. A rule list without a match yields
// the generic string form.
func Format(rules []Rule, l Leaf) Display {
	for _, r := range rules {
		if r.Match(l) {
			d := r.Format(l)
			d.Rule = r.Name
			return d
		}
	}
	return Display{Text: value.Stringify(l.Value), Rule: "fallback"}
}

func kindIs(k value.Kind) func(Leaf) bool {
	return func(l Leaf) bool { return l.Value.Kind() == k }
}

// isEpochField matches integers in the plausible Unix-seconds range stored
// under a date-like key.
func isEpochField(l Leaf) bool {
	if !l.HasKey || l.Value.Kind() != value.KindNumber {
		return false
	}
	n := l.Value.Number()
	if !value.IsInteger(n) || n < epochMin || n > epochMax {
		return false
	}
	return IsDateKey(l.Key)
}

// IsDateKey reports whether a mapping key names a timestamp.
func IsDateKey(key string) bool {
	k := strings.ToLower(key)
	switch k {
	case "created", "start", "end":
		return true
	}
	return strings.HasSuffix(k, "_at") || strings.HasSuffix(k, "date")
}
