// Package values provides the condition value sources a walk resolves against.
package values

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/panbanda/livewalk/pkg/walkthrough"
)

// Map is an in-memory value source keyed by condition text.
type Map map[string]bool

// Value implements walkthrough.ValueSource.
func (m Map) Value(condition string) (bool, bool) {
	v, ok := m[condition]
	return v, ok
}

// Keys returns the condition texts in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unknown resolves nothing. Every condition walked against it is broken.
type Unknown struct{}

// Value implements walkthrough.ValueSource.
func (Unknown) Value(string) (bool, bool) { return false, false }

// Overlay asks each source in order and returns the first resolved value.
type Overlay []walkthrough.ValueSource

// Value implements walkthrough.ValueSource.
func (o Overlay) Value(condition string) (bool, bool) {
	for _, src := range o {
		if src == nil {
			continue
		}
		if v, ok := src.Value(condition); ok {
			return v, true
		}
	}
	return false, false
}

// ParseAssignments parses "condition=bool" pairs as given on the command line.
// The split happens at the last '=' so conditions such as "a==1" survive.
func ParseAssignments(pairs []string) (Map, error) {
	m := make(Map, len(pairs))
	for _, pair := range pairs {
		idx := strings.LastIndex(pair, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid assignment %q: want condition=true|false", pair)
		}
		v, err := strconv.ParseBool(strings.TrimSpace(pair[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("invalid assignment %q: %w", pair, err)
		}
		m[strings.Join(strings.Fields(pair[:idx]), "")] = v
	}
	return m, nil
}

// Normalize strips the whitespace from each key.
func (m Map) Normalize() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[strings.Join(strings.Fields(k), "")] = v
	}
	return out
}

// Layered puts inline values ahead of the document at path. An empty inline
// map or path is left out; with neither, every condition is unknown.
func Layered(inline Map, path string, opts ...LoadOption) (walkthrough.ValueSource, error) {
	var overlay Overlay
	if len(inline) > 0 {
		overlay = append(overlay, inline.Normalize())
	}
	if path != "" {
		f, err := LoadFile(path, opts...)
		if err != nil {
			return nil, err
		}
		overlay = append(overlay, f)
	}

	switch len(overlay) {
	case 0:
		return Unknown{}, nil
	case 1:
		return overlay[0], nil
	}
	return overlay, nil
}
