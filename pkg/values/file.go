package values

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// keyDelim never appears in condition text, so keys such as "a.b" or
// "engineConfiguration->x" stay whole.
const keyDelim = "\x1f"

// ErrNoConditions is returned when a values document lacks a conditions table.
var ErrNoConditions = errors.New("values document has no conditions table")

// File is a value source loaded from a TOML, YAML or JSON document:
//
//	[conditions]
//	"isEnabled" = true
//	"engineConfiguration->isForcedInduction" = false
//
// Entries that are null or not booleans stay unresolved.
type File struct {
	Path       string
	Source     string
	conditions Map
	skipped    []string
}

// LoadOption configures LoadFile.
type LoadOption func(*loadOptions)

type loadOptions struct {
	strict bool
}

// Strict validates the document against the values schema before use.
func Strict() LoadOption {
	return func(o *loadOptions) { o.strict = true }
}

// LoadFile reads a values document. The parser is picked by extension and
// defaults to TOML.
func LoadFile(path string, opts ...LoadOption) (*File, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.NewWithConf(koanf.Conf{Delim: keyDelim})
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("failed to load values %s: %w", path, err)
	}

	if o.strict {
		if err := Validate(k.Raw()); err != nil {
			return nil, fmt.Errorf("invalid values %s: %w", path, err)
		}
	}

	raw, ok := k.Get("conditions").(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoConditions, path)
	}

	f := &File{
		Path:       path,
		Source:     k.String("source"),
		conditions: make(Map, len(raw)),
	}
	for key, v := range raw {
		name := strings.Join(strings.Fields(key), "")
		b, ok := v.(bool)
		if !ok {
			f.skipped = append(f.skipped, name)
			continue
		}
		f.conditions[name] = b
	}
	sort.Strings(f.skipped)

	return f, nil
}

// Value implements walkthrough.ValueSource.
func (f *File) Value(condition string) (bool, bool) {
	return f.conditions.Value(condition)
}

// Conditions returns the resolved entries.
func (f *File) Conditions() Map {
	return f.conditions
}

// Skipped returns the conditions present in the document without a boolean value.
func (f *File) Skipped() []string {
	return f.skipped
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}
