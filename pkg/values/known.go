package values

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// KnownFields is the set of configuration field names a firmware build defines.
type KnownFields map[string]struct{}

type knownFieldsDoc struct {
	Fields []string `yaml:"fields"`
}

// LoadKnownFields reads a YAML document of the form
//
//	fields:
//	  - mafAdcChannel
//	  - isForcedInduction
func LoadKnownFields(path string) (KnownFields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read known fields: %w", err)
	}
	return ParseKnownFields(data)
}

// ParseKnownFields decodes a known-fields document. Unknown keys are rejected.
func ParseKnownFields(data []byte) (KnownFields, error) {
	var doc knownFieldsDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse known fields: %w", err)
	}

	known := make(KnownFields, len(doc.Fields))
	for _, f := range doc.Fields {
		if f != "" {
			known[f] = struct{}{}
		}
	}
	return known, nil
}

// Contains reports whether name is a known field. A nil set knows every field.
func (k KnownFields) Contains(name string) bool {
	if k == nil {
		return true
	}
	_, ok := k[name]
	return ok
}

// Names returns the field names in sorted order.
func (k KnownFields) Names() []string {
	names := make([]string, 0, len(k))
	for n := range k {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
