package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/synonyms"
)

// DictionaryRef is either the name of a dictionary source or an inline
// source. In YAML and JSON a scalar is a name and a mapping is inline.
type DictionaryRef struct {
	Name   string
	Inline synonyms.Source
}

// IsZero reports whether no dictionary is referenced.
func (d DictionaryRef) IsZero() bool {
	return d.Name == "" && d.Inline == nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *DictionaryRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*d = DictionaryRef{}
			return nil
		}
		*d = DictionaryRef{Name: node.Value}
		return nil
	case yaml.MappingNode:
		raw := make(map[string]any)
		if err := node.Decode(&raw); err != nil {
			return err
		}
		src, err := synonyms.SourceFromMap(raw)
		if err != nil {
			return err
		}
		*d = DictionaryRef{Inline: src}
		return nil
	default:
		return fmt.Errorf("line %d: dictionary must be a name or a mapping of word to synonyms", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (d DictionaryRef) MarshalYAML() (any, error) {
	if d.Inline != nil {
		return map[string][]string(d.Inline), nil
	}
	return d.Name, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DictionaryRef) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*d = DictionaryRef{}
	case string:
		*d = DictionaryRef{Name: t}
	case map[string]any:
		src, err := synonyms.SourceFromMap(t)
		if err != nil {
			return err
		}
		*d = DictionaryRef{Inline: src}
	default:
		return fmt.Errorf("dictionary must be a name or an object of word to synonyms, got %T", v)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d DictionaryRef) MarshalJSON() ([]byte, error) {
	if d.Inline != nil {
		return json.Marshal(map[string][]string(d.Inline))
	}
	if d.Name == "" {
		return []byte("null"), nil
	}
	return json.Marshal(d.Name)
}

// Debounce parses WatchDebounce. Empty means no debouncing.
func (d DictionariesConfig) Debounce() (time.Duration, error) {
	if d.WatchDebounce == "" {
		return 0, nil
	}
	v, err := time.ParseDuration(d.WatchDebounce)
	if err != nil || v < 0 {
		return 0, derrors.ConfigError(fmt.Sprintf("dictionaries.watch_debounce must be a non-negative duration, got %q", d.WatchDebounce), err)
	}
	return v, nil
}
