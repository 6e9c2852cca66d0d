// Package config handles application configuration.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FilterMode selects the confidence-filter policy. The positive filter keeps
// only high-confidence signals; the negative filter removes only the worst
// tail of candidates.
type FilterMode int

const (
	// FilterModePositive accepts a signal iff confidence >= threshold.
	FilterModePositive FilterMode = iota
	// FilterModeNegative rejects a signal iff confidence < threshold.
	FilterModeNegative
)

// String returns the string representation of FilterMode.
func (m FilterMode) String() string {
	switch m {
	case FilterModePositive:
		return "POSITIVE"
	case FilterModeNegative:
		return "NEGATIVE"
	default:
		return "UNKNOWN"
	}
}

// ParseFilterMode parses a filter-mode name, case-insensitively.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return FilterModePositive, nil
	case "negative":
		return FilterModeNegative, nil
	default:
		return FilterModePositive, fmt.Errorf("unknown filter mode %q", s)
	}
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for FilterMode.
func (m *FilterMode) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag != "!!str" {
		return fmt.Errorf("cannot unmarshal %s into FilterMode", value.Tag)
	}
	mode, err := ParseFilterMode(value.Value)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
