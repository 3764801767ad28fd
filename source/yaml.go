package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML decodes a single YAML mapping from r. Non-string keys are rendered
// with fmt.Sprint. An empty document is the empty record.
func YAML(r io.Reader) (map[string]any, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("source: %w", err)
	}
	if doc == nil {
		return map[string]any{}, nil
	}
	out, ok := normalizeYAML(doc).(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return out, nil
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, x := range t {
			t[k] = normalizeYAML(x)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[fmt.Sprint(k)] = normalizeYAML(x)
		}
		return out
	case []any:
		for i, x := range t {
			t[i] = normalizeYAML(x)
		}
		return t
	}
	return v
}

// Format names an input document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf infers the format from a file extension, defaulting to JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode reads one record from r in the given format.
func Decode(format Format, r io.Reader) (map[string]any, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatJSON, "":
		return JSON(r)
	case FormatYAML, "yml":
		return YAML(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}
