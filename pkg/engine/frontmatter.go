package engine

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// splitFrontmatter separates a leading frontmatter block (YAML, TOML or JSON
// delimiters) from the Markdown body.
func splitFrontmatter(source []byte) (map[string]any, []byte, bool, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, nil, false, fmt.Errorf("parse frontmatter: %w", err)
	}
	if len(body) == len(source) {
		return nil, source, false, nil
	}
	normalized, _ := normalizeValue(meta).(map[string]any)
	if normalized == nil {
		normalized = map[string]any{}
	}
	return normalized, body, true, nil
}

// normalizeValue converts YAML decoder maps keyed by interface{} into
// map[string]any so the result can be re-encoded as JSON.
func normalizeValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[k] = normalizeValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = normalizeValue(val)
		}
		return out
	default:
		return v
	}
}

func encodeFrontmatter(meta map[string]any) (string, error) {
	if len(meta) == 0 {
		return "---\n---", nil
	}
	b, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	return "---\n" + string(b) + "---", nil
}
