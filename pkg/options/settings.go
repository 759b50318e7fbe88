package options

import (
	"regexp"
	"strings"

	"github.com/ettle/strcase"
)

var (
	entrySeparator = regexp.MustCompile(`\s*[,;]\s*`)
	valueSeparator = regexp.MustCompile(`\s*:\s*`)
)

// Settings maps camel-cased setting names to coerced values.
type Settings map[string]Value

// Map converts s into plain Go values.
func (s Settings) Map() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = v.Interface()
	}
	return out
}

// ParseSettings parses raw into acc and returns it. A nil acc is allocated. Later
// entries overwrite earlier ones with the same name. Malformed entries degrade
// to Text values; parsing never fails.
func ParseSettings(raw string, acc Settings) Settings {
	return DefaultPolicy.ParseSettings(raw, acc)
}

// ParseSettings is ParseSettings using p for value coercion.
func (p Policy) ParseSettings(raw string, acc Settings) Settings {
	if acc == nil {
		acc = Settings{}
	}
	for _, entry := range splitEntries(raw) {
		parts := valueSeparator.Split(entry, -1)
		acc[NormalizeKey(parts[0])] = p.Coerce(strings.Join(parts[1:], ":"))
	}
	return acc
}

// NormalizeKey converts dash-case, snake_case and space separated names to
// camelCase. Names already in camelCase are kept.
func NormalizeKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strcase.ToCamel(name)
}

func splitEntries(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var entries []string
	for _, entry := range entrySeparator.Split(raw, -1) {
		if entry = strings.TrimSpace(entry); entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}
