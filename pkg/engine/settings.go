package engine

import (
	"fmt"
	"maps"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mitchellh/mapstructure"
)

// Settings are the options understood by the engine. Unknown names are ignored
// so plugins can read their own.
type Settings struct {
	AutoHeadingID bool `mapstructure:"autoHeadingId" json:"autoHeadingId"`
	Attribute     bool `mapstructure:"attribute" json:"attribute"`

	Bullet              string `mapstructure:"bullet" json:"bullet"`
	BulletOrdered       string `mapstructure:"bulletOrdered" json:"bulletOrdered"`
	Emphasis            string `mapstructure:"emphasis" json:"emphasis"`
	Strong              string `mapstructure:"strong" json:"strong"`
	Fence               string `mapstructure:"fence" json:"fence"`
	Fences              bool   `mapstructure:"fences" json:"fences"`
	Rule                string `mapstructure:"rule" json:"rule"`
	RuleRepetition      int    `mapstructure:"ruleRepetition" json:"ruleRepetition"`
	RuleSpaces          bool   `mapstructure:"ruleSpaces" json:"ruleSpaces"`
	Setext              bool   `mapstructure:"setext" json:"setext"`
	CloseAtx            bool   `mapstructure:"closeAtx" json:"closeAtx"`
	IncrementListMarker bool   `mapstructure:"incrementListMarker" json:"incrementListMarker"`
	ListItemIndent      string `mapstructure:"listItemIndent" json:"listItemIndent"`
	Quote               string `mapstructure:"quote" json:"quote"`

	HTML      bool `mapstructure:"html" json:"html"`
	XHTML     bool `mapstructure:"xhtml" json:"xhtml"`
	HardWraps bool `mapstructure:"hardWraps" json:"hardWraps"`
	Unsafe    bool `mapstructure:"unsafe" json:"unsafe"`
}

// SettingDescriptor documents one setting.
type SettingDescriptor struct {
	Name    string
	Type    string // JSON Schema type
	Default any
	Enum    []any
	Min     *float64
	Help    string
}

var ruleMinimum = 3.0

var descriptors = []SettingDescriptor{
	{Name: "autoHeadingId", Type: "boolean", Default: false, Help: "Generate id attributes for headings"},
	{Name: "attribute", Type: "boolean", Default: false, Help: "Parse {#id .class} attribute blocks"},
	{Name: "bullet", Type: "string", Default: "*", Enum: []any{"*", "-", "+"}, Help: "Marker for unordered list items"},
	{Name: "bulletOrdered", Type: "string", Default: ".", Enum: []any{".", ")"}, Help: "Marker after ordered list item numbers"},
	{Name: "emphasis", Type: "string", Default: "*", Enum: []any{"*", "_"}, Help: "Marker for emphasis"},
	{Name: "strong", Type: "string", Default: "*", Enum: []any{"*", "_"}, Help: "Marker for strong emphasis (doubled)"},
	{Name: "fence", Type: "string", Default: "`", Enum: []any{"`", "~"}, Help: "Character for code fences"},
	{Name: "fences", Type: "boolean", Default: true, Help: "Fence code blocks without an info string instead of indenting"},
	{Name: "rule", Type: "string", Default: "*", Enum: []any{"*", "-", "_"}, Help: "Character for thematic breaks"},
	{Name: "ruleRepetition", Type: "number", Default: 3, Min: &ruleMinimum, Help: "Number of rule characters"},
	{Name: "ruleSpaces", Type: "boolean", Default: false, Help: "Separate rule characters with spaces"},
	{Name: "setext", Type: "boolean", Default: false, Help: "Use setext underlines for level 1 and 2 headings"},
	{Name: "closeAtx", Type: "boolean", Default: false, Help: "Close ATX headings with hashes"},
	{Name: "incrementListMarker", Type: "boolean", Default: true, Help: "Increment ordered list item numbers"},
	{Name: "listItemIndent", Type: "string", Default: "one", Enum: []any{"one", "tab", "mixed"}, Help: "Indentation of list item content"},
	{Name: "quote", Type: "string", Default: `"`, Enum: []any{`"`, "'"}, Help: "Quote for link and image titles"},
	{Name: "html", Type: "boolean", Default: false, Help: "Render HTML instead of Markdown"},
	{Name: "xhtml", Type: "boolean", Default: false, Help: "Render XHTML-style void elements (html only)"},
	{Name: "hardWraps", Type: "boolean", Default: false, Help: "Render soft line breaks as <br> (html only)"},
	{Name: "unsafe", Type: "boolean", Default: false, Help: "Keep raw HTML and dangerous links (html only)"},
}

// SettingDescriptors lists the settings the engine understands.
func SettingDescriptors() []SettingDescriptor {
	return append([]SettingDescriptor(nil), descriptors...)
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() Settings {
	return Settings{
		Bullet:              "*",
		BulletOrdered:       ".",
		Emphasis:            "*",
		Strong:              "*",
		Fence:               "`",
		Fences:              true,
		Rule:                "*",
		RuleRepetition:      3,
		IncrementListMarker: true,
		ListItemIndent:      "one",
		Quote:               `"`,
	}
}

// SettingsSchema returns a JSON Schema for a settings object. Names the engine
// does not know are allowed.
func SettingsSchema() map[string]any {
	properties := make(map[string]any, len(descriptors))
	for _, d := range descriptors {
		prop := map[string]any{"type": d.Type, "description": d.Help}
		if len(d.Enum) > 0 {
			prop["enum"] = d.Enum
		}
		if d.Min != nil {
			prop["minimum"] = *d.Min
		}
		properties[d.Name] = prop
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
}

// DecodeSettings overlays layers, in order, onto DefaultSettings and validates
// the result.
func DecodeSettings(layers ...map[string]any) (Settings, error) {
	merged := map[string]any{}
	for _, layer := range layers {
		maps.Copy(merged, layer)
	}

	s := DefaultSettings()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return s, err
	}
	if err := dec.Decode(merged); err != nil {
		return s, fmt.Errorf("invalid settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// Validate checks enumerated and bounded settings.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Bullet, validation.Required, validation.In("*", "-", "+")),
		validation.Field(&s.BulletOrdered, validation.Required, validation.In(".", ")")),
		validation.Field(&s.Emphasis, validation.Required, validation.In("*", "_")),
		validation.Field(&s.Strong, validation.Required, validation.In("*", "_")),
		validation.Field(&s.Fence, validation.Required, validation.In("`", "~")),
		validation.Field(&s.Rule, validation.Required, validation.In("*", "-", "_")),
		// Min accepts the zero value, Required rejects it.
		validation.Field(&s.RuleRepetition, validation.Required, validation.Min(3)),
		validation.Field(&s.ListItemIndent, validation.Required, validation.In("one", "tab", "mixed")),
		validation.Field(&s.Quote, validation.Required, validation.In(`"`, "'")),
	)
}
