package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

const manifestInvalidCode = "PLUGIN_MANIFEST_INVALID"

// ManifestExtensions are the file extensions read as plugin manifests.
var ManifestExtensions = []string{".yaml", ".yml", ".json"}

// ManifestNames are the manifest files looked up inside a plugin directory.
var ManifestNames = []string{"plugin.yaml", "plugin.yml", "plugin.json"}

// Manifest describes a plugin assembled from builtins, settings defaults and
// an optional external command.
type Manifest struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Use         []string          `yaml:"use" json:"use"`
	Settings    map[string]any    `yaml:"settings" json:"settings"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Env         map[string]string `yaml:"env" json:"env"`

	// Dir is the directory holding the manifest.
	Dir string `yaml:"-" json:"-"`
}

// IsManifest reports whether path has a manifest extension.
func IsManifest(path string) bool {
	return slices.Contains(ManifestExtensions, strings.ToLower(filepath.Ext(path)))
}

// ReadManifest reads a manifest file (YAML or JSON by extension). The name
// defaults to the file name, or the directory name for plugin.* files.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin manifest: %w", err)
	}

	var m Manifest
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &m)
	} else {
		err = yaml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, invalidManifest(path, fmt.Errorf("failed to parse: %w", err))
	}

	m.Dir = filepath.Dir(path)
	if m.Name == "" {
		base := filepath.Base(path)
		m.Name = strings.TrimSuffix(base, filepath.Ext(base))
		if slices.Contains(ManifestNames, strings.ToLower(base)) {
			m.Name = filepath.Base(m.Dir)
		}
	}
	return &m, nil
}

// Validate checks the manifest. known reports whether a builtin name exists;
// nil skips that check.
func (m *Manifest) Validate(known func(string) bool) error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.Use, validation.Each(validation.Required, validation.By(func(value any) error {
			name, _ := value.(string)
			if known != nil && !known(name) {
				return validation.NewError("plugin_manifest_unknown_builtin", fmt.Sprintf("unknown builtin plugin %q", name))
			}
			return nil
		}))),
		validation.Field(&m.Command, validation.When(len(m.Use) == 0 && len(m.Settings) == 0,
			validation.Required.Error("at least one of use, settings or command is required"))),
		validation.Field(&m.Args, validation.When(m.Command == "", validation.Empty.Error("args require a command"))),
	)
}

func invalidManifest(path string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf("invalid plugin manifest %s: %v", path, err)).
		WithTextCode(manifestInvalidCode)
}
