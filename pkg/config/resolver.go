// Package config resolves the effective configuration of a run: engine
// defaults, a discovered or declared configuration file, and command-line
// settings and plugins, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"

	"github.com/aretw0/mdpipe/pkg/domain"
	"github.com/aretw0/mdpipe/pkg/engine"
	"github.com/mitchellh/mapstructure"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultFileNames are looked up, in order, in every directory searched.
var DefaultFileNames = []string{
	".mdpiperc",
	".mdpiperc.json",
	".mdpiperc.yaml",
	".mdpiperc.yml",
	".mdpiperc.hcl",
	PackageFile,
}

// File is the decoded body of a configuration file.
type File struct {
	Settings map[string]any `mapstructure:"settings"`
	Plugins  []string       `mapstructure:"plugins"`
}

// Resolver implements ports.ConfigurationResolver.
type Resolver struct {
	workDir      string
	req          domain.ConfigRequest
	defaults     map[string]any
	fileNames    []string
	packageField string
	logger       *slog.Logger

	fileSchema     *jsonschema.Schema
	settingsSchema *jsonschema.Schema
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDefaults sets the lowest precedence settings.
func WithDefaults(settings map[string]any) Option {
	return func(r *Resolver) {
		r.defaults = settings
	}
}

// WithFileNames replaces DefaultFileNames.
func WithFileNames(names ...string) Option {
	return func(r *Resolver) {
		r.fileNames = names
	}
}

// WithPackageField sets the package.json field holding configuration.
func WithPackageField(field string) Option {
	return func(r *Resolver) {
		r.packageField = field
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver for the command-line inputs in req. Relative
// paths are resolved against workDir.
func NewResolver(workDir string, req domain.ConfigRequest, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		workDir:      workDir,
		req:          req,
		fileNames:    DefaultFileNames,
		packageField: DefaultPackageField,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var err error
	if r.fileSchema, err = compileSchema(fileSchema); err != nil {
		return nil, fmt.Errorf("compile configuration schema: %w", err)
	}
	if r.settingsSchema, err = compileSchema(engine.SettingsSchema()); err != nil {
		return nil, fmt.Errorf("compile settings schema: %w", err)
	}
	return r, nil
}

// Configuration returns the effective configuration for filename, which is
// empty for stream input.
func (r *Resolver) Configuration(filename string) (*domain.Configuration, error) {
	file, source, err := r.load(filename)
	if err != nil {
		return nil, err
	}

	settings := make(map[string]any, len(r.defaults)+len(file.Settings)+len(r.req.Settings))
	maps.Copy(settings, r.defaults)
	maps.Copy(settings, file.Settings)
	maps.Copy(settings, r.req.Settings)

	plugins := make([]string, 0, len(file.Plugins)+len(r.req.Plugins))
	plugins = append(plugins, file.Plugins...)
	plugins = append(plugins, r.req.Plugins...)

	normalized, err := toJSONValue(finite(settings))
	if err != nil {
		return nil, &Error{Path: source, Err: ErrInvalidSettings, Issues: []Issue{{Message: err.Error()}}}
	}
	if issues := validate(r.settingsSchema, normalized); len(issues) > 0 {
		return nil, &Error{Path: source, Err: ErrInvalidSettings, Issues: issues}
	}

	r.logger.Debug("Configuration resolved", "source", source, "plugins", len(plugins), "settings", len(settings))
	return &domain.Configuration{Settings: settings, Plugins: plugins, Source: source}, nil
}

// load returns the configuration file for filename and its path. Without a
// file the result is empty.
func (r *Resolver) load(filename string) (*File, string, error) {
	if r.req.ConfigFile != "" {
		path := r.abs(r.req.ConfigFile)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", &Error{Path: path, Err: fmt.Errorf("cannot read configuration: %w", err)}
		}
		file, _, err := r.parse(path, data)
		if err != nil {
			return nil, "", err
		}
		return file, path, nil
	}

	if !r.req.Detect {
		return &File{}, "", nil
	}

	dir := r.workDir
	if filename != "" {
		dir = filepath.Dir(r.abs(filename))
	}
	for {
		file, path, err := r.search(dir)
		if err != nil || file != nil {
			return file, path, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return &File{}, "", nil
		}
		dir = parent
	}
}

// search looks for a configuration file in dir. A nil File means none.
func (r *Resolver) search(dir string) (*File, string, error) {
	for _, name := range r.fileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", &Error{Path: path, Err: err}
		}
		if info.IsDir() {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", &Error{Path: path, Err: fmt.Errorf("cannot read configuration: %w", err)}
		}
		file, found, err := r.parse(path, data)
		if err != nil {
			return nil, "", err
		}
		if !found {
			continue
		}
		r.logger.Debug("Configuration file found", "path", path)
		return file, path, nil
	}
	return nil, "", nil
}

// parse decodes, validates and maps a configuration file.
func (r *Resolver) parse(path string, data []byte) (*File, bool, error) {
	doc, found, err := r.decode(path, data)
	if err != nil {
		var cfgErr *Error
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
			return nil, false, cfgErr
		}
		return nil, false, &Error{Path: path, Err: err}
	}
	if !found {
		return &File{}, false, nil
	}

	if issues := validate(r.fileSchema, doc); len(issues) > 0 {
		return nil, false, &Error{Path: path, Err: ErrSchema, Issues: issues}
	}

	var file File
	if err := mapstructure.Decode(doc, &file); err != nil {
		return nil, false, &Error{Path: path, Err: ErrSchema, Issues: []Issue{{Message: err.Error()}}}
	}
	return &file, true, nil
}

func (r *Resolver) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.workDir, path)
}
