// Package file loads plugins from the filesystem: manifests, plugin
// directories, executables, builtins and mdpipe-* commands on PATH.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mdpipe/pkg/adapters/builtin"
	"github.com/aretw0/mdpipe/pkg/adapters/process"
	"github.com/aretw0/mdpipe/pkg/engine"
	"github.com/aretw0/mdpipe/pkg/ports"
)

// Loader implements ports.PluginLoader.
type Loader struct {
	builtins *builtin.Registry
	lookPath func(string) (string, error)
	stat     func(string) (fs.FileInfo, error)
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLookPath sets the executable lookup used for bare commands.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(l *Loader) {
		l.lookPath = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader. A nil registry means no builtins.
func NewLoader(builtins *builtin.Registry, opts ...Option) *Loader {
	l := &Loader{
		builtins: builtins,
		stat:     os.Stat,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.builtins == nil {
		l.builtins = builtin.NewRegistry()
	}
	if l.lookPath == nil {
		l.lookPath = func(string) (string, error) { return "", errors.New("no executable lookup") }
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}

// Load selects the first existing candidate and loads it.
func (l *Loader) Load(ctx context.Context, candidates []ports.Candidate) (engine.Plugin, error) {
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.Kind == ports.CandidateModule {
			plugin, ok := l.loadModule(c.Path)
			if ok {
				return plugin, nil
			}
			continue
		}

		info, err := l.stat(c.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", c.Path, err)
		}
		l.logger.Debug("Plugin candidate selected", "kind", c.Kind.String(), "path", c.Path)
		return l.loadPath(c.Path, info)
	}
	return nil, ports.ErrNotFound
}

func (l *Loader) loadModule(name string) (engine.Plugin, bool) {
	if plugin, ok := l.builtins.Lookup(name); ok {
		l.logger.Debug("Plugin candidate selected", "kind", "builtin", "name", name)
		return plugin, true
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, false
	}

	command := builtin.Prefix + builtin.Normalize(name)
	bin, err := l.lookPath(command)
	if err != nil {
		return nil, false
	}
	l.logger.Debug("Plugin candidate selected", "kind", "command", "path", bin)
	return process.NewPlugin(command, process.Command{Path: bin}), true
}

func (l *Loader) loadPath(path string, info fs.FileInfo) (engine.Plugin, error) {
	if info.IsDir() {
		for _, name := range process.ManifestNames {
			manifest := filepath.Join(path, name)
			if mi, err := l.stat(manifest); err == nil && mi.Mode().IsRegular() {
				return process.LoadManifest(manifest, l.builtins, l.lookPath)
			}
		}
		return nil, fmt.Errorf("plugin directory %s has no manifest (%s)", path, strings.Join(process.ManifestNames, ", "))
	}

	if process.IsManifest(path) {
		return process.LoadManifest(path, l.builtins, l.lookPath)
	}
	if process.IsExecutable(info) {
		base := filepath.Base(path)
		return process.NewPlugin(strings.TrimSuffix(base, filepath.Ext(base)), process.Command{Path: path}), nil
	}
	return nil, fmt.Errorf("unsupported plugin file %s", path)
}
