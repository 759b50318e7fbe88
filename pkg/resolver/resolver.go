// Package resolver maps plugin identifiers to the locations they may be loaded
// from and asks a ports.PluginLoader to load the first existing one.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/mdpipe/pkg/engine"
	"github.com/aretw0/mdpipe/pkg/ports"
)

// ErrNotFound is wrapped by a LoadError when no candidate exists.
var ErrNotFound = ports.ErrNotFound

// DefaultModulesDir is the directory holding installed plugin packages.
const DefaultModulesDir = "node_modules"

// DefaultExtensions are tried after the bare local path.
var DefaultExtensions = []string{".yaml", ".yml", ".json"}

// LoadError reports a plugin that could not be resolved or loaded.
type LoadError struct {
	Identifier string
	Candidates []ports.Candidate
	Err        error
}

func (e *LoadError) Error() string {
	if errors.Is(e.Err, ErrNotFound) {
		return fmt.Sprintf("cannot find plugin %q", e.Identifier)
	}
	return fmt.Sprintf("cannot load plugin %q: %v", e.Identifier, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Diagnostic lists the candidates that were tried when nothing was found.
func (e *LoadError) Diagnostic() string {
	if !errors.Is(e.Err, ErrNotFound) || len(e.Candidates) == 0 {
		return e.Error()
	}
	var b strings.Builder
	b.WriteString(e.Error())
	b.WriteString("; tried:")
	for _, c := range e.Candidates {
		b.WriteString("\n  ")
		b.WriteString(c.String())
	}
	return b.String()
}

// Resolver builds candidate lists and delegates loading.
type Resolver struct {
	loader     ports.PluginLoader
	root       string
	workDir    string
	modulesDir string
	extensions []string
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithModulesDir sets the installed packages directory name.
func WithModulesDir(name string) Option {
	return func(r *Resolver) {
		r.modulesDir = name
	}
}

// WithExtensions sets the extensions appended to local paths.
func WithExtensions(exts ...string) Option {
	return func(r *Resolver) {
		r.extensions = exts
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver searching root (the project root) and workDir.
func New(loader ports.PluginLoader, root, workDir string, opts ...Option) *Resolver {
	r := &Resolver{
		loader:     loader,
		root:       root,
		workDir:    workDir,
		modulesDir: DefaultModulesDir,
		extensions: DefaultExtensions,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Candidates returns the locations for id in search order:
//  1. root/id, then root/id with each extension;
//  2. root/<modules>/id;
//  3. workDir/<modules>/id, when different from 2;
//  4. id as a bare module name.
//
// Absolute identifiers only yield the path candidates.
func (r *Resolver) Candidates(id string) []ports.Candidate {
	local := id
	if !filepath.IsAbs(id) {
		local = filepath.Join(r.root, id)
	}

	candidates := []ports.Candidate{{Kind: ports.CandidatePath, Path: local, Identifier: id}}
	for _, ext := range r.extensions {
		candidates = append(candidates, ports.Candidate{Kind: ports.CandidatePath, Path: local + ext, Identifier: id})
	}
	if filepath.IsAbs(id) {
		return candidates
	}

	rootPkg := filepath.Join(r.root, r.modulesDir, id)
	candidates = append(candidates, ports.Candidate{Kind: ports.CandidatePackage, Path: rootPkg, Identifier: id})
	if wdPkg := filepath.Join(r.workDir, r.modulesDir, id); wdPkg != rootPkg {
		candidates = append(candidates, ports.Candidate{Kind: ports.CandidatePackage, Path: wdPkg, Identifier: id})
	}
	return append(candidates, ports.Candidate{Kind: ports.CandidateModule, Path: id, Identifier: id})
}

// Resolve loads the plugin named id.
func (r *Resolver) Resolve(ctx context.Context, id string) (engine.Plugin, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &LoadError{Identifier: id, Err: errors.New("empty plugin identifier")}
	}

	candidates := r.Candidates(id)
	plugin, err := r.loader.Load(ctx, candidates)
	if err != nil {
		return nil, &LoadError{Identifier: id, Candidates: candidates, Err: err}
	}
	if plugin == nil {
		return nil, &LoadError{Identifier: id, Candidates: candidates, Err: errors.New("loader returned no plugin")}
	}

	r.logger.Debug("Plugin resolved", "id", id, "plugin", plugin.Name())
	return plugin, nil
}

// ResolveAll resolves ids in order and stops at the first failure.
func (r *Resolver) ResolveAll(ctx context.Context, ids []string) ([]engine.Plugin, error) {
	plugins := make([]engine.Plugin, 0, len(ids))
	for _, id := range ids {
		plugin, err := r.Resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, plugin)
	}
	return plugins, nil
}
