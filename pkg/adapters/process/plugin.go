package process

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mdpipe/pkg/engine"
)

// Plugin attaches builtins, settings defaults and an output filter.
type Plugin struct {
	name     string
	uses     []engine.Plugin
	settings map[string]any
	command  *Command
}

// NewPlugin wraps a command as a plugin that filters the output.
func NewPlugin(name string, cmd Command) *Plugin {
	return &Plugin{name: name, command: &cmd}
}

func (p *Plugin) Name() string {
	return p.name
}

func (p *Plugin) Attach(proc *engine.Processor) error {
	if err := proc.Use(p.uses...); err != nil {
		return err
	}
	if len(p.settings) > 0 {
		proc.SetDefaults(p.settings)
	}
	if p.command != nil {
		proc.AddFilter(p.name, p.command.Filter)
	}
	return nil
}

// Builtins looks up builtin plugins by name.
type Builtins interface {
	Has(name string) bool
	Get(name string) (engine.Plugin, error)
}

// LoadManifest reads, validates and assembles the plugin described by the
// manifest at path. lookPath resolves bare command names.
func LoadManifest(path string, builtins Builtins, lookPath func(string) (string, error)) (*Plugin, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}

	var known func(string) bool
	if builtins != nil {
		known = builtins.Has
	}
	if err := m.Validate(known); err != nil {
		return nil, invalidManifest(path, err)
	}

	p := &Plugin{name: m.Name, settings: m.Settings}
	if builtins == nil && len(m.Use) > 0 {
		return nil, invalidManifest(path, errors.New("use: no builtin plugins available"))
	}
	for _, name := range m.Use {
		b, err := builtins.Get(name)
		if err != nil {
			return nil, err
		}
		p.uses = append(p.uses, b)
	}

	if m.Command != "" {
		bin, err := resolveCommand(m.Command, m.Dir, lookPath)
		if err != nil {
			return nil, invalidManifest(path, err)
		}
		p.command = &Command{Path: bin, Args: m.Args, Env: m.Env, Dir: m.Dir}
	}
	return p, nil
}

// resolveCommand resolves commands containing a path separator against dir
// and looks the others up with lookPath.
func resolveCommand(command, dir string, lookPath func(string) (string, error)) (string, error) {
	if !strings.ContainsAny(command, `/\`) {
		bin, err := lookPath(command)
		if err != nil {
			return "", fmt.Errorf("command %q not found: %w", command, err)
		}
		return bin, nil
	}

	bin := command
	if !filepath.IsAbs(bin) {
		bin = filepath.Join(dir, bin)
	}
	info, err := os.Stat(bin)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("command %s does not exist", bin)
		}
		return "", err
	}
	if !IsExecutable(info) {
		return "", fmt.Errorf("command %s is not an executable file", bin)
	}
	return bin, nil
}

// IsExecutable reports whether info is a regular file with an execute bit.
func IsExecutable(info fs.FileInfo) bool {
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
