package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/mdpipe/pkg/engine"
)

// ErrNotFound is returned by a PluginLoader when none of the candidates exist.
var ErrNotFound = errors.New("plugin not found")

// CandidateKind tells a loader how to interpret a candidate.
type CandidateKind int

const (
	// CandidatePath is a file or directory relative to the project root.
	CandidatePath CandidateKind = iota
	// CandidatePackage is an installed package directory.
	CandidatePackage
	// CandidateModule is a bare name resolved by the loader's own registry.
	CandidateModule
)

func (k CandidateKind) String() string {
	switch k {
	case CandidatePath:
		return "path"
	case CandidatePackage:
		return "package"
	case CandidateModule:
		return "module"
	default:
		return "unknown"
	}
}

// Candidate is one location a plugin may be loaded from.
type Candidate struct {
	Kind CandidateKind
	// Path is the filesystem location, or the bare name for CandidateModule.
	Path string
	// Identifier is the name the plugin was requested by.
	Identifier string
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s %s", c.Kind, c.Path)
}

// PluginLoader turns candidate locations into plugins.
type PluginLoader interface {
	// Load selects the first existing candidate, in order, and loads it.
	// Once a candidate is selected a load failure is returned as is; later
	// candidates are not tried. When no candidate exists the error wraps
	// ErrNotFound.
	Load(ctx context.Context, candidates []Candidate) (engine.Plugin, error)
}
