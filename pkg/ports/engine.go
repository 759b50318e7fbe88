package ports

import (
	"context"

	"github.com/aretw0/mdpipe/pkg/domain"
	"github.com/aretw0/mdpipe/pkg/engine"
)

// Processor is the transform engine as seen by the run orchestrator.
// engine.Processor implements it.
type Processor interface {
	// Use attaches plugins in order.
	Use(plugins ...engine.Plugin) error

	// Parse turns source into a document.
	Parse(ctx context.Context, source []byte, settings map[string]any) (*engine.Document, error)

	// Stringify serialises a document.
	Stringify(ctx context.Context, doc *engine.Document, settings map[string]any) ([]byte, error)
}

// ConfigurationResolver resolves the effective configuration for a target file.
type ConfigurationResolver interface {
	// Configuration returns the configuration for filename, which is empty for
	// stream input.
	Configuration(filename string) (*domain.Configuration, error)
}

var _ Processor = (*engine.Processor)(nil)
