package engine

import "context"

// Plugin extends a Processor when attached with Use.
type Plugin interface {
	Name() string
	Attach(p *Processor) error
}

// Filter post-processes stringified output.
type Filter func(ctx context.Context, output []byte, env FilterEnv) ([]byte, error)

// FilterEnv describes the run a Filter is invoked for.
type FilterEnv struct {
	// Settings are the processor defaults overlaid with the run settings.
	Settings map[string]any
	// File is the input path, empty for stream input.
	File string
}

type namedFilter struct {
	name string
	fn   Filter
}

// PluginFunc adapts a function into a Plugin.
func PluginFunc(name string, attach func(p *Processor) error) Plugin {
	return funcPlugin{name: name, attach: attach}
}

type funcPlugin struct {
	name   string
	attach func(p *Processor) error
}

func (f funcPlugin) Name() string              { return f.name }
func (f funcPlugin) Attach(p *Processor) error { return f.attach(p) }
