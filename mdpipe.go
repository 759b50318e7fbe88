package mdpipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/mdpipe/pkg/adapters/builtin"
	"github.com/aretw0/mdpipe/pkg/adapters/file"
	"github.com/aretw0/mdpipe/pkg/config"
	"github.com/aretw0/mdpipe/pkg/domain"
	"github.com/aretw0/mdpipe/pkg/engine"
	"github.com/aretw0/mdpipe/pkg/pipeline"
	"github.com/aretw0/mdpipe/pkg/ports"
	"github.com/aretw0/mdpipe/pkg/project"
	"github.com/aretw0/mdpipe/pkg/resolver"
)

// Version is the release of the mdpipe module and command.
var Version = "0.4.0"

// Request is a single run. See pipeline.Request.
type Request = pipeline.Request

// Pipeline is the high-level entry point. It wires the filesystem plugin
// loader, the configuration resolver and the engine into an orchestrator.
type Pipeline struct {
	orchestrator *pipeline.Orchestrator
	inv          domain.Invocation
	builtins     *builtin.Registry
	hooks        domain.LifecycleHooks
	wrapPlugins  func(pipeline.PluginResolver) pipeline.PluginResolver
	configOpts   []config.Option
	logger       *slog.Logger
	root         string
}

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithInvocation replaces the process streams and PATH lookup. An empty
// WorkDir is filled in by New.
func WithInvocation(inv domain.Invocation) Option {
	return func(p *Pipeline) {
		p.inv = inv
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithBuiltins replaces the builtin plugin registry.
func WithBuiltins(reg *builtin.Registry) Option {
	return func(p *Pipeline) {
		p.builtins = reg
	}
}

// WithPluginMiddleware decorates the plugin resolver, for example to count
// loads.
func WithPluginMiddleware(wrap func(pipeline.PluginResolver) pipeline.PluginResolver) Option {
	return func(p *Pipeline) {
		p.wrapPlugins = wrap
	}
}

// WithConfigOptions passes options to every configuration resolver.
func WithConfigOptions(opts ...config.Option) Option {
	return func(p *Pipeline) {
		p.configOpts = append(p.configOpts, opts...)
	}
}

// New initializes a Pipeline for workDir. Plugins are resolved against the
// nearest project root above workDir.
func New(workDir string, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}

	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("invalid working directory: %w", err)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if p.builtins == nil {
		p.builtins = builtin.Default()
	}
	if p.inv.WorkDir == "" {
		p.inv.WorkDir = absDir
	}
	if p.inv.Stdin == nil {
		p.inv.Stdin = os.Stdin
	}
	if p.inv.Stdout == nil {
		p.inv.Stdout = os.Stdout
	}
	if p.inv.Stderr == nil {
		p.inv.Stderr = os.Stderr
	}

	if p.root, err = project.Locate(p.inv.WorkDir); err != nil {
		return nil, err
	}
	p.logger.Debug("Project root located", "root", p.root, "work_dir", p.inv.WorkDir)

	loader := file.NewLoader(p.builtins,
		file.WithLookPath(p.inv.PathLookup()),
		file.WithLogger(p.logger),
	)
	var plugins pipeline.PluginResolver = resolver.New(loader, p.root, p.inv.WorkDir, resolver.WithLogger(p.logger))
	if p.wrapPlugins != nil {
		plugins = p.wrapPlugins(plugins)
	}

	p.orchestrator = pipeline.New(p.inv, p.configurations, plugins, p.newProcessor,
		pipeline.WithLifecycleHooks(p.hooks),
		pipeline.WithLogger(p.logger),
	)
	return p, nil
}

// Run executes a request. Errors are *domain.Error values.
func (p *Pipeline) Run(ctx context.Context, req Request) error {
	return p.orchestrator.Run(ctx, req)
}

// Root returns the project root plugins are resolved against.
func (p *Pipeline) Root() string {
	return p.root
}

func (p *Pipeline) configurations(req domain.ConfigRequest) (ports.ConfigurationResolver, error) {
	opts := append([]config.Option{config.WithLogger(p.logger)}, p.configOpts...)
	r, err := config.NewResolver(p.inv.WorkDir, req, opts...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Pipeline) newProcessor() ports.Processor {
	return engine.NewProcessor(engine.WithLogger(p.logger))
}
