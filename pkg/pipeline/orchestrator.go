// Package pipeline sequences a run: configuration, plugins, parse,
// stringify or serialize, output. Every failure leaves through Run as a
// *domain.Error and nothing is written unless all stages before output
// succeeded.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/mdpipe/pkg/domain"
	"github.com/aretw0/mdpipe/pkg/engine"
	"github.com/aretw0/mdpipe/pkg/ports"
	"github.com/davecgh/go-spew/spew"
)

// ConfigFactory builds the configuration resolver for the command-line
// inputs of a run.
type ConfigFactory func(req domain.ConfigRequest) (ports.ConfigurationResolver, error)

// PluginResolver turns plugin identifiers into plugins, in order.
type PluginResolver interface {
	ResolveAll(ctx context.Context, ids []string) ([]engine.Plugin, error)
}

// Request is a single run.
type Request struct {
	// File is the input path, empty to read Invocation.Stdin.
	File string
	// FilePath names stream input for configuration discovery.
	FilePath string
	// Output is the destination file or directory, empty for Invocation.Stdout.
	Output string
	// AST emits the JSON tree instead of stringifying.
	AST bool

	ConfigFile string
	Settings   map[string]any
	Plugins    []string
	// Detect enables configuration file discovery.
	Detect bool
}

// Orchestrator runs requests.
type Orchestrator struct {
	inv          domain.Invocation
	configs      ConfigFactory
	plugins      PluginResolver
	newProcessor func() ports.Processor
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator. newProcessor is called once per run.
func New(inv domain.Invocation, configs ConfigFactory, plugins PluginResolver, newProcessor func() ports.Processor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		inv:          inv,
		configs:      configs,
		plugins:      plugins,
		newProcessor: newProcessor,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// run carries the state of one Run call.
type run struct {
	*Orchestrator
	req   Request
	file  string
	last  time.Time
	stage domain.Stage
}

// Run executes req. The returned error, if any, is a *domain.Error.
func (o *Orchestrator) Run(ctx context.Context, req Request) error {
	r := &run{Orchestrator: o, req: req, file: req.File, last: o.now()}
	if r.file == "" {
		r.file = req.FilePath
	}
	r.enter(ctx, domain.StageStart)

	err := r.execute(ctx)
	if err == nil {
		return nil
	}

	var runErr *domain.Error
	if !errors.As(err, &runErr) {
		runErr = &domain.Error{Kind: domain.KindIO, Stage: r.stage, Err: err}
	}
	r.enter(ctx, domain.StageFailed)
	o.logger.Debug("Run failed", "kind", runErr.Kind.String(), "stage", runErr.Stage.String(), "err", runErr.Err)
	if o.hooks.OnFailure != nil {
		o.hooks.OnFailure(ctx, runErr)
	}
	return runErr
}

func (r *run) execute(ctx context.Context) error {
	cfg, err := r.configure()
	if err != nil {
		return domain.NewError(domain.KindConfiguration, domain.StageConfigurationResolved, err)
	}
	r.enter(ctx, domain.StageConfigurationResolved)

	proc, err := r.attach(ctx, cfg.Plugins)
	if err != nil {
		return domain.NewError(domain.KindPluginLoad, domain.StagePluginsResolved, err)
	}
	r.enter(ctx, domain.StagePluginsResolved)

	source, err := r.read()
	if err != nil {
		return domain.NewError(domain.KindIO, domain.StageParsed, err)
	}
	doc, err := proc.Parse(ctx, source, cfg.Settings)
	if err != nil {
		return domain.NewError(domain.KindParse, domain.StageParsed, err)
	}
	doc.Path = r.file
	r.enter(ctx, domain.StageParsed)

	var out []byte
	if r.req.AST {
		if out, err = serialize(doc); err != nil {
			return domain.NewError(domain.KindStringify, domain.StageSerialized, err)
		}
		r.enter(ctx, domain.StageSerialized)
	} else {
		if out, err = proc.Stringify(ctx, doc, cfg.Settings); err != nil {
			return domain.NewError(domain.KindStringify, domain.StageStringified, err)
		}
		r.enter(ctx, domain.StageStringified)
	}

	if err := r.write(out); err != nil {
		return domain.NewError(domain.KindIO, domain.StageOutputWritten, err)
	}
	r.enter(ctx, domain.StageOutputWritten)
	r.enter(ctx, domain.StageDone)
	return nil
}

func (r *run) configure() (*domain.Configuration, error) {
	resolver, err := r.configs(domain.ConfigRequest{
		ConfigFile: r.req.ConfigFile,
		Settings:   r.req.Settings,
		Plugins:    r.req.Plugins,
		Detect:     r.req.Detect,
	})
	if err != nil {
		return nil, err
	}
	cfg, err := resolver.Configuration(r.file)
	if err != nil {
		return nil, err
	}
	if r.logger.Enabled(context.Background(), slog.LevelDebug) {
		r.logger.Debug("Effective configuration", "source", cfg.Source, "dump", spew.Sdump(cfg))
	}
	return cfg, nil
}

func (r *run) attach(ctx context.Context, ids []string) (ports.Processor, error) {
	plugins, err := r.plugins.ResolveAll(ctx, ids)
	if err != nil {
		return nil, err
	}
	proc := r.newProcessor()
	if err := proc.Use(plugins...); err != nil {
		return nil, err
	}
	return proc, nil
}

func (r *run) read() ([]byte, error) {
	if r.req.File == "" {
		if r.inv.Stdin == nil {
			return nil, errors.New("no input stream")
		}
		data, err := io.ReadAll(r.inv.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read standard input: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(r.abs(r.req.File))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func (r *run) write(out []byte) error {
	if r.req.Output == "" {
		if r.inv.Stdout == nil {
			return errors.New("no output stream")
		}
		if _, err := r.inv.Stdout.Write(out); err != nil {
			return fmt.Errorf("write standard output: %w", err)
		}
		return nil
	}

	path := r.abs(r.req.Output)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if r.file == "" {
			return fmt.Errorf("output %s is a directory and the input has no name", path)
		}
		path = filepath.Join(path, filepath.Base(r.file))
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	r.logger.Debug("Output written", "path", path, "bytes", len(out))
	return nil
}

func (r *run) abs(path string) string {
	if filepath.IsAbs(path) || r.inv.WorkDir == "" {
		return path
	}
	return filepath.Join(r.inv.WorkDir, path)
}

func (r *run) enter(ctx context.Context, stage domain.Stage) {
	now := r.now()
	event := &domain.StageEvent{
		Timestamp: now,
		Stage:     stage,
		File:      r.file,
		Elapsed:   now.Sub(r.last),
	}
	r.last = now
	r.stage = stage
	r.logger.Debug("Stage reached", "stage", stage.String(), "elapsed", event.Elapsed)
	if r.hooks.OnStage != nil {
		r.hooks.OnStage(ctx, event)
	}
}

// serialize renders the document tree as indented JSON.
func serialize(doc *engine.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc.Tree()); err != nil {
		return nil, fmt.Errorf("serialize tree: %w", err)
	}
	return buf.Bytes(), nil
}
