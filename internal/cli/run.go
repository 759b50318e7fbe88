package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/mdpipe"
	"github.com/aretw0/mdpipe/internal/logging"
	"github.com/aretw0/mdpipe/internal/metrics"
	"github.com/aretw0/mdpipe/internal/presentation/tui"
	"github.com/aretw0/mdpipe/pkg/domain"
	"github.com/aretw0/mdpipe/pkg/engine"
	"github.com/google/uuid"
)

// Run handles one invocation: --settings listing or a pipeline run. The
// returned error is meant for Report.
func Run(ctx context.Context, inv domain.Invocation, opts Options) error {
	if opts.ListSettings {
		if err := tui.PrintSettings(inv.Stdout, engine.SettingDescriptors(), inv.StdoutIsTTY); err != nil {
			return domain.NewError(domain.KindIO, domain.StageOutputWritten, err)
		}
		return nil
	}

	file, err := ResolveInput(inv, opts)
	if err != nil {
		return err
	}
	logger, err := createLogger(inv, opts)
	if err != nil {
		return err
	}
	logger = logger.With("run_id", uuid.NewString())

	pipelineOpts := []mdpipe.Option{
		mdpipe.WithInvocation(inv),
		mdpipe.WithLogger(logger),
	}
	var recorder *metrics.Recorder
	if opts.MetricsFile != "" {
		recorder = metrics.New()
		pipelineOpts = append(pipelineOpts,
			mdpipe.WithLifecycleHooks(recorder.Hooks()),
			mdpipe.WithPluginMiddleware(recorder.CountPlugins),
		)
	}

	p, err := mdpipe.New(inv.WorkDir, pipelineOpts...)
	if err != nil {
		return domain.NewError(domain.KindConfiguration, domain.StageStart, err)
	}

	runErr := p.Run(ctx, mdpipe.Request{
		File:       file,
		FilePath:   opts.FilePath,
		Output:     opts.Output,
		AST:        opts.AST,
		ConfigFile: opts.ConfigFile,
		Settings:   opts.Settings.Map(),
		Plugins:    opts.Plugins,
		Detect:     !opts.NoConfig,
	})

	if recorder != nil {
		recorder.RecordRun(runErr)
		if err := recorder.WriteFile(opts.MetricsFile); err != nil {
			logger.Error("Failed to write metrics", "path", opts.MetricsFile, "error", err)
			if runErr == nil {
				return domain.NewError(domain.KindIO, domain.StageDone, err)
			}
		}
	}
	return runErr
}

// createLogger configures the application logger. Debug output goes to
// stderr with --verbose; otherwise nothing is logged.
func createLogger(inv domain.Invocation, opts Options) (*slog.Logger, error) {
	format, ok := logging.ParseFormat(opts.LogFormat)
	if !ok {
		return nil, domain.Invocationf("unknown log format %q", opts.LogFormat)
	}
	if !opts.Verbose || inv.Stderr == nil {
		return logging.NewNop(), nil
	}
	return logging.New(slog.LevelDebug, format, inv.Stderr), nil
}
