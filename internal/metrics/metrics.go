// Package metrics records run outcomes and stage timings with Prometheus
// collectors and writes them in the text exposition format.
package metrics

import (
	"context"

	"github.com/aretw0/mdpipe/pkg/domain"
	"github.com/aretw0/mdpipe/pkg/engine"
	"github.com/aretw0/mdpipe/pkg/pipeline"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns a private registry so runs never touch the global one.
type Recorder struct {
	registry      *prometheus.Registry
	runs          *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	pluginsLoaded prometheus.Counter
}

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdpipe_runs_total",
				Help: "Total number of runs by outcome",
			},
			[]string{"outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mdpipe_stage_duration_seconds",
				Help:    "Time spent reaching each run stage",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"stage"},
		),
		pluginsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mdpipe_plugins_loaded_total",
			Help: "Total number of plugins resolved and loaded",
		}),
	}
	r.registry.MustRegister(r.runs, r.stageDuration, r.pluginsLoaded)
	return r
}

// Registry exposes the collectors for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Hooks returns lifecycle hooks that observe stage durations.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStage: func(_ context.Context, e *domain.StageEvent) {
			if e.Stage == domain.StageStart {
				return
			}
			r.stageDuration.WithLabelValues(e.Stage.String()).Observe(e.Elapsed.Seconds())
		},
	}
}

// RecordRun counts a finished run. The outcome label is "success" or the
// failure kind.
func (r *Recorder) RecordRun(err error) {
	outcome := "success"
	if err != nil {
		outcome = domain.KindOf(err).String()
	}
	r.runs.WithLabelValues(outcome).Inc()
}

// WriteFile writes every collector to path in the text format.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// CountPlugins wraps next so that successfully resolved plugins are counted.
func (r *Recorder) CountPlugins(next pipeline.PluginResolver) pipeline.PluginResolver {
	return countingResolver{next: next, counter: r.pluginsLoaded}
}

type countingResolver struct {
	next    pipeline.PluginResolver
	counter prometheus.Counter
}

func (c countingResolver) ResolveAll(ctx context.Context, ids []string) ([]engine.Plugin, error) {
	plugins, err := c.next.ResolveAll(ctx, ids)
	c.counter.Add(float64(len(plugins)))
	return plugins, err
}
