package cli

import (
	"strings"

	"github.com/aretw0/mdpipe/pkg/options"
	"github.com/spf13/pflag"
)

// SettingsValue is a repeatable flag that accumulates settings. Later
// occurrences overwrite earlier names.
type SettingsValue struct {
	target *options.Settings
	raw    []string
}

// NewSettingsValue binds a flag value to target.
func NewSettingsValue(target *options.Settings) *SettingsValue {
	return &SettingsValue{target: target}
}

func (v *SettingsValue) String() string { return strings.Join(v.raw, "; ") }
func (v *SettingsValue) Type() string   { return "settings" }

func (v *SettingsValue) Set(raw string) error {
	*v.target = options.ParseSettings(raw, *v.target)
	v.raw = append(v.raw, raw)
	return nil
}

// PluginsValue is a repeatable flag that appends plugin identifiers.
type PluginsValue struct {
	target *[]string
}

// NewPluginsValue binds a flag value to target.
func NewPluginsValue(target *[]string) *PluginsValue {
	return &PluginsValue{target: target}
}

func (v *PluginsValue) String() string { return strings.Join(*v.target, ", ") }
func (v *PluginsValue) Type() string   { return "plugins" }

func (v *PluginsValue) Set(raw string) error {
	*v.target = options.ParsePlugins(raw, *v.target)
	return nil
}

// BindFlags registers the run flags on fs.
func BindFlags(fs *pflag.FlagSet, opts *Options) {
	fs.StringVarP(&opts.Output, "output", "o", "", "Write output to a file or directory instead of stdout")
	fs.StringVarP(&opts.ConfigFile, "config", "c", "", "Use this configuration file and skip discovery")
	fs.VarP(NewSettingsValue(&opts.Settings), "setting", "s", `Settings as "name: value" pairs (repeatable)`)
	fs.VarP(NewPluginsValue(&opts.Plugins), "use", "u", "Plugins to attach, in order (repeatable)")
	fs.BoolVarP(&opts.AST, "ast", "a", false, "Print the syntax tree as JSON instead of Markdown")
	fs.BoolVar(&opts.ListSettings, "settings", false, "List the available settings and exit")
	fs.BoolVar(&opts.NoConfig, "no-config", false, "Do not search for configuration files")
	fs.StringVar(&opts.FilePath, "file-path", "", "Name of the piped input, for configuration discovery")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log debug information to stderr")
	fs.StringVar(&opts.LogFormat, "log-format", "text", "Log format: text or json")
	fs.StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
}
