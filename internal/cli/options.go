package cli

import (
	"github.com/aretw0/mdpipe/pkg/options"
)

// Options contains everything the command line can set for one run.
type Options struct {
	Output     string
	ConfigFile string
	FilePath   string
	Settings   options.Settings
	Plugins    []string
	AST        bool

	// ListSettings prints the known settings instead of running.
	ListSettings bool
	NoConfig     bool

	Verbose     bool
	LogFormat   string
	MetricsFile string

	// Args are the positional arguments.
	Args []string
}
