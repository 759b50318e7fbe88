package domain

// Configuration is the effective configuration for a single run.
type Configuration struct {
	// Settings are passed to the engine's parse and stringify capabilities.
	Settings map[string]any `json:"settings"`

	// Plugins are resolved and attached in order.
	Plugins []string `json:"plugins"`

	// Source is the configuration file that contributed, if any.
	Source string `json:"source,omitempty"`
}

// ConfigRequest carries the command-line level inputs of configuration resolution.
type ConfigRequest struct {
	// ConfigFile overrides discovery when set.
	ConfigFile string
	Settings   map[string]any
	Plugins    []string
	// Detect enables searching for configuration files.
	Detect bool
}
