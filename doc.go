/*
Package mdpipe is a pluggable Markdown pipeline: read a document, resolve a layered
configuration, load plugins from several candidate locations, transform and write
the result or its syntax tree.

# Concept

A run moves through a fixed sequence of stages:

	start -> configuration_resolved -> plugins_resolved -> parsed ->
	stringified | serialized -> output_written -> done

Any failure moves the run to "failed" and is returned as a *domain.Error carrying
the kind of failure and the stage it happened in. Output is produced only in the
last stage, so a failed run never writes a partial document.

# Configuration

Settings are merged with increasing precedence: engine defaults, the nearest
configuration file (.mdpiperc, .mdpiperc.json, .mdpiperc.yaml, .mdpiperc.yml,
.mdpiperc.hcl or the "mdpipeConfig" field of package.json) and the request. Plugin
lists are concatenated: file first, then request.

# Plugins

A plugin identifier is tried, in order, as a path relative to the project
root (with and without the .yaml, .yml and .json extensions), below node_modules
of the project root and of the working directory, and finally as a
module name: a builtin such as "gfm" or "footnote", or an "mdpipe-<name>"
executable on PATH. Manifests describe plugins that combine builtins, settings
defaults and an external command that filters the output.

# Usage

	p, err := mdpipe.New(".")
	if err != nil {
		log.Fatal(err)
	}
	err = p.Run(ctx, mdpipe.Request{
		File:     "README.md",
		Settings: map[string]any{"bullet": "-"},
		Plugins:  []string{"gfm"},
		Detect:   true,
	})
*/
package mdpipe
