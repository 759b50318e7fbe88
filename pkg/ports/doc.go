/*
Package ports defines the driven ports (interfaces) of the mdpipe pipeline.

These interfaces decouple the run orchestration from concrete implementations,
so the plugin search order and the stage sequencing can be tested without a
filesystem, a module system or a real Markdown engine.

# Key Interfaces

  - PluginLoader: loads the first existing candidate location of a plugin.
  - Processor: the transform engine capabilities (attach, parse, stringify).
  - ConfigurationResolver: produces the effective configuration for a file.
*/
package ports
