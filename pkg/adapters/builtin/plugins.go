package builtin

import (
	"github.com/aretw0/mdpipe/pkg/engine"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Default returns a registry holding every builtin plugin.
func Default() *Registry {
	r := NewRegistry()
	r.Register("gfm", extensionPlugin("gfm", extension.GFM))
	r.Register("table", extensionPlugin("table", extension.Table))
	r.Register("strikethrough", extensionPlugin("strikethrough", extension.Strikethrough))
	r.Register("linkify", extensionPlugin("linkify", extension.Linkify), "autolink")
	r.Register("tasklist", extensionPlugin("tasklist", extension.TaskList))
	r.Register("definition-list", extensionPlugin("definition-list", extension.DefinitionList), "definition")
	r.Register("footnote", extensionPlugin("footnote", extension.Footnote))
	r.Register("typographer", extensionPlugin("typographer", extension.Typographer))
	r.Register("cjk", extensionPlugin("cjk", extension.CJK))
	r.Register("frontmatter", func() engine.Plugin {
		return engine.PluginFunc("frontmatter", func(p *engine.Processor) error {
			p.EnableFrontmatter()
			return nil
		})
	})
	return r
}

func extensionPlugin(name string, ext goldmark.Extender) Factory {
	return func() engine.Plugin {
		return engine.PluginFunc(name, func(p *engine.Processor) error {
			p.AddExtension(ext)
			return nil
		})
	}
}
