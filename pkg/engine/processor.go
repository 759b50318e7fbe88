package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Processor holds the plugins attached for one run. It is not safe for
// concurrent use and must not be shared between runs.
type Processor struct {
	logger      *slog.Logger
	plugins     []string
	extensions  []goldmark.Extender
	filters     []namedFilter
	defaults    map[string]any
	frontmatter bool
	attaching   string
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a Processor without plugins.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{defaults: map[string]any{}}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// Use attaches plugins in order. Registration is append-only; a failing plugin
// stops the attachment of the ones after it.
func (p *Processor) Use(plugins ...Plugin) error {
	for _, plugin := range plugins {
		if plugin == nil {
			return errors.New("cannot attach a nil plugin")
		}
		prev := p.attaching
		p.attaching = plugin.Name()
		err := plugin.Attach(p)
		p.attaching = prev
		if err != nil {
			return fmt.Errorf("attach %s: %w", plugin.Name(), err)
		}
		p.plugins = append(p.plugins, plugin.Name())
		p.logger.Debug("Plugin attached", "plugin", plugin.Name(), "position", len(p.plugins))
	}
	return nil
}

// Plugins returns the names of the attached plugins in attach order.
func (p *Processor) Plugins() []string {
	return append([]string(nil), p.plugins...)
}

// AddExtension registers goldmark extensions used by Parse and HTML rendering.
func (p *Processor) AddExtension(exts ...goldmark.Extender) {
	p.extensions = append(p.extensions, exts...)
}

// AddFilter registers an output filter. Filters run after stringify in the
// order they were added. An empty name defaults to the plugin being attached.
func (p *Processor) AddFilter(name string, f Filter) {
	if name == "" {
		name = p.attaching
	}
	p.filters = append(p.filters, namedFilter{name: name, fn: f})
}

// SetDefaults adds settings defaults. They have lower precedence than the
// settings passed to Parse and Stringify; later calls win over earlier ones.
func (p *Processor) SetDefaults(settings map[string]any) {
	maps.Copy(p.defaults, settings)
}

// EnableFrontmatter makes Parse split off a leading frontmatter block and
// Stringify re-emit it.
func (p *Processor) EnableFrontmatter() {
	p.frontmatter = true
}

// Parse turns Markdown source into a Document.
func (p *Processor) Parse(ctx context.Context, source []byte, settings map[string]any) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := DecodeSettings(p.defaults, settings)
	if err != nil {
		return nil, err
	}

	doc := &Document{Source: source}
	if p.frontmatter {
		meta, body, found, err := splitFrontmatter(source)
		if err != nil {
			return nil, err
		}
		doc.Source, doc.Frontmatter, doc.HasFrontmatter = body, meta, found
	}

	var parserOpts []parser.Option
	if s.AutoHeadingID {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}
	if s.Attribute {
		parserOpts = append(parserOpts, parser.WithAttribute())
	}

	md := goldmark.New(
		goldmark.WithExtensions(p.extensions...),
		goldmark.WithParserOptions(parserOpts...),
	)
	doc.Root = md.Parser().Parse(text.NewReader(doc.Source))
	return doc, nil
}

// Stringify serialises doc as Markdown, or HTML when the "html" setting is set,
// then runs the output filters.
func (p *Processor) Stringify(ctx context.Context, doc *Document, settings map[string]any) ([]byte, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New("nothing to stringify")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := DecodeSettings(p.defaults, settings)
	if err != nil {
		return nil, err
	}

	var out []byte
	if s.HTML {
		out, err = p.renderHTML(doc, s)
	} else {
		out, err = formatMarkdown(doc, s)
	}
	if err != nil {
		return nil, err
	}

	env := FilterEnv{Settings: p.mergedSettings(settings), File: doc.Path}
	for _, f := range p.filters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err = f.fn(ctx, out, env)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", f.name, err)
		}
	}
	return out, nil
}

func (p *Processor) mergedSettings(settings map[string]any) map[string]any {
	merged := maps.Clone(p.defaults)
	maps.Copy(merged, settings)
	return merged
}

func (p *Processor) renderHTML(doc *Document, s Settings) ([]byte, error) {
	var opts []renderer.Option
	if s.XHTML {
		opts = append(opts, html.WithXHTML())
	}
	if s.HardWraps {
		opts = append(opts, html.WithHardWraps())
	}
	if s.Unsafe {
		opts = append(opts, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(p.extensions...),
		goldmark.WithRendererOptions(opts...),
	)
	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, doc.Source, doc.Root); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
